package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/veritag/veritag/internal/flagx"
	"github.com/veritag/veritag/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "60m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	StorageEngine         string         `json:"storage_engine"`
	DatabaseDSN           string         `json:"database_dsn"`
	BoltPath              string         `json:"bolt_path"`
	RateLimitBackend      string         `json:"rate_limit_backend"`
	RedisAddr             string         `json:"redis_addr"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// malformed file panics: a server started with a broken config file must not
// come up on defaults.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.StorageEngine = c.StorageEngine
	config.DatabaseDSN = c.DatabaseDSN
	config.BoltPath = c.BoltPath
	config.RateLimitBackend = c.RateLimitBackend
	config.RedisAddr = c.RedisAddr
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
}
