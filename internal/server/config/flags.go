package config

import (
	"flag"
	"os"
	"time"

	"github.com/veritag/veritag/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-e string   storage engine, "postgres" or "bolt"
//	-d string   PostgreSQL DSN
//	-f string   Bolt database file path
//	-l string   rate limiter backend, "memory" or "redis"
//	-r string   Redis address
//	-s string   JWT HMAC secret key
//	-t int      bearer token validity, minutes
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-e", "-d", "-f", "-l", "-r", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageEngine, "e", config.StorageEngine, "storage engine (postgres|bolt)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BoltPath, "f", config.BoltPath, "bolt database file path")
	fs.StringVar(&config.RateLimitBackend, "l", config.RateLimitBackend, "rate limiter backend (memory|redis)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	err := fs.Parse(args)
	if err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
}
