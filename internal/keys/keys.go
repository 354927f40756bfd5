// Package keys implements key management for organization signing keys.
//
// All signing inside an organization uses the organization's single secp256k1
// keypair: products and resellers never hold private keys of their own, they
// only store the public key derived from the organization key. The private
// key is persisted hex-encoded (32-byte scalar); public keys are persisted as
// hex-encoded uncompressed SEC1 points (65 bytes).
package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/veritag/veritag/internal/common"
)

const privateKeyLen = 32

// GenerateKeyPair mints a fresh secp256k1 keypair and returns both halves
// hex-encoded. The private key must never be handed to unprivileged callers.
func GenerateKeyPair() (privateKeyHex, publicKeyHex string, err error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", "", fmt.Errorf("keypair generation: %w", err)
	}
	privateKeyHex = hex.EncodeToString(priv.Serialize())
	publicKeyHex = EncodePublicKey(priv.PubKey())
	return privateKeyHex, publicKeyHex, nil
}

// ParsePrivateKey decodes a hex-encoded private key. Malformed input of any
// kind yields ErrorMalformedKey; attacker- or admin-supplied hex must never
// panic the caller.
func ParsePrivateKey(privateKeyHex string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not valid hex", common.ErrorMalformedKey)
	}
	if len(raw) != privateKeyLen {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", common.ErrorMalformedKey, privateKeyLen, len(raw))
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("%w: private key scalar is zero", common.ErrorMalformedKey)
	}
	return priv, nil
}

// DerivePublicKey derives the verification key from a hex-encoded private key.
func DerivePublicKey(privateKeyHex string) (*secp256k1.PublicKey, error) {
	priv, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return priv.PubKey(), nil
}

// ParsePublicKey decodes a hex-encoded SEC1 public key (compressed or
// uncompressed). Malformed input yields ErrorMalformedKey.
func ParsePublicKey(publicKeyHex string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not valid hex", common.ErrorMalformedKey)
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedKey, err)
	}
	return pub, nil
}

// EncodePublicKey renders a public key as a hex-encoded uncompressed point.
func EncodePublicKey(pub *secp256k1.PublicKey) string {
	return hex.EncodeToString(pub.SerializeUncompressed())
}
