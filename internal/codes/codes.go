// Package codes implements the code protocol: canonical message construction
// plus signing and verification of product and reseller unique codes.
//
// A unique code is the hex encoding of a 64-byte compact (r||s) ECDSA
// signature over SHA-256 of the canonical message. The message formats are a
// binding interop contract and must not change:
//
//	product:  "{product_id}_{serial_no}_{print_version}"  (optional "_{nonce}")
//	reseller: "{reseller_id}_{timestamp}_{context}"        (context may be empty)
package codes

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/veritag/veritag/internal/keys"
)

const signatureLen = 64

// ProductMessage builds the canonical message for a product unique code.
// The print version is always the persisted one; callers must never build a
// message from a client-asserted version.
func ProductMessage(productID, serialNo string, printVersion uint8, nonce string) string {
	msg := productID + "_" + serialNo + "_" + strconv.FormatUint(uint64(printVersion), 10)
	if nonce != "" {
		msg += "_" + nonce
	}
	return msg
}

// ResellerMessage builds the canonical message for a reseller challenge code.
// The timestamp is in unix seconds; an absent context is the empty string.
func ResellerMessage(resellerID string, timestamp int64, context string) string {
	return resellerID + "_" + strconv.FormatInt(timestamp, 10) + "_" + context
}

// Sign hashes the message with SHA-256 and signs the digest with the given
// hex-encoded private key, returning the hex-encoded compact signature.
func Sign(privateKeyHex, message string) (string, error) {
	priv, err := keys.ParsePrivateKey(privateKeyHex)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(message))
	sig := secpecdsa.Sign(priv, digest[:])

	r := sig.R()
	s := sig.S()
	var compact [signatureLen]byte
	r.PutBytesUnchecked(compact[:32])
	s.PutBytesUnchecked(compact[32:])

	return hex.EncodeToString(compact[:]), nil
}

// Verify checks a hex-encoded unique code against the message and public key.
// Every malformed-input case (bad hex, wrong length, out-of-range scalars) is
// a verification failure, not an error: untrusted codes cannot crash the
// verifier.
func Verify(pub *secp256k1.PublicKey, message, codeHex string) bool {
	raw, err := hex.DecodeString(codeHex)
	if err != nil || len(raw) != signatureLen {
		return false
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(raw[:32]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(raw[32:]); overflow {
		return false
	}

	sig := secpecdsa.NewSignature(&r, &s)
	digest := sha256.Sum256([]byte(message))
	return sig.Verify(digest[:], pub)
}
