// Package idgen generates opaque principal identifiers.
//
// An identifier is the hex encoding of the first 29 bytes of
// SHA-256("{parent}-{now}"), where now is the current time in nanoseconds.
// The derivation is fixed: stored ids from other deployments of the protocol
// remain interoperable.
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// IDLen is the byte length of a generated identifier before hex encoding.
const IDLen = 29

// NewAt derives an identifier from a parent principal and an explicit time.
func NewAt(parent string, now time.Time) string {
	input := parent + "-" + strconv.FormatInt(now.UnixNano(), 10)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:IDLen])
}

// New derives an identifier from a parent principal and the current time.
func New(parent string) string {
	return NewAt(parent, time.Now())
}
