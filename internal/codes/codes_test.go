package codes

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/keys"
)

func TestProductMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "p1_s1_3", ProductMessage("p1", "s1", 3, ""))
	assert.Equal(t, "p1_s1_0_n1", ProductMessage("p1", "s1", 0, "n1"))
	assert.Equal(t, "p1_s1_255", ProductMessage("p1", "s1", 255, ""))
}

func TestResellerMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "r1_1700000000_storefront", ResellerMessage("r1", 1700000000, "storefront"))
	assert.Equal(t, "r1_0_", ResellerMessage("r1", 0, ""))
}

func TestSignVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	privHex, pubHex, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := keys.ParsePublicKey(pubHex)
	require.NoError(t, err)

	msg := ProductMessage("prod-1", "serial-1", 1, "")
	code, err := Sign(privHex, msg)
	require.NoError(t, err)

	raw, err := hex.DecodeString(code)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	assert.True(t, Verify(pub, msg, code))
}

func TestVerify_WrongMessage(t *testing.T) {
	t.Parallel()

	privHex, pubHex, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := keys.ParsePublicKey(pubHex)
	require.NoError(t, err)

	code, err := Sign(privHex, ProductMessage("prod-1", "serial-1", 1, ""))
	require.NoError(t, err)

	// same unit, later print version
	assert.False(t, Verify(pub, ProductMessage("prod-1", "serial-1", 2, ""), code))
	// different unit
	assert.False(t, Verify(pub, ProductMessage("prod-1", "serial-2", 1, ""), code))
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	privHex, pubHex, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := keys.ParsePublicKey(pubHex)
	require.NoError(t, err)

	msg := ProductMessage("prod-1", "serial-1", 1, "")
	code, err := Sign(privHex, msg)
	require.NoError(t, err)

	raw, err := hex.DecodeString(code)
	require.NoError(t, err)
	raw[10] ^= 0x01
	assert.False(t, Verify(pub, msg, hex.EncodeToString(raw)))
}

func TestVerify_MalformedCode(t *testing.T) {
	t.Parallel()

	_, pubHex, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := keys.ParsePublicKey(pubHex)
	require.NoError(t, err)

	tests := []struct {
		name string
		code string
	}{
		{name: "not hex", code: "zz"},
		{name: "empty", code: ""},
		{name: "too short", code: "abcd"},
		{name: "too long", code: strings.Repeat("ab", 65)},
		{name: "scalar overflow", code: strings.Repeat("ff", 64)},
	}

	msg := ProductMessage("p", "s", 0, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify(pub, msg, tt.code))
		})
	}
}

func TestVerify_WrongKey(t *testing.T) {
	t.Parallel()

	privHex, _, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	_, otherPubHex, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	otherPub, err := keys.ParsePublicKey(otherPubHex)
	require.NoError(t, err)

	msg := ResellerMessage("r1", 1700000000, "ctx")
	code, err := Sign(privHex, msg)
	require.NoError(t, err)

	assert.False(t, Verify(otherPub, msg, code))
}
