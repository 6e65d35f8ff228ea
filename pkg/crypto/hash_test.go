package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256dEmpty(t *testing.T) {
	// Double SHA-256 of the empty string. The first four bytes of this
	// digest are the checksum carried by every empty-payload message.
	got := Sha256d(nil)
	assert.Equal(t,
		"5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456",
		hex.EncodeToString(got[:]))
}

func TestSha256dMatchesComposition(t *testing.T) {
	inputs := [][]byte{
		[]byte("hello"),
		{0x00},
		make([]byte, 64),
		[]byte("The quick brown fox jumps over the lazy dog"),
	}

	for _, input := range inputs {
		first := sha256.Sum256(input)
		want := sha256.Sum256(first[:])

		got := Sha256d(input)
		assert.Equal(t, want, got)
	}
}

func TestHash160KnownVector(t *testing.T) {
	// Compressed public key for the secp256k1 generator point.
	pubKey, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)

	got := Hash160(pubKey)
	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(got[:]))
}

func TestChecksum(t *testing.T) {
	got := Checksum(nil)
	assert.Equal(t, [4]byte{0x5d, 0xf6, 0xe0, 0xe2}, got)
}

func TestTransactionIDDisplayOrder(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}

	digest := Sha256d(raw)
	for i, j := 0, len(digest)-1; i < j; i, j = i+1, j-1 {
		digest[i], digest[j] = digest[j], digest[i]
	}

	// The displayed transaction ID is the double SHA-256 digest with its
	// bytes reversed.
	id := TransactionID(raw)
	assert.Equal(t, hex.EncodeToString(digest[:]), id.String())
}
