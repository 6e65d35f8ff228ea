package address

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/cashtx/pkg/netparams"
)

const (
	demoCashAddr = "bitcoincash:qq7ur36zd8uq2wqv0mle2khzwt79ue9ty57mvd95r0"

	// All-zero hash, version byte 0x00. The leading ones encode the
	// zero bytes.
	burnLegacy = "1111111111111111111114oLvT2"
)

func TestDecodeCashAddr(t *testing.T) {
	addr, err := DecodeCashAddr(demoCashAddr)
	require.NoError(t, err)

	assert.Equal(t, "bitcoincash", addr.Prefix)
	assert.Equal(t, P2PKH, addr.Kind)
	assert.Equal(t, demoCashAddr, addr.String())
}

func TestDecodeCashAddrWithoutPrefix(t *testing.T) {
	_, payload, ok := strings.Cut(demoCashAddr, ":")
	require.True(t, ok)

	addr, err := DecodeCashAddr(payload)
	require.NoError(t, err)

	// The checksum commits to the prefix, so decoding recovers it.
	assert.Equal(t, "bitcoincash", addr.Prefix)
	assert.Equal(t, demoCashAddr, addr.String())
}

func TestDecodeCashAddrUpperCase(t *testing.T) {
	addr, err := DecodeCashAddr(strings.ToUpper(demoCashAddr))
	require.NoError(t, err)
	assert.Equal(t, demoCashAddr, addr.String())
}

func TestDecodeCashAddrMixedCaseRejected(t *testing.T) {
	mixed := strings.ToUpper(demoCashAddr[:20]) + demoCashAddr[20:]
	_, err := DecodeCashAddr(mixed)
	assert.Error(t, err)
}

func TestDecodeCashAddrBadChecksum(t *testing.T) {
	corrupted := []byte(demoCashAddr)
	last := corrupted[len(corrupted)-1]
	if last == 'q' {
		corrupted[len(corrupted)-1] = 'p'
	} else {
		corrupted[len(corrupted)-1] = 'q'
	}

	_, err := DecodeCashAddr(string(corrupted))
	assert.Error(t, err)
}

func TestDecodeCashAddrInvalidCharacter(t *testing.T) {
	// 'b' is not in the base32 charset.
	_, err := DecodeCashAddr("bitcoincash:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	assert.Error(t, err)
}

func TestCashAddrRoundTrip(t *testing.T) {
	var hash [20]byte
	for i := range hash {
		hash[i] = byte(i * 7)
	}

	for _, tc := range []struct {
		prefix string
		kind   Kind
	}{
		{"bitcoincash", P2PKH},
		{"bitcoincash", P2SH},
		{"bchtest", P2PKH},
		{"bchreg", P2PKH},
	} {
		encoded := EncodeCashAddr(tc.prefix, tc.kind, hash)
		assert.True(t, strings.HasPrefix(encoded, tc.prefix+":"))

		decoded, err := DecodeCashAddr(encoded)
		require.NoError(t, err, encoded)
		assert.Equal(t, tc.prefix, decoded.Prefix)
		assert.Equal(t, tc.kind, decoded.Kind)
		assert.Equal(t, hash, decoded.Hash)
	}
}

func TestDecodeLegacyBurnAddress(t *testing.T) {
	addr, err := DecodeLegacy(burnLegacy)
	require.NoError(t, err)

	assert.Equal(t, P2PKH, addr.Kind)
	assert.Equal(t, "bitcoincash", addr.Prefix)
	assert.Equal(t, [20]byte{}, addr.Hash)

	legacy, err := addr.Legacy()
	require.NoError(t, err)
	assert.Equal(t, burnLegacy, legacy)
}

func TestDecodeLegacyBadChecksum(t *testing.T) {
	corrupted := burnLegacy[:len(burnLegacy)-1] + "3"
	_, err := DecodeLegacy(corrupted)
	assert.Error(t, err)
}

func TestDecodeAutoDetect(t *testing.T) {
	fromCash, err := Decode(demoCashAddr)
	require.NoError(t, err)
	assert.Equal(t, "bitcoincash", fromCash.Prefix)

	// 42 characters, no prefix: still CashAddr.
	_, payload, _ := strings.Cut(demoCashAddr, ":")
	fromBare, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, fromCash.Hash, fromBare.Hash)

	fromLegacy, err := Decode(burnLegacy)
	require.NoError(t, err)
	assert.Equal(t, [20]byte{}, fromLegacy.Hash)

	_, err = Decode("")
	assert.Error(t, err)
}

func TestFromPubKey(t *testing.T) {
	// Compressed public key for the secp256k1 generator point. Its
	// base58check form is a fixed, well-known address.
	pubKey, err := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	require.NoError(t, err)

	addr, err := FromPubKey(pubKey, &netparams.MainNetParams)
	require.NoError(t, err)

	assert.Equal(t, "751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(addr.Hash[:]))

	legacy, err := addr.Legacy()
	require.NoError(t, err)
	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", legacy)

	roundTrip, err := DecodeCashAddr(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr.Hash, roundTrip.Hash)

	_, err = FromPubKey(pubKey[:32], &netparams.MainNetParams)
	assert.Error(t, err)
}

func TestLockingScript(t *testing.T) {
	addr, err := DecodeCashAddr(demoCashAddr)
	require.NoError(t, err)

	lockScript, err := addr.LockingScript()
	require.NoError(t, err)

	require.Len(t, lockScript, 25)
	assert.Equal(t, []byte{0x76, 0xa9, 0x14}, lockScript[:3])
	assert.Equal(t, addr.Hash[:], lockScript[3:23])
	assert.Equal(t, []byte{0x88, 0xac}, lockScript[23:])

	addr.Kind = P2SH
	_, err = addr.LockingScript()
	assert.Error(t, err)
}
