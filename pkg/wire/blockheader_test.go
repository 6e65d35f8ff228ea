package wire

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Block 1 of the original chain, the first block after genesis.
const block1HeaderHex = "01000000" +
	"6fe28c0ab6f1b372c1a6a246ae63f74f931e8365e15a089c68d6190000000000" +
	"982051fd1e4ba744bbbe680e1fee14677ba1a3c3540bf7b1cdb606e857233e0e" +
	"61bc6649" +
	"ffff001d" +
	"01e36299"

func parseBlock1(t *testing.T) *BlockHeader {
	t.Helper()
	raw, err := hex.DecodeString(block1HeaderHex)
	require.NoError(t, err)
	require.Len(t, raw, BlockHeaderSize)

	h, err := ParseBlockHeader(raw)
	require.NoError(t, err)
	return h
}

func TestParseBlockHeader(t *testing.T) {
	h := parseBlock1(t)

	assert.Equal(t, int32(1), h.Version)
	assert.Equal(t,
		"000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		h.PrevBlock.String(), "previous block is genesis")
	assert.Equal(t,
		"0e3e2357e806b6cdb1f70b54c3a3a17b6714ee1f0e68bebb44a74b1efd512098",
		h.MerkleRoot.String())
	assert.Equal(t, uint32(1231469665), h.Timestamp)
	assert.Equal(t, uint32(0x1d00ffff), h.Bits)
	assert.Equal(t, uint32(2573394689), h.Nonce)
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	h := parseBlock1(t)

	raw, err := h.Serialize()
	require.NoError(t, err)
	assert.Equal(t, block1HeaderHex, hex.EncodeToString(raw))
}

func TestBlockHash(t *testing.T) {
	h := parseBlock1(t)

	hash, err := h.BlockHash()
	require.NoError(t, err)
	assert.Equal(t,
		"00000000839a8e6886ab5951d76f411475428afc90947ee320161bbf18eb6048",
		hash.String())
}

func TestBlockTarget(t *testing.T) {
	h := parseBlock1(t)

	// 0x1d00ffff expands to 0xffff shifted up 208 bits.
	want := "ffff" + strings.Repeat("0", 52)
	assert.Equal(t, want, h.Target().Text(16))
}

func TestCheckProofOfWork(t *testing.T) {
	h := parseBlock1(t)

	ok, err := h.CheckProofOfWork()
	require.NoError(t, err)
	assert.True(t, ok, "block 1 meets its target")

	// Any other nonce hashes far above the target.
	h.Nonce++
	ok, err = h.CheckProofOfWork()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDifficulty(t *testing.T) {
	h := parseBlock1(t)

	// Target over maximum target: 0xffff << 208 against 2^224 - 1,
	// which is 1 - 2^-16.
	assert.InDelta(t, 0.9999847412109375, h.Difficulty(), 1e-12)
}

func TestCompactToTarget(t *testing.T) {
	cases := []struct {
		bits uint32
		want string
	}{
		{0x01003456, "0"},
		{0x02003456, "34"},
		{0x03003456, "3456"},
		{0x04003456, "345600"},
		{0x01123456, "12"},
		{0x04923456, "-12345600"},
		{0x1d00ffff, "ffff" + strings.Repeat("0", 52)},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CompactToTarget(tc.bits).Text(16), "bits %08x", tc.bits)
	}
}

func TestParseBlockHeaderWrongSize(t *testing.T) {
	for _, size := range []int{0, 79, 81} {
		_, err := ParseBlockHeader(make([]byte, size))
		assert.Error(t, err, "size %d", size)
	}
}
