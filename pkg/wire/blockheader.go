package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/cashtx/pkg/crypto"
)

const (
	// BlockHeaderSize is the serialized size of a block header.
	BlockHeaderSize = 80

	// BlockVersion is the version-bits base version for new blocks.
	BlockVersion int32 = 1 << 5
)

// maxTarget is the largest value the 224-bit target space can hold.
// Difficulty is expressed relative to it.
var maxTarget = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 224), big.NewInt(1))

// BlockHeader is the 80-byte block header. Hash fields are held in wire
// order; chainhash reverses them for display.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Serialize emits the 80-byte header.
func (h *BlockHeader) Serialize() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderSize))
	binary.Write(buf, binary.LittleEndian, h.Version)
	buf.Write(h.PrevBlock[:])
	buf.Write(h.MerkleRoot[:])
	binary.Write(buf, binary.LittleEndian, h.Timestamp)
	binary.Write(buf, binary.LittleEndian, h.Bits)
	binary.Write(buf, binary.LittleEndian, h.Nonce)
	return buf.Bytes(), nil
}

// ParseBlockHeader parses exactly one 80-byte header.
func ParseBlockHeader(data []byte) (*BlockHeader, error) {
	if len(data) != BlockHeaderSize {
		return nil, fmt.Errorf("block header is %d bytes, want %d", len(data), BlockHeaderSize)
	}

	h := &BlockHeader{
		Version:   int32(binary.LittleEndian.Uint32(data[0:4])),
		Timestamp: binary.LittleEndian.Uint32(data[68:72]),
		Bits:      binary.LittleEndian.Uint32(data[72:76]),
		Nonce:     binary.LittleEndian.Uint32(data[76:80]),
	}
	copy(h.PrevBlock[:], data[4:36])
	copy(h.MerkleRoot[:], data[36:68])
	return h, nil
}

// BlockHash returns the header's double SHA-256 hash, the block ID.
func (h *BlockHeader) BlockHash() (chainhash.Hash, error) {
	serialized, err := h.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.DoubleHashH(serialized), nil
}

// CompactToTarget expands the compact "bits" representation: the high
// byte is a base-256 exponent, the low 23 bits are the mantissa, and
// bit 23 carries the sign.
func CompactToTarget(bits uint32) *big.Int {
	mantissa := int64(bits & 0x007fffff)
	exponent := uint(bits >> 24 & 0xff)

	target := big.NewInt(mantissa)
	if exponent <= 3 {
		target.Rsh(target, 8*(3-exponent))
	} else {
		target.Lsh(target, 8*(exponent-3))
	}

	if bits&0x00800000 != 0 {
		target.Neg(target)
	}
	return target
}

// Target returns the proof-of-work target this header claims to meet.
func (h *BlockHeader) Target() *big.Int {
	return CompactToTarget(h.Bits)
}

// Difficulty expresses the target as a fraction of the maximum target.
// Values approach 1 for the easiest blocks and 0 as work increases.
func (h *BlockHeader) Difficulty() float64 {
	difficulty, _ := new(big.Float).Quo(
		new(big.Float).SetInt(h.Target()),
		new(big.Float).SetInt(maxTarget),
	).Float64()
	return difficulty
}

// CheckProofOfWork reports whether the block hash, read as a
// little-endian integer, meets the claimed target.
func (h *BlockHeader) CheckProofOfWork() (bool, error) {
	serialized, err := h.Serialize()
	if err != nil {
		return false, err
	}

	digest := crypto.Sha256d(serialized)
	for i, j := 0, len(digest)-1; i < j; i, j = i+1, j-1 {
		digest[i], digest[j] = digest[j], digest[i]
	}

	hashValue := new(big.Int).SetBytes(digest[:])
	return hashValue.Cmp(h.Target()) <= 0, nil
}
