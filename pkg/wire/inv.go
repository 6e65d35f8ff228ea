package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// InvType classifies what an inventory vector refers to.
type InvType uint32

const (
	// InvTypeError marks a vector whose object was not found. Peers
	// never request it, so serializing it is an error.
	InvTypeError InvType = 0
	// InvTypeTx announces a transaction.
	InvTypeTx InvType = 1
	// InvTypeBlock announces a block.
	InvTypeBlock InvType = 2
	// InvTypeFilteredBlock requests a Merkle-filtered block.
	InvTypeFilteredBlock InvType = 3
	// InvTypeCompactBlock requests a compact block.
	InvTypeCompactBlock InvType = 4
)

func (t InvType) String() string {
	switch t {
	case InvTypeError:
		return "error"
	case InvTypeTx:
		return "tx"
	case InvTypeBlock:
		return "block"
	case InvTypeFilteredBlock:
		return "filtered-block"
	case InvTypeCompactBlock:
		return "compact-block"
	default:
		return fmt.Sprintf("inv-type(%d)", uint32(t))
	}
}

// InvVectSize is the serialized size of one inventory vector:
// type (4, LE) || hash (32, wire order).
const InvVectSize = 36

// InvVect names one object being announced or requested.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVectTx builds the vector announcing a transaction.
func NewInvVectTx(txid chainhash.Hash) *InvVect {
	return &InvVect{Type: InvTypeTx, Hash: txid}
}

// Serialize emits the 36-byte vector.
func (iv *InvVect) Serialize() ([]byte, error) {
	if iv.Type == InvTypeError {
		return nil, errors.New("cannot serialize the error inventory type")
	}

	buf := bytes.NewBuffer(make([]byte, 0, InvVectSize))
	binary.Write(buf, binary.LittleEndian, uint32(iv.Type))
	buf.Write(iv.Hash[:])
	return buf.Bytes(), nil
}

// ParseInvVect parses exactly one inventory vector.
func ParseInvVect(data []byte) (*InvVect, error) {
	if len(data) != InvVectSize {
		return nil, fmt.Errorf("inventory vector is %d bytes, want %d", len(data), InvVectSize)
	}

	iv := &InvVect{Type: InvType(binary.LittleEndian.Uint32(data[0:4]))}
	copy(iv.Hash[:], data[4:])
	return iv, nil
}

// InvPayload builds the payload of an "inv" message: a compact count
// followed by the vectors.
func InvPayload(vectors ...*InvVect) ([]byte, error) {
	buf := &bytes.Buffer{}
	writeCompactSize(buf, uint64(len(vectors)))

	for i, iv := range vectors {
		serialized, err := iv.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serializing inventory vector %d: %w", i, err)
		}
		buf.Write(serialized)
	}
	return buf.Bytes(), nil
}

// ParseInvPayload parses an "inv" message payload.
func ParseInvPayload(data []byte) ([]*InvVect, error) {
	r := bytes.NewReader(data)

	count, err := readCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("reading inventory count: %w", err)
	}
	if count > uint64(r.Len()/InvVectSize) {
		return nil, fmt.Errorf("inventory count %d exceeds remaining data", count)
	}

	vectors := make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		entry := make([]byte, InvVectSize)
		if _, err := io.ReadFull(r, entry); err != nil {
			return nil, fmt.Errorf("reading inventory vector %d: %w", i, err)
		}

		iv, err := ParseInvVect(entry)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, iv)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after inventory payload", r.Len())
	}
	return vectors, nil
}
