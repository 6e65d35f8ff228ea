package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ParsedTx is a raw transaction decoded back into structured form.
// Unlike Transaction it carries arbitrary input and output counts, so
// any well-formed legacy transaction can be inspected, not only the
// single-input shape this module builds.
type ParsedTx struct {
	Version  int32
	Inputs   []ParsedTxIn
	Outputs  []ParsedTxOut
	LockTime uint32
}

// ParsedTxIn is one decoded input.
type ParsedTxIn struct {
	PrevoutTxID  chainhash.Hash
	PrevoutIndex uint32
	ScriptSig    []byte
	Sequence     uint32
}

// ParsedTxOut is one decoded output.
type ParsedTxOut struct {
	Value        uint64
	ScriptPubKey []byte
}

// Parse decodes raw legacy transaction bytes.
func Parse(data []byte) (*ParsedTx, error) {
	r := bytes.NewReader(data)
	t := &ParsedTx{}

	if err := binary.Read(r, binary.LittleEndian, &t.Version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}

	numInputs, err := ReadCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("reading input count: %w", err)
	}
	if numInputs > uint64(r.Len()) {
		return nil, fmt.Errorf("input count %d exceeds remaining data", numInputs)
	}
	t.Inputs = make([]ParsedTxIn, numInputs)
	for i := uint64(0); i < numInputs; i++ {
		if err := parseInput(r, &t.Inputs[i]); err != nil {
			return nil, fmt.Errorf("parsing input %d: %w", i, err)
		}
	}

	numOutputs, err := ReadCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("reading output count: %w", err)
	}
	if numOutputs > uint64(r.Len()) {
		return nil, fmt.Errorf("output count %d exceeds remaining data", numOutputs)
	}
	t.Outputs = make([]ParsedTxOut, numOutputs)
	for i := uint64(0); i < numOutputs; i++ {
		if err := parseOutput(r, &t.Outputs[i]); err != nil {
			return nil, fmt.Errorf("parsing output %d: %w", i, err)
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &t.LockTime); err != nil {
		return nil, fmt.Errorf("reading lock time: %w", err)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction", r.Len())
	}

	return t, nil
}

// parseInput reads a single input.
func parseInput(r *bytes.Reader, in *ParsedTxIn) error {
	if _, err := io.ReadFull(r, in.PrevoutTxID[:]); err != nil {
		return fmt.Errorf("reading prevout txid: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &in.PrevoutIndex); err != nil {
		return fmt.Errorf("reading prevout index: %w", err)
	}

	scriptLen, err := ReadCompactSize(r)
	if err != nil {
		return fmt.Errorf("reading scriptSig length: %w", err)
	}
	if scriptLen > uint64(r.Len()) {
		return fmt.Errorf("scriptSig length %d exceeds remaining data", scriptLen)
	}
	in.ScriptSig = make([]byte, scriptLen)
	if _, err := io.ReadFull(r, in.ScriptSig); err != nil {
		return fmt.Errorf("reading scriptSig: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &in.Sequence); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	return nil
}

// parseOutput reads a single output.
func parseOutput(r *bytes.Reader, out *ParsedTxOut) error {
	if err := binary.Read(r, binary.LittleEndian, &out.Value); err != nil {
		return fmt.Errorf("reading value: %w", err)
	}

	scriptLen, err := ReadCompactSize(r)
	if err != nil {
		return fmt.Errorf("reading scriptPubKey length: %w", err)
	}
	if scriptLen > uint64(r.Len()) {
		return fmt.Errorf("scriptPubKey length %d exceeds remaining data", scriptLen)
	}
	out.ScriptPubKey = make([]byte, scriptLen)
	if _, err := io.ReadFull(r, out.ScriptPubKey); err != nil {
		return fmt.Errorf("reading scriptPubKey: %w", err)
	}

	return nil
}

// ReadCompactSize reads a Bitcoin-style variable-length integer.
func ReadCompactSize(r io.Reader) (uint64, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return 0, err
	}

	switch first[0] {
	case 253:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 254:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 255:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return v, nil
	default:
		return uint64(first[0]), nil
	}
}
