package tx

import (
	"bytes"
	"encoding/binary"
)

// Serialize encodes a transaction in the legacy wire format:
//
//	version(4,LE) || input count || inputs || output count || outputs || locktime(4,LE)
//
// Each input is outpoint txid(32) || outpoint index(4,LE) || scriptSig
// length || scriptSig || sequence(4,LE); each output is value(8,LE) ||
// scriptPubKey length || scriptPubKey. Counts and script lengths use
// compact size encoding.
//
// The input's Value and ScriptPubKey fields are signing context only and
// do not appear in the encoding.
func Serialize(t *Transaction) ([]byte, error) {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, t.Version)

	WriteCompactSize(&buf, 1)
	writeInput(&buf, &t.Input)

	WriteCompactSize(&buf, 1)
	writeOutput(&buf, &t.Output)

	binary.Write(&buf, binary.LittleEndian, t.LockTime)

	return buf.Bytes(), nil
}

// writeInput encodes a single input.
func writeInput(buf *bytes.Buffer, in *TxInput) {
	buf.Write(in.PrevoutTxID[:])
	binary.Write(buf, binary.LittleEndian, in.PrevoutIndex)

	WriteCompactSize(buf, uint64(len(in.ScriptSig)))
	buf.Write(in.ScriptSig)

	binary.Write(buf, binary.LittleEndian, in.Sequence)
}

// writeOutput encodes a single output.
func writeOutput(buf *bytes.Buffer, out *TxOutput) {
	binary.Write(buf, binary.LittleEndian, out.Value)

	WriteCompactSize(buf, uint64(len(out.ScriptPubKey)))
	buf.Write(out.ScriptPubKey)
}

// WriteCompactSize writes a Bitcoin-style variable-length integer.
// Values below 0xFD are one byte; larger values get a marker byte
// followed by a fixed-width little-endian value. The counts this module
// produces always fit the single-byte form, but the full encoding is
// emitted so larger values can never be written incorrectly.
func WriteCompactSize(buf *bytes.Buffer, n uint64) {
	switch {
	case n < 0xFD:
		buf.WriteByte(byte(n))
	case n <= 0xFFFF:
		buf.WriteByte(0xFD)
		binary.Write(buf, binary.LittleEndian, uint16(n))
	case n <= 0xFFFFFFFF:
		buf.WriteByte(0xFE)
		binary.Write(buf, binary.LittleEndian, uint32(n))
	default:
		buf.WriteByte(0xFF)
		binary.Write(buf, binary.LittleEndian, n)
	}
}
