// Package crypto implements the hashing and secp256k1 signing primitives
// behind transaction construction.
//
// This file computes BIP-143 style signature hashes with fork ID replay
// protection. The preimage layout, in order:
//
//	 1. version (4, LE)
//	 2. double SHA-256 of all outpoints being signed
//	 3. double SHA-256 of all input sequence numbers
//	 4. the outpoint being signed (txid || index), verbatim
//	 5. length-prefixed locking script of the spent output
//	 6. value of the spent output (8, LE)
//	 7. sequence of the input being signed (4, LE)
//	 8. double SHA-256 of all serialized outputs
//	 9. locktime (4, LE)
//	10. sighash type, zero-extended to 4 bytes (LE)
//
// Any deviation in field order, width, or endianness produces a digest
// no validator will accept a signature over.
//
// References:
//   - https://github.com/bitcoincashorg/bitcoincash.org/blob/master/spec/replay-protected-sighash.md
//   - https://github.com/bitcoin/bips/blob/master/bip-0143.mediawiki
package crypto

import (
	"bytes"
	"encoding/binary"

	"github.com/suffix-labs/cashtx/pkg/tx"
)

// SighashPreimage builds the exact byte sequence that is double hashed
// and signed to authorize spending the transaction's input.
//
// With one input, the aggregate digests in steps 2 and 3 reduce to the
// double hashes of that input's outpoint and sequence. The unlocking
// script never enters the preimage, so the result is well defined while
// the transaction is still unsigned.
func SighashPreimage(txn *tx.Transaction, sighashType uint8) ([]byte, error) {
	if len(txn.Input.ScriptPubKey) == 0 {
		return nil, &tx.SignError{
			Code:    tx.ErrInvalidInput,
			Message: "input carries no locking script to sign against",
		}
	}

	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, txn.Version)

	prevouts := hashPrevouts(&txn.Input)
	buf.Write(prevouts[:])

	sequences := hashSequences(&txn.Input)
	buf.Write(sequences[:])

	buf.Write(txn.Input.PrevoutTxID[:])
	binary.Write(&buf, binary.LittleEndian, txn.Input.PrevoutIndex)

	tx.WriteCompactSize(&buf, uint64(len(txn.Input.ScriptPubKey)))
	buf.Write(txn.Input.ScriptPubKey)

	binary.Write(&buf, binary.LittleEndian, txn.Input.Value)
	binary.Write(&buf, binary.LittleEndian, txn.Input.Sequence)

	outputs := hashOutputs(&txn.Output)
	buf.Write(outputs[:])

	binary.Write(&buf, binary.LittleEndian, txn.LockTime)
	binary.Write(&buf, binary.LittleEndian, uint32(sighashType))

	return buf.Bytes(), nil
}

// GetSignatureHash computes the 32-byte digest handed to the signer: the
// double SHA-256 of the preimage. The single-round hash is never signed.
func GetSignatureHash(txn *tx.Transaction, sighashType uint8) ([32]byte, error) {
	preimage, err := SighashPreimage(txn, sighashType)
	if err != nil {
		return [32]byte{}, err
	}
	return Sha256d(preimage), nil
}

// hashPrevouts double hashes the concatenated outpoints (txid || index)
// of the inputs being signed.
func hashPrevouts(in *tx.TxInput) [32]byte {
	var buf bytes.Buffer
	buf.Write(in.PrevoutTxID[:])
	binary.Write(&buf, binary.LittleEndian, in.PrevoutIndex)
	return Sha256d(buf.Bytes())
}

// hashSequences double hashes the concatenated input sequence numbers.
func hashSequences(in *tx.TxInput) [32]byte {
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	return Sha256d(seq[:])
}

// hashOutputs double hashes the concatenated serialized outputs, each as
// value(8,LE) || length-prefixed locking script.
func hashOutputs(out *tx.TxOutput) [32]byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, out.Value)
	tx.WriteCompactSize(&buf, uint64(len(out.ScriptPubKey)))
	buf.Write(out.ScriptPubKey)
	return Sha256d(buf.Bytes())
}
