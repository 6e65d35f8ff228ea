// Package script assembles the locking and unlocking scripts for
// pay-to-public-key-hash (P2PKH) outputs.
//
// Script formats:
//   - Locking script (scriptPubKey): OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
//   - Unlocking script (scriptSig):  <sig || sighash type> <public key>
//
// Data elements are encoded as simple pushes: one length byte followed by
// the bytes, which caps each element at 255 bytes. The OP_PUSHDATA
// variants needed for anything larger never occur in these scripts.
//
// Scripts are assembled, never interpreted; execution belongs to the
// network's validators.
package script

import (
	"bytes"
	"fmt"
)

// Opcodes appearing in P2PKH scripts.
const (
	OpDup         = 0x76 // Duplicate the top stack element
	OpHash160     = 0xA9 // RIPEMD160(SHA256(top))
	OpEqualVerify = 0x88 // Fail unless the top two elements are equal
	OpCheckSig    = 0xAC // Verify a signature against a public key
)

// PubKeyHashLen is the length of the hash a P2PKH script commits to.
const PubKeyHashLen = 20

// LockingScriptLen is the exact length of a P2PKH locking script.
const LockingScriptLen = 25

// ErrMalformedScript is the error code for operands that cannot be
// encoded: wrong hash length, or a push exceeding one length byte.
const ErrMalformedScript = "MALFORMED_SCRIPT"

// Error indicates a script could not be assembled from its operands.
type Error struct {
	Code    string // Machine-readable error code
	Message string // Human-readable description
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// PayToPubKeyHash builds the canonical 25-byte P2PKH locking script for a
// 20-byte public key hash.
func PayToPubKeyHash(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != PubKeyHashLen {
		return nil, &Error{
			Code:    ErrMalformedScript,
			Message: fmt.Sprintf("public key hash must be %d bytes, got %d", PubKeyHashLen, len(pubKeyHash)),
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, LockingScriptLen))
	buf.WriteByte(OpDup)
	buf.WriteByte(OpHash160)
	if err := push(buf, pubKeyHash); err != nil {
		return nil, err
	}
	buf.WriteByte(OpEqualVerify)
	buf.WriteByte(OpCheckSig)

	return buf.Bytes(), nil
}

// SigScript builds the unlocking script that spends a P2PKH output: the
// DER signature with the sighash type byte appended, then the public key,
// each as a single pushed element.
func SigScript(signature []byte, sighashType uint8, pubKey []byte) ([]byte, error) {
	sig := make([]byte, 0, len(signature)+1)
	sig = append(sig, signature...)
	sig = append(sig, sighashType)

	var buf bytes.Buffer
	if err := push(&buf, sig); err != nil {
		return nil, err
	}
	if err := push(&buf, pubKey); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// push appends one data push: a single length byte followed by the data.
// All length-prefixed elements in this package go through here so the
// 255-byte encoding limit is enforced in exactly one place.
func push(buf *bytes.Buffer, data []byte) error {
	if len(data) > 255 {
		return &Error{
			Code:    ErrMalformedScript,
			Message: fmt.Sprintf("push of %d bytes exceeds single-byte length encoding", len(data)),
		}
	}
	buf.WriteByte(byte(len(data)))
	buf.Write(data)
	return nil
}
