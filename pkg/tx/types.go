// Package tx defines the transaction model and its wire codec.
//
// The model is deliberately narrow: exactly one P2PKH input funding
// exactly one P2PKH output. A transaction moves through three states,
// in one direction only:
//
//	Unsigned -> Signed -> Serialized
//
// The roles package drives those transitions; this package owns the data
// and the byte layout.
//
// References:
//   - https://en.bitcoin.it/wiki/Transaction
//   - https://github.com/bitcoincashorg/bitcoincash.org/blob/master/spec/replay-protected-sighash.md
package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// TxVersion is the transaction format version this module emits.
	TxVersion int32 = 1

	// DefaultSequence marks the input non-final so the locktime field
	// stays meaningful.
	DefaultSequence uint32 = 0xFFFFFFFE
)

// Signature hash type values. The fork ID flag is the replay protection:
// it is set in the type byte and hashed into every digest, so signatures
// are invalid on chains that do not define the flag.
const (
	SighashAll          uint8 = 0x01 // Commit to all outputs
	SighashNone         uint8 = 0x02 // Commit to no outputs
	SighashSingle       uint8 = 0x03 // Commit to the output at the input's index
	SighashForkID       uint8 = 0x40 // Replay protection flag
	SighashAnyoneCanPay uint8 = 0x80 // Commit to this input only

	// SighashAllForkID is the only combination this module signs with.
	SighashAllForkID = SighashAll | SighashForkID
)

// State is a transaction's position in its lifecycle.
type State uint8

const (
	StateUnsigned   State = iota // Unlocking script still empty
	StateSigned                  // Unlocking script installed
	StateSerialized              // Wire bytes emitted; terminal
)

func (s State) String() string {
	switch s {
	case StateUnsigned:
		return "unsigned"
	case StateSigned:
		return "signed"
	case StateSerialized:
		return "serialized"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// TxInput is the sole input of a payment: the outpoint it spends, the
// context needed to sign it, and the unlocking script signing installs.
type TxInput struct {
	// PrevoutTxID identifies the funding transaction. Held in wire
	// order, the byte reversal of the displayed hex form.
	PrevoutTxID chainhash.Hash

	// PrevoutIndex selects which output of the funding transaction is
	// being spent.
	PrevoutIndex uint32

	// Value is the amount of the spent output in satoshis. It is hashed
	// into the signature digest but never serialized with the
	// transaction itself.
	Value uint64

	// ScriptPubKey is the locking script of the spent output. Like
	// Value, it exists only for digest computation.
	ScriptPubKey []byte

	// ScriptSig is the unlocking script. Empty until signing populates
	// it, exactly once.
	ScriptSig []byte

	// Sequence number. The builder fixes this at DefaultSequence.
	Sequence uint32
}

// TxOutput is the sole output of a payment.
type TxOutput struct {
	Value        uint64 // Amount in satoshis
	ScriptPubKey []byte // P2PKH locking script of the recipient
}

// Transaction is a single-input, single-output payment.
type Transaction struct {
	Version  int32    // Serialization format version
	Input    TxInput  // Spent outpoint and its signing context
	Output   TxOutput // Paid recipient
	LockTime uint32   // Earliest block height or time for inclusion
	State    State    // Lifecycle position
}
