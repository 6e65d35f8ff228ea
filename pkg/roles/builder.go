// Package roles implements payment construction as distinct responsibilities:
//   - Builder: assembles the unsigned transaction from prevout and recipient
//   - Signer: computes the replay-protected digest and attaches the signature
//   - Extractor: produces the final transaction bytes and the transaction ID
//
// The split keeps key handling apart from assembly. The Builder never
// sees a private key, and the Signer accepts any DigestSigner, so the
// raw signing operation can live in an HSM or a remote service.
package roles

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/cashtx/pkg/address"
	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/netparams"
	"github.com/suffix-labs/cashtx/pkg/script"
	"github.com/suffix-labs/cashtx/pkg/tx"
)

// Builder assembles a single-input, single-output payment.
//
// The Builder role:
//   - Parses and validates the recipient address
//   - Derives the locking script of the spent output from the sender's
//     public key, so the caller only supplies the outpoint and value
//   - Produces an unsigned Transaction for the Signer role
type Builder struct {
	params   *netparams.Params
	lockTime uint32
	input    *tx.TxInput
	output   *tx.TxOutput
}

// NewBuilder creates a Builder for the given network.
func NewBuilder(params *netparams.Params) *Builder {
	return &Builder{params: params}
}

// WithLockTime sets the transaction nLockTime. Zero, the default,
// disables the lock.
func (b *Builder) WithLockTime(lockTime uint32) *Builder {
	b.lockTime = lockTime
	return b
}

// AddInput sets the output being spent.
//
// prevTxID is the funding transaction ID in display order (as block
// explorers print it). prevValue is the exact value of the spent output;
// it is committed to by the signature digest, so a wrong value produces
// a transaction the network rejects. senderPubKey is the serialized
// public key controlling the output; the locking script is derived from
// its hash.
func (b *Builder) AddInput(prevTxID string, prevIndex uint32, prevValue uint64, senderPubKey []byte) error {
	if b.input != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidInput,
			Message: "input already set",
		}
	}

	// NewHashFromStr left-pads short hex strings, so the length has to
	// be checked here.
	if len(prevTxID) != chainhash.MaxHashStringSize {
		return &tx.BuildError{
			Code:    tx.ErrInvalidInput,
			Message: fmt.Sprintf("previous transaction id must be %d hex characters, got %d", chainhash.MaxHashStringSize, len(prevTxID)),
		}
	}
	hash, err := chainhash.NewHashFromStr(prevTxID)
	if err != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidInput,
			Message: fmt.Sprintf("invalid previous transaction id %q", prevTxID),
			Cause:   err,
		}
	}

	pubKey, err := crypto.ParsePublicKey(senderPubKey)
	if err != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidInput,
			Message: "invalid sender public key",
			Cause:   err,
		}
	}

	pubKeyHash := pubKey.Hash160()
	lockScript, err := script.PayToPubKeyHash(pubKeyHash[:])
	if err != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidInput,
			Message: "deriving previous locking script",
			Cause:   err,
		}
	}

	b.input = &tx.TxInput{
		PrevoutTxID:  *hash,
		PrevoutIndex: prevIndex,
		Value:        prevValue,
		ScriptPubKey: lockScript,
		Sequence:     tx.DefaultSequence,
	}
	return nil
}

// AddOutput sets the payment destination and amount.
func (b *Builder) AddOutput(recipient string, amount uint64) error {
	if b.output != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidAddress,
			Message: "output already set",
		}
	}
	if amount == 0 {
		return &tx.BuildError{
			Code:    tx.ErrInvalidAmount,
			Message: "amount must be positive",
		}
	}

	addr, err := address.Decode(recipient)
	if err != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidAddress,
			Message: fmt.Sprintf("invalid recipient address %q", recipient),
			Cause:   err,
		}
	}
	if addr.Prefix != b.params.CashAddrPrefix {
		return &tx.BuildError{
			Code:    tx.ErrInvalidAddress,
			Message: fmt.Sprintf("address is for network %q, building for %q", addr.Prefix, b.params.CashAddrPrefix),
		}
	}

	lockScript, err := addr.LockingScript()
	if err != nil {
		return &tx.BuildError{
			Code:    tx.ErrInvalidAddress,
			Message: "building recipient locking script",
			Cause:   err,
		}
	}

	b.output = &tx.TxOutput{
		Value:        amount,
		ScriptPubKey: lockScript,
	}
	return nil
}

// Build validates the assembled payment and returns the unsigned
// transaction. The difference between the input and output values is
// left as the miner fee.
func (b *Builder) Build() (*tx.Transaction, error) {
	if b.input == nil {
		return nil, &tx.BuildError{
			Code:    tx.ErrInvalidInput,
			Message: "no input added",
		}
	}
	if b.output == nil {
		return nil, &tx.BuildError{
			Code:    tx.ErrInvalidAddress,
			Message: "no recipient added",
		}
	}
	if b.output.Value > b.input.Value {
		return nil, &tx.BuildError{
			Code:    tx.ErrInvalidAmount,
			Message: fmt.Sprintf("amount %d exceeds previous output value %d", b.output.Value, b.input.Value),
		}
	}

	return &tx.Transaction{
		Version:  tx.TxVersion,
		Input:    *b.input,
		Output:   *b.output,
		LockTime: b.lockTime,
		State:    tx.StateUnsigned,
	}, nil
}
