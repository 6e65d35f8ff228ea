package roles

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/tx"
)

// Extractor produces the broadcast-ready transaction bytes.
//
// The Extractor role:
//   - Refuses to serialize anything but a fully signed transaction
//   - Emits the final wire encoding
//   - Derives the transaction ID that explorers will display
type Extractor struct {
	txn *tx.Transaction
}

// NewExtractor creates an Extractor for the transaction.
func NewExtractor(txn *tx.Transaction) *Extractor {
	return &Extractor{txn: txn}
}

// Extract serializes the signed transaction and moves it to the
// serialized state.
func (e *Extractor) Extract() ([]byte, error) {
	if e.txn.State != tx.StateSigned {
		return nil, &tx.ExtractError{
			Code:    tx.ErrNotSigned,
			Message: "transaction must be signed before extraction",
			State:   e.txn.State,
		}
	}
	if len(e.txn.Input.ScriptSig) == 0 {
		return nil, &tx.ExtractError{
			Code:    tx.ErrNotSigned,
			Message: "signed transaction has no unlocking script",
			State:   e.txn.State,
		}
	}

	raw, err := tx.Serialize(e.txn)
	if err != nil {
		return nil, err
	}

	e.txn.State = tx.StateSerialized
	return raw, nil
}

// TransactionID returns the display-order transaction ID. Available once
// the transaction is signed; the ID is the double SHA-256 of the final
// bytes, so before that it would not be stable.
func (e *Extractor) TransactionID() (chainhash.Hash, error) {
	if e.txn.State == tx.StateUnsigned {
		return chainhash.Hash{}, &tx.ExtractError{
			Code:    tx.ErrNotSigned,
			Message: "transaction ID requires a signed transaction",
			State:   e.txn.State,
		}
	}

	raw, err := tx.Serialize(e.txn)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return crypto.TransactionID(raw), nil
}
