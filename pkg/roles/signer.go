package roles

import (
	"bytes"

	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/script"
	"github.com/suffix-labs/cashtx/pkg/tx"
)

// DigestSigner signs 32-byte digests. crypto.PrivateKey satisfies it;
// so can a wrapper around an external key holder.
type DigestSigner interface {
	// Sign returns a DER-encoded ECDSA signature over the digest.
	Sign(digest [32]byte) ([]byte, error)
	// PublicKeyBytes returns the serialized public key, in the form
	// whose hash the spent output commits to.
	PublicKeyBytes() []byte
}

// Signer attaches the input signature to an unsigned transaction.
//
// The Signer role:
//   - Computes the replay-protected signature digest for the input
//   - Checks that the signing key actually controls the spent output
//   - Assembles the unlocking script and moves the transaction to the
//     signed state
//
// All signatures commit to the whole transaction and to the fork ID, so
// the sighash type is fixed at SIGHASH_ALL | SIGHASH_FORKID.
type Signer struct {
	txn         *tx.Transaction
	sighashType uint8
}

// NewSigner creates a Signer for the transaction.
func NewSigner(txn *tx.Transaction) *Signer {
	return &Signer{txn: txn, sighashType: tx.SighashAllForkID}
}

// Digest returns the 32-byte digest an external signer must sign. The
// transaction must not be signed yet.
func (s *Signer) Digest() ([32]byte, error) {
	if s.txn.State != tx.StateUnsigned {
		return [32]byte{}, &tx.SignError{
			Code:    tx.ErrAlreadySigned,
			Message: "transaction input is already signed",
		}
	}
	return crypto.GetSignatureHash(s.txn, s.sighashType)
}

// Sign computes the input digest, obtains a signature from the signer,
// and attaches the unlocking script.
func (s *Signer) Sign(signer DigestSigner) error {
	digest, err := s.Digest()
	if err != nil {
		return err
	}

	signature, err := signer.Sign(digest)
	if err != nil {
		return &tx.SignError{
			Code:    tx.ErrInvalidInput,
			Message: "signing digest",
			Cause:   err,
		}
	}

	return s.Apply(signature, signer.PublicKeyBytes())
}

// Apply attaches an externally produced signature. The signature must be
// DER-encoded without a trailing sighash type byte; Apply appends the
// type itself.
func (s *Signer) Apply(signature, pubKey []byte) error {
	if s.txn.State != tx.StateUnsigned {
		return &tx.SignError{
			Code:    tx.ErrAlreadySigned,
			Message: "transaction input is already signed",
		}
	}
	if err := s.checkOwnership(pubKey); err != nil {
		return err
	}

	sigScript, err := script.SigScript(signature, s.sighashType, pubKey)
	if err != nil {
		return err
	}

	s.txn.Input.ScriptSig = sigScript
	s.txn.State = tx.StateSigned
	return nil
}

// checkOwnership verifies that the public key hashes to the value the
// spent output's locking script commits to. Signing with the wrong key
// would otherwise only fail at broadcast time.
func (s *Signer) checkOwnership(pubKey []byte) error {
	lockScript := s.txn.Input.ScriptPubKey
	if len(lockScript) != script.LockingScriptLen {
		return &tx.SignError{
			Code:    tx.ErrInvalidInput,
			Message: "previous output script is not P2PKH",
		}
	}

	hash := crypto.Hash160(pubKey)
	if !bytes.Equal(lockScript[3:23], hash[:]) {
		return &tx.SignError{
			Code:    tx.ErrInvalidInput,
			Message: "signing key does not control the previous output",
		}
	}
	return nil
}
