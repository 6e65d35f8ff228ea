// Package api provides the high-level public API for building, signing,
// and announcing payments.
//
// This is the main entry point for applications using the cashtx
// library. It wraps the role pipeline and the wire codec into a small
// set of functions:
//
//  1. BuildPayment - Assembles an unsigned payment from a proposal
//  2. GetDigest - Computes the signature digest for external signing
//  3. SignPayment - Signs with a WIF-encoded private key
//  4. AppendSignature - Attaches an externally produced signature
//  5. ExtractTransaction - Produces final bytes and the transaction ID
//  6. CreatePayment - Build, sign, and extract in one call
//  7. FrameMessage - Wraps a payload in a network frame
//  8. AnnounceTransaction - Builds the handshake and announcement frames
//  9. ParsePaymentURI / ParseTransaction - Decoding helpers
package api

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/cashtx/pkg/bip21"
	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/netparams"
	"github.com/suffix-labs/cashtx/pkg/roles"
	"github.com/suffix-labs/cashtx/pkg/tx"
	"github.com/suffix-labs/cashtx/pkg/wire"
)

// PaymentProposal describes a payment spending one previous output.
type PaymentProposal struct {
	PrevTxID     string // Funding transaction ID, display order
	PrevIndex    uint32 // Index of the spent output
	PrevValue    uint64 // Exact value of the spent output, satoshis
	SenderPubKey []byte // Serialized public key controlling the output
	Recipient    string // CashAddr or legacy address
	Amount       uint64 // Payment value, satoshis
	LockTime     uint32 // nLockTime, zero disables
	Network      string // Network name, "mainnet" when empty
}

func (p *PaymentProposal) params() (*netparams.Params, error) {
	name := p.Network
	if name == "" {
		name = "mainnet"
	}
	return netparams.ForName(name)
}

// PaymentResult is a finished payment ready for broadcast.
type PaymentResult struct {
	RawTx []byte // Final transaction bytes
	TxID  string // Display-order transaction ID
}

// ============================================================================
// API Function 1: BuildPayment
// ============================================================================

// BuildPayment assembles the unsigned transaction described by a
// proposal.
//
// The returned transaction is in the unsigned state and carries
// everything the digest computation needs, including the locking script
// of the spent output derived from the sender's public key.
func BuildPayment(proposal *PaymentProposal) (*tx.Transaction, error) {
	params, err := proposal.params()
	if err != nil {
		return nil, err
	}

	builder := roles.NewBuilder(params).WithLockTime(proposal.LockTime)
	if err := builder.AddInput(proposal.PrevTxID, proposal.PrevIndex, proposal.PrevValue, proposal.SenderPubKey); err != nil {
		return nil, err
	}
	if err := builder.AddOutput(proposal.Recipient, proposal.Amount); err != nil {
		return nil, err
	}
	return builder.Build()
}

// ============================================================================
// API Function 2: GetDigest
// ============================================================================

// GetDigest computes the 32-byte digest an external signer must sign.
//
// Use with AppendSignature when the private key lives outside the
// process. The digest commits to the spent output's script and value,
// the payment output, the locktime, and the fork ID.
func GetDigest(txn *tx.Transaction) ([32]byte, error) {
	return roles.NewSigner(txn).Digest()
}

// ============================================================================
// API Function 3: SignPayment
// ============================================================================

// SignPayment signs the transaction input with a WIF-encoded private
// key and attaches the unlocking script.
func SignPayment(txn *tx.Transaction, wif string) error {
	key, err := crypto.ParsePrivateKeyWIF(wif)
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}
	return roles.NewSigner(txn).Sign(key)
}

// ============================================================================
// API Function 4: AppendSignature
// ============================================================================

// AppendSignature attaches a DER-encoded signature produced elsewhere,
// typically over a digest from GetDigest.
func AppendSignature(txn *tx.Transaction, signature, pubKey []byte) error {
	return roles.NewSigner(txn).Apply(signature, pubKey)
}

// ============================================================================
// API Function 5: ExtractTransaction
// ============================================================================

// ExtractTransaction serializes a signed transaction and returns the
// final bytes together with the display-order transaction ID.
func ExtractTransaction(txn *tx.Transaction) ([]byte, string, error) {
	extractor := roles.NewExtractor(txn)

	raw, err := extractor.Extract()
	if err != nil {
		return nil, "", err
	}

	txid, err := extractor.TransactionID()
	if err != nil {
		return nil, "", err
	}
	return raw, txid.String(), nil
}

// ============================================================================
// API Function 6: CreatePayment
// ============================================================================

// CreatePayment builds, signs, and extracts a payment in one call.
//
// This is the whole pipeline for callers that hold the private key:
//
//	proposal -> Builder -> Signer -> Extractor -> broadcastable bytes
func CreatePayment(proposal *PaymentProposal, wif string) (*PaymentResult, error) {
	txn, err := BuildPayment(proposal)
	if err != nil {
		return nil, err
	}
	if err := SignPayment(txn, wif); err != nil {
		return nil, err
	}

	raw, txid, err := ExtractTransaction(txn)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{RawTx: raw, TxID: txid}, nil
}

// ============================================================================
// API Function 7: FrameMessage
// ============================================================================

// FrameMessage wraps a payload in the network's message frame.
func FrameMessage(params *netparams.Params, command string, payload []byte) ([]byte, error) {
	m, err := wire.NewMessage(params, command, payload)
	if err != nil {
		return nil, err
	}
	return m.Serialize()
}

// ============================================================================
// API Function 8: AnnounceTransaction
// ============================================================================

// AnnounceTransaction builds the frames that introduce a transaction to
// a peer: a version handshake followed by an inv announcing the ID.
//
// The frames are returned in send order. The caller owns the connection
// and the rest of the handshake (verack, getdata, tx).
func AnnounceTransaction(params *netparams.Params, txid string) ([][]byte, error) {
	if len(txid) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("transaction id must be %d hex characters, got %d", chainhash.MaxHashStringSize, len(txid))
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction id: %w", err)
	}

	versionPayload, err := wire.NewVersionMessage(params).Serialize()
	if err != nil {
		return nil, fmt.Errorf("building version payload: %w", err)
	}
	versionFrame, err := FrameMessage(params, "version", versionPayload)
	if err != nil {
		return nil, err
	}

	invPayload, err := wire.InvPayload(wire.NewInvVectTx(*hash))
	if err != nil {
		return nil, fmt.Errorf("building inv payload: %w", err)
	}
	invFrame, err := FrameMessage(params, "inv", invPayload)
	if err != nil {
		return nil, err
	}

	return [][]byte{versionFrame, invFrame}, nil
}

// ============================================================================
// API Function 9: Decoding helpers
// ============================================================================

// ParsePaymentURI parses a payment URI.
//
// This is a convenience wrapper around the bip21 package.
func ParsePaymentURI(uri string) (*bip21.PaymentRequest, error) {
	return bip21.Parse(uri)
}

// ParseTransaction decodes raw transaction bytes.
//
// This is a convenience wrapper around the tx package.
func ParseTransaction(raw []byte) (*tx.ParsedTx, error) {
	return tx.Parse(raw)
}
