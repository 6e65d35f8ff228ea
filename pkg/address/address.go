// Package address parses and formats payment addresses.
//
// Two encodings of the same 20-byte hash are supported: CashAddr
// (prefix:base32 with a 40-bit BCH checksum) and the older base58check
// form. Decoding accepts either; encoding defaults to CashAddr.
//
// References:
//   - https://github.com/bitcoincashorg/bitcoincash.org/blob/master/spec/cashaddr.md
//   - https://en.bitcoin.it/wiki/Base58Check_encoding
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/netparams"
	"github.com/suffix-labs/cashtx/pkg/script"
)

// Kind identifies what the address hash commits to.
type Kind uint8

const (
	// P2PKH addresses commit to a public key hash.
	P2PKH Kind = 0
	// P2SH addresses commit to a script hash.
	P2SH Kind = 1
)

func (k Kind) String() string {
	switch k {
	case P2PKH:
		return "p2pkh"
	case P2SH:
		return "p2sh"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Address is a decoded payment address: a 20-byte hash plus the network
// prefix and hash kind it was encoded with.
type Address struct {
	Prefix string
	Kind   Kind
	Hash   [20]byte
}

// Decode parses an address in either encoding. Strings longer than 35
// characters can only be CashAddr; base58check addresses never exceed
// that length.
func Decode(addr string) (*Address, error) {
	if addr == "" {
		return nil, errors.New("empty address")
	}
	if strings.Contains(addr, ":") || len(addr) > 35 {
		return DecodeCashAddr(addr)
	}
	return DecodeLegacy(addr)
}

// DecodeLegacy parses a base58check address.
func DecodeLegacy(addr string) (*Address, error) {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, fmt.Errorf("decoding base58 address: %w", err)
	}
	if len(payload) != 20 {
		return nil, fmt.Errorf("legacy address hash is %d bytes, want 20", len(payload))
	}

	params, kind, err := legacyVersionParams(version)
	if err != nil {
		return nil, err
	}

	a := &Address{Prefix: params.CashAddrPrefix, Kind: kind}
	copy(a.Hash[:], payload)
	return a, nil
}

// legacyVersionParams maps a base58check version byte to network
// parameters and address kind. Testnet and regtest share version
// bytes; testnet wins.
func legacyVersionParams(version byte) (*netparams.Params, Kind, error) {
	for _, params := range []*netparams.Params{&netparams.MainNetParams, &netparams.TestNetParams} {
		switch version {
		case params.LegacyPubKeyHashID:
			return params, P2PKH, nil
		case params.LegacyScriptHashID:
			return params, P2SH, nil
		}
	}
	return nil, 0, fmt.Errorf("unknown legacy version byte 0x%02x", version)
}

// FromPubKey derives the P2PKH address of a serialized public key.
// The key must be in the form it is used for signing: hashing the
// compressed and uncompressed serializations gives different addresses.
func FromPubKey(pubKey []byte, params *netparams.Params) (*Address, error) {
	if len(pubKey) != 33 && len(pubKey) != 65 {
		return nil, fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(pubKey))
	}
	return &Address{
		Prefix: params.CashAddrPrefix,
		Kind:   P2PKH,
		Hash:   crypto.Hash160(pubKey),
	}, nil
}

// String returns the CashAddr encoding, prefix included.
func (a *Address) String() string {
	return EncodeCashAddr(a.Prefix, a.Kind, a.Hash)
}

// Legacy returns the base58check encoding for the address's network.
func (a *Address) Legacy() (string, error) {
	params, err := netparams.ForCashAddrPrefix(a.Prefix)
	if err != nil {
		return "", err
	}

	version := params.LegacyPubKeyHashID
	if a.Kind == P2SH {
		version = params.LegacyScriptHashID
	}
	return base58.CheckEncode(a.Hash[:], version), nil
}

// LockingScript builds the output script that pays to this address.
func (a *Address) LockingScript() ([]byte, error) {
	if a.Kind != P2PKH {
		return nil, fmt.Errorf("no locking script template for %s address", a.Kind)
	}
	return script.PayToPubKeyHash(a.Hash[:])
}
