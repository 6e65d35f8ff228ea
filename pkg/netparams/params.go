// Package netparams defines the per-network constants used when building
// transactions, addresses, and protocol messages.
//
// Each Params value groups everything that distinguishes one network from
// another: the handshake magic written at the start of every wire message,
// the default peer port, the CashAddr human-readable prefix, and the
// Base58Check version bytes used by legacy addresses and WIF keys.
//
// References:
//   - https://en.bitcoin.it/wiki/Protocol_documentation#Message_structure
//   - https://github.com/bitcoincashorg/bitcoincash.org/blob/master/spec/cashaddr.md
package netparams

import "fmt"

// Params holds the constants for a single network.
type Params struct {
	Name string // Canonical short name ("mainnet", "testnet", ...)

	// Net is the protocol magic identifying the network. It is written
	// little-endian on the wire, so mainnet's 0xe8f3e1e3 appears as the
	// byte sequence e3 e1 f3 e8 at the start of a frame.
	Net uint32

	DefaultPort uint16 // Default peer-to-peer listening port

	// CashAddrPrefix is the human-readable part of CashAddr encoded
	// addresses. Empty for networks that never adopted CashAddr.
	CashAddrPrefix string

	LegacyPubKeyHashID byte // Base58Check version byte for P2PKH addresses
	LegacyScriptHashID byte // Base58Check version byte for P2SH addresses
	WIFPrivateKeyID    byte // Base58Check version byte for WIF private keys
}

// MainNetParams defines the Bitcoin Cash main network.
var MainNetParams = Params{
	Name:               "mainnet",
	Net:                0xe8f3e1e3,
	DefaultPort:        8333,
	CashAddrPrefix:     "bitcoincash",
	LegacyPubKeyHashID: 0x00,
	LegacyScriptHashID: 0x05,
	WIFPrivateKeyID:    0x80,
}

// TestNetParams defines the Bitcoin Cash test network (testnet3).
var TestNetParams = Params{
	Name:               "testnet",
	Net:                0xf4f3e5f4,
	DefaultPort:        18333,
	CashAddrPrefix:     "bchtest",
	LegacyPubKeyHashID: 0x6f,
	LegacyScriptHashID: 0xc4,
	WIFPrivateKeyID:    0xef,
}

// RegTestParams defines the Bitcoin Cash regression test network.
var RegTestParams = Params{
	Name:               "regtest",
	Net:                0xfabfb5da,
	DefaultPort:        18444,
	CashAddrPrefix:     "bchreg",
	LegacyPubKeyHashID: 0x6f,
	LegacyScriptHashID: 0xc4,
	WIFPrivateKeyID:    0xef,
}

// BTCMainNetParams defines the Bitcoin main network. Kept so the wire
// layer can frame messages for BTC peers as well; addresses on this
// network use no CashAddr prefix.
var BTCMainNetParams = Params{
	Name:               "btc-mainnet",
	Net:                0xd9b4bef9,
	DefaultPort:        8333,
	LegacyPubKeyHashID: 0x00,
	LegacyScriptHashID: 0x05,
	WIFPrivateKeyID:    0x80,
}

// BTCTestNetParams defines the Bitcoin test network (testnet3).
var BTCTestNetParams = Params{
	Name:               "btc-testnet",
	Net:                0x0709110b,
	DefaultPort:        18333,
	LegacyPubKeyHashID: 0x6f,
	LegacyScriptHashID: 0xc4,
	WIFPrivateKeyID:    0xef,
}

// BTCRegTestParams defines the Bitcoin regression test network.
var BTCRegTestParams = Params{
	Name:               "btc-regtest",
	Net:                0xdab5bffa,
	DefaultPort:        18444,
	LegacyPubKeyHashID: 0x6f,
	LegacyScriptHashID: 0xc4,
	WIFPrivateKeyID:    0xef,
}

// ForName resolves a network name to its parameters.
func ForName(name string) (*Params, error) {
	switch name {
	case "mainnet", "main":
		return &MainNetParams, nil
	case "testnet", "test":
		return &TestNetParams, nil
	case "regtest":
		return &RegTestParams, nil
	case "btc-mainnet":
		return &BTCMainNetParams, nil
	case "btc-testnet":
		return &BTCTestNetParams, nil
	case "btc-regtest":
		return &BTCRegTestParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}

// ForCashAddrPrefix resolves a CashAddr prefix to its parameters.
func ForCashAddrPrefix(prefix string) (*Params, error) {
	switch prefix {
	case "bitcoincash":
		return &MainNetParams, nil
	case "bchtest":
		return &TestNetParams, nil
	case "bchreg":
		return &RegTestParams, nil
	default:
		return nil, fmt.Errorf("unknown address prefix %q", prefix)
	}
}

// IsTestNet reports whether the parameters describe a test or regression
// network. Used when choosing WIF and legacy address version bytes.
func (p *Params) IsTestNet() bool {
	return p.WIFPrivateKeyID == 0xef
}
