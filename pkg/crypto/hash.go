// Package crypto implements the hashing and secp256k1 signing primitives
// behind transaction construction.
//
// This file provides the SHA-256 based primitives. Everything in the
// protocol that hashes, hashes twice: frame checksums, signature digests,
// transaction identifiers, and Base58Check all use double SHA-256, with
// RIPEMD160(SHA256(x)) reserved for shortening public keys.
package crypto

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Sha256d computes the double SHA-256 digest.
func Sha256d(data []byte) [32]byte {
	var digest [32]byte
	copy(digest[:], chainhash.DoubleHashB(data))
	return digest
}

// Hash160 computes RIPEMD160(SHA256(data)), the 20-byte form public keys
// take inside P2PKH scripts and addresses.
func Hash160(data []byte) [20]byte {
	var digest [20]byte
	copy(digest[:], btcutil.Hash160(data))
	return digest
}

// Checksum returns the first four bytes of the double SHA-256 digest,
// the truncation used by wire frames and Base58Check payloads.
func Checksum(data []byte) [4]byte {
	digest := Sha256d(data)
	var sum [4]byte
	copy(sum[:], digest[:4])
	return sum
}

// TransactionID computes the canonical identifier of a serialized
// transaction. The returned hash holds the digest in wire order;
// its String method renders the byte-reversed hex form used for display.
func TransactionID(rawTx []byte) chainhash.Hash {
	return chainhash.DoubleHashH(rawTx)
}
