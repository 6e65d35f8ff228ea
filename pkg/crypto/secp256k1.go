// Package crypto implements the hashing and secp256k1 signing primitives
// behind transaction construction.
//
// This file provides key management and ECDSA signature operations.
//
// Key formats:
//   - Private keys: WIF (Wallet Import Format) or raw 32 bytes
//   - Public keys: compressed 33-byte or uncompressed 65-byte serialization;
//     WIF's trailing compression flag decides which form a key uses
//   - Signatures: DER-encoded, deterministic (RFC 6979)
package crypto

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/suffix-labs/cashtx/pkg/netparams"
)

// PrivateKey wraps a secp256k1 private key together with the
// serialization form its public key uses.
type PrivateKey struct {
	key        *secp256k1.PrivateKey
	compressed bool
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	key        *secp256k1.PublicKey
	compressed bool
}

// GeneratePrivateKey creates a fresh random private key. New keys use
// compressed public key serialization.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating private key: %w", err)
	}
	return &PrivateKey{key: key, compressed: true}, nil
}

// ParsePrivateKeyWIF parses a WIF-encoded private key. The trailing
// compression flag, when present, selects compressed public key
// serialization.
func ParsePrivateKeyWIF(wif string) (*PrivateKey, error) {
	decoded, compressed, err := decodeWIF(wif)
	if err != nil {
		return nil, err
	}

	key := secp256k1.PrivKeyFromBytes(decoded)
	return &PrivateKey{key: key, compressed: compressed}, nil
}

// PrivateKeyFromBytes creates a private key from raw bytes.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
	}

	key := secp256k1.PrivKeyFromBytes(keyBytes)
	return &PrivateKey{key: key, compressed: true}, nil
}

// Sign creates a deterministic ECDSA signature over a 32-byte digest and
// returns it DER-encoded.
func (pk *PrivateKey) Sign(digest [32]byte) ([]byte, error) {
	sig := ecdsa.Sign(pk.key, digest[:])
	return sig.Serialize(), nil
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey(), compressed: pk.compressed}
}

// PublicKeyBytes returns the serialized public key in the form the key
// was imported with.
func (pk *PrivateKey) PublicKeyBytes() []byte {
	return pk.PublicKey().Serialize()
}

// Bytes returns the raw 32-byte private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Compressed reports whether the key serializes its public key in
// compressed form.
func (pk *PrivateKey) Compressed() bool {
	return pk.compressed
}

// Serialize returns the public key bytes: 33 bytes compressed or 65
// bytes uncompressed, matching the key's import form.
func (pub *PublicKey) Serialize() []byte {
	if pub.compressed {
		return pub.key.SerializeCompressed()
	}
	return pub.key.SerializeUncompressed()
}

// SerializeCompressed returns the 33-byte compressed public key
// regardless of the key's import form.
func (pub *PublicKey) SerializeCompressed() [33]byte {
	var result [33]byte
	copy(result[:], pub.key.SerializeCompressed())
	return result
}

// Hash160 returns the 20-byte public key hash that scripts and addresses
// commit to, computed over the key's serialized form.
func (pub *PublicKey) Hash160() [20]byte {
	return Hash160(pub.Serialize())
}

// ParsePublicKey parses a compressed or uncompressed public key.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	if len(pubKeyBytes) != 33 && len(pubKeyBytes) != 65 {
		return nil, fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(pubKeyBytes))
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &PublicKey{key: pubKey, compressed: len(pubKeyBytes) == 33}, nil
}

// VerifySignature verifies a DER-encoded ECDSA signature over a digest.
func VerifySignature(pubkey *PublicKey, digest [32]byte, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}

	return sig.Verify(digest[:], pubkey.key)
}

// decodeWIF decodes a WIF-encoded private key.
// WIF format: version_byte || private_key (32 bytes) || [compression_flag] || checksum (4 bytes)
func decodeWIF(wif string) ([]byte, bool, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 37 && len(decoded) != 38 {
		return nil, false, errors.New("invalid WIF length")
	}

	// Version byte: 0x80 for mainnet, 0xef for test networks.
	version := decoded[0]
	if version != 0x80 && version != 0xef {
		return nil, false, fmt.Errorf("invalid WIF version byte: 0x%02x", version)
	}

	checksumOffset := len(decoded) - 4
	payload := decoded[:checksumOffset]

	want := Checksum(payload)
	if !bytes.Equal(decoded[checksumOffset:], want[:]) {
		return nil, false, errors.New("WIF checksum mismatch")
	}

	compressed := len(decoded) == 38
	if compressed && payload[33] != 0x01 {
		return nil, false, fmt.Errorf("invalid WIF compression flag: 0x%02x", payload[33])
	}

	return payload[1:33], compressed, nil
}

// EncodeWIF encodes a private key to WIF format for the given network.
func EncodeWIF(privateKey []byte, compressed bool, params *netparams.Params) (string, error) {
	if len(privateKey) != 32 {
		return "", errors.New("private key must be 32 bytes")
	}

	payload := make([]byte, 0, 38)
	payload = append(payload, params.WIFPrivateKeyID)
	payload = append(payload, privateKey...)
	if compressed {
		payload = append(payload, 0x01)
	}

	checksum := Checksum(payload)
	payload = append(payload, checksum[:]...)

	return base58.Encode(payload), nil
}
