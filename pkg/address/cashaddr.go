package address

import (
	"errors"
	"fmt"
	"strings"
)

// charset is the base32 alphabet used by CashAddr, in value order.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// hashSizes maps the low three bits of the version byte to the hash
// length they declare. Only the 160-bit size is in use here.
var hashSizes = [8]int{20, 24, 28, 32, 40, 48, 56, 64}

// charsetRev maps an ASCII character to its 5-bit value, or -1.
var charsetRev [128]int8

func init() {
	for i := range charsetRev {
		charsetRev[i] = -1
	}
	for i, c := range charset {
		charsetRev[c] = int8(i)
	}
}

// polymod computes the BCH checksum over expanded prefix and payload
// values. A valid address yields zero.
func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)

		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

// expandPrefix turns the human-readable prefix into the 5-bit values
// the checksum covers: the low five bits of each character, then a
// zero separator.
func expandPrefix(prefix string) []byte {
	expanded := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		expanded = append(expanded, prefix[i]&0x1f)
	}
	return append(expanded, 0)
}

// convertBits regroups data from fromBits-wide values to toBits-wide
// values. Encoding pads the final group with zeros; decoding rejects
// both an oversized remainder and nonzero padding bits.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1

	out := make([]byte, 0, (len(data)*int(fromBits)+int(toBits)-1)/int(toBits))
	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, fmt.Errorf("value %d exceeds %d bits", v, fromBits)
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, errors.New("invalid padding bits")
	}

	return out, nil
}

// appendChecksum computes the 40-bit checksum for prefix and payload
// and appends it as eight 5-bit groups.
func appendChecksum(prefix string, payload []byte) []byte {
	values := expandPrefix(prefix)
	values = append(values, payload...)
	values = append(values, make([]byte, 8)...)

	mod := polymod(values)
	for i := 0; i < 8; i++ {
		payload = append(payload, byte(mod>>(5*(7-uint(i)))&0x1f))
	}
	return payload
}

// EncodeCashAddr encodes a hash as a CashAddr string with the given
// prefix, including the "prefix:" part.
func EncodeCashAddr(prefix string, kind Kind, hash [20]byte) string {
	// Version byte: kind in bits 6-3, hash size code in bits 2-0.
	// A 20-byte hash has size code 0.
	data := make([]byte, 0, 21)
	data = append(data, byte(kind)<<3)
	data = append(data, hash[:]...)

	// 8-bit groups cannot overflow 5-bit conversion, so the error is
	// unreachable here.
	payload, _ := convertBits(data, 8, 5, true)
	payload = appendChecksum(prefix, payload)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(payload))
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, v := range payload {
		sb.WriteByte(charset[v])
	}
	return sb.String()
}

// DecodeCashAddr decodes a CashAddr string. The prefix may be omitted,
// in which case the known network prefixes are tried in order.
func DecodeCashAddr(addr string) (*Address, error) {
	lower := strings.ToLower(addr)
	if addr != lower && addr != strings.ToUpper(addr) {
		return nil, errors.New("cashaddr uses mixed case")
	}
	addr = lower

	if prefix, rest, ok := strings.Cut(addr, ":"); ok {
		return decodeWithPrefix(prefix, rest)
	}

	// No embedded prefix. The checksum commits to it, so trying each
	// known prefix identifies the network.
	var firstErr error
	for _, prefix := range []string{"bitcoincash", "bchtest", "bchreg"} {
		decoded, err := decodeWithPrefix(prefix, addr)
		if err == nil {
			return decoded, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("no known prefix matches: %w", firstErr)
}

func decodeWithPrefix(prefix, payload string) (*Address, error) {
	if prefix == "" {
		return nil, errors.New("empty address prefix")
	}
	if len(payload) < 8 {
		return nil, errors.New("address payload too short")
	}

	values := make([]byte, len(payload))
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c >= 128 || charsetRev[c] < 0 {
			return nil, fmt.Errorf("invalid cashaddr character %q", c)
		}
		values[i] = byte(charsetRev[c])
	}

	check := expandPrefix(prefix)
	check = append(check, values...)
	if polymod(check) != 0 {
		return nil, errors.New("cashaddr checksum mismatch")
	}

	data, err := convertBits(values[:len(values)-8], 5, 8, false)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty cashaddr payload")
	}

	version := data[0]
	if version&0x80 != 0 {
		return nil, errors.New("reserved version bit set")
	}

	hashLen := hashSizes[version&0x07]
	if len(data)-1 != hashLen {
		return nil, fmt.Errorf("hash is %d bytes, version byte declares %d", len(data)-1, hashLen)
	}
	if hashLen != 20 {
		return nil, fmt.Errorf("unsupported hash length %d", hashLen)
	}

	kind := Kind(version >> 3 & 0x0f)
	if kind != P2PKH && kind != P2SH {
		return nil, fmt.Errorf("unknown address kind %d", kind)
	}

	a := &Address{Prefix: prefix, Kind: kind}
	copy(a.Hash[:], data[1:])
	return a, nil
}
