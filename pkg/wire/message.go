// Package wire implements peer-to-peer message framing and the payloads
// needed to announce a transaction: the version handshake, inventory
// vectors, and block headers.
//
// Every message travels in a 24-byte frame followed by its payload:
//
//	magic (4, LE) || command (12, zero padded) || length (4, LE) ||
//	checksum (4) || payload
//
// The checksum is the first four bytes of the double SHA-256 of the
// payload, so even an empty payload carries a fixed, nonzero checksum.
//
// Reference: https://en.bitcoin.it/wiki/Protocol_documentation#Message_structure
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/netparams"
)

const (
	// CommandSize is the fixed width of the command field.
	CommandSize = 12

	// HeaderSize is the frame size before the payload.
	HeaderSize = 24

	// MaxPayloadSize caps the payload length accepted when parsing.
	MaxPayloadSize = 32 * 1024 * 1024
)

// ErrCommandTooLong rejects commands that cannot fit the fixed-width
// command field.
const ErrCommandTooLong = "COMMAND_TOO_LONG"

// MessageError describes a rejected message.
type MessageError struct {
	Code    string
	Message string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Message is a framed peer-to-peer message.
type Message struct {
	Magic   uint32
	Command string
	Payload []byte
}

// NewMessage frames a payload for the given network.
func NewMessage(params *netparams.Params, command string, payload []byte) (*Message, error) {
	if len(command) > CommandSize {
		return nil, &MessageError{
			Code:    ErrCommandTooLong,
			Message: fmt.Sprintf("command %q exceeds %d bytes", command, CommandSize),
		}
	}
	return &Message{
		Magic:   params.Net,
		Command: command,
		Payload: payload,
	}, nil
}

// Serialize emits the framed message, header and payload.
func (m *Message) Serialize() ([]byte, error) {
	if len(m.Command) > CommandSize {
		return nil, &MessageError{
			Code:    ErrCommandTooLong,
			Message: fmt.Sprintf("command %q exceeds %d bytes", m.Command, CommandSize),
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(m.Payload)))
	binary.Write(buf, binary.LittleEndian, m.Magic)

	var command [CommandSize]byte
	copy(command[:], m.Command)
	buf.Write(command[:])

	binary.Write(buf, binary.LittleEndian, uint32(len(m.Payload)))

	checksum := crypto.Checksum(m.Payload)
	buf.Write(checksum[:])
	buf.Write(m.Payload)

	return buf.Bytes(), nil
}

// ParseMessage parses a complete framed message. The data must contain
// exactly one message; a wrong length or checksum is an error.
func ParseMessage(data []byte) (*Message, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("message is %d bytes, shorter than the %d-byte header", len(data), HeaderSize)
	}

	magic := binary.LittleEndian.Uint32(data[0:4])

	command := data[4:16]
	if i := bytes.IndexByte(command, 0); i >= 0 {
		command = command[:i]
	}

	length := binary.LittleEndian.Uint32(data[16:20])
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d", length, MaxPayloadSize)
	}
	if uint32(len(data)-HeaderSize) != length {
		return nil, fmt.Errorf("payload length field says %d bytes, frame carries %d", length, len(data)-HeaderSize)
	}

	payload := data[HeaderSize:]
	checksum := crypto.Checksum(payload)
	if !bytes.Equal(checksum[:], data[20:24]) {
		return nil, fmt.Errorf("payload checksum mismatch: header %x, computed %x", data[20:24], checksum[:])
	}

	m := &Message{
		Magic:   magic,
		Command: string(command),
		Payload: append([]byte(nil), payload...),
	}
	return m, nil
}

// writeCompactSize writes Bitcoin's variable-length integer encoding.
func writeCompactSize(buf *bytes.Buffer, n uint64) {
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		binary.Write(buf, binary.LittleEndian, uint16(n))
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		binary.Write(buf, binary.LittleEndian, uint32(n))
	default:
		buf.WriteByte(0xff)
		binary.Write(buf, binary.LittleEndian, n)
	}
}

// readCompactSize reads Bitcoin's variable-length integer encoding.
func readCompactSize(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, fmt.Errorf("reading compact size prefix: %w", err)
	}

	switch prefix[0] {
	case 0xfd:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, fmt.Errorf("reading 16-bit compact size: %w", err)
		}
		return uint64(n), nil
	case 0xfe:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, fmt.Errorf("reading 32-bit compact size: %w", err)
		}
		return uint64(n), nil
	case 0xff:
		var n uint64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return 0, fmt.Errorf("reading 64-bit compact size: %w", err)
		}
		return n, nil
	default:
		return uint64(prefix[0]), nil
	}
}
