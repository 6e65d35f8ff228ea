package wire

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/suffix-labs/cashtx/pkg/netparams"
)

const (
	// ProtocolVersion is the protocol version announced in the handshake.
	ProtocolVersion int32 = 70015

	// ServiceNodeNetwork advertises a full node serving the whole chain.
	ServiceNodeNetwork uint64 = 1

	// MaxUserAgentLen bounds the announced user agent string.
	MaxUserAgentLen = 256

	// netAddressSize is the handshake form of a network address:
	// services (8) || IPv6-mapped IP (16) || port (2, BE).
	netAddressSize = 26
)

// NetAddress is a peer address as carried inside a version payload.
// Unlike addr relay entries it has no timestamp field.
type NetAddress struct {
	Services uint64
	IP       net.IP
	Port     uint16
}

// localNetAddress returns the placeholder address used when the real
// peer address is unknown.
func localNetAddress(port uint16) NetAddress {
	return NetAddress{
		Services: 0,
		IP:       net.IPv4(127, 0, 0, 1),
		Port:     port,
	}
}

func writeNetAddress(buf *bytes.Buffer, na NetAddress) error {
	binary.Write(buf, binary.LittleEndian, na.Services)

	ip := na.IP.To16()
	if ip == nil {
		return fmt.Errorf("invalid peer IP %q", na.IP)
	}
	buf.Write(ip)

	// Port is the single big-endian field in the payload.
	return binary.Write(buf, binary.BigEndian, na.Port)
}

func readNetAddress(r io.Reader) (NetAddress, error) {
	var na NetAddress
	if err := binary.Read(r, binary.LittleEndian, &na.Services); err != nil {
		return na, fmt.Errorf("reading address services: %w", err)
	}

	ip := make(net.IP, 16)
	if _, err := io.ReadFull(r, ip); err != nil {
		return na, fmt.Errorf("reading address IP: %w", err)
	}
	na.IP = ip

	if err := binary.Read(r, binary.BigEndian, &na.Port); err != nil {
		return na, fmt.Errorf("reading address port: %w", err)
	}
	return na, nil
}

// VersionMessage is the payload of the "version" handshake message.
//
// With an empty user agent the serialized payload is exactly 86 bytes:
// 4 (version) + 8 (services) + 8 (timestamp) + 26 (receiver) +
// 26 (sender) + 8 (nonce) + 1 (user agent length) + 4 (start height) +
// 1 (relay).
type VersionMessage struct {
	ProtocolVersion int32
	Services        uint64
	Timestamp       int64
	Receiver        NetAddress
	Sender          NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

// randomNonce returns a fresh connection nonce, or zero if the system
// random source fails. Peers ignore a zero nonce.
func randomNonce() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b[:])
}

// NewVersionMessage creates a handshake payload with loopback peer
// addresses on the network's default port, the current time, a random
// nonce, and an empty user agent.
func NewVersionMessage(params *netparams.Params) *VersionMessage {
	return &VersionMessage{
		ProtocolVersion: ProtocolVersion,
		Services:        0,
		Timestamp:       time.Now().Unix(),
		Receiver:        localNetAddress(params.DefaultPort),
		Sender:          localNetAddress(params.DefaultPort),
		Nonce:           randomNonce(),
		UserAgent:       "",
		StartHeight:     0,
		Relay:           true,
	}
}

// WithTimestamp overrides the announced timestamp.
func (v *VersionMessage) WithTimestamp(ts int64) *VersionMessage {
	v.Timestamp = ts
	return v
}

// WithNonce sets the connection nonce peers use to detect self
// connections.
func (v *VersionMessage) WithNonce(nonce uint64) *VersionMessage {
	v.Nonce = nonce
	return v
}

// WithUserAgent sets the announced user agent.
func (v *VersionMessage) WithUserAgent(userAgent string) *VersionMessage {
	v.UserAgent = userAgent
	return v
}

// WithStartHeight sets the announced chain height.
func (v *VersionMessage) WithStartHeight(height int32) *VersionMessage {
	v.StartHeight = height
	return v
}

// Serialize emits the version payload.
func (v *VersionMessage) Serialize() ([]byte, error) {
	if len(v.UserAgent) > MaxUserAgentLen {
		return nil, fmt.Errorf("user agent is %d bytes, maximum is %d", len(v.UserAgent), MaxUserAgentLen)
	}

	buf := bytes.NewBuffer(make([]byte, 0, 86+len(v.UserAgent)))
	binary.Write(buf, binary.LittleEndian, v.ProtocolVersion)
	binary.Write(buf, binary.LittleEndian, v.Services)
	binary.Write(buf, binary.LittleEndian, v.Timestamp)

	if err := writeNetAddress(buf, v.Receiver); err != nil {
		return nil, err
	}
	if err := writeNetAddress(buf, v.Sender); err != nil {
		return nil, err
	}

	binary.Write(buf, binary.LittleEndian, v.Nonce)

	writeCompactSize(buf, uint64(len(v.UserAgent)))
	buf.WriteString(v.UserAgent)

	binary.Write(buf, binary.LittleEndian, v.StartHeight)

	relay := byte(0)
	if v.Relay {
		relay = 1
	}
	buf.WriteByte(relay)

	return buf.Bytes(), nil
}

// ParseVersionMessage parses a version payload.
func ParseVersionMessage(data []byte) (*VersionMessage, error) {
	r := bytes.NewReader(data)
	v := &VersionMessage{}

	if err := binary.Read(r, binary.LittleEndian, &v.ProtocolVersion); err != nil {
		return nil, fmt.Errorf("reading protocol version: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &v.Services); err != nil {
		return nil, fmt.Errorf("reading services: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &v.Timestamp); err != nil {
		return nil, fmt.Errorf("reading timestamp: %w", err)
	}

	var err error
	if v.Receiver, err = readNetAddress(r); err != nil {
		return nil, fmt.Errorf("reading receiver address: %w", err)
	}
	if v.Sender, err = readNetAddress(r); err != nil {
		return nil, fmt.Errorf("reading sender address: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &v.Nonce); err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}

	uaLen, err := readCompactSize(r)
	if err != nil {
		return nil, fmt.Errorf("reading user agent length: %w", err)
	}
	if uaLen > MaxUserAgentLen {
		return nil, fmt.Errorf("user agent length %d exceeds maximum %d", uaLen, MaxUserAgentLen)
	}
	userAgent := make([]byte, uaLen)
	if _, err := io.ReadFull(r, userAgent); err != nil {
		return nil, fmt.Errorf("reading user agent: %w", err)
	}
	v.UserAgent = string(userAgent)

	if err := binary.Read(r, binary.LittleEndian, &v.StartHeight); err != nil {
		return nil, fmt.Errorf("reading start height: %w", err)
	}

	relay, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading relay flag: %w", err)
	}
	v.Relay = relay != 0

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after version payload", r.Len())
	}
	return v, nil
}
