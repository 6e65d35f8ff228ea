package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/cashtx/pkg/netparams"
)

func TestVersionPayloadLayout(t *testing.T) {
	v := NewVersionMessage(&netparams.MainNetParams).
		WithTimestamp(0x1122334455).
		WithNonce(0x0807060504030201)

	raw, err := v.Serialize()
	require.NoError(t, err)

	// Empty user agent keeps the payload at its minimum size.
	require.Len(t, raw, 86)

	assert.Equal(t, []byte{0x7f, 0x11, 0x01, 0x00}, raw[0:4], "protocol version 70015")
	assert.Equal(t, make([]byte, 8), raw[4:12], "services")
	assert.Equal(t, []byte{0x55, 0x44, 0x33, 0x22, 0x11, 0x00, 0x00, 0x00}, raw[12:20], "timestamp")

	// Receiver address: services, IPv4-mapped loopback, port 8333 in
	// big-endian order.
	assert.Equal(t, make([]byte, 8), raw[20:28], "receiver services")
	wantIP := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0x7f, 0x00, 0x00, 0x01}
	assert.Equal(t, wantIP, raw[28:44], "receiver IP")
	assert.Equal(t, []byte{0x20, 0x8d}, raw[44:46], "receiver port")

	assert.Equal(t, raw[20:46], raw[46:72], "sender address matches receiver")

	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, raw[72:80], "nonce")
	assert.Equal(t, byte(0x00), raw[80], "user agent length")
	assert.Equal(t, make([]byte, 4), raw[81:85], "start height")
	assert.Equal(t, byte(0x01), raw[85], "relay flag")
}

func TestVersionRoundTrip(t *testing.T) {
	v := NewVersionMessage(&netparams.TestNetParams).
		WithTimestamp(1598918400).
		WithNonce(42).
		WithUserAgent("/cashtx:0.1.0/").
		WithStartHeight(845000)

	raw, err := v.Serialize()
	require.NoError(t, err)
	require.Len(t, raw, 86+len(v.UserAgent))

	parsed, err := ParseVersionMessage(raw)
	require.NoError(t, err)

	assert.Equal(t, ProtocolVersion, parsed.ProtocolVersion)
	assert.Equal(t, int64(1598918400), parsed.Timestamp)
	assert.Equal(t, uint64(42), parsed.Nonce)
	assert.Equal(t, "/cashtx:0.1.0/", parsed.UserAgent)
	assert.Equal(t, int32(845000), parsed.StartHeight)
	assert.True(t, parsed.Relay)
	assert.Equal(t, uint16(18333), parsed.Receiver.Port)
	assert.True(t, parsed.Receiver.IP.Equal(v.Receiver.IP))
}

func TestVersionInFrame(t *testing.T) {
	payload, err := NewVersionMessage(&netparams.MainNetParams).
		WithTimestamp(0).
		Serialize()
	require.NoError(t, err)

	m, err := NewMessage(&netparams.MainNetParams, "version", payload)
	require.NoError(t, err)

	raw, err := m.Serialize()
	require.NoError(t, err)
	require.Len(t, raw, HeaderSize+86)

	parsed, err := ParseMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, "version", parsed.Command)

	inner, err := ParseVersionMessage(parsed.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inner.Timestamp)
}

func TestVersionUserAgentTooLong(t *testing.T) {
	v := NewVersionMessage(&netparams.MainNetParams)
	v.UserAgent = string(make([]byte, MaxUserAgentLen+1))

	_, err := v.Serialize()
	assert.Error(t, err)
}

func TestParseVersionErrors(t *testing.T) {
	raw, err := NewVersionMessage(&netparams.MainNetParams).WithTimestamp(7).Serialize()
	require.NoError(t, err)

	for _, cut := range []int{0, 3, 19, 45, 79, 85} {
		_, err := ParseVersionMessage(raw[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}

	_, err = ParseVersionMessage(append(append([]byte(nil), raw...), 0xee))
	assert.Error(t, err, "trailing byte")
}
