package bip21

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/cashtx/pkg/address"
)

const demoAddr = "bitcoincash:qq7ur36zd8uq2wqv0mle2khzwt79ue9ty57mvd95r0"

func TestParsePaymentURI(t *testing.T) {
	req, err := Parse(demoAddr + "?amount=0.00029066")
	require.NoError(t, err)

	require.NotNil(t, req.Amount)
	assert.Equal(t, btcutil.Amount(29066), *req.Amount)

	want, err := address.Decode(demoAddr)
	require.NoError(t, err)
	assert.Equal(t, want.Hash, req.Address.Hash)
}

func TestParseBareAddress(t *testing.T) {
	req, err := Parse(demoAddr)
	require.NoError(t, err)

	assert.Nil(t, req.Amount)
	assert.Empty(t, req.Label)
	assert.Equal(t, demoAddr, req.Address.String())
}

func TestParseLabelAndMessage(t *testing.T) {
	req, err := Parse(demoAddr + "?amount=1&label=Satoshi%20Nakamoto&message=Coffee%20beans")
	require.NoError(t, err)

	require.NotNil(t, req.Amount)
	assert.Equal(t, btcutil.Amount(btcutil.SatoshiPerBitcoin), *req.Amount)
	assert.Equal(t, "Satoshi Nakamoto", req.Label)
	assert.Equal(t, "Coffee beans", req.Message)
}

func TestParseLegacyAddressURI(t *testing.T) {
	req, err := Parse("bitcoincash:1111111111111111111114oLvT2?amount=2")
	require.NoError(t, err)

	assert.Equal(t, [20]byte{}, req.Address.Hash)
	assert.Equal(t, btcutil.Amount(2*btcutil.SatoshiPerBitcoin), *req.Amount)
}

func TestParseUnknownParameters(t *testing.T) {
	// Unrecognized plain parameters are ignored.
	req, err := Parse(demoAddr + "?somethingyoudontunderstand=50&somethingelseyoudontget=999")
	require.NoError(t, err)
	assert.Nil(t, req.Amount)

	// The req- prefix makes them fatal.
	_, err = Parse(demoAddr + "?req-somethingyoudontunderstand=50")
	assert.Error(t, err)
}

func TestParseDuplicateParameter(t *testing.T) {
	_, err := Parse(demoAddr + "?amount=1&amount=2")
	assert.Error(t, err)
}

func TestParseAmountForms(t *testing.T) {
	valid := []struct {
		in   string
		want btcutil.Amount
	}{
		{"100", 100 * btcutil.SatoshiPerBitcoin},
		{"0.00000001", 1},
		{"20.3", 2_030_000_000},
		{"20.30000000", 2_030_000_000},
		{"21000000", btcutil.MaxSatoshi},
	}
	for _, tc := range valid {
		got, err := parseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	invalid := []string{
		"", ".", ".5", "1.", "1..2", "0.000000001",
		"-1", "1e8", "0", "0.0", "21000001", "21000000.00000001",
		"99999999999999999999999",
	}
	for _, in := range invalid {
		_, err := parseAmount(in)
		assert.Error(t, err, "%q should be rejected", in)
	}
}

func TestParseInvalidAddress(t *testing.T) {
	_, err := Parse("bitcoincash:qqqqqqqq?amount=1")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	addr, err := address.Decode(demoAddr)
	require.NoError(t, err)

	amount := btcutil.Amount(29066)
	uri, err := Encode(&PaymentRequest{
		Address: addr,
		Amount:  &amount,
		Label:   "Satoshi Nakamoto",
	})
	require.NoError(t, err)
	assert.Equal(t, demoAddr+"?amount=0.00029066&label=Satoshi%20Nakamoto", uri)

	// Bare request: no query string at all.
	uri, err = Encode(&PaymentRequest{Address: addr})
	require.NoError(t, err)
	assert.Equal(t, demoAddr, uri)

	_, err = Encode(&PaymentRequest{})
	assert.Error(t, err)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	addr, err := address.Decode(demoAddr)
	require.NoError(t, err)

	amount := btcutil.Amount(2_030_000_000)
	original := &PaymentRequest{
		Address: addr,
		Amount:  &amount,
		Label:   "rent & utilities",
		Message: "June invoice #42",
	}

	uri, err := Encode(original)
	require.NoError(t, err)

	parsed, err := Parse(uri)
	require.NoError(t, err)

	assert.Equal(t, original.Address.Hash, parsed.Address.Hash)
	assert.Equal(t, *original.Amount, *parsed.Amount)
	assert.Equal(t, original.Label, parsed.Label)
	assert.Equal(t, original.Message, parsed.Message)
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount btcutil.Amount
		want   string
	}{
		{29066, "0.00029066"},
		{1, "0.00000001"},
		{btcutil.SatoshiPerBitcoin, "1"},
		{2_030_000_000, "20.3"},
		{btcutil.MaxSatoshi, "21000000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatAmount(tc.amount))
	}
}
