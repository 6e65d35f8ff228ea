// Package bip21 parses and formats payment URIs.
//
// A URI names one recipient plus optional query parameters:
//
//	bitcoincash:qq7ur36z...?amount=0.00029066&label=Satoshi
//
// The CashAddr prefix doubles as the URI scheme. Amounts are
// denominated in whole coins with up to eight decimal places and are
// parsed exactly, never through floating point. Unknown parameters are
// ignored unless they carry the "req-" prefix, which marks them as
// mandatory to understand.
//
// Reference: https://github.com/bitcoin/bips/blob/master/bip-0021.mediawiki
package bip21

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/suffix-labs/cashtx/pkg/address"
)

// maxCoins is the largest whole-coin amount a URI may carry.
const maxCoins = btcutil.MaxSatoshi / btcutil.SatoshiPerBitcoin

// PaymentRequest is a decoded payment URI. Amount is nil when the URI
// does not request a specific amount.
type PaymentRequest struct {
	Address *address.Address
	Amount  *btcutil.Amount
	Label   string
	Message string
}

// Parse decodes a payment URI.
func Parse(uri string) (*PaymentRequest, error) {
	if uri == "" {
		return nil, errors.New("empty payment URI")
	}

	addrPart, query, hasQuery := strings.Cut(uri, "?")

	addr, err := address.Decode(addrPart)
	if err != nil {
		// "bitcoincash:1..." carries a legacy address after the scheme.
		if scheme, rest, ok := strings.Cut(addrPart, ":"); ok && scheme != "" {
			if legacy, legacyErr := address.Decode(rest); legacyErr == nil {
				addr = legacy
				err = nil
			}
		}
		if err != nil {
			return nil, fmt.Errorf("parsing URI address: %w", err)
		}
	}

	req := &PaymentRequest{Address: addr}
	if !hasQuery {
		return req, nil
	}

	seen := map[string]bool{}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}

		key, rawValue, _ := strings.Cut(pair, "=")
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("parsing URI parameter %q: %w", key, err)
		}

		if seen[key] {
			return nil, fmt.Errorf("duplicate URI parameter %q", key)
		}
		seen[key] = true

		switch key {
		case "amount":
			amount, err := parseAmount(value)
			if err != nil {
				return nil, fmt.Errorf("parsing amount %q: %w", value, err)
			}
			req.Amount = &amount
		case "label":
			req.Label = value
		case "message":
			req.Message = value
		default:
			// Unknown parameters are fine unless marked required.
			if strings.HasPrefix(key, "req-") {
				return nil, fmt.Errorf("unsupported required parameter %q", key)
			}
		}
	}

	return req, nil
}

// Encode formats a payment request as a URI.
func Encode(req *PaymentRequest) (string, error) {
	if req.Address == nil {
		return "", errors.New("payment request has no address")
	}

	var params []string
	if req.Amount != nil {
		params = append(params, "amount="+formatAmount(*req.Amount))
	}
	if req.Label != "" {
		params = append(params, "label="+escape(req.Label))
	}
	if req.Message != "" {
		params = append(params, "message="+escape(req.Message))
	}

	uri := req.Address.String()
	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}
	return uri, nil
}

// escape percent-encodes a parameter value. QueryEscape would emit "+"
// for spaces, which URI consumers do not all accept.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// parseAmount converts a decimal coin amount into satoshis without
// going through floating point.
func parseAmount(s string) (btcutil.Amount, error) {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" {
		return 0, errors.New("missing integer part")
	}
	if hasFrac && fracPart == "" {
		return 0, errors.New("trailing decimal point")
	}
	if len(fracPart) > 8 {
		return 0, errors.New("more than eight decimal places")
	}

	for _, part := range []string{intPart, fracPart} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("invalid character %q", c)
			}
		}
	}

	coins, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, errors.New("integer part out of range")
	}
	if coins > maxCoins {
		return 0, fmt.Errorf("amount exceeds %d coins", int64(maxCoins))
	}

	var frac uint64
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", 8-len(fracPart))
		if frac, err = strconv.ParseUint(padded, 10, 64); err != nil {
			return 0, errors.New("fractional part out of range")
		}
	}

	amount := btcutil.Amount(coins*btcutil.SatoshiPerBitcoin) + btcutil.Amount(frac)
	if amount > btcutil.MaxSatoshi {
		return 0, fmt.Errorf("amount exceeds %d coins", int64(maxCoins))
	}
	if amount == 0 {
		return 0, errors.New("amount must be positive")
	}
	return amount, nil
}

// formatAmount renders satoshis as a whole-coin decimal with trailing
// zeros trimmed.
func formatAmount(amount btcutil.Amount) string {
	coins := amount / btcutil.SatoshiPerBitcoin
	frac := amount % btcutil.SatoshiPerBitcoin
	if frac == 0 {
		return strconv.FormatInt(int64(coins), 10)
	}
	return strings.TrimRight(fmt.Sprintf("%d.%08d", coins, frac), "0")
}
