// Package explorer talks to a block explorer's REST API: it lists the
// unspent outputs funding an address and broadcasts signed transactions.
//
// The wire format follows the Blockchair dashboard API: queries are
// filter expressions in the "q" parameter and every response wraps its
// payload in a "data" field.
package explorer

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 15 * time.Second

// Client queries one explorer endpoint.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the explorer at baseURL, for example
// "https://api.blockchair.com/bitcoin-cash".
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
// An empty string keeps resty's default.
func (c *Client) WithUserAgent(userAgent string) *Client {
	if userAgent != "" {
		c.http.SetHeader("User-Agent", userAgent)
	}
	return c
}

// UTXO is one spendable output as the explorer reports it.
type UTXO struct {
	TxID  string `json:"transaction_hash"`
	Index uint32 `json:"index"`
	Value uint64 `json:"value"`
}

type outputsResponse struct {
	Data []UTXO `json:"data"`
}

type pushResponse struct {
	Data struct {
		TransactionHash string `json:"transaction_hash"`
	} `json:"data"`
}

// UnspentOutputs lists the confirmed unspent outputs paying to addr.
func (c *Client) UnspentOutputs(ctx context.Context, addr string) ([]UTXO, error) {
	var out outputsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", fmt.Sprintf("is_spent(0),recipient(%s)", addr)).
		SetResult(&out).
		Get("/outputs")
	if err != nil {
		return nil, fmt.Errorf("querying unspent outputs: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("explorer returned %s: %s", resp.Status(), resp.String())
	}
	return out.Data, nil
}

// MempoolOutputs lists outputs paying to addr that are still waiting
// for a block.
func (c *Client) MempoolOutputs(ctx context.Context, addr string) ([]UTXO, error) {
	var out outputsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", fmt.Sprintf("recipient(%s)", addr)).
		SetResult(&out).
		Get("/mempool/outputs")
	if err != nil {
		return nil, fmt.Errorf("querying mempool outputs: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("explorer returned %s: %s", resp.Status(), resp.String())
	}
	return out.Data, nil
}

// PushTransaction broadcasts a signed raw transaction and returns the
// transaction ID the explorer reports.
func (c *Client) PushTransaction(ctx context.Context, rawTx []byte) (string, error) {
	if len(rawTx) == 0 {
		return "", fmt.Errorf("refusing to push an empty transaction")
	}

	var out pushResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"data": hex.EncodeToString(rawTx)}).
		SetResult(&out).
		Post("/push/transaction")
	if err != nil {
		return "", fmt.Errorf("pushing transaction: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("explorer rejected transaction %s: %s", resp.Status(), resp.String())
	}
	return out.Data.TransactionHash, nil
}
