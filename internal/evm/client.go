// Package evm provides a minimal client for Ethereum-style JSON-RPC endpoints.
package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsAddress reports whether s looks like a 20-byte hex address.
func IsAddress(s string) bool { return addressPattern.MatchString(s) }

// Client is a minimal HTTP client for JSON-RPC 2.0 node endpoints.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// New returns a new client. If httpClient is nil, a default with 15s timeout is used.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{Endpoint: strings.TrimRight(endpoint, "/"), HTTP: httpClient}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Balance returns the latest wei balance of the address.
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	raw, err := c.call(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return nil, err
	}
	return parseQuantity(raw)
}

// TransactionCount returns the latest nonce of the address.
func (c *Client) TransactionCount(ctx context.Context, address string) (uint64, error) {
	raw, err := c.call(ctx, "eth_getTransactionCount", address, "latest")
	if err != nil {
		return 0, err
	}
	n, err := parseQuantity(raw)
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// GasPrice returns the node's current gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	raw, err := c.call(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	return parseQuantity(raw)
}

func (c *Client) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if c.Endpoint == "" {
		return nil, errors.New("rpc endpoint missing")
	}
	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rpc status %d", resp.StatusCode)
	}
	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	return out.Result, nil
}

// parseQuantity decodes a JSON-encoded hex quantity ("0x...") into a big.Int.
func parseQuantity(raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("non-string quantity: %w", err)
	}
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("malformed quantity %q", s)
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("malformed quantity %q", s)
	}
	return n, nil
}
