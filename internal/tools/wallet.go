// Package tools holds the tool collaborators registered with the dispatch
// server. Each tool validates its own parameters; the dispatcher never does.
package tools

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"wallet-mcp/internal/evm"
	"wallet-mcp/internal/tool"
)

const walletCacheTTL = 5 * time.Minute

// ChainReader is the slice of the RPC client the wallet tool needs.
type ChainReader interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
	TransactionCount(ctx context.Context, address string) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
}

// WalletAnalytics returns a tool summarizing on-chain activity for an
// address. With a nil chain it serves mock figures, so the server stays
// usable before an RPC endpoint is configured.
func WalletAnalytics(chain ChainReader, cache *Cache) tool.Tool {
	return tool.Tool{
		Name:        "wallet_analytics",
		Description: "Summarize balance and activity for an EVM wallet address",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"address": {Type: "string", Description: "0x-prefixed 20-byte hex address"},
			},
			Required: []string{"address"},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			address, _ := params["address"].(string)
			if address == "" {
				return nil, errors.New("address is required")
			}
			if !evm.IsAddress(address) {
				return nil, fmt.Errorf("invalid address %q", address)
			}

			cacheKey := "wallet_analytics:" + address
			if v, ok := cache.Get(cacheKey); ok {
				return v, nil
			}

			if chain == nil {
				// Fallback mock
				out := analyticsResult(address, big.NewInt(1_250_000_000_000_000_000), 12, big.NewInt(30_000_000_000), true)
				cache.Set(cacheKey, out, walletCacheTTL)
				return out, nil
			}

			balance, err := chain.Balance(ctx, address)
			if err != nil {
				return nil, fmt.Errorf("fetching balance: %w", err)
			}
			nonce, err := chain.TransactionCount(ctx, address)
			if err != nil {
				return nil, fmt.Errorf("fetching transaction count: %w", err)
			}
			gasPrice, err := chain.GasPrice(ctx)
			if err != nil {
				return nil, fmt.Errorf("fetching gas price: %w", err)
			}

			out := analyticsResult(address, balance, nonce, gasPrice, false)
			cache.Set(cacheKey, out, walletCacheTTL)
			return out, nil
		},
	}
}

func analyticsResult(address string, balanceWei *big.Int, nonce uint64, gasPriceWei *big.Int, mock bool) map[string]any {
	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(balanceWei), big.NewFloat(1e18)).Float64()
	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(gasPriceWei), big.NewFloat(1e9)).Float64()
	return map[string]any{
		"address":           address,
		"balance_wei":       balanceWei.String(),
		"balance_eth":       eth,
		"transaction_count": nonce,
		"gas_price_gwei":    gwei,
		"activity":          activityLevel(nonce),
		"mock":              mock,
	}
}

func activityLevel(nonce uint64) string {
	switch {
	case nonce == 0:
		return "dormant"
	case nonce < 50:
		return "occasional"
	case nonce < 1000:
		return "active"
	default:
		return "heavy"
	}
}
