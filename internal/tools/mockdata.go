package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"wallet-mcp/internal/tool"
)

const maxSeriesPoints = 500

// MockMarketData returns a tool generating a synthetic hourly price/volume
// series for a symbol. Passing a seed makes the series reproducible.
func MockMarketData() tool.Tool {
	return tool.Tool{
		Name:        "mock_market_data",
		Description: "Generate a synthetic hourly price and volume series for a symbol",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"symbol": {Type: "string"},
				"points": {Type: "integer", Description: "number of hourly points, 1 to 500 (default 24)"},
				"seed":   {Type: "integer", Description: "optional seed for a reproducible series"},
			},
			Required: []string{"symbol"},
		},
		Execute: func(_ context.Context, params map[string]any) (any, error) {
			symbol, _ := params["symbol"].(string)
			if symbol == "" {
				return nil, errors.New("symbol is required")
			}
			points := 24
			if v, ok := params["points"].(float64); ok {
				points = int(v)
			}
			if points < 1 || points > maxSeriesPoints {
				return nil, fmt.Errorf("points must be between 1 and %d", maxSeriesPoints)
			}
			seed := time.Now().UnixNano()
			if v, ok := params["seed"].(float64); ok {
				seed = int64(v)
			}

			rng := rand.New(rand.NewSource(seed))
			price := 50 + rng.Float64()*1500
			start := time.Now().UTC().Truncate(time.Hour).Add(-time.Duration(points-1) * time.Hour)

			series := make([]map[string]any, 0, points)
			for i := 0; i < points; i++ {
				// Random walk with a ±2% hourly step.
				price = math.Max(0.01, price*(1+(rng.Float64()-0.5)*0.04))
				series = append(series, map[string]any{
					"timestamp": start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
					"price":     math.Round(price*100) / 100,
					"volume":    math.Round(rng.Float64() * 1e6),
				})
			}
			return map[string]any{"symbol": symbol, "series": series}, nil
		},
	}
}
