// Command wallet-mcp-http starts the tool dispatch HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"google.golang.org/genai"
	"wallet-mcp/internal/evm"
	"wallet-mcp/internal/server"
	"wallet-mcp/internal/tool"
	"wallet-mcp/internal/tools"
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfg := server.Config{
		Port:        getEnv("PORT", "3000"),
		TLSCertFile: os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:  os.Getenv("TLS_KEY_FILE"),
	}

	var chain tools.ChainReader
	if endpoint := os.Getenv("RPC_ENDPOINT"); endpoint != "" {
		chain = evm.New(endpoint, nil)
	} else {
		log.Println("INFO: RPC_ENDPOINT not set; wallet_analytics will use mock data until configured.")
	}

	var gen tools.TextGenerator
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		gen = tools.NewGeminiGenerator(client)
	} else {
		log.Println("INFO: GEMINI_API_KEY not set; generate_text will fail until configured.")
	}

	registry, err := tool.NewRegistry(
		tools.WalletAnalytics(chain, tools.NewCache()),
		tools.MockMarketData(),
		tools.GenerateText(gen, os.Getenv("GEMINI_MODEL")),
	)
	if err != nil {
		log.Fatalf("building tool registry: %v", err)
	}

	srv := server.New(cfg, registry)
	log.Printf("Starting tool dispatch server on :%s\n", cfg.Port)
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		log.Println("TLS enabled: using provided certificate and key")
		if err := http.ListenAndServeTLS(":"+cfg.Port, cfg.TLSCertFile, cfg.TLSKeyFile, srv.Router()); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
