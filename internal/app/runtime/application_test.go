package runtime

import (
	"context"
	"testing"

	"github.com/FundPool-Network/funding_ledger/internal/config"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
		},
		Logging: logger.LoggingConfig{Level: "error", Format: "json", Output: "stdout"},
		Custody: config.CustodyConfig{
			RPCURL:        "http://localhost:20332",
			TokenContract: "0xtoken",
			PoolAddress:   "0xpool",
			AdminAddress:  "0xadmin",
		},
	}
}

func TestNewApplicationWithConfig_MemoryStores(t *testing.T) {
	app, err := NewApplicationWithConfig(testConfig())
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNewApplicationWithConfig_RequiresCustody(t *testing.T) {
	cfg := testConfig()
	cfg.Custody.RPCURL = ""
	if _, err := NewApplicationWithConfig(cfg); err == nil {
		t.Fatal("expected missing RPC URL to fail")
	}

	cfg = testConfig()
	cfg.Custody.AdminAddress = ""
	if _, err := NewApplicationWithConfig(cfg); err == nil {
		t.Fatal("expected missing admin to fail")
	}
}
