package custody

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FundPool-Network/funding_ledger/internal/chain"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *TokenBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := chain.NewClient(chain.Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	backend, err := NewTokenBackend(client, TokenConfig{
		ContractHash: "0xcontract",
		PoolAddress:  "0xpool",
	}, nil)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	return backend
}

func invokeResponse(state string, stack ...interface{}) []byte {
	items := make([]map[string]interface{}, 0, len(stack))
	for _, v := range stack {
		switch v.(type) {
		case bool:
			items = append(items, map[string]interface{}{"type": "Boolean", "value": v})
		default:
			items = append(items, map[string]interface{}{"type": "Integer", "value": v})
		}
	}
	body, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result": map[string]interface{}{
			"state": state,
			"stack": items,
		},
	})
	return body
}

func TestBalanceOf(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var req chain.RPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "invokefunction" {
			t.Fatalf("unexpected method %s", req.Method)
		}
		w.Write(invokeResponse("HALT", "750"))
	})

	balance, err := backend.BalanceOf(context.Background(), "0xcaller")
	if err != nil {
		t.Fatalf("balance of: %v", err)
	}
	if balance != 750 {
		t.Fatalf("expected balance 750, got %d", balance)
	}
}

func TestTransferIn_Declined(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(invokeResponse("HALT", false))
	})

	if err := backend.TransferIn(context.Background(), "0xcaller", 100); err == nil {
		t.Fatal("expected declined transfer to error")
	}
}

func TestTransferOut_VMFault(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(invokeResponse("FAULT"))
	})

	if err := backend.TransferOut(context.Background(), "0xpic", 50); err == nil {
		t.Fatal("expected fault to error")
	}
}
