package custody

import (
	"context"
	"fmt"

	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/chain"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// TokenBackend implements Backend against a token contract reachable over
// JSON-RPC. Transfers settle against the configured pool address.
type TokenBackend struct {
	client       *chain.Client
	contractHash string
	poolAddress  identity.Address
	log          *logger.Logger
}

// TokenConfig holds the contract wiring for a TokenBackend.
type TokenConfig struct {
	ContractHash string
	PoolAddress  identity.Address
}

// NewTokenBackend creates a chain-backed custody backend.
func NewTokenBackend(client *chain.Client, cfg TokenConfig, log *logger.Logger) (*TokenBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("chain client required")
	}
	if cfg.ContractHash == "" {
		return nil, fmt.Errorf("token contract hash required")
	}
	if cfg.PoolAddress.IsZero() {
		return nil, fmt.Errorf("pool address required")
	}
	if log == nil {
		log = logger.NewDefault("custody")
	}
	return &TokenBackend{
		client:       client,
		contractHash: cfg.ContractHash,
		poolAddress:  cfg.PoolAddress,
		log:          log,
	}, nil
}

var _ Backend = (*TokenBackend)(nil)

func (b *TokenBackend) BalanceOf(ctx context.Context, addr identity.Address) (int64, error) {
	res, err := b.client.InvokeFunction(ctx, b.contractHash, "balanceOf", []chain.ContractParam{
		chain.AddressParam(addr.String()),
	})
	if err != nil {
		return 0, fmt.Errorf("balanceOf %s: %w", addr, err)
	}
	return chain.IntFromStack(res)
}

func (b *TokenBackend) TransferIn(ctx context.Context, from identity.Address, amount int64) error {
	return b.transfer(ctx, from, b.poolAddress, amount)
}

func (b *TokenBackend) TransferOut(ctx context.Context, to identity.Address, amount int64) error {
	return b.transfer(ctx, b.poolAddress, to, amount)
}

// transfer invokes the contract transfer method. The contract reports a
// declined transfer as a false boolean on the stack, not a VM fault.
func (b *TokenBackend) transfer(ctx context.Context, from, to identity.Address, amount int64) error {
	res, err := b.client.InvokeFunction(ctx, b.contractHash, "transfer", []chain.ContractParam{
		chain.AddressParam(from.String()),
		chain.AddressParam(to.String()),
		chain.IntParam(amount),
	})
	if err != nil {
		return err
	}

	ok, err := chain.BoolFromStack(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transfer of %d from %s declined by contract", amount, from)
	}

	b.log.WithField("amount", amount).Infof("transfer settled from %s to %s", from, to)
	return nil
}
