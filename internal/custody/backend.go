// Package custody abstracts the external token custody holding the pooled
// funds. The ledger only moves internal balances after the backend confirms
// the corresponding on-chain transfer.
package custody

import (
	"context"

	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
)

// Backend moves tokens between external parties and the pool address.
type Backend interface {
	// BalanceOf returns the token balance held by addr.
	BalanceOf(ctx context.Context, addr identity.Address) (int64, error)

	// TransferIn moves amount from the sender into the pool address.
	TransferIn(ctx context.Context, from identity.Address, amount int64) error

	// TransferOut moves amount from the pool address to the recipient.
	TransferOut(ctx context.Context, to identity.Address, amount int64) error
}
