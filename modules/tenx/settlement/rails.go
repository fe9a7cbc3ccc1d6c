package settlement

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// Rails moves funds. Implementations must pass ctx on to any recipient code
// they run, so nested calls can be detected.
type Rails interface {
	// ReceiveNative takes amount of native currency tendered by from into custody.
	ReceiveNative(ctx context.Context, from common.Address, amount uint128.Uint128) error

	// TransferNative sends native currency out of custody. It never errors,
	// a rejected transfer is reported as false and the funds stay in custody.
	TransferNative(ctx context.Context, to common.Address, amount uint128.Uint128) bool

	// BeginTokenTx opens an all-or-nothing batch of transfers of token.
	BeginTokenTx(ctx context.Context, token common.Address) (TokenTx, error)
}

// TokenTx is a batch of token transfers that is applied on Commit only.
type TokenTx interface {
	// Pull moves amount from the payer into custody using the payer's allowance.
	Pull(ctx context.Context, from common.Address, amount uint128.Uint128) error

	// Transfer moves amount out of custody.
	Transfer(ctx context.Context, to common.Address, amount uint128.Uint128) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context)
}
