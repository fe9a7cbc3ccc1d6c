package datagateway

import "context"

type Tx interface {
	// Commit persists every change made since the transaction began. It is a no-op outside a transaction.
	Commit(ctx context.Context) error

	// Rollback discards every change made since the transaction began. It is safe to
	// call outside a transaction and after Commit, so it can always be deferred.
	Rollback(ctx context.Context) error
}
