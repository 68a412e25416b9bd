// Package tx provides transaction management abstractions.
// Domain code depends on this interface; the pgx implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside a transaction.
// If fn returns an error, the transaction is rolled back and none of its
// writes become visible. Nested calls reuse the transaction from ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
