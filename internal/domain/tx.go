package domain

import "context"

// TxManager runs fn inside a single storage transaction. Repositories called with the
// context passed to fn take part in that transaction; if fn returns an error nothing commits.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
