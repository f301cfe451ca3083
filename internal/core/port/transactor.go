package port

import "context"

// Transactor runs fn in a single unit of work. Repositories called with the context
// handed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
