package quote

import "context"

// Repository persists quotes. Implementations return ErrNotFound for unknown
// ids and ErrDuplicate when an opportunity number is already taken.
type Repository interface {
	List(ctx context.Context) ([]Quote, error)
	Get(ctx context.Context, id int64) (Quote, error)
	Create(ctx context.Context, q *Quote) error
	Update(ctx context.Context, q *Quote) error
	Close()
}
