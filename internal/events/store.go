package events

import "context"

// Store manages webhook subscriptions.
type Store interface {
	Create(ctx context.Context, sub *Subscription) error
	ListByClient(ctx context.Context, clientID int64) ([]*Subscription, error)
	Delete(ctx context.Context, id int64) error
}
