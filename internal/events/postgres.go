package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"oneauth.org/internal/obs"
	"oneauth.org/internal/pg"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, sub *Subscription) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("event_subscription", "create", start, err) }()

	if !sub.Model.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidModel, sub.Model)
	}
	if !sub.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidChangeType, sub.Type)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into event_subscriptions (client_id, model, type)
		values ($1, $2, $3)
		returning id, created_at
	`, sub.ClientID, string(sub.Model), string(sub.Type),
	).Scan(&sub.ID, &sub.CreatedAt)
	return pg.Map(err)
}

func (s *PGStore) ListByClient(ctx context.Context, clientID int64) ([]*Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, client_id, model, type, created_at
		from event_subscriptions where client_id = $1 order by id
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.ClientID, &sub.Model, &sub.Type, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from event_subscriptions where id = $1`, id)
	if err != nil {
		return pg.MapDelete(err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return pg.ErrNotFound
	}
	return nil
}
