package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"oneauth.org/internal/pg"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewPGStore(db), mock, func() { db.Close() }
}

func TestCreateSubscription(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	mock.ExpectQuery("insert into event_subscriptions").
		WithArgs(int64(10), "user", "create").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	sub := &Subscription{ClientID: 10, Model: ModelUser, Type: ChangeCreate}
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.ID != 1 {
		t.Fatalf("id not assigned: %+v", sub)
	}
}

func TestCreateSubscriptionRejectsUnknownEnums(t *testing.T) {
	store, _, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	err := store.Create(ctx, &Subscription{ClientID: 10, Model: "organisation", Type: ChangeCreate})
	if !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("unknown model accepted: %v", err)
	}
	err = store.Create(ctx, &Subscription{ClientID: 10, Model: ModelUser, Type: "upsert"})
	if !errors.Is(err, ErrInvalidChangeType) {
		t.Fatalf("unknown change type accepted: %v", err)
	}
}

func TestDuplicateSubscriptionsAllowed(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	// The registry carries no uniqueness on (client, model, type).
	for i := int64(1); i <= 2; i++ {
		mock.ExpectQuery("insert into event_subscriptions").
			WithArgs(int64(10), "address", "delete").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(i, time.Now()))
		if err := store.Create(ctx, &Subscription{ClientID: 10, Model: ModelAddress, Type: ChangeDelete}); err != nil {
			t.Fatalf("duplicate %d rejected: %v", i, err)
		}
	}
}

func TestCreateSubscriptionUnknownClient(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("insert into event_subscriptions").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "event_subscriptions_client_id_fkey"})

	err := store.Create(context.Background(), &Subscription{ClientID: 404, Model: ModelClient, Type: ChangeUpdate})
	if !errors.Is(err, pg.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestListByClient(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("from event_subscriptions where client_id").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "model", "type", "created_at"}).
			AddRow(1, 10, "user", "create", time.Now()).
			AddRow(2, 10, "demographic", "update", time.Now()))

	subs, err := store.ListByClient(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(subs) != 2 || subs[1].Model != ModelDemographic {
		t.Fatalf("unexpected subscriptions: %+v", subs)
	}
}

func TestDeleteSubscriptionMissing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec("delete from event_subscriptions").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), 9); !errors.Is(err, pg.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
