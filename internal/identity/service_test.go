package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"oneauth.org/internal/pg"
)

func TestServiceDeleteAccount(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	svc := NewService(store)

	mock.ExpectExec("update users set deleted_at").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Only local and github identities exist; the other provider tables
	// report nothing to delete and are skipped.
	for _, table := range []string{"userlocals", "userfacebooks", "usertwitters", "usergithubs", "usergoogles", "userlinkedins", "userlms"} {
		affected := int64(0)
		if table == "userlocals" || table == "usergithubs" {
			affected = 1
		}
		mock.ExpectExec("update " + table + " set deleted_at").
			WithArgs(int64(9)).
			WillReturnResult(sqlmock.NewResult(0, affected))
	}

	if err := svc.DeleteAccount(context.Background(), 9); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestServiceDeleteAccountMissingUser(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	svc := NewService(store)

	mock.ExpectExec("update users set deleted_at").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.DeleteAccount(context.Background(), 404)
	if !errors.Is(err, pg.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceCreateAccountSurfacesCollision(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	svc := NewService(store)

	mock.ExpectQuery("insert into users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(1, time.Now(), time.Now()))
	if err := svc.CreateAccount(context.Background(), &User{Username: "alice"}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	err := svc.CreateAccount(context.Background(), &User{Username: "alice"})
	if !errors.Is(err, pg.ErrUniqueViolation) {
		t.Fatalf("expected unique violation for duplicate username, got %v", err)
	}
}

func TestServiceAttachProvider(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	svc := NewService(store)

	mock.ExpectQuery("insert into usergoogles").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(1, time.Now(), time.Now()))
	err := svc.AttachProvider(context.Background(), ProviderGoogle,
		&SocialIdentity{UserID: 1, AccountID: "g-1"})
	if err != nil {
		t.Fatalf("AttachProvider: %v", err)
	}
}
