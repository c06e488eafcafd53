package org

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

func TestCreateOrganisation(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("insert into organisations").
		WithArgs(int64(100), "cb", "Coding Blocks", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	o := &Organisation{ID: 100, Name: "cb", FullName: "Coding Blocks", Domain: []string{"codingblocks.com"}}
	if err := store.Create(context.Background(), o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Create(context.Background(), &Organisation{Name: "x", FullName: "X"}); !errors.Is(err, pg.ErrNotNullViolation) {
		t.Fatalf("organisation without external id accepted: %v", err)
	}
}

func TestAdminAndMemberAreIndependent(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	// The same user joins both relations of the same organisation.
	mock.ExpectQuery("insert into orgadmins").
		WithArgs(int64(100), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectQuery("insert into orgmembers").
		WithArgs(int64(100), int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	if _, err := store.AddAdmin(ctx, 100, 1); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	if _, err := store.AddMember(ctx, 100, 1, "alice@codingblocks.com"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// Removing the admin row leaves the member row untouched.
	mock.ExpectExec("delete from orgadmins").
		WithArgs(int64(100), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.RemoveAdmin(ctx, 100, 1); err != nil {
		t.Fatalf("RemoveAdmin: %v", err)
	}

	mock.ExpectQuery("from orgmembers where organisation_id").
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organisation_id", "user_id", "email", "created_at"}).
			AddRow(1, 100, 1, "alice@codingblocks.com", time.Now()))
	members, err := store.ListMembers(ctx, 100)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].UserID != 1 {
		t.Fatalf("member relation should survive admin removal: %+v", members)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddAdminUnknownUser(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("insert into orgadmins").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "orgadmins_user_id_fkey"})

	_, err := store.AddAdmin(context.Background(), 100, 404)
	if !errors.Is(err, pg.ErrForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestRepeatedMembershipAllowed(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	// Neither relation is unique on (organisation, user): a re-invite under a
	// different email inserts a second row for the same pair.
	emails := []string{"alice@codingblocks.com", "alice@gmail.com"}
	for i, email := range emails {
		mock.ExpectQuery("insert into orgmembers").
			WithArgs(int64(100), int64(1), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(i+1, time.Now()))
		m, err := store.AddMember(ctx, 100, 1, email)
		if err != nil {
			t.Fatalf("AddMember #%d for same pair rejected: %v", i+1, err)
		}
		if m.Email != email {
			t.Fatalf("member email lost: %+v", m)
		}
	}

	mock.ExpectQuery("insert into orgadmins").
		WithArgs(int64(100), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectQuery("insert into orgadmins").
		WithArgs(int64(100), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, time.Now()))
	for i := 0; i < 2; i++ {
		if _, err := store.AddAdmin(ctx, 100, 1); err != nil {
			t.Fatalf("AddAdmin #%d for same pair rejected: %v", i+1, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemberEmailMayRepeat(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	// No constraint prevents two members sharing an invite email.
	for i := int64(1); i <= 2; i++ {
		mock.ExpectQuery("insert into orgmembers").
			WithArgs(int64(100), i, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(i, time.Now()))
		if _, err := store.AddMember(ctx, 100, i, "shared@codingblocks.com"); err != nil {
			t.Fatalf("AddMember %d: %v", i, err)
		}
	}
}

func TestRemoveMemberMissing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec("delete from orgmembers").
		WithArgs(int64(100), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.RemoveMember(context.Background(), 100, 9); !errors.Is(err, pg.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
