package recovery

import (
	"context"
	"database/sql"
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

func createdRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow(id, time.Now(), time.Now())
}

func TestResetPasswordKeyReuseFails(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	mock.ExpectQuery("insert into resetpasswords").
		WithArgs("key-1", int64(1)).
		WillReturnRows(createdRows(1))
	if err := store.CreateResetPassword(ctx, &ResetPassword{Key: "key-1", UserID: 1}); err != nil {
		t.Fatalf("CreateResetPassword: %v", err)
	}

	mock.ExpectQuery("insert into resetpasswords").
		WithArgs("key-1", int64(2)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "resetpasswords_key_key"})
	err := store.CreateResetPassword(ctx, &ResetPassword{Key: "key-1", UserID: 2})
	if !errors.Is(err, pg.ErrUniqueViolation) {
		t.Fatalf("expected unique violation for reused key, got %v", err)
	}
}

func TestFindResetPasswordByKey(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("from resetpasswords where key").
		WithArgs("key-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "user_id", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, "key-1", 42, time.Now(), time.Now(), nil))

	rp, err := store.FindResetPasswordByKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("FindResetPasswordByKey: %v", err)
	}
	if rp.UserID != 42 {
		t.Fatalf("key resolved to wrong owner: %d", rp.UserID)
	}
}

func TestVerifyEmailCarriesReturnTo(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("insert into verifyemails").
		WithArgs("key-2", int64(3), sqlmock.AnyArg()).
		WillReturnRows(createdRows(7))

	ve := &VerifyEmail{Key: "key-2", UserID: 3, ReturnTo: "https://example.com/next"}
	if err := store.CreateVerifyEmail(context.Background(), ve); err != nil {
		t.Fatalf("CreateVerifyEmail: %v", err)
	}
	if ve.ID != 7 {
		t.Fatalf("id not assigned: %d", ve.ID)
	}
}

func TestVerifyMobileOnePendingPerNumber(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("insert into verifymobiles").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "verifymobiles_mobile_number_key"})

	err := store.CreateVerifyMobile(context.Background(),
		&VerifyMobile{Key: "k", MobileNumber: "+919812345678", UserID: 1})
	if !errors.Is(err, pg.ErrUniqueViolation) {
		t.Fatalf("expected unique violation on pending number, got %v", err)
	}
}

func TestVerifyMobileKeyNotUnique(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	// Only the number carries a unique constraint; the same key value may
	// appear on pending verifications for different numbers.
	numbers := []string{"+919812345678", "+919812345679"}
	for i, number := range numbers {
		mock.ExpectQuery("insert into verifymobiles").
			WithArgs("k", number, int64(1)).
			WillReturnRows(createdRows(int64(i + 1)))
		vm := &VerifyMobile{Key: "k", MobileNumber: number, UserID: 1}
		if err := store.CreateVerifyMobile(ctx, vm); err != nil {
			t.Fatalf("shared key rejected for %s: %v", number, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMobileOTPConsumedInPlace(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	mock.ExpectQuery("from usermobileotps").
		WithArgs("+919812345678", "123456").
		WillReturnRows(sqlmock.NewRows([]string{"id", "login_otp", "mobile_number", "user_id", "used_at", "created_at", "updated_at", "deleted_at"}).
			AddRow(5, "123456", "+919812345678", 9, nil, time.Now(), time.Now(), nil))

	otp, err := store.FindUnusedOTP(ctx, "+919812345678", "123456")
	if err != nil {
		t.Fatalf("FindUnusedOTP: %v", err)
	}
	if otp.UsedAt != nil {
		t.Fatal("fresh OTP should be unused")
	}

	mock.ExpectExec("update usermobileotps set used_at").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.MarkOTPUsed(ctx, 5); err != nil {
		t.Fatalf("MarkOTPUsed: %v", err)
	}

	// Second consumption finds no unused row to update.
	mock.ExpectExec("update usermobileotps set used_at").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.MarkOTPUsed(ctx, 5); !errors.Is(err, pg.ErrNotFound) {
		t.Fatalf("expected not found on double consume, got %v", err)
	}
}

func TestFindUnusedOTPMissing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery("from usermobileotps").
		WillReturnError(sql.ErrNoRows)
	_, err := store.FindUnusedOTP(context.Background(), "+910000000000", "000000")
	if !errors.Is(err, pg.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateBoundaryChecks(t *testing.T) {
	store, _, done := newMockStore(t)
	defer done()
	ctx := context.Background()

	if err := store.CreateResetPassword(ctx, &ResetPassword{UserID: 1}); !errors.Is(err, pg.ErrNotNullViolation) {
		t.Fatalf("missing key accepted: %v", err)
	}
	if err := store.CreateVerifyMobile(ctx, &VerifyMobile{Key: "k", UserID: 1}); !errors.Is(err, pg.ErrNotNullViolation) {
		t.Fatalf("missing number accepted: %v", err)
	}
	if err := store.CreateMobileOTP(ctx, &MobileOTP{MobileNumber: "+91", UserID: 1}); !errors.Is(err, pg.ErrNotNullViolation) {
		t.Fatalf("missing otp accepted: %v", err)
	}
}
