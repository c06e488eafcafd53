package recovery

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"oneauth.org/internal/pg"
)

func TestIssueLoginOTPRateLimited(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	// Two OTPs per burst, effectively no refill during the test.
	svc := NewService(store, NewOTPLimiter(rate.Limit(0.0001), 2))
	ctx := context.Background()

	mock.ExpectQuery("insert into usermobileotps").WillReturnRows(createdRows(1))
	mock.ExpectQuery("insert into usermobileotps").WillReturnRows(createdRows(2))

	first, err := svc.IssueLoginOTP(ctx, 1, "+919812345678")
	require.NoError(t, err)
	require.Len(t, first.LoginOTP, 6)

	second, err := svc.IssueLoginOTP(ctx, 1, "+919812345678")
	require.NoError(t, err)
	// Two unused OTPs may coexist for one number.
	require.NotZero(t, second.ID)

	_, err = svc.IssueLoginOTP(ctx, 1, "+919812345678")
	require.ErrorIs(t, err, ErrOTPRateLimited)

	// A different number has its own budget.
	mock.ExpectQuery("insert into usermobileotps").WillReturnRows(createdRows(3))
	_, err = svc.IssueLoginOTP(ctx, 2, "+919800000000")
	require.NoError(t, err)
}

func TestIssueResetKeyGeneratesKey(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	svc := NewService(store, nil)

	mock.ExpectQuery("insert into resetpasswords").
		WithArgs(sqlmock.AnyArg(), int64(4)).
		WillReturnRows(createdRows(1))

	rp, err := svc.IssueResetKey(context.Background(), 4)
	require.NoError(t, err)
	require.NotEmpty(t, rp.Key)
}

func TestConsumeLoginOTPMissing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()
	svc := NewService(store, nil)

	mock.ExpectQuery("from usermobileotps").
		WillReturnError(sql.ErrNoRows)
	_, err := svc.ConsumeLoginOTP(context.Background(), "+91", "000000")
	require.ErrorIs(t, err, pg.ErrNotFound)
}

func TestGenerateOTPFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit in otp %q", code)
		}
	}
}
