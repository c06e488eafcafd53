package recovery

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

func (s *PGStore) CreateResetPassword(ctx context.Context, rp *ResetPassword) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("resetpassword", "create", start, err) }()

	if rp.Key == "" {
		return fmt.Errorf("%w: key", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into resetpasswords (key, user_id)
		values ($1, $2)
		returning id, created_at, updated_at
	`, rp.Key, rp.UserID).Scan(&rp.ID, &rp.CreatedAt, &rp.UpdatedAt)
	return pg.Map(err)
}

func (s *PGStore) FindResetPasswordByKey(ctx context.Context, key string) (*ResetPassword, error) {
	var (
		rp        ResetPassword
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, key, user_id, created_at, updated_at, deleted_at
		from resetpasswords where key = $1 and deleted_at is null
	`, key).Scan(&rp.ID, &rp.Key, &rp.UserID, &rp.CreatedAt, &rp.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	setDeleted(&rp.DeletedAt, deletedAt)
	return &rp, nil
}

func (s *PGStore) SoftDeleteResetPassword(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "resetpasswords", id)
}

func (s *PGStore) CreateVerifyEmail(ctx context.Context, ve *VerifyEmail) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("verifyemail", "create", start, err) }()

	if ve.Key == "" {
		return fmt.Errorf("%w: key", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into verifyemails (key, user_id, return_to)
		values ($1, $2, $3)
		returning id, created_at, updated_at
	`, ve.Key, ve.UserID, pg.NullIfEmpty(ve.ReturnTo)).Scan(&ve.ID, &ve.CreatedAt, &ve.UpdatedAt)
	return pg.Map(err)
}

func (s *PGStore) FindVerifyEmailByKey(ctx context.Context, key string) (*VerifyEmail, error) {
	var (
		ve        VerifyEmail
		returnTo  sql.NullString
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, key, user_id, return_to, created_at, updated_at, deleted_at
		from verifyemails where key = $1 and deleted_at is null
	`, key).Scan(&ve.ID, &ve.Key, &ve.UserID, &returnTo, &ve.CreatedAt, &ve.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	ve.ReturnTo = returnTo.String
	setDeleted(&ve.DeletedAt, deletedAt)
	return &ve, nil
}

func (s *PGStore) SoftDeleteVerifyEmail(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "verifyemails", id)
}

func (s *PGStore) CreateVerifyMobile(ctx context.Context, vm *VerifyMobile) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("verifymobile", "create", start, err) }()

	if vm.Key == "" {
		return fmt.Errorf("%w: key", pg.ErrNotNullViolation)
	}
	if vm.MobileNumber == "" {
		return fmt.Errorf("%w: mobile_number", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into verifymobiles (key, mobile_number, user_id)
		values ($1, $2, $3)
		returning id, created_at, updated_at
	`, vm.Key, vm.MobileNumber, vm.UserID).Scan(&vm.ID, &vm.CreatedAt, &vm.UpdatedAt)
	return pg.Map(err)
}

func (s *PGStore) FindVerifyMobileByNumber(ctx context.Context, mobileNumber string) (*VerifyMobile, error) {
	var (
		vm        VerifyMobile
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, key, mobile_number, user_id, created_at, updated_at, deleted_at
		from verifymobiles where mobile_number = $1 and deleted_at is null
	`, mobileNumber).Scan(&vm.ID, &vm.Key, &vm.MobileNumber, &vm.UserID, &vm.CreatedAt, &vm.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	setDeleted(&vm.DeletedAt, deletedAt)
	return &vm, nil
}

func (s *PGStore) SoftDeleteVerifyMobile(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "verifymobiles", id)
}

func (s *PGStore) CreateMobileOTP(ctx context.Context, otp *MobileOTP) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("usermobileotp", "create", start, err) }()

	if otp.LoginOTP == "" {
		return fmt.Errorf("%w: login_otp", pg.ErrNotNullViolation)
	}
	if otp.MobileNumber == "" {
		return fmt.Errorf("%w: mobile_number", pg.ErrNotNullViolation)
	}
	err = s.db.QueryRowContext(ctx, `
		insert into usermobileotps (login_otp, mobile_number, user_id)
		values ($1, $2, $3)
		returning id, created_at, updated_at
	`, otp.LoginOTP, otp.MobileNumber, otp.UserID).Scan(&otp.ID, &otp.CreatedAt, &otp.UpdatedAt)
	return pg.Map(err)
}

func (s *PGStore) FindUnusedOTP(ctx context.Context, mobileNumber, loginOTP string) (*MobileOTP, error) {
	var (
		otp       MobileOTP
		usedAt    sql.NullTime
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, login_otp, mobile_number, user_id, used_at, created_at, updated_at, deleted_at
		from usermobileotps
		where mobile_number = $1 and login_otp = $2 and used_at is null and deleted_at is null
		order by created_at desc
		limit 1
	`, mobileNumber, loginOTP).Scan(&otp.ID, &otp.LoginOTP, &otp.MobileNumber, &otp.UserID,
		&usedAt, &otp.CreatedAt, &otp.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, pg.Map(err)
	}
	setDeleted(&otp.UsedAt, usedAt)
	setDeleted(&otp.DeletedAt, deletedAt)
	return &otp, nil
}

// MarkOTPUsed consumes the OTP. The used_at guard makes consumption
// single-use even under concurrent attempts.
func (s *PGStore) MarkOTPUsed(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { obs.ObserveQuery("usermobileotp", "mark_used", start, err) }()

	res, err := s.db.ExecContext(ctx, `
		update usermobileotps set used_at = now(), updated_at = now()
		where id = $1 and used_at is null and deleted_at is null
	`, id)
	if err != nil {
		return pg.Map(err)
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

func (s *PGStore) softDelete(ctx context.Context, table string, id int64) error {
	query := fmt.Sprintf(
		`update %s set deleted_at = now(), updated_at = now() where id = $1 and deleted_at is null`, table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return pg.Map(err)
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

func setDeleted(dst **time.Time, v sql.NullTime) {
	if v.Valid {
		t := v.Time
		*dst = &t
	}
}
