package recovery

import "context"

// Store manages the four verification tables. Creation relies on the unique
// key/number indexes for race safety; consuming an OTP is an atomic
// compare-and-set on used_at.
type Store interface {
	CreateResetPassword(ctx context.Context, rp *ResetPassword) error
	FindResetPasswordByKey(ctx context.Context, key string) (*ResetPassword, error)
	SoftDeleteResetPassword(ctx context.Context, id int64) error

	CreateVerifyEmail(ctx context.Context, ve *VerifyEmail) error
	FindVerifyEmailByKey(ctx context.Context, key string) (*VerifyEmail, error)
	SoftDeleteVerifyEmail(ctx context.Context, id int64) error

	CreateVerifyMobile(ctx context.Context, vm *VerifyMobile) error
	FindVerifyMobileByNumber(ctx context.Context, mobileNumber string) (*VerifyMobile, error)
	SoftDeleteVerifyMobile(ctx context.Context, id int64) error

	CreateMobileOTP(ctx context.Context, otp *MobileOTP) error
	FindUnusedOTP(ctx context.Context, mobileNumber, loginOTP string) (*MobileOTP, error)
	MarkOTPUsed(ctx context.Context, id int64) error
}
