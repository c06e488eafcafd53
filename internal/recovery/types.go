// Package recovery persists the disposable capability tokens used by
// password reset, email/mobile verification and OTP login flows. Expiry is
// not modelled here; collaborators enforce TTLs from CreatedAt.
package recovery

import "time"

// ResetPassword is a single-use password reset key. The key alone resolves
// its owner, which is the lookup path for reset links.
type ResetPassword struct {
	ID        int64
	Key       string
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// VerifyEmail is a single-use email verification key. ReturnTo records where
// to send the user after a successful click-through.
type VerifyEmail struct {
	ID        int64
	Key       string
	UserID    int64
	ReturnTo  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// VerifyMobile is a pending mobile verification. At most one pending
// verification exists per phone number; the key itself is not globally
// unique.
type VerifyMobile struct {
	ID           int64
	Key          string
	MobileNumber string
	UserID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// MobileOTP is a login OTP. Neither the OTP nor the number is unique; rows
// are consumed by setting UsedAt rather than being deleted.
type MobileOTP struct {
	ID           int64
	LoginOTP     string
	MobileNumber string
	UserID       int64
	UsedAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
