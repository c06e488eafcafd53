package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/time/rate"

	"oneauth.org/internal/audit"
	"oneauth.org/internal/ids"
)

// ErrOTPRateLimited is returned when OTP issuance for a number outruns the
// per-number limiter.
var ErrOTPRateLimited = errors.New("recovery: otp issuance rate limited")

// OTPLimiter bounds OTP issuance per mobile number. Unused OTPs may coexist
// for the same number; the limiter caps how fast they accumulate.
type OTPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewOTPLimiter(limit rate.Limit, burst int) *OTPLimiter {
	return &OTPLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *OTPLimiter) Allow(mobileNumber string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[mobileNumber]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[mobileNumber] = lim
	}
	return lim.Allow()
}

// Service issues verification artifacts. Key values are generated here as a
// convenience; collisions surface as pg.ErrUniqueViolation and the caller
// retries with a fresh key.
type Service struct {
	store   Store
	limiter *OTPLimiter
}

func NewService(store Store, limiter *OTPLimiter) *Service {
	if limiter == nil {
		limiter = NewOTPLimiter(rate.Limit(1.0/60), 3)
	}
	return &Service{store: store, limiter: limiter}
}

// IssueResetKey creates a pending password reset for the user.
func (s *Service) IssueResetKey(ctx context.Context, userID int64) (*ResetPassword, error) {
	rp := &ResetPassword{Key: ids.NewKey(), UserID: userID}
	if err := s.store.CreateResetPassword(ctx, rp); err != nil {
		return nil, fmt.Errorf("issue reset key: %w", err)
	}
	_ = audit.LogEvent(ctx, "resetpassword.issued", map[string]any{"user_id": userID})
	return rp, nil
}

// IssueEmailKey creates a pending email verification for the user.
func (s *Service) IssueEmailKey(ctx context.Context, userID int64, returnTo string) (*VerifyEmail, error) {
	ve := &VerifyEmail{Key: ids.NewKey(), UserID: userID, ReturnTo: returnTo}
	if err := s.store.CreateVerifyEmail(ctx, ve); err != nil {
		return nil, fmt.Errorf("issue email key: %w", err)
	}
	_ = audit.LogEvent(ctx, "verifyemail.issued", map[string]any{"user_id": userID})
	return ve, nil
}

// RequestMobileVerification creates the single pending verification for a
// number. A second request for the same number fails with
// pg.ErrUniqueViolation until the first is consumed or soft-deleted.
func (s *Service) RequestMobileVerification(ctx context.Context, userID int64, mobileNumber string) (*VerifyMobile, error) {
	vm := &VerifyMobile{Key: ids.NewKey(), MobileNumber: mobileNumber, UserID: userID}
	if err := s.store.CreateVerifyMobile(ctx, vm); err != nil {
		return nil, fmt.Errorf("request mobile verification: %w", err)
	}
	return vm, nil
}

// IssueLoginOTP creates a login OTP for the number, subject to the
// per-number limiter.
func (s *Service) IssueLoginOTP(ctx context.Context, userID int64, mobileNumber string) (*MobileOTP, error) {
	if !s.limiter.Allow(mobileNumber) {
		return nil, fmt.Errorf("%w: %s", ErrOTPRateLimited, mobileNumber)
	}
	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	otp := &MobileOTP{LoginOTP: code, MobileNumber: mobileNumber, UserID: userID}
	if err := s.store.CreateMobileOTP(ctx, otp); err != nil {
		return nil, fmt.Errorf("issue login otp: %w", err)
	}
	_ = audit.LogEvent(ctx, "otp.issued", map[string]any{"user_id": userID})
	return otp, nil
}

// ConsumeLoginOTP resolves an unused OTP and marks it used in place; rows
// are never deleted on use.
func (s *Service) ConsumeLoginOTP(ctx context.Context, mobileNumber, loginOTP string) (*MobileOTP, error) {
	otp, err := s.store.FindUnusedOTP(ctx, mobileNumber, loginOTP)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkOTPUsed(ctx, otp.ID); err != nil {
		return nil, err
	}
	return otp, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
