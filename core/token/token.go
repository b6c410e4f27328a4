// Package token stores the short-lived secrets of the account flows:
// email verification codes, password-reset OTPs and change-password
// OTPs. The handlers consuming them live in core/user.
package token

import "time"

const (
	// EmailTokenTTL bounds how long an emailed verification code is
	// accepted after issue.
	EmailTokenTTL = 15 * time.Minute

	// ResetOTPTTL bounds the forgot-password OTP.
	ResetOTPTTL = 10 * time.Minute

	// PasswordOTPTTL bounds the change-password OTP.
	PasswordOTPTTL = 5 * time.Minute
)

// EmailToken is the one verification code a user can hold at a time.
type EmailToken struct {
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}

func (t EmailToken) Valid(now time.Time) bool {
	return now.Sub(t.CreatedAt) < EmailTokenTTL
}

// PasswordOTP guards the authenticated change-password flow. One per
// user, replaced on re-issue.
type PasswordOTP struct {
	UserID    string    `db:"user_id"`
	OTP       string    `db:"otp"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (o PasswordOTP) Valid(otp string, now time.Time) bool {
	return o.OTP == otp && now.Before(o.ExpiresAt)
}

// ResetOTP guards the unauthenticated forgot-password flow. A user may
// accumulate several; only the latest matters.
type ResetOTP struct {
	ID        string    `db:"otp_id"`
	UserID    string    `db:"user_id"`
	OTP       string    `db:"otp"`
	Verified  bool      `db:"verified"`
	CreatedAt time.Time `db:"created_at"`
}

func (o ResetOTP) Expired(now time.Time) bool {
	return now.After(o.CreatedAt.Add(ResetOTPTTL))
}
