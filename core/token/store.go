package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("token not found")

func UpsertEmailToken(ctx context.Context, db sqlx.ExtContext, tk EmailToken) error {
	const q = `
	INSERT INTO email_tokens (user_id, token, created_at)
	VALUES (:user_id, :token, :created_at)
	ON CONFLICT (user_id)
	DO UPDATE SET token = :token, created_at = :created_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, tk); err != nil {
		return fmt.Errorf("upserting email token: %w", err)
	}
	return nil
}

func FetchEmailToken(ctx context.Context, db sqlx.ExtContext, userID string, tok string) (EmailToken, error) {
	const q = `SELECT * FROM email_tokens WHERE user_id = $1 AND token = $2`

	var tk EmailToken
	if err := sqlx.GetContext(ctx, db, &tk, q, userID, tok); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EmailToken{}, ErrNotFound
		}
		return EmailToken{}, fmt.Errorf("fetching email token: %w", err)
	}
	return tk, nil
}

func DeleteEmailToken(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM email_tokens WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("deleting email token: %w", err)
	}
	return nil
}

func UpsertPasswordOTP(ctx context.Context, db sqlx.ExtContext, otp PasswordOTP) error {
	const q = `
	INSERT INTO password_otps (user_id, otp, expires_at)
	VALUES (:user_id, :otp, :expires_at)
	ON CONFLICT (user_id)
	DO UPDATE SET otp = :otp, expires_at = :expires_at`

	if _, err := sqlx.NamedExecContext(ctx, db, q, otp); err != nil {
		return fmt.Errorf("upserting password otp: %w", err)
	}
	return nil
}

func FetchPasswordOTP(ctx context.Context, db sqlx.ExtContext, userID string) (PasswordOTP, error) {
	const q = `SELECT * FROM password_otps WHERE user_id = $1`

	var otp PasswordOTP
	if err := sqlx.GetContext(ctx, db, &otp, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PasswordOTP{}, ErrNotFound
		}
		return PasswordOTP{}, fmt.Errorf("fetching password otp: %w", err)
	}
	return otp, nil
}

func DeletePasswordOTP(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM password_otps WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("deleting password otp: %w", err)
	}
	return nil
}

func CreateResetOTP(ctx context.Context, db sqlx.ExtContext, otp ResetOTP) error {
	const q = `
	INSERT INTO reset_otps (otp_id, user_id, otp, verified, created_at)
	VALUES (:otp_id, :user_id, :otp, :verified, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, otp); err != nil {
		return fmt.Errorf("creating reset otp: %w", err)
	}
	return nil
}

// FetchLatestResetOTP returns the newest unverified OTP matching the
// given code for the user.
func FetchLatestResetOTP(ctx context.Context, db sqlx.ExtContext, userID string, otp string) (ResetOTP, error) {
	const q = `
	SELECT * FROM reset_otps
	WHERE user_id = $1 AND otp = $2 AND verified = FALSE
	ORDER BY created_at DESC
	LIMIT 1`

	var ro ResetOTP
	if err := sqlx.GetContext(ctx, db, &ro, q, userID, otp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResetOTP{}, ErrNotFound
		}
		return ResetOTP{}, fmt.Errorf("fetching reset otp: %w", err)
	}
	return ro, nil
}

// FetchVerifiedResetOTP returns the newest verified OTP for the user,
// the precondition of an actual password reset.
func FetchVerifiedResetOTP(ctx context.Context, db sqlx.ExtContext, userID string) (ResetOTP, error) {
	const q = `
	SELECT * FROM reset_otps
	WHERE user_id = $1 AND verified = TRUE
	ORDER BY created_at DESC
	LIMIT 1`

	var ro ResetOTP
	if err := sqlx.GetContext(ctx, db, &ro, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResetOTP{}, ErrNotFound
		}
		return ResetOTP{}, fmt.Errorf("fetching verified reset otp: %w", err)
	}
	return ro, nil
}

func MarkResetOTPVerified(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `UPDATE reset_otps SET verified = TRUE WHERE otp_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("marking reset otp verified: %w", err)
	}
	return nil
}

func DeleteResetOTP(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM reset_otps WHERE otp_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting reset otp: %w", err)
	}
	return nil
}
