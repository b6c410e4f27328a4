package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDupeEmail = errors.New("email already taken")
)

// uniqueViolation is the Postgres error code for unique constraints.
const uniqueViolation = "23505"

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	INSERT INTO users
		(user_id, email, password_hash, first_name, last_name, role,
		 phone_number, profile_image_url, country_id, email_verified,
		 passcode_hash, created_at, updated_at)
	VALUES
		(:user_id, :email, :password_hash, :first_name, :last_name, :role,
		 :phone_number, :profile_image_url, :country_id, :email_verified,
		 :passcode_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		var pqe *pq.Error
		if errors.As(err, &pqe) && string(pqe.Code) == uniqueViolation {
			return ErrDupeEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("fetching user[%s]: %w", id, err)
	}
	return usr, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("fetching user by email: %w", err)
	}
	return usr, nil
}

func UpdateProfile(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	UPDATE users SET
		phone_number = :phone_number,
		profile_image_url = :profile_image_url,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		return fmt.Errorf("updating profile of user[%s]: %w", usr.ID, err)
	}
	return nil
}

func MarkEmailVerified(ctx context.Context, db sqlx.ExtContext, id string, now time.Time) error {
	const q = `UPDATE users SET email_verified = TRUE, updated_at = $2 WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, now); err != nil {
		return fmt.Errorf("marking user[%s] verified: %w", id, err)
	}
	return nil
}

func UpdatePassword(ctx context.Context, db sqlx.ExtContext, id string, hash string, now time.Time) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, hash, now); err != nil {
		return fmt.Errorf("updating password of user[%s]: %w", id, err)
	}
	return nil
}

func UpdatePasscode(ctx context.Context, db sqlx.ExtContext, id string, hash string, now time.Time) error {
	const q = `UPDATE users SET passcode_hash = $2, updated_at = $3 WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, id, hash, now); err != nil {
		return fmt.Errorf("updating passcode of user[%s]: %w", id, err)
	}
	return nil
}
