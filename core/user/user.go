package user

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/dayoadeyemi/haven/core/claims"
)

type User struct {
	ID              string      `json:"id" db:"user_id"`
	Email           string      `json:"email" db:"email"`
	PasswordHash    string      `json:"-" db:"password_hash"`
	FirstName       string      `json:"firstName" db:"first_name"`
	LastName        string      `json:"lastName" db:"last_name"`
	Role            claims.Role `json:"role" db:"role"`
	PhoneNumber     string      `json:"phoneNumber" db:"phone_number"`
	ProfileImageURL string      `json:"profileImageUrl" db:"profile_image_url"`
	CountryID       *string     `json:"countryId" db:"country_id"`
	EmailVerified   bool        `json:"emailVerified" db:"email_verified"`
	PasscodeHash    string      `json:"-" db:"passcode_hash"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

type UserSignup struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Role            string `json:"role" validate:"required"`
	CountryID       string `json:"countryId" validate:"required,uuid"`
	PhoneNumber     string `json:"phoneNumber"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUp carries the only profile fields a user may change; names,
// email and role are immutable after registration.
type ProfileUp struct {
	PhoneNumber     *string `json:"phoneNumber"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

const specialChars = "!@#$%^&*()-_=+[]{}|;:',.<>?/~`"

// CheckPassword enforces the account password policy: at least eight
// characters with a digit, an upper, a lower and a special character.
func CheckPassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var digit, upper, lower, special bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	switch {
	case !digit:
		return errors.New("password must contain at least one number")
	case !upper:
		return errors.New("password must contain at least one uppercase letter")
	case !lower:
		return errors.New("password must contain at least one lowercase letter")
	case !special:
		return errors.New("password must contain at least one special character")
	}

	return nil
}

// NormalizeEmail lowercases and trims an email used as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
