package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dayoadeyemi/haven/api/background"
	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/api/weberr"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/token"
	"github.com/dayoadeyemi/haven/random"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type message struct {
	Message string `json:"message"`
}

// HandleForgotPassword starts the unauthenticated reset flow. The
// response never discloses whether the email exists.
func HandleForgotPassword(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding forgot-password request: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		neutral := message{"If the email exists, an OTP has been sent."}

		usr, err := FetchByEmail(ctx, db, NormalizeEmail(in.Email))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return web.Respond(ctx, w, neutral, http.StatusOK)
			}
			return err
		}

		otp := random.OTP(6)
		ro := token.ResetOTP{
			ID:        validate.GenerateID(),
			UserID:    usr.ID,
			OTP:       otp,
			CreatedAt: time.Now().UTC(),
		}
		if err := token.CreateResetOTP(ctx, db, ro); err != nil {
			return err
		}

		body := fmt.Sprintf("Your OTP code is %s. It expires in 10 minutes.", otp)
		bg.Run(func() error { return mailer.Send(usr.Email, "Your Password Reset OTP", body) })

		return web.Respond(ctx, w, neutral, http.StatusOK)
	}
}

func HandleVerifyResetOTP(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email string `json:"email" validate:"required,email"`
			OTP   string `json:"otp" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding otp verification: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := FetchByEmail(ctx, db, NormalizeEmail(in.Email))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				err := errors.New("invalid credentials")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return err
		}

		ro, err := token.FetchLatestResetOTP(ctx, db, usr.ID, in.OTP)
		if err != nil || ro.Expired(time.Now().UTC()) {
			err := errors.New("invalid or expired OTP")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := token.MarkResetOTPVerified(ctx, db, ro.ID); err != nil {
			return err
		}

		return web.Respond(ctx, w, message{"OTP verified successfully."}, http.StatusOK)
	}
}

func HandleResetPassword(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email       string `json:"email" validate:"required,email"`
			NewPassword string `json:"new_password" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding password reset: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := CheckPassword(in.NewPassword); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := FetchByEmail(ctx, db, NormalizeEmail(in.Email))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		ro, err := token.FetchVerifiedResetOTP(ctx, db, usr.ID)
		if err != nil || ro.Expired(time.Now().UTC()) {
			err := errors.New("OTP not verified or expired")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		if err := UpdatePassword(ctx, db, usr.ID, string(hash), time.Now().UTC()); err != nil {
			return err
		}
		if err := token.DeleteResetOTP(ctx, db, ro.ID); err != nil {
			return err
		}

		return web.Respond(ctx, w, message{"Password reset successful."}, http.StatusOK)
	}
}

// HandleVerifyOldPassword begins the authenticated change-password
// flow: prove the old password, receive a short OTP by email.
func HandleVerifyOldPassword(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in struct {
			OldPassword string `json:"old_password" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding old-password check: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.OldPassword)); err != nil {
			err := errors.New("old password incorrect")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		otp := random.OTP(4)
		po := token.PasswordOTP{
			UserID:    usr.ID,
			OTP:       otp,
			ExpiresAt: time.Now().UTC().Add(token.PasswordOTPTTL),
		}
		if err := token.UpsertPasswordOTP(ctx, db, po); err != nil {
			return err
		}

		body := fmt.Sprintf("Your OTP is %s. It expires in 5 minutes.", otp)
		bg.Run(func() error { return mailer.Send(usr.Email, "OTP", body) })

		return web.Respond(ctx, w, message{"OTP sent to your email"}, http.StatusOK)
	}
}

func HandleVerifyOTP(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in struct {
			Code string `json:"code" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding otp: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		po, err := token.FetchPasswordOTP(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, token.ErrNotFound) {
				err := errors.New("no OTP found, request a new one")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return err
		}

		if !po.Valid(in.Code, time.Now().UTC()) {
			err := errors.New("invalid or expired OTP")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		// Single use.
		if err := token.DeletePasswordOTP(ctx, db, clm.UserID); err != nil {
			return err
		}

		return web.Respond(ctx, w, message{"OTP verified. You can now change password"}, http.StatusOK)
	}
}

func HandleChangePassword(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in struct {
			NewPassword     string `json:"new_password" validate:"required"`
			ConfirmPassword string `json:"confirm_password" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding password change: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if in.NewPassword != in.ConfirmPassword {
			err := errors.New("passwords do not match")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := CheckPassword(in.NewPassword); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		if err := UpdatePassword(ctx, db, clm.UserID, string(hash), time.Now().UTC()); err != nil {
			return err
		}

		return web.Respond(ctx, w, message{"password changed successfully"}, http.StatusOK)
	}
}

func HandleSetPasscode(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in struct {
			Passcode        string `json:"passcode" validate:"required,len=6,numeric"`
			ConfirmPasscode string `json:"confirm_passcode" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding passcode: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if in.Passcode != in.ConfirmPasscode {
			err := errors.New("passcodes do not match")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing passcode: %w", err)
		}

		if err := UpdatePasscode(ctx, db, clm.UserID, string(hash), time.Now().UTC()); err != nil {
			return err
		}

		return web.Respond(ctx, w, message{"Passcode set successfully"}, http.StatusOK)
	}
}
