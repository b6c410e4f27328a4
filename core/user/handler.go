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
	"github.com/dayoadeyemi/haven/core/auth"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/token"
	"github.com/dayoadeyemi/haven/database"
	"github.com/dayoadeyemi/haven/random"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Mailer abstracts outbound account emails.
type Mailer interface {
	Send(to string, subject string, body string) error
}

func HandleRegister(db *sqlx.DB, mailer Mailer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var su UserSignup
		if err := web.Decode(w, r, &su); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup: %w", err))
		}

		if err := validate.Check(su); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if su.Password != su.ConfirmPassword {
			err := errors.New("passwords do not match")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := CheckPassword(su.Password); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		role, err := claims.ParseRole(su.Role)
		if err != nil || role == claims.RoleAdmin {
			err := errors.New("role must be agent or renter/buyer")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		countryID := su.CountryID
		usr := User{
			ID:              validate.GenerateID(),
			Email:           NormalizeEmail(su.Email),
			PasswordHash:    string(hash),
			FirstName:       su.FirstName,
			LastName:        su.LastName,
			Role:            role,
			PhoneNumber:     su.PhoneNumber,
			ProfileImageURL: su.ProfileImageURL,
			CountryID:       &countryID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		code := random.Code(6)
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Create(ctx, tx, usr); err != nil {
				return err
			}
			return token.UpsertEmailToken(ctx, tx, token.EmailToken{
				UserID:    usr.ID,
				Token:     code,
				CreatedAt: now,
			})
		})
		if err != nil {
			if errors.Is(err, ErrDupeEmail) {
				return weberr.Conflict(err)
			}
			return fmt.Errorf("registering user: %w", err)
		}

		// The registration email is the one delivery failure that fails
		// the request.
		body := fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\nIt expires in 15 minutes.", usr.FirstName, code)
		if err := mailer.Send(usr.Email, "Verify your email", body); err != nil {
			return fmt.Errorf("sending verification email: %w", err)
		}

		msg := struct {
			Message string `json:"message"`
		}{"User created. Check your email for verification code."}
		return web.Respond(ctx, w, msg, http.StatusCreated)
	}
}

func HandleVerifyEmail(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email string `json:"email" validate:"required,email"`
			Token string `json:"token" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding verification: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := FetchByEmail(ctx, db, NormalizeEmail(in.Email))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		tk, err := token.FetchEmailToken(ctx, db, usr.ID, in.Token)
		if err != nil {
			if errors.Is(err, token.ErrNotFound) {
				err := errors.New("invalid token")
				return weberr.NewError(err, err.Error(), http.StatusBadRequest)
			}
			return err
		}

		if !tk.Valid(time.Now().UTC()) {
			err := errors.New("token expired")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := MarkEmailVerified(ctx, tx, usr.ID, time.Now().UTC()); err != nil {
				return err
			}
			return token.DeleteEmailToken(ctx, tx, usr.ID)
		})
		if err != nil {
			return fmt.Errorf("verifying email of user[%s]: %w", usr.ID, err)
		}

		msg := struct {
			Message string `json:"message"`
		}{"Email verified successfully!"}
		return web.Respond(ctx, w, msg, http.StatusOK)
	}
}

func HandleResendToken(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding resend request: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := FetchByEmail(ctx, db, NormalizeEmail(in.Email))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if usr.EmailVerified {
			msg := struct {
				Message string `json:"message"`
			}{"Email already verified."}
			return web.Respond(ctx, w, msg, http.StatusOK)
		}

		code := random.Code(6)
		tk := token.EmailToken{UserID: usr.ID, Token: code, CreatedAt: time.Now().UTC()}
		if err := token.UpsertEmailToken(ctx, db, tk); err != nil {
			return err
		}

		body := fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\nIt expires in 15 minutes.", usr.FirstName, code)
		bg.Run(func() error { return mailer.Send(usr.Email, "Verify your email", body) })

		msg := struct {
			Message string `json:"message"`
		}{"Verification email resent. Please check your inbox."}
		return web.Respond(ctx, w, msg, http.StatusOK)
	}
}

func HandleLogin(db *sqlx.DB, tokens *auth.Tokens) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in UserLogin
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := FetchByEmail(ctx, db, NormalizeEmail(in.Email))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotAuthorized(errors.New("invalid credentials"))
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("invalid credentials"))
		}

		if !usr.EmailVerified {
			return weberr.Forbidden(errors.New("email not verified"))
		}

		pair, err := tokens.GeneratePair(claims.Claims{
			UserID: usr.ID,
			Email:  usr.Email,
			Role:   usr.Role,
		})
		if err != nil {
			return fmt.Errorf("generating token pair: %w", err)
		}

		return web.Respond(ctx, w, pair, http.StatusOK)
	}
}

func HandleRefresh(tokens *auth.Tokens) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			RefreshToken string `json:"refresh_token" validate:"required"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding refresh request: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		pair, err := tokens.Refresh(in.RefreshToken)
		if err != nil {
			return weberr.NotAuthorized(err)
		}

		return web.Respond(ctx, w, pair, http.StatusOK)
	}
}

func HandleShowProfile(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		usr, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleUpdateProfile(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var up ProfileUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding profile update: %w", err))
		}

		usr, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if up.PhoneNumber != nil {
			usr.PhoneNumber = *up.PhoneNumber
		}
		if up.ProfileImageURL != nil {
			usr.ProfileImageURL = *up.ProfileImageURL
		}
		usr.UpdatedAt = time.Now().UTC()

		if err := UpdateProfile(ctx, db, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}
