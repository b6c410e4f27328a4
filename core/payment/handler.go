package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/api/weberr"
	"github.com/dayoadeyemi/haven/core/cart"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/property"
	"github.com/dayoadeyemi/haven/core/user"
	"github.com/dayoadeyemi/haven/database"
	"github.com/dayoadeyemi/haven/paystack"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
)

// HandleInitialize starts a checkout for the caller's unpaid cart. The
// total is recomputed from the current listing prices so stale client
// state can never set the charge.
func HandleInitialize(db *sqlx.DB, ps *paystack.Client, callbackURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		c, err := cart.FetchUnpaid(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, cart.ErrNotFound) {
				return weberr.NotFound(errors.New("no cart awaiting payment"))
			}
			return err
		}

		items, err := cart.FetchItems(ctx, db, c.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			err := errors.New("cart is empty")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var total float64
		for _, it := range items {
			total += it.Price
		}

		usr, err := user.Fetch(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		p := Payment{
			ID:        validate.GenerateID(),
			UserID:    usr.ID,
			CartID:    c.UserID,
			Amount:    MinorUnits(total),
			Reference: validate.GenerateID(),
			CreatedAt: time.Now().UTC(),
		}

		init, err := ps.Initialize(ctx, paystack.InitializeRequest{
			Email:       usr.Email,
			Amount:      p.Amount,
			Reference:   p.Reference,
			CallbackURL: callbackURL,
		})
		if err != nil {
			var declined *paystack.DeclinedError
			if errors.As(err, &declined) {
				return weberr.NewError(err, declined.Message, http.StatusBadRequest)
			}
			return weberr.NewError(err, "payment gateway unavailable", http.StatusBadGateway)
		}

		if err := Create(ctx, db, p); err != nil {
			return err
		}

		resp := struct {
			PaymentURL string `json:"payment_url"`
			Reference  string `json:"reference"`
		}{init.AuthorizationURL, p.Reference}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

// HandleVerify confirms a charge with the gateway and fulfills the
// order. The gateway redirects the buyer's browser here, so the route
// carries no authentication; the reference alone identifies the payment.
func HandleVerify(db *sqlx.DB, ps *paystack.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		reference := web.Query(r, "reference")
		if reference == "" {
			err := errors.New("reference is required")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		tx, err := ps.Verify(ctx, reference)
		if err != nil {
			var declined *paystack.DeclinedError
			if errors.As(err, &declined) {
				return weberr.NewError(err, "Payment verification failed.", http.StatusBadRequest)
			}
			return weberr.NewError(err, "payment gateway unavailable", http.StatusBadGateway)
		}

		if tx.Status != paystack.StatusSuccess {
			err := fmt.Errorf("transaction[%s] status %q", reference, tx.Status)
			return weberr.NewError(err, "Payment verification failed.", http.StatusBadRequest)
		}

		if err := fulfill(ctx, db, reference); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		msg := struct {
			Message string `json:"message"`
		}{"Payment verified successfully."}
		return web.Respond(ctx, w, msg, http.StatusOK)
	}
}

// HandleWebhook processes gateway notifications. Only signed
// charge.success events cause writes; everything else is acknowledged
// and dropped.
func HandleWebhook(db *sqlx.DB, secret string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1048576))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("reading webhook body: %w", err))
		}

		sig := r.Header.Get(paystack.SignatureHeader)
		if !paystack.ValidSignature(secret, body, sig) {
			err := errors.New("invalid webhook signature")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ev, err := paystack.ParseEvent(body)
		if err != nil {
			return weberr.BadRequest(err)
		}

		if ev.Event != paystack.EventChargeSuccess {
			return web.Respond(ctx, w, nil, http.StatusOK)
		}

		if err := fulfill(ctx, db, ev.Data.Reference); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusOK)
	}
}

// fulfill settles a successful charge in one transaction: the payment
// is marked verified, the cart paid, and every listing in it taken off
// the market. Re-running it for an already settled reference repeats
// the same writes and changes nothing.
func fulfill(ctx context.Context, db *sqlx.DB, reference string) error {
	p, err := FetchByReference(ctx, db, reference)
	if err != nil {
		return err
	}

	return database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := MarkVerified(ctx, tx, p.ID); err != nil {
			return err
		}

		if err := cart.MarkPaid(ctx, tx, p.CartID); err != nil {
			return err
		}

		items, err := cart.FetchItems(ctx, tx, p.CartID)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.PropertyID)
		}
		if len(ids) == 0 {
			return nil
		}

		return property.Deactivate(ctx, tx, ids, time.Now().UTC())
	})
}
