package cart

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/api/weberr"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/core/property"
	"github.com/dayoadeyemi/haven/database"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
)

// HandleShow returns the caller's cart, creating an empty one on first
// access.
func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		now := time.Now().UTC()
		if err := Upsert(ctx, db, Cart{UserID: clm.UserID, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}

		c, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		c.Items, err = FetchItems(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

// HandleAddItem puts a live listing into the caller's cart. Adding the
// same listing twice is rejected.
func HandleAddItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		propertyID := web.Param(r, "property_id")
		if err := validate.CheckID(propertyID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := property.FetchPurchasable(ctx, db, propertyID); err != nil {
			if errors.Is(err, property.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		now := time.Now().UTC()
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Upsert(ctx, tx, Cart{UserID: clm.UserID, CreatedAt: now, UpdatedAt: now}); err != nil {
				return err
			}
			return CreateItem(ctx, tx, clm.UserID, propertyID)
		})
		if err != nil {
			if errors.Is(err, ErrDupeItem) {
				return weberr.Conflict(err)
			}
			return err
		}

		msg := struct {
			Message string `json:"message"`
		}{"Property added to cart."}
		return web.Respond(ctx, w, msg, http.StatusCreated)
	}
}

// HandleRemoveItem takes a listing out of the cart. Removing the last
// item deletes the cart itself.
func HandleRemoveItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		propertyID := web.Param(r, "property_id")
		if err := validate.CheckID(propertyID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := Fetch(ctx, db, clm.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := DeleteItem(ctx, tx, clm.UserID, propertyID); err != nil {
				return err
			}

			n, err := CountItems(ctx, tx, clm.UserID)
			if err != nil {
				return err
			}
			if n == 0 {
				return Delete(ctx, tx, clm.UserID)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
