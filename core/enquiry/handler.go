package enquiry

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
	"github.com/dayoadeyemi/haven/core/property"
	"github.com/dayoadeyemi/haven/core/user"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// HandleCreate lets a renter/buyer raise an enquiry on a live listing.
// The listing's agent is notified by email in the background; a failed
// notification does not fail the request.
func HandleCreate(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		propertyID := web.Param(r, "id")
		if err := validate.CheckID(propertyID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var en EnquiryNew
		if err := web.Decode(w, r, &en); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding enquiry: %w", err))
		}
		if err := validate.Check(en); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := property.FetchPurchasable(ctx, db, propertyID)
		if err != nil {
			if errors.Is(err, property.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		e := Enquiry{
			ID:         validate.GenerateID(),
			PropertyID: p.ID,
			UserID:     clm.UserID,
			AgentID:    p.AgentID,
			Subject:    en.Subject,
			Message:    en.Message,
			CreatedAt:  time.Now().UTC(),
		}

		if err := Create(ctx, db, e); err != nil {
			return err
		}

		bg.Run(func() error {
			agent, err := user.Fetch(context.Background(), db, p.AgentID)
			if err != nil {
				return err
			}
			body := fmt.Sprintf("New enquiry on %s:\n\n%s", p.Title, e.Message)
			return mailer.Send(agent.Email, e.Subject, body)
		})

		return web.Respond(ctx, w, e, http.StatusCreated)
	}
}

// HandleListReceived returns the enquiries on the caller's listings.
func HandleListReceived(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		es, err := FetchByAgent(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, es, http.StatusOK)
	}
}

// HandleListMine returns the enquiries the caller has sent.
func HandleListMine(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		es, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, es, http.StatusOK)
	}
}

// HandleReply records an agent's answer and emails it to the enquirer.
func HandleReply(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up ReplyUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding reply: %w", err))
		}
		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		e, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if e.AgentID != clm.UserID {
			return weberr.Forbidden(errors.New("you can only reply to enquiries on your own properties"))
		}

		now := time.Now().UTC()
		e.Reply = &up.Reply
		e.RepliedAt = &now

		if err := SaveReply(ctx, db, e); err != nil {
			return err
		}

		bg.Run(func() error {
			sender, err := user.Fetch(context.Background(), db, e.UserID)
			if err != nil {
				return err
			}
			body := fmt.Sprintf("Reply to your enquiry %q:\n\n%s", e.Subject, up.Reply)
			return mailer.Send(sender.Email, "Re: "+e.Subject, body)
		})

		return web.Respond(ctx, w, e, http.StatusOK)
	}
}
