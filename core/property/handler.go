package property

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/api/weberr"
	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/dayoadeyemi/haven/validate"
	"github.com/jmoiron/sqlx"
)

// filterFromQuery builds the search filter from query parameters.
// Unparseable price bounds are dropped silently.
func filterFromQuery(r *http.Request, admin bool) Filter {
	f := Filter{
		Type:     Type(web.Query(r, "category")),
		Country:  web.Query(r, "country"),
		State:    web.Query(r, "state"),
		Location: web.Query(r, "location"),
		Search:   web.Query(r, "search"),
		All:      admin,
	}

	if s := web.Query(r, "min_price"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.MinPrice = &v
		}
	}
	if s := web.Query(r, "max_price"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.MaxPrice = &v
		}
	}

	return f
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		f := filterFromQuery(r, claims.IsAdmin(ctx))

		ps, err := List(ctx, db, f)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

// HandleShow is the public listing detail. Listings off the market are
// invisible to everyone except admins.
func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if (!p.IsActive || !p.IsPublished) && !claims.IsAdmin(ctx) {
			return weberr.NotFound(errors.New("property not found"))
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleListMine(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ps, err := FetchByAgent(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShowMine(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if p.AgentID != clm.UserID || !p.IsActive {
			return weberr.NotFound(errors.New("property not found for this agent"))
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var pn PropertyNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding property: %w", err))
		}
		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		now := time.Now().UTC()
		p := Property{
			ID:           validate.GenerateID(),
			OwnerID:      clm.UserID,
			AgentID:      clm.UserID,
			Title:        pn.Title,
			Type:         Type(pn.Type),
			Description:  pn.Description,
			State:        pn.State,
			Country:      pn.Country,
			Location:     pn.Location,
			Bedroom:      pn.Bedroom,
			Bathroom:     pn.Bathroom,
			Size:         pn.Size,
			MainImageURL: pn.MainImageURL,
			ImageURLs:    pn.ImageURLs,
			Price:        pn.Price,
			IsPublished:  pn.IsPublished,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := Create(ctx, db, p); err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up PropertyUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding property update: %w", err))
		}
		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if p.AgentID != clm.UserID {
			return weberr.Forbidden(errors.New("you can only update your own properties"))
		}

		if up.Title != nil {
			p.Title = *up.Title
		}
		if up.Type != nil {
			p.Type = Type(*up.Type)
		}
		if up.Description != nil {
			p.Description = *up.Description
		}
		if up.State != nil {
			p.State = *up.State
		}
		if up.Country != nil {
			p.Country = *up.Country
		}
		if up.Location != nil {
			p.Location = *up.Location
		}
		if up.Bedroom != nil {
			p.Bedroom = *up.Bedroom
		}
		if up.Bathroom != nil {
			p.Bathroom = *up.Bathroom
		}
		if up.Size != nil {
			p.Size = *up.Size
		}
		if up.MainImageURL != nil {
			p.MainImageURL = *up.MainImageURL
		}
		if up.ImageURLs != nil {
			p.ImageURLs = up.ImageURLs
		}
		if up.Price != nil {
			p.Price = *up.Price
		}
		if up.IsPublished != nil {
			p.IsPublished = *up.IsPublished
		}
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

// HandleDelete soft-deletes: the listing is pulled off the market but
// the row stays.
func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if p.AgentID != clm.UserID {
			return weberr.Forbidden(errors.New("you can only delete your own properties"))
		}

		p.IsActive = false
		p.IsPublished = false
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleRestore(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if p.IsActive {
			err := errors.New("property is already active")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p.IsActive = true
		p.IsPublished = true
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return err
		}

		msg := struct {
			Message string `json:"message"`
		}{"Property restored successfully."}
		return web.Respond(ctx, w, msg, http.StatusOK)
	}
}

// HandleHardDelete removes the row for good. Admin only.
func HandleHardDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := Fetch(ctx, db, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if err := Delete(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
