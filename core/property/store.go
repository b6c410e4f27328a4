package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("property not found")

func Create(ctx context.Context, db sqlx.ExtContext, p Property) error {
	const q = `
	INSERT INTO properties
		(property_id, owner_id, agent_id, title, property_type, description,
		 state, country, location, bedroom, bathroom, size, main_image_url,
		 image_urls, price, is_published, is_active, created_at, updated_at)
	VALUES
		(:property_id, :owner_id, :agent_id, :title, :property_type, :description,
		 :state, :country, :location, :bedroom, :bathroom, :size, :main_image_url,
		 :image_urls, :price, :is_published, :is_active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("creating property: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Property, error) {
	const q = `SELECT * FROM properties WHERE property_id = $1`

	var p Property
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("fetching property[%s]: %w", id, err)
	}
	return p, nil
}

// FetchPurchasable returns the property only if it is both active and
// published, the precondition for carts and enquiries.
func FetchPurchasable(ctx context.Context, db sqlx.ExtContext, id string) (Property, error) {
	const q = `
	SELECT * FROM properties
	WHERE property_id = $1 AND is_active = TRUE AND is_published = TRUE`

	var p Property
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("fetching purchasable property[%s]: %w", id, err)
	}
	return p, nil
}

// List applies the public search filter. Non-admin callers only ever
// see active and published listings.
func List(ctx context.Context, db sqlx.ExtContext, f Filter) ([]Property, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT * FROM properties`)

	var clauses []string
	args := map[string]interface{}{}

	if !f.All {
		clauses = append(clauses, `is_active = TRUE AND is_published = TRUE`)
	}
	if f.Type != "" {
		clauses = append(clauses, `property_type = :property_type`)
		args["property_type"] = string(f.Type)
	}
	if f.Country != "" {
		clauses = append(clauses, `LOWER(country) = LOWER(:country)`)
		args["country"] = strings.TrimSpace(f.Country)
	}
	if f.State != "" {
		clauses = append(clauses, `LOWER(state) = LOWER(:state)`)
		args["state"] = strings.TrimSpace(f.State)
	}
	if f.Location != "" {
		clauses = append(clauses, `location ILIKE :location`)
		args["location"] = "%" + strings.TrimSpace(f.Location) + "%"
	}
	if f.MinPrice != nil {
		clauses = append(clauses, `price >= :min_price`)
		args["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, `price <= :max_price`)
		args["max_price"] = *f.MaxPrice
	}
	if f.Search != "" {
		clauses = append(clauses, `(title ILIKE :search OR description ILIKE :search)`)
		args["search"] = "%" + strings.TrimSpace(f.Search) + "%"
	}

	if len(clauses) > 0 {
		sb.WriteString(` WHERE ` + strings.Join(clauses, ` AND `))
	}
	sb.WriteString(` ORDER BY created_at DESC`)

	q, qargs, err := sqlx.Named(sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("binding listing filter: %w", err)
	}
	q = db.Rebind(q)

	ps := []Property{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, qargs...); err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return ps, nil
}

func FetchByAgent(ctx context.Context, db sqlx.ExtContext, agentID string) ([]Property, error) {
	const q = `
	SELECT * FROM properties
	WHERE agent_id = $1 AND is_active = TRUE
	ORDER BY created_at DESC`

	ps := []Property{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, agentID); err != nil {
		return nil, fmt.Errorf("listing properties of agent[%s]: %w", agentID, err)
	}
	return ps, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, p Property) error {
	const q = `
	UPDATE properties SET
		title = :title,
		property_type = :property_type,
		description = :description,
		state = :state,
		country = :country,
		location = :location,
		bedroom = :bedroom,
		bathroom = :bathroom,
		size = :size,
		main_image_url = :main_image_url,
		image_urls = :image_urls,
		price = :price,
		is_published = :is_published,
		is_active = :is_active,
		updated_at = :updated_at
	WHERE property_id = :property_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("updating property[%s]: %w", p.ID, err)
	}
	return nil
}

// Deactivate flips the given listings off the market. Used by payment
// fulfillment inside its transaction.
func Deactivate(ctx context.Context, db sqlx.ExtContext, ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	q, args, err := sqlx.In(
		`UPDATE properties SET is_active = FALSE, updated_at = ? WHERE property_id IN (?)`,
		now, ids,
	)
	if err != nil {
		return fmt.Errorf("binding deactivation: %w", err)
	}
	q = db.Rebind(q)

	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("deactivating properties: %w", err)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM properties WHERE property_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting property[%s]: %w", id, err)
	}
	return nil
}
