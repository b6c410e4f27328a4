package enquiry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("enquiry not found")

func Create(ctx context.Context, db sqlx.ExtContext, e Enquiry) error {
	const q = `
	INSERT INTO enquiries
		(enquiry_id, property_id, user_id, agent_id, subject, message, created_at)
	VALUES
		(:enquiry_id, :property_id, :user_id, :agent_id, :subject, :message, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("inserting enquiry: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Enquiry, error) {
	const q = `SELECT * FROM enquiries WHERE enquiry_id = $1`

	var e Enquiry
	if err := sqlx.GetContext(ctx, db, &e, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enquiry{}, ErrNotFound
		}
		return Enquiry{}, fmt.Errorf("fetching enquiry[%s]: %w", id, err)
	}

	return e, nil
}

// FetchByAgent returns the enquiries addressed to an agent's listings.
func FetchByAgent(ctx context.Context, db sqlx.ExtContext, agentID string) ([]Enquiry, error) {
	const q = `SELECT * FROM enquiries WHERE agent_id = $1 ORDER BY created_at DESC`

	es := []Enquiry{}
	if err := sqlx.SelectContext(ctx, db, &es, q, agentID); err != nil {
		return nil, fmt.Errorf("fetching enquiries for agent[%s]: %w", agentID, err)
	}

	return es, nil
}

// FetchByUser returns the enquiries a renter/buyer has sent.
func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Enquiry, error) {
	const q = `SELECT * FROM enquiries WHERE user_id = $1 ORDER BY created_at DESC`

	es := []Enquiry{}
	if err := sqlx.SelectContext(ctx, db, &es, q, userID); err != nil {
		return nil, fmt.Errorf("fetching enquiries for user[%s]: %w", userID, err)
	}

	return es, nil
}

func SaveReply(ctx context.Context, db sqlx.ExtContext, e Enquiry) error {
	const q = `
	UPDATE enquiries SET
		reply = :reply,
		replied_at = :replied_at
	WHERE enquiry_id = :enquiry_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, e); err != nil {
		return fmt.Errorf("saving reply on enquiry[%s]: %w", e.ID, err)
	}

	return nil
}
