package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("payment not found")

func Create(ctx context.Context, db sqlx.ExtContext, p Payment) error {
	const q = `
	INSERT INTO payments
		(payment_id, user_id, cart_id, amount, reference, verified, created_at)
	VALUES
		(:payment_id, :user_id, :cart_id, :amount, :reference, :verified, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting payment[%s]: %w", p.ID, err)
	}

	return nil
}

func FetchByReference(ctx context.Context, db sqlx.ExtContext, reference string) (Payment, error) {
	const q = `SELECT * FROM payments WHERE reference = $1`

	var p Payment
	if err := sqlx.GetContext(ctx, db, &p, q, reference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, fmt.Errorf("fetching payment by reference[%s]: %w", reference, err)
	}

	return p, nil
}

func MarkVerified(ctx context.Context, db sqlx.ExtContext, paymentID string) error {
	const q = `UPDATE payments SET verified = TRUE WHERE payment_id = $1`

	if _, err := db.ExecContext(ctx, q, paymentID); err != nil {
		return fmt.Errorf("marking payment[%s] verified: %w", paymentID, err)
	}

	return nil
}
