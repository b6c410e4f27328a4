package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for unique constraint violations.
const uniqueViolation = "23505"

var (
	ErrNotFound     = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
	ErrDupeItem     = errors.New("property already in cart")
)

// Upsert lazily creates the user's cart. Touching an existing cart is a
// no-op so paid carts are never reset.
func Upsert(ctx context.Context, db sqlx.ExtContext, c Cart) error {
	const q = `
	INSERT INTO carts
		(user_id, is_paid, created_at, updated_at)
	VALUES
		(:user_id, :is_paid, :created_at, :updated_at)
	ON CONFLICT (user_id) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("upserting cart for user[%s]: %w", c.UserID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE user_id = $1`

	var c Cart
	if err := sqlx.GetContext(ctx, db, &c, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("fetching cart for user[%s]: %w", userID, err)
	}

	return c, nil
}

// FetchUnpaid returns the user's cart only when it has not been paid for.
func FetchUnpaid(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `SELECT * FROM carts WHERE user_id = $1 AND is_paid = FALSE`

	var c Cart
	if err := sqlx.GetContext(ctx, db, &c, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("fetching unpaid cart for user[%s]: %w", userID, err)
	}

	return c, nil
}

// FetchItems lists the cart's contents with the current listing title
// and price joined in.
func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `
	SELECT
		ci.user_id, ci.property_id, p.title, p.price, ci.created_at
	FROM
		cart_items AS ci
	JOIN
		properties AS p ON p.property_id = ci.property_id
	WHERE
		ci.user_id = $1
	ORDER BY
		ci.created_at`

	items := []Item{}
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, fmt.Errorf("fetching cart items for user[%s]: %w", userID, err)
	}

	return items, nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, userID, propertyID string) error {
	const q = `
	INSERT INTO cart_items
		(user_id, property_id, created_at)
	VALUES
		($1, $2, NOW())`

	if _, err := db.ExecContext(ctx, q, userID, propertyID); err != nil {
		var pqerr *pq.Error
		if errors.As(err, &pqerr) && pqerr.Code == uniqueViolation {
			return ErrDupeItem
		}
		return fmt.Errorf("inserting cart item[%s, %s]: %w", userID, propertyID, err)
	}

	return nil
}

func DeleteItem(ctx context.Context, db sqlx.ExtContext, userID, propertyID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND property_id = $2`

	res, err := db.ExecContext(ctx, q, userID, propertyID)
	if err != nil {
		return fmt.Errorf("deleting cart item[%s, %s]: %w", userID, propertyID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting cart item[%s, %s]: %w", userID, propertyID, err)
	}
	if n == 0 {
		return ErrItemNotFound
	}

	return nil
}

func CountItems(ctx context.Context, db sqlx.ExtContext, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, userID); err != nil {
		return 0, fmt.Errorf("counting cart items for user[%s]: %w", userID, err)
	}

	return n, nil
}

// Delete removes the cart; its items and payments go with it.
func Delete(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM carts WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("deleting cart for user[%s]: %w", userID, err)
	}

	return nil
}

func MarkPaid(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `UPDATE carts SET is_paid = TRUE, updated_at = NOW() WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("marking cart paid for user[%s]: %w", userID, err)
	}

	return nil
}
