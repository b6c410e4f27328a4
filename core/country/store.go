package country

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("country not found")

func Create(ctx context.Context, db sqlx.ExtContext, c Country) error {
	const q = `
	INSERT INTO countries (country_id, name, code, currency_code, currency_symbol)
	VALUES (:country_id, :name, :code, :currency_code, :currency_symbol)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("creating country: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Country, error) {
	const q = `SELECT * FROM countries WHERE country_id = $1`

	var c Country
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Country{}, ErrNotFound
		}
		return Country{}, fmt.Errorf("fetching country[%s]: %w", id, err)
	}
	return c, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Country, error) {
	const q = `SELECT * FROM countries ORDER BY name`

	cs := []Country{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("fetching countries: %w", err)
	}
	return cs, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Country) error {
	const q = `
	UPDATE countries SET
		name = :name,
		code = :code,
		currency_code = :currency_code,
		currency_symbol = :currency_symbol
	WHERE country_id = :country_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating country[%s]: %w", c.ID, err)
	}
	return nil
}
