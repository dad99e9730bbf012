package shop

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepo struct{ DB *pgxpool.Pool }

// Upsert overwrites the full contact snapshot for an identity. Last write
// wins; the table keeps one row per identity.
func (r *CustomerRepo) Upsert(ctx context.Context, c Customer) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO customers (identity, phone, address, display_name, last_product_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity) DO UPDATE SET
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			display_name = EXCLUDED.display_name,
			last_product_name = EXCLUDED.last_product_name
	`, c.Identity, c.Phone, c.Address, c.DisplayName, c.LastProductName)
	if err != nil {
		return &PersistenceError{Op: "upsert customer", Err: err}
	}
	return nil
}

// Delete removes the snapshot for an identity. No-op if absent.
func (r *CustomerRepo) Delete(ctx context.Context, identity string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE identity = $1`, identity)
	if err != nil {
		return &PersistenceError{Op: "delete customer", Err: err}
	}
	return nil
}

func (r *CustomerRepo) DeleteAll(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM customers`)
	if err != nil {
		return 0, &PersistenceError{Op: "delete customers", Err: err}
	}
	return ct.RowsAffected(), nil
}

func (r *CustomerRepo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, identity, phone, address, display_name, last_product_name
		FROM customers ORDER BY id`)
	if err != nil {
		return nil, &PersistenceError{Op: "list customers", Err: err}
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Identity, &c.Phone, &c.Address, &c.DisplayName, &c.LastProductName); err != nil {
			return nil, &PersistenceError{Op: "scan customer", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list customers", Err: err}
	}
	return out, nil
}
