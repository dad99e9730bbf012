package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

// Submit writes the customer snapshot and a pending order row in one
// transaction. Either both land or neither does.
func (r *OrderRepo) Submit(ctx context.Context, c Customer, productID int64, amount float64) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, &PersistenceError{Op: "submit order", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO customers (identity, phone, address, display_name, last_product_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity) DO UPDATE SET
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			display_name = EXCLUDED.display_name,
			last_product_name = EXCLUDED.last_product_name
		RETURNING id
	`, c.Identity, c.Phone, c.Address, c.DisplayName, c.LastProductName).Scan(&customerID)
	if err != nil {
		return 0, &PersistenceError{Op: "upsert customer", Err: err}
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (product_id, customer_id, amount, status)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, productID, customerID, amount, StatusPending).Scan(&orderID)
	if err != nil {
		return 0, &PersistenceError{Op: "insert order", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &PersistenceError{Op: "submit order", Err: err}
	}
	return orderID, nil
}

// SettleStatus moves an order out of pending. Re-delivery of the same
// outcome is a no-op; a conflicting outcome after settlement is ignored
// since review is terminal either way.
func (r *OrderRepo) SettleStatus(ctx context.Context, orderID int64, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &PersistenceError{Op: "settle order", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return &PersistenceError{Op: "settle order", Err: err}
	}
	if !CanTransition(cur, to) {
		return nil
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, to); err != nil {
		return &PersistenceError{Op: "settle order", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "settle order", Err: err}
	}
	return nil
}
