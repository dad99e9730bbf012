package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepo struct{ DB *pgxpool.Pool }

func (r *CatalogRepo) InsertProduct(ctx context.Context, name string, price float64, inStock bool) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx,
		`INSERT INTO products (name, price, in_stock) VALUES ($1, $2, $3) RETURNING id`,
		name, price, inStock).Scan(&id)
	if err != nil {
		return 0, &PersistenceError{Op: "insert product", Err: err}
	}
	return id, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, price, in_stock FROM products ORDER BY id`)
	if err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.InStock); err != nil {
			return nil, &PersistenceError{Op: "scan product", Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	return out, nil
}

func (r *CatalogRepo) GetProductByID(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, price, in_stock FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.InStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, &PersistenceError{Op: "get product", Err: err}
	}
	return p, nil
}

func (r *CatalogRepo) DeleteAllProducts(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, &PersistenceError{Op: "delete products", Err: err}
	}
	return ct.RowsAffected(), nil
}
