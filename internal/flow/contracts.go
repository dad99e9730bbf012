// Package flow drives the per-identity conversation state machine and the
// admin moderation handshake. It depends only on the store and transport
// contracts below, so the chat layer and persistence stay swappable.
package flow

import (
	"context"

	"github.com/elfshop/storebot/internal/shop"
	kafkago "github.com/segmentio/kafka-go"
)

type Catalog interface {
	InsertProduct(ctx context.Context, name string, price float64, inStock bool) (int64, error)
	ListProducts(ctx context.Context) ([]shop.Product, error)
	GetProductByID(ctx context.Context, id int64) (shop.Product, error)
	DeleteAllProducts(ctx context.Context) (int64, error)
}

type Customers interface {
	Upsert(ctx context.Context, c shop.Customer) error
	Delete(ctx context.Context, identity string) error
	DeleteAll(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]shop.Customer, error)
}

type Orders interface {
	// Submit writes the customer snapshot and a pending order atomically.
	Submit(ctx context.Context, c shop.Customer, productID int64, amount float64) (int64, error)
}

// Publisher matches the kafka producer's publish signature.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
