// Package verifications persists ProductVerification records as one ordered
// collection per product id, under the same GetList/ReplaceList contract as
// the serials package: decode the full list, modify, re-encode, store.
package verifications

import (
	"context"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	// GetList returns the product's verifications in insertion order.
	GetList(ctx context.Context, productID string) ([]models.ProductVerification, error)

	// ReplaceList atomically overwrites the product's entire collection.
	ReplaceList(ctx context.Context, productID string, list []models.ProductVerification) error

	// ProductIDs lists every product id that has a stored collection.
	ProductIDs(ctx context.Context) ([]string, error)

	DeleteAll(ctx context.Context) error
}
