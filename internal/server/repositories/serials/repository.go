// Package serials persists each product's serial numbers as one ordered,
// variable-length collection per product id.
//
// The contract mirrors a fixed-key blob store: GetList returns the whole
// collection in insertion order, ReplaceList atomically overwrites it. Every
// mutation is decode → modify → re-encode → store and therefore O(n) in the
// number of serials for the product. Engines may persist rows instead of a
// blob as long as per-product ordering and atomic full replacement hold.
package serials

import (
	"context"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	// GetList returns the product's serial numbers in insertion order.
	// A product with no serials yields an empty list, not an error.
	GetList(ctx context.Context, productID string) ([]models.ProductSerialNumber, error)

	// ReplaceList atomically overwrites the product's entire collection.
	ReplaceList(ctx context.Context, productID string, list []models.ProductSerialNumber) error

	// FindBySerial scans the serial→product index and returns the owning
	// product id together with the record. ErrorNotFound if no product has
	// the serial.
	FindBySerial(ctx context.Context, serialNo string) (string, *models.ProductSerialNumber, error)

	// ProductIDs lists every product id that has a stored collection.
	ProductIDs(ctx context.Context) ([]string, error)

	DeleteAll(ctx context.Context) error
}
