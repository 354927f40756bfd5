// Package promotions persists the admin-managed product → bonus side table.
package promotions

import (
	"context"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, productID string) (*models.Promotion, error)
	Set(ctx context.Context, promo *models.Promotion) error
	Remove(ctx context.Context, productID string) error
	DeleteAll(ctx context.Context) error
}
