// Package products persists Product records. A product's public key is set
// at creation from the owning organization's keypair and never changes.
package products

import (
	"context"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	ListByOrg(ctx context.Context, orgID string) ([]models.Product, error)
	DeleteAll(ctx context.Context) error
}
