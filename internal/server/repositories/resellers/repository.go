// Package resellers persists Reseller records.
package resellers

import (
	"context"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, res *models.Reseller) error
	Get(ctx context.Context, id string) (*models.Reseller, error)
	ListByOrg(ctx context.Context, orgID string) ([]models.Reseller, error)
	DeleteAll(ctx context.Context) error
}
