// Package organizations persists Organization records, including the
// organization signing key. Reads that expose the private key are restricted
// to the service layer.
package organizations

import (
	"context"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, org *models.Organization) error
	Get(ctx context.Context, id string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	List(ctx context.Context) ([]models.Organization, error)
	DeleteAll(ctx context.Context) error
}
