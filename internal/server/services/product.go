package services

import (
	"context"
	"time"

	"github.com/veritag/veritag/internal/idgen"
	"github.com/veritag/veritag/internal/keys"
	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
)

// ProductService manages the product catalog and the admin-facing promotion
// side table.
type ProductService struct {
	repos         repomanager.RepositoryManager
	verifications *VerificationService
	logger        logging.Logger
	now           func() time.Time
}

func NewProductService(repos repomanager.RepositoryManager, verifications *VerificationService, logger logging.Logger) *ProductService {
	return &ProductService{repos: repos, verifications: verifications, logger: logger, now: time.Now}
}

// CreateProduct registers a product under the organization. The product's
// verification key is derived from the organization key at this moment and
// never changes afterwards.
func (s *ProductService) CreateProduct(ctx context.Context, userID, orgID, name, category, description string) (*models.Product, error) {
	org, err := s.repos.Organizations().Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	pub, err := keys.DerivePublicKey(org.PrivateKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Product{
		ID:          idgen.NewAt(orgID, now),
		OrgID:       orgID,
		Name:        name,
		Category:    category,
		Description: description,
		PublicKey:   keys.EncodePublicKey(pub),
		CreatedAt:   now,
		CreatedBy:   userID,
		UpdatedAt:   now,
		UpdatedBy:   userID,
	}
	if err := s.repos.Products().Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "product created", "product_id", p.ID, "org_id", orgID, "name", name)
	return p, nil
}

// CreateProductWithSerial registers a product together with its first serial
// number and an already printed first code, saving the round trips a
// production line would otherwise need.
func (s *ProductService) CreateProductWithSerial(ctx context.Context, userID, orgID, name, category, description, userSerialNo string) (*models.Product, *PrintResult, error) {
	p, err := s.CreateProduct(ctx, userID, orgID, name, category, description)
	if err != nil {
		return nil, nil, err
	}
	sn, err := s.verifications.CreateSerialNumber(ctx, userID, p.ID, userSerialNo)
	if err != nil {
		return nil, nil, err
	}
	printed, err := s.verifications.Print(ctx, userID, p.ID, sn.SerialNo)
	if err != nil {
		return nil, nil, err
	}
	return p, printed, nil
}

// GetProduct returns one product.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repos.Products().Get(ctx, id)
}

// ListProducts returns the organization's products.
func (s *ProductService) ListProducts(ctx context.Context, orgID string) ([]models.Product, error) {
	return s.repos.Products().ListByOrg(ctx, orgID)
}

// UpdateProduct changes a product's descriptive fields. The public key is
// immutable.
func (s *ProductService) UpdateProduct(ctx context.Context, userID, id, name, category, description string) (*models.Product, error) {
	p, err := s.repos.Products().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Category = category
	p.Description = description
	p.UpdatedAt = s.now()
	p.UpdatedBy = userID
	if err := s.repos.Products().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPromotion attaches or replaces the product's promotion.
func (s *ProductService) SetPromotion(ctx context.Context, productID, name, value string) (*models.Promotion, error) {
	if _, err := s.repos.Products().Get(ctx, productID); err != nil {
		return nil, err
	}
	promo := &models.Promotion{ProductID: productID, Name: name, Value: value}
	if err := s.repos.Promotions().Set(ctx, promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// RemovePromotion detaches the product's promotion if one exists.
func (s *ProductService) RemovePromotion(ctx context.Context, productID string) error {
	return s.repos.Promotions().Remove(ctx, productID)
}
