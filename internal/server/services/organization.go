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

// OrganizationService manages organizations and their signing keys. Every
// read it exposes is the public projection; the private key never crosses
// the service boundary.
type OrganizationService struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
	now    func() time.Time
}

func NewOrganizationService(repos repomanager.RepositoryManager, logger logging.Logger) *OrganizationService {
	return &OrganizationService{repos: repos, logger: logger, now: time.Now}
}

// CreateOrganization mints a signing keypair and stores the organization.
func (s *OrganizationService) CreateOrganization(ctx context.Context, userID, name, description string) (*models.OrganizationPublic, error) {
	privHex, _, err := keys.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	now := s.now()
	org := &models.Organization{
		ID:          idgen.NewAt(userID, now),
		Name:        name,
		Description: description,
		PrivateKey:  privHex,
		CreatedAt:   now,
		CreatedBy:   userID,
		UpdatedAt:   now,
		UpdatedBy:   userID,
	}
	if err := s.repos.Organizations().Create(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "organization created", "org_id", org.ID, "name", name)
	pub := org.Public()
	return &pub, nil
}

// GetOrganization returns the public projection of an organization.
func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (*models.OrganizationPublic, error) {
	org, err := s.repos.Organizations().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := org.Public()
	return &pub, nil
}

// ListOrganizations returns every organization's public projection.
func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]models.OrganizationPublic, error) {
	orgs, err := s.repos.Organizations().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.OrganizationPublic, 0, len(orgs))
	for i := range orgs {
		out = append(out, orgs[i].Public())
	}
	return out, nil
}

// UpdateOrganization changes the organization's name and description. The
// signing key is immutable for the organization's lifetime.
func (s *OrganizationService) UpdateOrganization(ctx context.Context, userID, id, name, description string) (*models.OrganizationPublic, error) {
	org, err := s.repos.Organizations().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Name = name
	org.Description = description
	org.UpdatedAt = s.now()
	org.UpdatedBy = userID
	if err := s.repos.Organizations().Update(ctx, org); err != nil {
		return nil, err
	}
	pub := org.Public()
	return &pub, nil
}
