package services

import (
	"context"
	"errors"
	"time"

	"github.com/veritag/veritag/internal/codes"
	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/idgen"
	"github.com/veritag/veritag/internal/keys"
	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
)

const (
	// ResellerCodeValidity is how long a generated reseller code stays
	// redeemable, measured from its embedded timestamp.
	ResellerCodeValidity = 5 * time.Minute

	// clockSkewTolerance is how far in the future a code timestamp may sit
	// before the code is rejected outright.
	clockSkewTolerance = time.Minute
)

// ResellerCode is a short-lived challenge minted for a reseller. The
// verifier needs all three fields to rebuild the signed message.
type ResellerCode struct {
	Code      string `json:"unique_code"`
	Timestamp int64  `json:"timestamp"`
	Context   string `json:"context"`
}

// ResellerVerification is the outcome of checking a reseller code.
type ResellerVerification struct {
	Status       models.ResellerVerificationStatus `json:"status"`
	ResellerID   string                            `json:"reseller_id"`
	ResellerName string                            `json:"reseller_name,omitempty"`
	DateJoined   *time.Time                        `json:"date_joined,omitempty"`
}

// ResellerService registers resellers and runs the timestamped
// challenge/response protocol that proves a reseller's standing.
type ResellerService struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
	now    func() time.Time
}

func NewResellerService(repos repomanager.RepositoryManager, logger logging.Logger) *ResellerService {
	return &ResellerService{repos: repos, logger: logger, now: time.Now}
}

// RegisterReseller creates a reseller under the organization. The reseller
// stores only the public half of the organization key.
func (s *ResellerService) RegisterReseller(ctx context.Context, userID, orgID, name string) (*models.Reseller, error) {
	org, err := s.repos.Organizations().Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	pub, err := keys.DerivePublicKey(org.PrivateKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &models.Reseller{
		ID:         idgen.NewAt(orgID, now),
		OrgID:      orgID,
		Name:       name,
		PublicKey:  keys.EncodePublicKey(pub),
		DateJoined: now,
		CreatedAt:  now,
		CreatedBy:  userID,
		UpdatedAt:  now,
		UpdatedBy:  userID,
	}
	if err := s.repos.Resellers().Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetReseller returns a reseller record.
func (s *ResellerService) GetReseller(ctx context.Context, id string) (*models.Reseller, error) {
	return s.repos.Resellers().Get(ctx, id)
}

// ListResellers returns the organization's resellers.
func (s *ResellerService) ListResellers(ctx context.Context, orgID string) ([]models.Reseller, error) {
	return s.repos.Resellers().ListByOrg(ctx, orgID)
}

// GenerateUniqueCode mints a fresh challenge code for the reseller. The code
// binds the reseller id, the current timestamp and a caller-chosen context
// string, and expires ResellerCodeValidity after the timestamp.
func (s *ResellerService) GenerateUniqueCode(ctx context.Context, resellerID, codeContext string) (*ResellerCode, error) {
	res, err := s.repos.Resellers().Get(ctx, resellerID)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations().Get(ctx, res.OrgID)
	if err != nil {
		return nil, err
	}

	ts := s.now().Unix()
	code, err := codes.Sign(org.PrivateKey, codes.ResellerMessage(resellerID, ts, codeContext))
	if err != nil {
		return nil, err
	}
	return &ResellerCode{Code: code, Timestamp: ts, Context: codeContext}, nil
}

// VerifyUniqueCode checks a presented reseller code. The outcome is always a
// closed status, never an error, so callers can relay it to end users
// directly; storage failures are the one exception.
func (s *ResellerService) VerifyUniqueCode(ctx context.Context, resellerID string, timestamp int64, codeContext, code string) (*ResellerVerification, error) {
	out := &ResellerVerification{ResellerID: resellerID}

	res, err := s.repos.Resellers().Get(ctx, resellerID)
	if errors.Is(err, common.ErrorNotFound) {
		out.Status = models.ResellerStatusResellerNotFound
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Organizations().Get(ctx, res.OrgID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			out.Status = models.ResellerStatusOrganizationNotFound
			return out, nil
		}
		return nil, err
	}

	now := s.now()
	issued := time.Unix(timestamp, 0)
	if issued.After(now.Add(clockSkewTolerance)) {
		out.Status = models.ResellerStatusInvalidCode
		return out, nil
	}
	if now.Sub(issued) > ResellerCodeValidity {
		out.Status = models.ResellerStatusExpiredCode
		return out, nil
	}

	pub, err := keys.ParsePublicKey(res.PublicKey)
	if err != nil {
		return nil, err
	}
	if !codes.Verify(pub, codes.ResellerMessage(resellerID, timestamp, codeContext), code) {
		s.logger.Warn(ctx, "invalid reseller code", "reseller_id", resellerID)
		out.Status = models.ResellerStatusInvalidCode
		return out, nil
	}

	out.Status = models.ResellerStatusSuccess
	out.ResellerName = res.Name
	joined := res.DateJoined
	out.DateJoined = &joined
	return out, nil
}
