package services

import (
	"context"
	"fmt"
	"time"

	"github.com/veritag/veritag/internal/codes"
	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/idgen"
	"github.com/veritag/veritag/internal/keys"
	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/ratelimit"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
)

// VerificationValidity is how long a successful verification result is
// presented as valid to the client.
const VerificationValidity = 24 * time.Hour

// ClientTimestampSkew bounds how far a client-asserted timestamp may drift
// from server time before the attempt is rejected.
const ClientTimestampSkew = 5 * time.Minute

// maxPrintVersion is where the per-unit version counter saturates.
const maxPrintVersion = ^uint8(0)

// PrintResult carries a freshly minted unique code together with the serial
// record state it was signed for.
type PrintResult struct {
	Code         string                     `json:"unique_code"`
	SerialNumber models.ProductSerialNumber `json:"serial_number"`
}

// VerificationResult is the client-facing outcome of a verification attempt.
// VerificationID and Rewards are empty when the code was rejected.
type VerificationResult struct {
	Status         models.VerificationStatus   `json:"status"`
	ProductID      string                      `json:"product_id,omitempty"`
	ProductName    string                      `json:"product_name,omitempty"`
	SerialNo       string                      `json:"serial_no"`
	PrintVersion   uint8                       `json:"print_version,omitempty"`
	VerificationID string                      `json:"verification_id,omitempty"`
	ExpiresAt      *time.Time                  `json:"expires_at,omitempty"`
	Rewards        *models.VerificationRewards `json:"rewards,omitempty"`
}

// VerifyRequest is one presentation of a unique code. PrintVersion and
// ClientTimestamp are optional client assertions checked before any
// cryptography runs; Nonce must match the nonce the code was signed with,
// if any.
type VerifyRequest struct {
	SerialNo        string
	Code            string
	Nonce           string
	PrintVersion    *uint8
	ClientTimestamp *time.Time
}

// VerificationService owns the serial-number lifecycle: minting serials,
// printing codes, and verifying codes presented by end users.
type VerificationService struct {
	repos   repomanager.RepositoryManager
	limiter ratelimit.Limiter
	rewards *RewardService
	logger  logging.Logger
	now     func() time.Time
}

func NewVerificationService(repos repomanager.RepositoryManager, limiter ratelimit.Limiter, rewards *RewardService, logger logging.Logger) *VerificationService {
	return &VerificationService{repos: repos, limiter: limiter, rewards: rewards, logger: logger, now: time.Now}
}

// CreateSerialNumber mints a new serial for the product. The serial id is
// derived server-side; UserSerialNo is an optional customer-facing label and
// defaults to a short alias of the serial id.
func (s *VerificationService) CreateSerialNumber(ctx context.Context, userID, productID, userSerialNo string) (*models.ProductSerialNumber, error) {
	if _, err := s.repos.Products().Get(ctx, productID); err != nil {
		return nil, err
	}
	list, err := s.repos.Serials().GetList(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	serialNo := idgen.NewAt(productID, now)
	if userSerialNo == "" {
		userSerialNo = "SN-" + serialNo[:8]
	}
	sn := models.ProductSerialNumber{
		ProductID:    productID,
		SerialNo:     serialNo,
		UserSerialNo: userSerialNo,
		PrintVersion: 0,
		CreatedAt:    now,
		CreatedBy:    userID,
		UpdatedAt:    now,
		UpdatedBy:    userID,
	}
	list = append(list, sn)
	if err := s.repos.Serials().ReplaceList(ctx, productID, list); err != nil {
		return nil, err
	}
	return &sn, nil
}

// UpdateSerialNumber changes the customer-facing label of a serial. The
// server-derived serial id and print version are immutable here.
func (s *VerificationService) UpdateSerialNumber(ctx context.Context, userID, productID, serialNo, userSerialNo string) (*models.ProductSerialNumber, error) {
	list, err := s.repos.Serials().GetList(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].SerialNo != serialNo {
			continue
		}
		list[i].UserSerialNo = userSerialNo
		list[i].UpdatedAt = s.now()
		list[i].UpdatedBy = userID
		if err := s.repos.Serials().ReplaceList(ctx, productID, list); err != nil {
			return nil, err
		}
		sn := list[i]
		return &sn, nil
	}
	return nil, fmt.Errorf("%w: serial number %s", common.ErrorNotFound, serialNo)
}

// ListSerialNumbers returns the product's serials in insertion order.
func (s *VerificationService) ListSerialNumbers(ctx context.Context, productID string) ([]models.ProductSerialNumber, error) {
	return s.repos.Serials().GetList(ctx, productID)
}

// Print bumps the serial's print version and signs a fresh unique code bound
// to the new version. The bumped version is persisted before the code leaves
// the server, so an unsaved version can never appear on a label. Printing
// invalidates every code signed for an earlier version of the same unit.
func (s *VerificationService) Print(ctx context.Context, userID, productID, serialNo string) (*PrintResult, error) {
	product, err := s.repos.Products().Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	org, err := s.repos.Organizations().Get(ctx, product.OrgID)
	if err != nil {
		return nil, err
	}

	list, err := s.repos.Serials().GetList(ctx, productID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range list {
		if list[i].SerialNo == serialNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: serial number %s", common.ErrorNotFound, serialNo)
	}

	sn := &list[idx]
	if sn.PrintVersion < maxPrintVersion {
		sn.PrintVersion++
	}
	now := s.now()
	sn.UpdatedAt = now
	sn.UpdatedBy = userID

	if err := s.repos.Serials().ReplaceList(ctx, productID, list); err != nil {
		return nil, err
	}

	msg := codes.ProductMessage(productID, serialNo, sn.PrintVersion, "")
	code, err := codes.Sign(org.PrivateKey, msg)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "code printed",
		"product_id", productID, "serial_no", serialNo, "print_version", sn.PrintVersion)

	return &PrintResult{Code: code, SerialNumber: *sn}, nil
}

// Verify checks a presented unique code against the persisted serial state.
//
// The attempt is counted against the caller's rate limit before any
// cryptography runs, so guessing costs budget whether or not the code is
// valid. A client-asserted print version or timestamp that disagrees with the
// server rejects the attempt without touching the signature. The message is
// always rebuilt from the stored print version: a code signed for a
// superseded version fails even though its signature is genuine.
func (s *VerificationService) Verify(ctx context.Context, userID string, req VerifyRequest) (*VerificationResult, error) {
	productID, sn, err := s.repos.Serials().FindBySerial(ctx, req.SerialNo)
	if err != nil {
		return nil, err
	}

	// budget is per caller per product, so rotating over a product's serials
	// does not buy fresh attempts
	key := ratelimit.Key{Principal: userID, ResourceID: productID}
	now := s.now()
	if err := s.limiter.RecordAttempt(ctx, key, now); err != nil {
		return nil, err
	}

	invalid := func(reason string) (*VerificationResult, error) {
		s.logger.Warn(ctx, "verification rejected",
			"user_id", userID, "serial_no", req.SerialNo, "reason", reason)
		return &VerificationResult{
			Status:   models.StatusInvalid,
			SerialNo: req.SerialNo,
		}, nil
	}

	if req.PrintVersion != nil && *req.PrintVersion != sn.PrintVersion {
		return invalid("print version mismatch")
	}
	if req.ClientTimestamp != nil {
		drift := now.Sub(*req.ClientTimestamp)
		if drift < 0 {
			drift = -drift
		}
		if drift > ClientTimestampSkew {
			return invalid("client timestamp out of range")
		}
	}

	product, err := s.repos.Products().Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	pub, err := keys.ParsePublicKey(product.PublicKey)
	if err != nil {
		return nil, err
	}

	msg := codes.ProductMessage(productID, req.SerialNo, sn.PrintVersion, req.Nonce)
	if !codes.Verify(pub, msg, req.Code) {
		return invalid("invalid code")
	}

	first, err := s.rewards.IsFirstVerification(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	status := models.StatusMultipleVerification
	if first {
		status = models.StatusFirstVerification
	}

	verification := models.ProductVerification{
		ID:           idgen.NewAt(req.SerialNo, now),
		ProductID:    productID,
		SerialNo:     req.SerialNo,
		PrintVersion: sn.PrintVersion,
		Status:       status,
		CreatedAt:    now,
		CreatedBy:    userID,
	}
	vlist, err := s.repos.Verifications().GetList(ctx, productID)
	if err != nil {
		return nil, err
	}
	vlist = append(vlist, verification)
	if err := s.repos.Verifications().ReplaceList(ctx, productID, vlist); err != nil {
		return nil, err
	}
	rewards, err := s.rewards.Calculate(ctx, userID, productID, status)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.RecordSuccess(ctx, key, now); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "product verified",
		"user_id", userID, "product_id", productID, "serial_no", req.SerialNo, "status", status)

	expiresAt := now.Add(VerificationValidity)
	return &VerificationResult{
		Status:         status,
		ProductID:      productID,
		ProductName:    product.Name,
		SerialNo:       req.SerialNo,
		PrintVersion:   sn.PrintVersion,
		VerificationID: verification.ID,
		ExpiresAt:      &expiresAt,
		Rewards:        &rewards,
	}, nil
}

// RateLimitStatus reports the caller's remaining budget for the product the
// serial belongs to, without consuming an attempt.
func (s *VerificationService) RateLimitStatus(ctx context.Context, userID, serialNo string) (*models.RateLimitInfo, error) {
	productID, _, err := s.repos.Serials().FindBySerial(ctx, serialNo)
	if err != nil {
		return nil, err
	}
	key := ratelimit.Key{Principal: userID, ResourceID: productID}
	i, err := s.limiter.Check(ctx, key, s.now())
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListVerifications returns the product's verification records in insertion
// order.
func (s *VerificationService) ListVerifications(ctx context.Context, productID string) ([]models.ProductVerification, error) {
	return s.repos.Verifications().GetList(ctx, productID)
}

// ListUserVerifications returns every verification created by the user,
// across all products.
func (s *VerificationService) ListUserVerifications(ctx context.Context, userID string) ([]models.ProductVerification, error) {
	ids, err := s.repos.Verifications().ProductIDs(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.ProductVerification
	for _, productID := range ids {
		list, err := s.repos.Verifications().GetList(ctx, productID)
		if err != nil {
			return nil, err
		}
		for _, v := range list {
			if v.CreatedBy == userID {
				out = append(out, v)
			}
		}
	}
	return out, nil
}
