package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veritag/veritag/internal/codes"
	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/keys"
	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
)

// Reward points by verification outcome. A product promotion adds
// PromotionBonusPoints on top of any successful verification.
const (
	FirstVerificationPoints    = 100
	MultipleVerificationPoints = 10
	PromotionBonusPoints       = 50
)

// Payer settles a reward payout and returns a transaction id. Points are
// credited to the ledger at verification time; the payer only moves them out.
type Payer interface {
	Pay(ctx context.Context, userID string, points uint32) (string, error)
}

// SimulatedPayer confirms every payout with a generated transaction id. It
// stands in for an external payment rail in tests and single-node deployments.
type SimulatedPayer struct{}

func (SimulatedPayer) Pay(ctx context.Context, userID string, points uint32) (string, error) {
	return uuid.NewString(), nil
}

// RedeemResult reports the outcome of a reward claim. Success is false when
// the claim did not pay out; TransactionID then carries the id of a previous
// payout if one exists.
type RedeemResult struct {
	Success       bool                       `json:"success"`
	Points        uint32                     `json:"points"`
	TransactionID string                     `json:"transaction_id,omitempty"`
	Message       string                     `json:"message"`
	Rewards       models.VerificationRewards `json:"rewards"`
}

// RewardService computes and settles verification rewards.
type RewardService struct {
	repos  repomanager.RepositoryManager
	payer  Payer
	logger logging.Logger
	now    func() time.Time
}

func NewRewardService(repos repomanager.RepositoryManager, payer Payer, logger logging.Logger) *RewardService {
	return &RewardService{repos: repos, payer: payer, logger: logger, now: time.Now}
}

// IsFirstVerification reports whether the user holds no first-verification
// credit for the product yet.
func (s *RewardService) IsFirstVerification(ctx context.Context, userID, productID string) (bool, error) {
	seen, err := s.repos.Rewards().HasVerified(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	return !seen, nil
}

// compute derives the reward for a verification outcome. No side effects:
// the answer depends only on the status and the product's current promotion,
// so repeated calls always agree.
func (s *RewardService) compute(ctx context.Context, productID string, status models.VerificationStatus) (models.VerificationRewards, error) {
	r := models.VerificationRewards{}
	switch status {
	case models.StatusFirstVerification:
		r.Points = FirstVerificationPoints
		r.IsFirstVerification = true
	case models.StatusMultipleVerification:
		r.Points = MultipleVerificationPoints
	default:
		return r, nil
	}

	promo, err := s.repos.Promotions().Get(ctx, productID)
	switch {
	case err == nil:
		r.Points += PromotionBonusPoints
		r.SpecialReward = &promo.Value
		desc := fmt.Sprintf("Special reward: %s", promo.Value)
		r.RewardDescription = &desc
	case errors.Is(err, common.ErrorNotFound):
	default:
		return models.VerificationRewards{}, err
	}
	return r, nil
}

// Calculate computes the reward for a verification and, unless the status is
// Invalid, credits the user: the product joins the user's verified set and
// the point ledger is updated additively. Called once per recorded
// verification, at verification time.
func (s *RewardService) Calculate(ctx context.Context, userID, productID string, status models.VerificationStatus) (models.VerificationRewards, error) {
	r, err := s.compute(ctx, productID, status)
	if err != nil {
		return models.VerificationRewards{}, err
	}
	if status == models.StatusInvalid {
		return r, nil
	}

	if err := s.repos.Rewards().MarkVerified(ctx, userID, productID); err != nil {
		return models.VerificationRewards{}, err
	}
	if err := s.repos.Rewards().Apply(ctx, userID, r.Points, r.IsFirstVerification, s.now()); err != nil {
		return models.VerificationRewards{}, err
	}
	return r, nil
}

// Redeem claims the reward for a previously recorded verification. The caller
// re-presents the serial number and code; the claim succeeds at most once per
// verification record.
func (s *RewardService) Redeem(ctx context.Context, userID, serialNo, code string) (*RedeemResult, error) {
	productID, sn, err := s.repos.Serials().FindBySerial(ctx, serialNo)
	if err != nil {
		return nil, err
	}
	product, err := s.repos.Products().Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	pub, err := keys.ParsePublicKey(product.PublicKey)
	if err != nil {
		return nil, err
	}
	msg := codes.ProductMessage(productID, serialNo, sn.PrintVersion, "")
	if !codes.Verify(pub, msg, code) {
		return &RedeemResult{Message: "verification code is not valid"}, nil
	}

	list, err := s.repos.Verifications().GetList(ctx, productID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range list {
		v := &list[i]
		if v.CreatedBy == userID && v.SerialNo == serialNo && v.PrintVersion == sn.PrintVersion {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: no verification on record", common.ErrorNotFound)
	}
	v := &list[idx]

	if v.RewardClaimed {
		return &RedeemResult{
			TransactionID: v.RewardTransactionID,
			Message:       "reward already claimed",
		}, nil
	}
	if v.Status != models.StatusFirstVerification {
		return &RedeemResult{Message: "only a first verification earns a reward"}, nil
	}

	rewards, err := s.compute(ctx, productID, v.Status)
	if err != nil {
		return nil, err
	}
	if rewards.Points == 0 {
		v.RewardClaimed = true
		if err := s.repos.Verifications().ReplaceList(ctx, productID, list); err != nil {
			return nil, err
		}
		return &RedeemResult{Message: "nothing to pay out", Rewards: rewards}, nil
	}

	txID, err := s.payer.Pay(ctx, userID, rewards.Points)
	if err != nil {
		return nil, fmt.Errorf("%w: payout failed: %s", common.ErrorExternal, err)
	}

	v.RewardClaimed = true
	v.RewardTransactionID = txID
	if err := s.repos.Verifications().ReplaceList(ctx, productID, list); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "reward redeemed",
		"user_id", userID, "product_id", productID, "points", rewards.Points, "tx_id", txID)

	return &RedeemResult{
		Success:       true,
		Points:        rewards.Points,
		TransactionID: txID,
		Message:       "reward paid out",
		Rewards:       rewards,
	}, nil
}

// GetUserRewards returns the user's ledger, an all-zero ledger if the user
// has never been paid.
func (s *RewardService) GetUserRewards(ctx context.Context, userID string) (*models.UserRewards, error) {
	r, err := s.repos.Rewards().Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.UserRewards{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
