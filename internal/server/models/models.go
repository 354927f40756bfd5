// Package models defines the persistent records of the verification domain.
package models

import "time"

// Organization owns products and resellers and holds the single signing
// keypair used for every code minted under it. The private key is stored
// hex-encoded; the matching public key is derivable and is copied onto each
// product and reseller at creation time.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PrivateKey  string    `json:"private_key"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// OrganizationPublic is the externally visible projection of an Organization:
// everything except the private key.
type OrganizationPublic struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Public strips the private key from an Organization.
func (o *Organization) Public() OrganizationPublic {
	return OrganizationPublic{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// Product is created once; PublicKey is the organization-derived verification
// key and is fixed for the product's lifetime.
type Product struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	PublicKey   string    `json:"public_key"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// Reseller is an authorized distributor under an organization. Like products,
// resellers store only the public half of the organization key.
type Reseller struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	Name       string    `json:"name"`
	PublicKey  string    `json:"public_key"`
	DateJoined time.Time `json:"date_joined"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	UpdatedAt  time.Time `json:"updated_at"`
	UpdatedBy  string    `json:"updated_by"`
}

// ProductSerialNumber identifies one physical unit of a product. PrintVersion
// starts at 0 and is bumped by exactly 1 on every print (saturating at 255);
// a code signed for version v is valid only while the stored version is v.
type ProductSerialNumber struct {
	ProductID    string    `json:"product_id"`
	SerialNo     string    `json:"serial_no"`
	UserSerialNo string    `json:"user_serial_no"`
	PrintVersion uint8     `json:"print_version"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `json:"created_by"`
	UpdatedAt    time.Time `json:"updated_at"`
	UpdatedBy    string    `json:"updated_by"`
}

// VerificationStatus is the closed outcome set of a product verification.
type VerificationStatus string

const (
	StatusFirstVerification    VerificationStatus = "FirstVerification"
	StatusMultipleVerification VerificationStatus = "MultipleVerification"
	StatusInvalid              VerificationStatus = "Invalid"
)

// ProductVerification is an append-only record of one verification attempt
// that passed the signature check. Only the claim fields mutate afterwards:
// RewardClaimed goes false→true once, RewardTransactionID is set once.
type ProductVerification struct {
	ID                  string             `json:"id"`
	ProductID           string             `json:"product_id"`
	SerialNo            string             `json:"serial_no"`
	PrintVersion        uint8              `json:"print_version"`
	Status              VerificationStatus `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
	CreatedBy           string             `json:"created_by"`
	RewardClaimed       bool               `json:"reward_claimed"`
	RewardTransactionID string             `json:"reward_transaction_id,omitempty"`
}

// UserRewards accumulates a user's points. All updates are additive; counters
// never decrease.
type UserRewards struct {
	UserID             string    `json:"user_id"`
	TotalPoints        uint32    `json:"total_points"`
	VerificationCount  uint32    `json:"verification_count"`
	FirstVerifications uint32    `json:"first_verifications"`
	LastRewardTime     time.Time `json:"last_reward_time"`
}

// Promotion is an admin-managed bonus descriptor attached to a product.
type Promotion struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

// RateLimitInfo is the projection returned by the rate limiter.
type RateLimitInfo struct {
	RemainingAttempts  uint32    `json:"remaining_attempts"`
	ResetTime          time.Time `json:"reset_time"`
	CurrentWindowStart time.Time `json:"current_window_start"`
}

// VerificationRewards is the outcome of a reward calculation.
type VerificationRewards struct {
	Points              uint32  `json:"points"`
	IsFirstVerification bool    `json:"is_first_verification"`
	SpecialReward       *string `json:"special_reward,omitempty"`
	RewardDescription   *string `json:"reward_description,omitempty"`
}

// ResellerVerificationStatus is the closed outcome set of a reseller code
// verification. ReplayAttackDetected is part of the wire contract and is
// reserved for deployments that track code nonces.
type ResellerVerificationStatus string

const (
	ResellerStatusSuccess              ResellerVerificationStatus = "Success"
	ResellerStatusInvalidCode          ResellerVerificationStatus = "InvalidCode"
	ResellerStatusExpiredCode          ResellerVerificationStatus = "ExpiredCode"
	ResellerStatusReplayAttackDetected ResellerVerificationStatus = "ReplayAttackDetected"
	ResellerStatusResellerNotFound     ResellerVerificationStatus = "ResellerNotFound"
	ResellerStatusOrganizationNotFound ResellerVerificationStatus = "OrganizationNotFound"
	ResellerStatusInternalError        ResellerVerificationStatus = "InternalError"
)
