package rewards

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

const (
	// RewardsBucket maps user id → JSON UserRewards.
	RewardsBucket = "user_rewards"
	// VerifiedBucket maps user id → JSON list of verified product ids.
	VerifiedBucket = "user_verified_products"
)

type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(db *bolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Get(_ context.Context, userID string) (*models.UserRewards, error) {
	var ur models.UserRewards
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(RewardsBucket)).Get([]byte(userID))
		if raw == nil {
			return common.ErrorNotFound
		}
		if err := json.Unmarshal(raw, &ur); err != nil {
			return fmt.Errorf("%w: decode rewards for user %s: %v", common.ErrorInternal, userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ur, nil
}

func (r *BoltRepository) Apply(_ context.Context, userID string, points uint32, firstVerification bool, now time.Time) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(RewardsBucket))

		ur := models.UserRewards{UserID: userID}
		if raw := b.Get([]byte(userID)); raw != nil {
			if err := json.Unmarshal(raw, &ur); err != nil {
				return fmt.Errorf("%w: decode rewards for user %s: %v", common.ErrorInternal, userID, err)
			}
		}

		ur.TotalPoints += points
		ur.VerificationCount++
		if firstVerification {
			ur.FirstVerifications++
		}
		ur.LastRewardTime = now

		raw, err := json.Marshal(&ur)
		if err != nil {
			return fmt.Errorf("encode rewards: %w", err)
		}
		return b.Put([]byte(userID), raw)
	})
}

func (r *BoltRepository) HasVerified(_ context.Context, userID, productID string) (bool, error) {
	verified := false
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(VerifiedBucket)).Get([]byte(userID))
		if raw == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return fmt.Errorf("%w: decode verified set for user %s: %v", common.ErrorInternal, userID, err)
		}
		for _, id := range ids {
			if id == productID {
				verified = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return verified, nil
}

func (r *BoltRepository) MarkVerified(_ context.Context, userID, productID string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(VerifiedBucket))

		ids := []string{}
		if raw := b.Get([]byte(userID)); raw != nil {
			if err := json.Unmarshal(raw, &ids); err != nil {
				return fmt.Errorf("%w: decode verified set for user %s: %v", common.ErrorInternal, userID, err)
			}
		}
		for _, id := range ids {
			if id == productID {
				return nil
			}
		}
		ids = append(ids, productID)

		raw, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("encode verified set: %w", err)
		}
		return b.Put([]byte(userID), raw)
	})
}

func (r *BoltRepository) DeleteAll(_ context.Context) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{RewardsBucket, VerifiedBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
