package promotions

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

const BucketName = "promotions"

type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(db *bolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Get(_ context.Context, productID string) (*models.Promotion, error) {
	var p models.Promotion
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(BucketName)).Get([]byte(productID))
		if raw == nil {
			return common.ErrorNotFound
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("%w: decode promotion for product %s: %v", common.ErrorInternal, productID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BoltRepository) Set(_ context.Context, promo *models.Promotion) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(promo)
		if err != nil {
			return fmt.Errorf("encode promotion: %w", err)
		}
		return tx.Bucket([]byte(BucketName)).Put([]byte(promo.ProductID), raw)
	})
}

func (r *BoltRepository) Remove(_ context.Context, productID string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).Delete([]byte(productID))
	})
}

func (r *BoltRepository) DeleteAll(_ context.Context) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(BucketName))
		return err
	})
}
