package resellers

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

const BucketName = "resellers"

type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(db *bolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(_ context.Context, res *models.Reseller) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode reseller: %w", err)
		}
		return tx.Bucket([]byte(BucketName)).Put([]byte(res.ID), raw)
	})
}

func (r *BoltRepository) Get(_ context.Context, id string) (*models.Reseller, error) {
	var res models.Reseller
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(BucketName)).Get([]byte(id))
		if raw == nil {
			return common.ErrorNotFound
		}
		if err := json.Unmarshal(raw, &res); err != nil {
			return fmt.Errorf("%w: decode reseller %s: %v", common.ErrorInternal, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *BoltRepository) ListByOrg(_ context.Context, orgID string) ([]models.Reseller, error) {
	list := []models.Reseller{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).ForEach(func(k, v []byte) error {
			var res models.Reseller
			if err := json.Unmarshal(v, &res); err != nil {
				return fmt.Errorf("%w: decode reseller %s: %v", common.ErrorInternal, k, err)
			}
			if res.OrgID == orgID {
				list = append(list, res)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
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
