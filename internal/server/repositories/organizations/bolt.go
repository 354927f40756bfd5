package organizations

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

// BucketName is the bolt bucket holding one JSON blob per organization id.
const BucketName = "organizations"

type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(db *bolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(_ context.Context, org *models.Organization) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(org)
		if err != nil {
			return fmt.Errorf("encode organization: %w", err)
		}
		return tx.Bucket([]byte(BucketName)).Put([]byte(org.ID), raw)
	})
}

func (r *BoltRepository) Get(_ context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(BucketName)).Get([]byte(id))
		if raw == nil {
			return common.ErrorNotFound
		}
		if err := json.Unmarshal(raw, &org); err != nil {
			return fmt.Errorf("%w: decode organization %s: %v", common.ErrorInternal, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *BoltRepository) Update(ctx context.Context, org *models.Organization) error {
	if _, err := r.Get(ctx, org.ID); err != nil {
		return err
	}
	return r.Create(ctx, org)
}

func (r *BoltRepository) List(_ context.Context) ([]models.Organization, error) {
	orgs := []models.Organization{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).ForEach(func(k, v []byte) error {
			var org models.Organization
			if err := json.Unmarshal(v, &org); err != nil {
				return fmt.Errorf("%w: decode organization %s: %v", common.ErrorInternal, k, err)
			}
			orgs = append(orgs, org)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
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
