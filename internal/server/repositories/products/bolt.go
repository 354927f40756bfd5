package products

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

const BucketName = "products"

type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(db *bolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) Create(_ context.Context, p *models.Product) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product: %w", err)
		}
		return tx.Bucket([]byte(BucketName)).Put([]byte(p.ID), raw)
	})
}

func (r *BoltRepository) Get(_ context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(BucketName)).Get([]byte(id))
		if raw == nil {
			return common.ErrorNotFound
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("%w: decode product %s: %v", common.ErrorInternal, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BoltRepository) Update(ctx context.Context, p *models.Product) error {
	if _, err := r.Get(ctx, p.ID); err != nil {
		return err
	}
	return r.Create(ctx, p)
}

func (r *BoltRepository) ListByOrg(_ context.Context, orgID string) ([]models.Product, error) {
	list := []models.Product{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).ForEach(func(k, v []byte) error {
			var p models.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("%w: decode product %s: %v", common.ErrorInternal, k, err)
			}
			if p.OrgID == orgID {
				list = append(list, p)
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
