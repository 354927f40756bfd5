package serials

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

// BucketName maps product id → JSON-encoded []ProductSerialNumber.
const BucketName = "serial_numbers"

// BoltRepository keeps one JSON blob per product, the blob-codec layout of
// the reference deployment.
type BoltRepository struct {
	db *bolt.DB
}

func NewBoltRepository(db *bolt.DB) *BoltRepository {
	return &BoltRepository{db: db}
}

func (r *BoltRepository) GetList(_ context.Context, productID string) ([]models.ProductSerialNumber, error) {
	list := []models.ProductSerialNumber{}
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(BucketName)).Get([]byte(productID))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("%w: decode serial list for product %s: %v", common.ErrorInternal, productID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *BoltRepository) ReplaceList(_ context.Context, productID string, list []models.ProductSerialNumber) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode serial list: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).Put([]byte(productID), raw)
	})
}

func (r *BoltRepository) FindBySerial(_ context.Context, serialNo string) (string, *models.ProductSerialNumber, error) {
	var (
		productID string
		found     *models.ProductSerialNumber
	)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).ForEach(func(k, v []byte) error {
			if found != nil {
				return nil
			}
			var list []models.ProductSerialNumber
			if err := json.Unmarshal(v, &list); err != nil {
				return fmt.Errorf("%w: decode serial list for product %s: %v", common.ErrorInternal, k, err)
			}
			for i := range list {
				if list[i].SerialNo == serialNo {
					productID = string(k)
					sn := list[i]
					found = &sn
					return nil
				}
			}
			return nil
		})
	})
	if err != nil {
		return "", nil, err
	}
	if found == nil {
		return "", nil, common.ErrorNotFound
	}
	return productID, found, nil
}

func (r *BoltRepository) ProductIDs(_ context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketName)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
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
