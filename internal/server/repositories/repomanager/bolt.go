package repomanager

import (
	"context"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/veritag/veritag/internal/server/repositories/organizations"
	"github.com/veritag/veritag/internal/server/repositories/products"
	"github.com/veritag/veritag/internal/server/repositories/promotions"
	"github.com/veritag/veritag/internal/server/repositories/resellers"
	"github.com/veritag/veritag/internal/server/repositories/rewards"
	"github.com/veritag/veritag/internal/server/repositories/serials"
	"github.com/veritag/veritag/internal/server/repositories/verifications"
)

type BoltRepositoryManager struct {
	db            *bolt.DB
	organizations *organizations.BoltRepository
	products      *products.BoltRepository
	resellers     *resellers.BoltRepository
	serials       *serials.BoltRepository
	verifications *verifications.BoltRepository
	rewards       *rewards.BoltRepository
	promotions    *promotions.BoltRepository
}

// NewBoltRepositoryManager opens (or creates) the database file and ensures
// every bucket exists. Bucket creation is idempotent and safe on every start.
func NewBoltRepositoryManager(path string) (*BoltRepositoryManager, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open error: %w", err)
	}

	buckets := []string{
		organizations.BucketName,
		products.BucketName,
		resellers.BucketName,
		serials.BucketName,
		verifications.BucketName,
		rewards.RewardsBucket,
		rewards.VerifiedBucket,
		promotions.BucketName,
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt bucket init error: %w", err)
	}

	return &BoltRepositoryManager{
		db:            db,
		organizations: organizations.NewBoltRepository(db),
		products:      products.NewBoltRepository(db),
		resellers:     resellers.NewBoltRepository(db),
		serials:       serials.NewBoltRepository(db),
		verifications: verifications.NewBoltRepository(db),
		rewards:       rewards.NewBoltRepository(db),
		promotions:    promotions.NewBoltRepository(db),
	}, nil
}

func (m *BoltRepositoryManager) Organizations() organizations.Repository { return m.organizations }
func (m *BoltRepositoryManager) Products() products.Repository           { return m.products }
func (m *BoltRepositoryManager) Resellers() resellers.Repository         { return m.resellers }
func (m *BoltRepositoryManager) Serials() serials.Repository             { return m.serials }
func (m *BoltRepositoryManager) Verifications() verifications.Repository { return m.verifications }
func (m *BoltRepositoryManager) Rewards() rewards.Repository             { return m.rewards }
func (m *BoltRepositoryManager) Promotions() promotions.Repository       { return m.promotions }

func (m *BoltRepositoryManager) ResetAll(ctx context.Context) error {
	if err := m.verifications.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.serials.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.rewards.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.promotions.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.resellers.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.products.DeleteAll(ctx); err != nil {
		return err
	}
	return m.organizations.DeleteAll(ctx)
}

func (m *BoltRepositoryManager) Close() error {
	return m.db.Close()
}
