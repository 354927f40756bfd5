// Package repomanager wires the per-entity repositories to a storage engine.
// Two engines exist: PostgreSQL (production) and Bolt (embedded, single-file,
// faithful to the original blob-per-key layout).
package repomanager

import (
	"context"

	"github.com/veritag/veritag/internal/server/repositories/organizations"
	"github.com/veritag/veritag/internal/server/repositories/products"
	"github.com/veritag/veritag/internal/server/repositories/promotions"
	"github.com/veritag/veritag/internal/server/repositories/resellers"
	"github.com/veritag/veritag/internal/server/repositories/rewards"
	"github.com/veritag/veritag/internal/server/repositories/serials"
	"github.com/veritag/veritag/internal/server/repositories/verifications"
)

type RepositoryManager interface {
	Organizations() organizations.Repository
	Products() products.Repository
	Resellers() resellers.Repository
	Serials() serials.Repository
	Verifications() verifications.Repository
	Rewards() rewards.Repository
	Promotions() promotions.Repository

	// ResetAll clears every collection. Each collection is wiped atomically;
	// administrative use only.
	ResetAll(ctx context.Context) error

	Close() error
}
