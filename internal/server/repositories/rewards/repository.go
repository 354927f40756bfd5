// Package rewards persists the reward ledger: per-user point accumulators and
// the set of products each user has already verified. Both structures grow
// monotonically; nothing in this package ever decrements a counter or removes
// a product from a user's verified set (short of the administrative wipe).
package rewards

import (
	"context"
	"time"

	"github.com/veritag/veritag/internal/server/models"
)

type Repository interface {
	// Get returns the user's accumulated rewards, ErrorNotFound if the user
	// has never been awarded points.
	Get(ctx context.Context, userID string) (*models.UserRewards, error)

	// Apply adds points to the user's ledger, creating it if absent, and
	// bumps the verification counters.
	Apply(ctx context.Context, userID string, points uint32, firstVerification bool, now time.Time) error

	// HasVerified reports whether the user already holds a first-verification
	// credit for the product.
	HasVerified(ctx context.Context, userID, productID string) (bool, error)

	// MarkVerified records the product in the user's verified set. Inserting
	// an already-present product is a no-op.
	MarkVerified(ctx context.Context, userID, productID string) error

	DeleteAll(ctx context.Context) error
}
