package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/logging"
	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/ratelimit"
	"github.com/veritag/veritag/internal/server/repositories/repomanager"
)

// testClock is an advanceable clock shared by every service in a test env.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	clock         *testClock
	limiter       *ratelimit.MemoryLimiter
	repos         repomanager.RepositoryManager
	orgs          *OrganizationService
	products      *ProductService
	verifications *VerificationService
	rewards       *RewardService
	resellers     *ResellerService
}

// newTestEnv builds the full service stack on a throwaway Bolt database and
// an in-memory rate limiter, with every service on the same test clock.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos, err := repomanager.NewBoltRepositoryManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := &testClock{t: time.Unix(1700000000, 0).UTC()}
	limiter := ratelimit.NewMemoryLimiter()

	rewards := NewRewardService(repos, SimulatedPayer{}, logger)
	rewards.now = clock.Now

	verifications := NewVerificationService(repos, limiter, rewards, logger)
	verifications.now = clock.Now

	orgs := NewOrganizationService(repos, logger)
	orgs.now = clock.Now

	products := NewProductService(repos, verifications, logger)
	products.now = clock.Now

	resellers := NewResellerService(repos, logger)
	resellers.now = clock.Now

	return &testEnv{
		clock:         clock,
		limiter:       limiter,
		repos:         repos,
		orgs:          orgs,
		products:      products,
		verifications: verifications,
		rewards:       rewards,
		resellers:     resellers,
	}
}

// newProductWithSerial creates an organization, a product under it and one
// unprinted serial, returning the product and serial records.
func (env *testEnv) newProductWithSerial(t *testing.T, admin string) (*models.Product, *models.ProductSerialNumber) {
	t.Helper()
	ctx := context.Background()

	org, err := env.orgs.CreateOrganization(ctx, admin, "Acme", "test org")
	require.NoError(t, err)

	// distinct id inputs need distinct timestamps
	env.clock.Advance(time.Millisecond)
	p, err := env.products.CreateProduct(ctx, admin, org.ID, "Widget", "hardware", "")
	require.NoError(t, err)

	env.clock.Advance(time.Millisecond)
	sn, err := env.verifications.CreateSerialNumber(ctx, admin, p.ID, "")
	require.NoError(t, err)

	return p, sn
}

func verifyReq(serialNo, code string) VerifyRequest {
	return VerifyRequest{SerialNo: serialNo, Code: code}
}
