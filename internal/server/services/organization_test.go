package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/common"
)

func TestOrganizationLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.orgs.CreateOrganization(ctx, "admin", "Acme", "makers of widgets")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Acme", created.Name)

	got, err := env.orgs.GetOrganization(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	env.clock.Advance(time.Hour)
	updated, err := env.orgs.UpdateOrganization(ctx, "admin", created.ID, "Acme Corp", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	list, err := env.orgs.ListOrganizations(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.orgs.GetOrganization(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestOrganization_PrivateKeyStaysInternal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.orgs.CreateOrganization(ctx, "admin", "Acme", "")
	require.NoError(t, err)

	// the stored record holds the key, the public projection must not
	stored, err := env.repos.Organizations().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PrivateKey)

	raw, err := json.Marshal(created)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), stored.PrivateKey)
	assert.NotContains(t, string(raw), "private_key")
}
