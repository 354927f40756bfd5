package serials

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/server/models"
)

func newBoltRepo(t *testing.T) *BoltRepository {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	}))
	return NewBoltRepository(db)
}

func sn(productID, serialNo string, version uint8) models.ProductSerialNumber {
	now := time.Unix(1700000000, 0).UTC()
	return models.ProductSerialNumber{
		ProductID:    productID,
		SerialNo:     serialNo,
		PrintVersion: version,
		CreatedAt:    now,
		CreatedBy:    "u1",
		UpdatedAt:    now,
		UpdatedBy:    "u1",
	}
}

func TestBoltRepository_GetList_Empty(t *testing.T) {
	t.Parallel()

	r := newBoltRepo(t)
	list, err := r.GetList(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBoltRepository_ReplaceList_PreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newBoltRepo(t)

	in := []models.ProductSerialNumber{sn("p1", "s3", 0), sn("p1", "s1", 1), sn("p1", "s2", 2)}
	require.NoError(t, r.ReplaceList(ctx, "p1", in))

	out, err := r.GetList(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "s3", out[0].SerialNo)
	assert.Equal(t, "s1", out[1].SerialNo)
	assert.Equal(t, "s2", out[2].SerialNo)
}

func TestBoltRepository_ReplaceList_Overwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newBoltRepo(t)

	require.NoError(t, r.ReplaceList(ctx, "p1", []models.ProductSerialNumber{sn("p1", "s1", 0), sn("p1", "s2", 0)}))
	require.NoError(t, r.ReplaceList(ctx, "p1", []models.ProductSerialNumber{sn("p1", "s2", 1)}))

	out, err := r.GetList(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "s2", out[0].SerialNo)
	assert.EqualValues(t, 1, out[0].PrintVersion)
}

func TestBoltRepository_FindBySerial(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newBoltRepo(t)

	require.NoError(t, r.ReplaceList(ctx, "p1", []models.ProductSerialNumber{sn("p1", "s1", 0)}))
	require.NoError(t, r.ReplaceList(ctx, "p2", []models.ProductSerialNumber{sn("p2", "s2", 3)}))

	productID, found, err := r.FindBySerial(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "p2", productID)
	assert.EqualValues(t, 3, found.PrintVersion)

	_, _, err = r.FindBySerial(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBoltRepository_ProductIDsAndDeleteAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newBoltRepo(t)

	require.NoError(t, r.ReplaceList(ctx, "p1", []models.ProductSerialNumber{sn("p1", "s1", 0)}))
	require.NoError(t, r.ReplaceList(ctx, "p2", []models.ProductSerialNumber{sn("p2", "s2", 0)}))

	ids, err := r.ProductIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)

	require.NoError(t, r.DeleteAll(ctx))

	ids, err = r.ProductIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
