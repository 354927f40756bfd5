package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritag/veritag/internal/server/models"
)

func TestRedeem_FirstVerificationPaysOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn := env.newProductWithSerial(t, "admin")

	printed, err := env.verifications.Print(ctx, "admin", p.ID, sn.SerialNo)
	require.NoError(t, err)
	_, err = env.verifications.Verify(ctx, "buyer", verifyReq(sn.SerialNo, printed.Code))
	require.NoError(t, err)

	result, err := env.rewards.Redeem(ctx, "buyer", sn.SerialNo, printed.Code)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, FirstVerificationPoints, result.Points)
	assert.NotEmpty(t, result.TransactionID)
	assert.True(t, result.Rewards.IsFirstVerification)

	ledger, err := env.rewards.GetUserRewards(ctx, "buyer")
	require.NoError(t, err)
	assert.EqualValues(t, FirstVerificationPoints, ledger.TotalPoints)
	assert.EqualValues(t, 1, ledger.FirstVerifications)
}

func TestRedeem_SecondClaimReturnsExistingTransaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn := env.newProductWithSerial(t, "admin")

	printed, err := env.verifications.Print(ctx, "admin", p.ID, sn.SerialNo)
	require.NoError(t, err)
	_, err = env.verifications.Verify(ctx, "buyer", verifyReq(sn.SerialNo, printed.Code))
	require.NoError(t, err)

	first, err := env.rewards.Redeem(ctx, "buyer", sn.SerialNo, printed.Code)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := env.rewards.Redeem(ctx, "buyer", sn.SerialNo, printed.Code)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	// the ledger must not be credited twice
	ledger, err := env.rewards.GetUserRewards(ctx, "buyer")
	require.NoError(t, err)
	assert.EqualValues(t, FirstVerificationPoints, ledger.TotalPoints)
}

func TestRedeem_MultipleVerificationEarnsNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn1 := env.newProductWithSerial(t, "admin")

	// second unit of the same product
	env.clock.Advance(time.Millisecond)
	sn2, err := env.verifications.CreateSerialNumber(ctx, "admin", p.ID, "")
	require.NoError(t, err)

	printed1, err := env.verifications.Print(ctx, "admin", p.ID, sn1.SerialNo)
	require.NoError(t, err)
	printed2, err := env.verifications.Print(ctx, "admin", p.ID, sn2.SerialNo)
	require.NoError(t, err)

	// first unit marks the product as verified for the buyer, so the second
	// unit's verification is a MultipleVerification
	_, err = env.verifications.Verify(ctx, "buyer", verifyReq(sn1.SerialNo, printed1.Code))
	require.NoError(t, err)
	result, err := env.verifications.Verify(ctx, "buyer", verifyReq(sn2.SerialNo, printed2.Code))
	require.NoError(t, err)
	require.Equal(t, models.StatusMultipleVerification, result.Status)

	redeemed, err := env.rewards.Redeem(ctx, "buyer", sn2.SerialNo, printed2.Code)
	require.NoError(t, err)
	assert.False(t, redeemed.Success)
	assert.Empty(t, redeemed.TransactionID)
}

func TestRedeem_InvalidCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn := env.newProductWithSerial(t, "admin")

	printed, err := env.verifications.Print(ctx, "admin", p.ID, sn.SerialNo)
	require.NoError(t, err)
	_, err = env.verifications.Verify(ctx, "buyer", verifyReq(sn.SerialNo, printed.Code))
	require.NoError(t, err)

	result, err := env.rewards.Redeem(ctx, "buyer", sn.SerialNo, "deadbeef")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.TransactionID)
}

func TestRedeem_NoVerificationOnRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn := env.newProductWithSerial(t, "admin")

	printed, err := env.verifications.Print(ctx, "admin", p.ID, sn.SerialNo)
	require.NoError(t, err)

	// valid code, but this user never verified
	_, err = env.rewards.Redeem(ctx, "stranger", sn.SerialNo, printed.Code)
	require.Error(t, err)
}

func TestCalculate_PromotionBonus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn := env.newProductWithSerial(t, "admin")

	_, err := env.products.SetPromotion(ctx, p.ID, "launch", "free sticker")
	require.NoError(t, err)

	printed, err := env.verifications.Print(ctx, "admin", p.ID, sn.SerialNo)
	require.NoError(t, err)
	_, err = env.verifications.Verify(ctx, "buyer", verifyReq(sn.SerialNo, printed.Code))
	require.NoError(t, err)

	result, err := env.rewards.Redeem(ctx, "buyer", sn.SerialNo, printed.Code)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, FirstVerificationPoints+PromotionBonusPoints, result.Points)
	require.NotNil(t, result.Rewards.SpecialReward)
	assert.Equal(t, "free sticker", *result.Rewards.SpecialReward)
	require.NotNil(t, result.Rewards.RewardDescription)
	assert.Equal(t, "Special reward: free sticker", *result.Rewards.RewardDescription)
}

func TestCalculate_PromotionBonusOnMultipleVerification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	p, sn := env.newProductWithSerial(t, "admin")

	_, err := env.products.SetPromotion(ctx, p.ID, "launch", "free sticker")
	require.NoError(t, err)

	printed, err := env.verifications.Print(ctx, "admin", p.ID, sn.SerialNo)
	require.NoError(t, err)

	_, err = env.verifications.Verify(ctx, "buyer", verifyReq(sn.SerialNo, printed.Code))
	require.NoError(t, err)

	// the promotion bonus applies to repeat scans too
	result, err := env.verifications.Verify(ctx, "buyer", verifyReq(sn.SerialNo, printed.Code))
	require.NoError(t, err)
	require.Equal(t, models.StatusMultipleVerification, result.Status)
	require.NotNil(t, result.Rewards)
	assert.EqualValues(t, MultipleVerificationPoints+PromotionBonusPoints, result.Rewards.Points)
	assert.False(t, result.Rewards.IsFirstVerification)
}

func TestCalculate_Statuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	tests := []struct {
		name   string
		status models.VerificationStatus
		points uint32
		first  bool
	}{
		{name: "first", status: models.StatusFirstVerification, points: FirstVerificationPoints, first: true},
		{name: "multiple", status: models.StatusMultipleVerification, points: MultipleVerificationPoints},
		{name: "invalid", status: models.StatusInvalid, points: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := "user-" + tt.name
			r, err := env.rewards.Calculate(ctx, user, "p-without-promo", tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.points, r.Points)
			assert.Equal(t, tt.first, r.IsFirstVerification)

			ledger, err := env.rewards.GetUserRewards(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, tt.points, ledger.TotalPoints)
		})
	}
}

func TestCalculate_InvalidLeavesNoTrace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.rewards.Calculate(ctx, "buyer", "some-product", models.StatusInvalid)
	require.NoError(t, err)

	first, err := env.rewards.IsFirstVerification(ctx, "buyer", "some-product")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestGetUserRewards_UnknownUserIsZero(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ledger, err := env.rewards.GetUserRewards(context.Background(), "nobody")
	require.NoError(t, err)
	assert.EqualValues(t, 0, ledger.TotalPoints)
	assert.Equal(t, "nobody", ledger.UserID)
}
