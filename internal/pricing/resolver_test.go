package pricing_test

import (
	"testing"
	"time"

	"recipe-backend/internal/models"
	"recipe-backend/internal/pricing"
	"recipe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestResolveCurrentPrice(t *testing.T) {
	db := testutil.OpenTestDB(t)

	ingredient := models.Ingredient{Name: "Butter", StandardUnit: "kg", SupplyStatus: models.SupplyAvailable}
	require.NoError(t, db.Create(&ingredient).Error)

	prices := []models.IngredientPrice{
		{IngredientID: ingredient.ID, UnitPrice: 800, EffectiveFrom: date(2025, 1, 1), EffectiveTo: ptrTime(date(2025, 3, 31))},
		{IngredientID: ingredient.ID, UnitPrice: 900, EffectiveFrom: date(2025, 4, 1)},
		// overlapping interval starting later; must win inside the overlap
		{IngredientID: ingredient.ID, UnitPrice: 950, EffectiveFrom: date(2025, 6, 1), EffectiveTo: ptrTime(date(2025, 6, 30))},
	}
	for i := range prices {
		require.NoError(t, db.Create(&prices[i]).Error)
	}

	t.Run("date inside a closed interval", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 2, 15))
		require.NoError(t, err)
		require.NotNil(t, price)
		assert.Equal(t, 800.0, price.UnitPrice)
	})

	t.Run("open-ended interval covers later dates", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 12, 1))
		require.NoError(t, err)
		require.NotNil(t, price)
		assert.Equal(t, 900.0, price.UnitPrice)
	})

	t.Run("overlap resolved to latest effective_from", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 6, 15))
		require.NoError(t, err)
		require.NotNil(t, price)
		assert.Equal(t, 950.0, price.UnitPrice)
	})

	t.Run("after the overlapping interval ends the open one resumes", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 7, 1))
		require.NoError(t, err)
		require.NotNil(t, price)
		assert.Equal(t, 900.0, price.UnitPrice)
	})

	t.Run("boundary dates are inclusive", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 3, 31))
		require.NoError(t, err)
		require.NotNil(t, price)
		assert.Equal(t, 800.0, price.UnitPrice)
	})

	t.Run("date before every interval yields no price", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2024, 12, 31))
		require.NoError(t, err)
		assert.Nil(t, price)
	})

	t.Run("unknown ingredient yields no price", func(t *testing.T) {
		price, err := pricing.ResolveCurrentPrice(db, 99999, date(2025, 2, 15))
		require.NoError(t, err)
		assert.Nil(t, price)
	})

	t.Run("resolution is idempotent", func(t *testing.T) {
		first, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 2, 15))
		require.NoError(t, err)
		second, err := pricing.ResolveCurrentPrice(db, ingredient.ID, date(2025, 2, 15))
		require.NoError(t, err)
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2166.67, pricing.Round2(2166.666666))
	assert.Equal(t, 33.33, pricing.Round2(33.333333))
	assert.Equal(t, 0.35, pricing.Round2(0.345))
	assert.Equal(t, -0.35, pricing.Round2(-0.345))
	assert.Equal(t, 0.3333, pricing.Round4(1.0/3.0))
	assert.Equal(t, 0.6667, pricing.Round4(2.0/3.0))
}
