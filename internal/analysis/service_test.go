package analysis_test

import (
	"testing"
	"time"

	"recipe-backend/internal/analysis"
	"recipe-backend/internal/apperr"
	"recipe-backend/internal/models"
	"recipe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestClassifyInsight(t *testing.T) {
	tests := []struct {
		name            string
		avgSatisfaction *float64
		costRate        float64
		want            string
	}{
		{"high satisfaction, low cost rate", f(4.50), 25.00, analysis.InsightBalanced},
		{"high satisfaction, high cost rate", f(4.50), 50.00, analysis.InsightProfitabilityRisk},
		{"low satisfaction, low cost rate", f(2.00), 25.00, analysis.InsightQualityRisk},
		{"low satisfaction, high cost rate", f(2.00), 50.00, analysis.InsightBothAtRisk},
		{"satisfaction exactly at threshold counts as high", f(3.50), 25.00, analysis.InsightBalanced},
		{"cost rate exactly at threshold counts as low", f(4.00), 35.00, analysis.InsightBalanced},
		{"no summary counts as low satisfaction", nil, 25.00, analysis.InsightQualityRisk},
		{"no summary, high cost rate", nil, 50.00, analysis.InsightBothAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysis.ClassifyInsight(tt.avgSatisfaction, tt.costRate))
		})
	}
}

func TestGetCrossAnalysis(t *testing.T) {
	db := testutil.OpenTestDB(t)

	store := models.Store{StoreCode: "TOKYO01", Name: "Tokyo Main"}
	require.NoError(t, db.Create(&store).Error)

	stew := models.Recipe{Title: "Beef stew", Status: models.RecipeStatusPublished, CreatedByID: 1}
	salad := models.Recipe{Title: "Garden salad", Status: models.RecipeStatusPublished, CreatedByID: 1}
	require.NoError(t, db.Create(&stew).Error)
	require.NoError(t, db.Create(&salad).Error)

	require.NoError(t, db.Create(&models.RecipeCost{
		RecipeID: stew.ID, TotalIngredientCost: 500, TargetGrossMarginRate: 0.7,
	}).Error)
	// the salad has no stored cost on purpose

	salesRows := []models.MonthlySales{
		{StoreID: store.ID, RecipeID: stew.ID, SalesMonth: "2025-07", Quantity: 60, SalesAmount: 90000},
		{StoreID: store.ID, RecipeID: stew.ID, SalesMonth: "2025-07", Quantity: 40, SalesAmount: 60000},
		{StoreID: store.ID, RecipeID: salad.ID, SalesMonth: "2025-07", Quantity: 50, SalesAmount: 40000},
	}
	for i := range salesRows {
		require.NoError(t, db.Create(&salesRows[i]).Error)
	}

	// two summaries; the later period_start must win
	older := models.FeedbackSummary{
		RecipeID:        stew.ID,
		PeriodStart:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		AvgSatisfaction: 2.00,
		FeedbackCount:   4,
	}
	newer := models.FeedbackSummary{
		RecipeID:        stew.ID,
		PeriodStart:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		AvgSatisfaction: 4.20,
		AvgEmotion:      f(4.00),
		FeedbackCount:   9,
	}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	results, err := analysis.GetCrossAnalysis(store.ID, "2025-07")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// grouping preserves first-seen order over recipe_id ASC rows
	first := results[0]
	assert.Equal(t, stew.ID, first.RecipeID)
	assert.Equal(t, 100, first.TotalQuantity)
	assert.Equal(t, 150000.0, first.TotalSalesAmount)
	assert.Equal(t, 50000.0, first.TotalIngredientCost)
	assert.Equal(t, 33.33, first.TheoreticalFoodCostRate)
	require.NotNil(t, first.AvgSatisfaction)
	assert.Equal(t, 4.20, *first.AvgSatisfaction)
	require.NotNil(t, first.AvgEmotion)
	assert.Equal(t, 4.00, *first.AvgEmotion)
	assert.Equal(t, analysis.InsightBalanced, first.Insight)

	second := results[1]
	assert.Equal(t, salad.ID, second.RecipeID)
	assert.Equal(t, 50, second.TotalQuantity)
	assert.Equal(t, 0.0, second.TotalIngredientCost)
	assert.Equal(t, 0.0, second.TheoreticalFoodCostRate)
	assert.Nil(t, second.AvgSatisfaction)
	assert.Equal(t, analysis.InsightQualityRisk, second.Insight)
}

func TestGetCrossAnalysisUnknownStore(t *testing.T) {
	testutil.OpenTestDB(t)

	_, err := analysis.GetCrossAnalysis(42, "2025-07")
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Store", nf.Resource)
}

func TestGetCrossAnalysisEmptyMonth(t *testing.T) {
	db := testutil.OpenTestDB(t)
	store := models.Store{StoreCode: "TOKYO01", Name: "Tokyo Main"}
	require.NoError(t, db.Create(&store).Error)

	results, err := analysis.GetCrossAnalysis(store.ID, "2025-07")
	require.NoError(t, err)
	assert.Empty(t, results)
}
