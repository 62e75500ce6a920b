package costing_test

import (
	"testing"
	"time"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/costing"
	"recipe-backend/internal/models"
	"recipe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func f(v float64) *float64 { return &v }

// seedRecipe creates a recipe with two priced ingredients:
// 2 kg of beef at 300 per kg plus 0.10 L of oil at 500 per L = 650.00.
func seedRecipe(t *testing.T, db *gorm.DB) (models.Recipe, models.Ingredient, models.Ingredient) {
	t.Helper()

	beef := models.Ingredient{Name: "Beef", StandardUnit: "kg", SupplyStatus: models.SupplyAvailable}
	oil := models.Ingredient{Name: "Olive oil", StandardUnit: "L", SupplyStatus: models.SupplyAvailable}
	require.NoError(t, db.Create(&beef).Error)
	require.NoError(t, db.Create(&oil).Error)

	past := time.Now().AddDate(-1, 0, 0)
	require.NoError(t, db.Create(&models.IngredientPrice{
		IngredientID: beef.ID, UnitPrice: 300, EffectiveFrom: past,
	}).Error)
	require.NoError(t, db.Create(&models.IngredientPrice{
		IngredientID: oil.ID, UnitPrice: 500, EffectiveFrom: past,
	}).Error)

	recipe := models.Recipe{
		Title:       "Beef stew",
		Status:      models.RecipeStatusPublished,
		CreatedByID: 1,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: beef.ID, Quantity: f(2), Unit: "kg", SortOrder: 0},
			{IngredientID: oil.ID, Quantity: f(0.10), Unit: "L", SortOrder: 1},
		},
	}
	require.NoError(t, db.Create(&recipe).Error)
	return recipe, beef, oil
}

func TestCalculateAndSave(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, _, _ := seedRecipe(t, db)

	cost, err := costing.CalculateAndSave(recipe.ID)
	require.NoError(t, err)

	assert.Equal(t, 650.0, cost.TotalIngredientCost)
	assert.Equal(t, 0.7, cost.TargetGrossMarginRate)
	require.NotNil(t, cost.RecommendedPrice)
	assert.Equal(t, 2166.67, *cost.RecommendedPrice)
	assert.False(t, cost.LastCalculatedAt.IsZero())

	// second run updates in place, no second record
	again, err := costing.CalculateAndSave(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, cost.ID, again.ID)
	assert.Equal(t, 650.0, again.TotalIngredientCost)

	var count int64
	require.NoError(t, db.Model(&models.RecipeCost{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCalculateAndSaveSkipsUnpricedLines(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, _, oil := seedRecipe(t, db)

	// drop the oil price; the line must contribute zero, not fail
	require.NoError(t, db.Where("ingredient_id = ?", oil.ID).
		Delete(&models.IngredientPrice{}).Error)

	cost, err := costing.CalculateAndSave(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, cost.TotalIngredientCost)
}

func TestCalculateAndSaveSkipsNilQuantity(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, beef, _ := seedRecipe(t, db)

	// a "to taste" line with no quantity
	require.NoError(t, db.Create(&models.RecipeIngredient{
		RecipeID: recipe.ID, IngredientID: beef.ID, Unit: "pinch", SortOrder: 2,
	}).Error)

	cost, err := costing.CalculateAndSave(recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 650.0, cost.TotalIngredientCost)
}

func TestCalculateAndSaveUnknownRecipe(t *testing.T) {
	testutil.OpenTestDB(t)

	_, err := costing.CalculateAndSave(42)
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Recipe", nf.Resource)
}

func TestCalculateAndSaveDeletedRecipe(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, _, _ := seedRecipe(t, db)
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).
		Update("status", models.RecipeStatusDeleted).Error)

	_, err := costing.CalculateAndSave(recipe.ID)
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUpdateRecipeCost(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, _, _ := seedRecipe(t, db)

	cost, err := costing.UpdateRecipeCost(recipe.ID, costing.UpdateCostInput{
		TargetGrossMarginRate: f(0.6),
		CurrentPrice:          f(1800),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.6, cost.TargetGrossMarginRate)
	require.NotNil(t, cost.CurrentPrice)
	assert.Equal(t, 1800.0, *cost.CurrentPrice)
	assert.Equal(t, 650.0, cost.TotalIngredientCost)
	require.NotNil(t, cost.RecommendedPrice)
	assert.Equal(t, 1625.0, *cost.RecommendedPrice)
}

func TestUpdateRecipeCostMarginAtOneLeavesRecommendationAlone(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, _, _ := seedRecipe(t, db)

	cost, err := costing.UpdateRecipeCost(recipe.ID, costing.UpdateCostInput{
		TargetGrossMarginRate: f(1.0),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, cost.TargetGrossMarginRate)
	assert.Equal(t, 650.0, cost.TotalIngredientCost)
	assert.Nil(t, cost.RecommendedPrice)
}

func TestGetAffectedRecipes(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, beef, _ := seedRecipe(t, db)

	// a second recipe using beef, never costed before
	other := models.Recipe{
		Title:       "Roast beef",
		Status:      models.RecipeStatusDraft,
		CreatedByID: 1,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: beef.ID, Quantity: f(1), Unit: "kg", SortOrder: 0},
		},
	}
	require.NoError(t, db.Create(&other).Error)

	// cost the first recipe so it carries a previous cost and a price
	_, err := costing.UpdateRecipeCost(recipe.ID, costing.UpdateCostInput{CurrentPrice: f(1000)})
	require.NoError(t, err)

	rows, err := costing.GetAffectedRecipes(beef.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uint]costing.AffectedRecipe{}
	for _, row := range rows {
		byID[row.RecipeID] = row
	}

	first := byID[recipe.ID]
	assert.Equal(t, 650.0, first.PreviousCost)
	assert.Equal(t, 650.0, first.NewCost)
	require.NotNil(t, first.ActualGrossMarginRate)
	assert.Equal(t, 0.35, *first.ActualGrossMarginRate)
	assert.True(t, first.BelowTarget)

	second := byID[other.ID]
	assert.Equal(t, 0.0, second.PreviousCost)
	assert.Equal(t, 300.0, second.NewCost)
	assert.Equal(t, 0.7, second.TargetGrossMarginRate)
	assert.Nil(t, second.ActualGrossMarginRate)
	assert.False(t, second.BelowTarget)
}

func TestGetAffectedRecipesIsReadOnly(t *testing.T) {
	db := testutil.OpenTestDB(t)
	_, beef, _ := seedRecipe(t, db)

	_, err := costing.GetAffectedRecipes(beef.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.RecipeCost{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecalculateByIngredient(t *testing.T) {
	db := testutil.OpenTestDB(t)
	recipe, beef, _ := seedRecipe(t, db)

	deleted := models.Recipe{
		Title:       "Retired dish",
		Status:      models.RecipeStatusDeleted,
		CreatedByID: 1,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: beef.ID, Quantity: f(3), Unit: "kg", SortOrder: 0},
		},
	}
	require.NoError(t, db.Create(&deleted).Error)

	costs, err := costing.RecalculateByIngredient(beef.ID)
	require.NoError(t, err)
	require.Len(t, costs, 1)
	assert.Equal(t, recipe.ID, costs[0].RecipeID)
	assert.Equal(t, 650.0, costs[0].TotalIngredientCost)
}

func TestRecalculateAll(t *testing.T) {
	db := testutil.OpenTestDB(t)
	seedRecipe(t, db)

	updated, err := costing.RecalculateAll()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}

func TestActualMargin(t *testing.T) {
	tests := []struct {
		name         string
		currentPrice *float64
		totalCost    float64
		targetMargin float64
		wantMargin   *float64
		wantBelow    bool
	}{
		{"no current price", nil, 650, 0.7, nil, false},
		{"zero current price", f(0), 650, 0.7, nil, false},
		{"below target", f(1000), 650, 0.7, f(0.35), true},
		{"meets target", f(2166.67), 650, 0.7, f(0.7), false},
		{"negative margin", f(500), 650, 0.7, f(-0.3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			margin, below := costing.ActualMargin(tt.currentPrice, tt.totalCost, tt.targetMargin)
			if tt.wantMargin == nil {
				assert.Nil(t, margin)
			} else {
				require.NotNil(t, margin)
				assert.Equal(t, *tt.wantMargin, *margin)
			}
			assert.Equal(t, tt.wantBelow, below)
		})
	}
}
