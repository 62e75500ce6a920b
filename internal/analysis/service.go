// Package analysis cross-joins sales volume, recipe cost and guest
// feedback into a per-recipe insight for one store-month.
package analysis

import (
	"errors"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"
	"recipe-backend/internal/pricing"

	"gorm.io/gorm"
)

const (
	HighSatisfactionThreshold = 3.50
	HighCostRateThreshold     = 35.00
)

// The four canned insights, keyed by the (high satisfaction, high cost
// rate) quadrant.
const (
	InsightBalanced          = "High satisfaction, low cost rate: profitability and guest satisfaction are well balanced"
	InsightProfitabilityRisk = "High satisfaction, high cost rate: guests love it but profitability is at risk; consider repricing or reducing ingredient cost"
	InsightQualityRisk       = "Low satisfaction, low cost rate: the cost rate is healthy, but quality and service need attention"
	InsightBothAtRisk        = "Low satisfaction, high cost rate: both profitability and satisfaction are at risk; a fundamental recipe rework is worth considering"
)

// Result is one analyzed recipe for the store-month.
type Result struct {
	RecipeID                uint     `json:"recipe_id"`
	RecipeTitle             string   `json:"recipe_title"`
	AvgSatisfaction         *float64 `json:"avg_satisfaction"`
	AvgEmotion              *float64 `json:"avg_emotion"`
	TotalSalesAmount        float64  `json:"total_sales_amount"`
	TotalQuantity           int      `json:"total_quantity"`
	TotalIngredientCost     float64  `json:"total_ingredient_cost"`
	TheoreticalFoodCostRate float64  `json:"theoretical_food_cost_rate"`
	Insight                 string   `json:"insight"`
}

// GetCrossAnalysis groups the store-month's sales by recipe (first-seen
// order preserved), joins each recipe's stored cost and its latest
// feedback summary, and classifies the quadrant. The latest summary is
// used even when its period does not overlap the analyzed month; for
// recipes with infrequent feedback the satisfaction figures can lag the
// sales data.
func GetCrossAnalysis(storeID uint, salesMonth string) ([]Result, error) {
	var store models.Store
	if err := database.DB.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Store", storeID)
		}
		return nil, err
	}

	var salesRows []models.MonthlySales
	if err := database.DB.Preload("Recipe").
		Where("store_id = ? AND sales_month = ?", storeID, salesMonth).
		Order("recipe_id ASC, id ASC").
		Find(&salesRows).Error; err != nil {
		return nil, err
	}

	type aggregation struct {
		recipeID    uint
		recipeTitle string
		quantity    int
		salesAmount float64
	}

	order := make([]uint, 0)
	byRecipe := make(map[uint]*aggregation)
	for _, row := range salesRows {
		agg, seen := byRecipe[row.RecipeID]
		if !seen {
			agg = &aggregation{recipeID: row.RecipeID, recipeTitle: row.Recipe.Title}
			byRecipe[row.RecipeID] = agg
			order = append(order, row.RecipeID)
		}
		agg.quantity += row.Quantity
		agg.salesAmount += row.SalesAmount
	}

	results := make([]Result, 0, len(order))
	for _, recipeID := range order {
		agg := byRecipe[recipeID]

		ingredientCost := 0.0
		costRate := 0.0
		var cost models.RecipeCost
		err := database.DB.Where("recipe_id = ?", recipeID).First(&cost).Error
		if err == nil {
			ingredientCost = cost.TotalIngredientCost * float64(agg.quantity)
			if agg.salesAmount > 0 {
				costRate = pricing.Round2(ingredientCost / agg.salesAmount * 100)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var avgSatisfaction, avgEmotion *float64
		var latest models.FeedbackSummary
		err = database.DB.Where("recipe_id = ?", recipeID).
			Order("period_start DESC").
			First(&latest).Error
		if err == nil {
			avgSatisfaction = &latest.AvgSatisfaction
			avgEmotion = latest.AvgEmotion
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		results = append(results, Result{
			RecipeID:                agg.recipeID,
			RecipeTitle:             agg.recipeTitle,
			AvgSatisfaction:         avgSatisfaction,
			AvgEmotion:              avgEmotion,
			TotalSalesAmount:        pricing.Round2(agg.salesAmount),
			TotalQuantity:           agg.quantity,
			TotalIngredientCost:     pricing.Round2(ingredientCost),
			TheoreticalFoodCostRate: costRate,
			Insight:                 ClassifyInsight(avgSatisfaction, costRate),
		})
	}

	return results, nil
}

// ClassifyInsight maps the two independent thresholds to the four canned
// advisories. Satisfaction counts as high only when a summary exists.
func ClassifyInsight(avgSatisfaction *float64, costRate float64) string {
	highSatisfaction := avgSatisfaction != nil && *avgSatisfaction >= HighSatisfactionThreshold
	highCostRate := costRate > HighCostRateThreshold

	switch {
	case highSatisfaction && !highCostRate:
		return InsightBalanced
	case highSatisfaction && highCostRate:
		return InsightProfitabilityRisk
	case !highSatisfaction && !highCostRate:
		return InsightQualityRisk
	default:
		return InsightBothAtRisk
	}
}
