// Package costing computes recipe ingredient costs from effective-dated
// prices and propagates ingredient price changes to every recipe that
// uses the ingredient.
package costing

import (
	"errors"
	"time"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"
	"recipe-backend/internal/pricing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultTargetGrossMarginRate = 0.7

// AffectedRecipe is one row of the impact report for an ingredient
// price change.
type AffectedRecipe struct {
	RecipeID              uint                `json:"recipe_id"`
	RecipeTitle           string              `json:"recipe_title"`
	Status                models.RecipeStatus `json:"status"`
	PreviousCost          float64             `json:"previous_cost"`
	NewCost               float64             `json:"new_cost"`
	CurrentPrice          *float64            `json:"current_price"`
	TargetGrossMarginRate float64             `json:"target_gross_margin_rate"`
	ActualGrossMarginRate *float64            `json:"actual_gross_margin_rate"`
	BelowTarget           bool                `json:"below_target"`
}

// UpdateCostInput carries the externally settable cost fields; nil means
// leave unchanged.
type UpdateCostInput struct {
	TargetGrossMarginRate *float64 `json:"target_gross_margin_rate"`
	CurrentPrice          *float64 `json:"current_price"`
}

// GetRecipeCost returns the stored cost record for a recipe.
func GetRecipeCost(recipeID uint) (*models.RecipeCost, error) {
	var cost models.RecipeCost
	err := database.DB.Where("recipe_id = ?", recipeID).First(&cost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("RecipeCost", recipeID)
		}
		return nil, err
	}
	return &cost, nil
}

// CalculateAndSave recomputes the recipe's ingredient cost with today's
// prices and upserts its RecipeCost record.
func CalculateAndSave(recipeID uint) (*models.RecipeCost, error) {
	var saved *models.RecipeCost
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		recipe, err := findCostableRecipe(tx, recipeID)
		if err != nil {
			return err
		}

		cost, err := recalculate(tx, recipe)
		if err != nil {
			return err
		}
		saved = cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("recipe cost calculated",
		zap.Uint("recipe_id", recipeID),
		zap.Float64("total_cost", saved.TotalIngredientCost))
	return saved, nil
}

// UpdateRecipeCost applies the optional margin/current-price fields and
// recomputes the cost in the same transaction.
func UpdateRecipeCost(recipeID uint, input UpdateCostInput) (*models.RecipeCost, error) {
	var saved *models.RecipeCost
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		recipe, err := findCostableRecipe(tx, recipeID)
		if err != nil {
			return err
		}

		cost, err := fetchOrNewCost(tx, recipe.ID)
		if err != nil {
			return err
		}
		if input.TargetGrossMarginRate != nil {
			cost.TargetGrossMarginRate = *input.TargetGrossMarginRate
		}
		if input.CurrentPrice != nil {
			cost.CurrentPrice = input.CurrentPrice
		}

		if err := recompute(tx, recipe, cost); err != nil {
			return err
		}
		saved = cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("recipe cost updated", zap.Uint("recipe_id", recipeID))
	return saved, nil
}

// GetAffectedRecipes reports, without persisting anything, how an
// ingredient's current prices play out across every non-deleted recipe
// that uses it. Recipes that disappear mid-iteration are omitted.
func GetAffectedRecipes(ingredientID uint) ([]AffectedRecipe, error) {
	recipeIDs, err := recipeIDsUsingIngredient(database.DB, ingredientID)
	if err != nil {
		return nil, err
	}

	results := make([]AffectedRecipe, 0, len(recipeIDs))
	for _, recipeID := range recipeIDs {
		recipe, err := findCostableRecipe(database.DB, recipeID)
		if err != nil {
			var nf *apperr.NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}

		newCost, err := totalIngredientCost(database.DB, recipe, today())
		if err != nil {
			return nil, err
		}

		previousCost := 0.0
		targetMargin := DefaultTargetGrossMarginRate
		var currentPrice *float64

		var existing models.RecipeCost
		findErr := database.DB.Where("recipe_id = ?", recipeID).First(&existing).Error
		if findErr == nil {
			previousCost = existing.TotalIngredientCost
			targetMargin = existing.TargetGrossMarginRate
			currentPrice = existing.CurrentPrice
		} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, findErr
		}

		row := AffectedRecipe{
			RecipeID:              recipe.ID,
			RecipeTitle:           recipe.Title,
			Status:                recipe.Status,
			PreviousCost:          previousCost,
			NewCost:               newCost,
			CurrentPrice:          currentPrice,
			TargetGrossMarginRate: targetMargin,
		}
		row.ActualGrossMarginRate, row.BelowTarget = ActualMargin(currentPrice, newCost, targetMargin)

		results = append(results, row)
	}

	return results, nil
}

// RecalculateByIngredient recomputes and persists the cost of every
// non-deleted recipe using the ingredient. Each recipe's
// recompute-and-save is its own transaction; a failure on one recipe
// drops that recipe from the result and leaves the siblings committed.
func RecalculateByIngredient(ingredientID uint) ([]models.RecipeCost, error) {
	recipeIDs, err := recipeIDsUsingIngredient(database.DB, ingredientID)
	if err != nil {
		return nil, err
	}

	recalculated := make([]models.RecipeCost, 0, len(recipeIDs))
	for _, recipeID := range recipeIDs {
		var cost *models.RecipeCost
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			recipe, err := findCostableRecipe(tx, recipeID)
			if err != nil {
				return err
			}
			cost, err = recalculate(tx, recipe)
			return err
		})
		if txErr != nil {
			var nf *apperr.NotFoundError
			if errors.As(txErr, &nf) {
				continue
			}
			zap.L().Warn("skipping recipe during cascade recalculation",
				zap.Uint("recipe_id", recipeID), zap.Error(txErr))
			continue
		}
		recalculated = append(recalculated, *cost)
	}

	zap.L().Info("recalculated recipe costs for ingredient",
		zap.Uint("ingredient_id", ingredientID),
		zap.Int("recipes", len(recalculated)))
	return recalculated, nil
}

// RecalculateAll refreshes the cost of every non-deleted recipe; the
// nightly scheduler uses it because effective-dated prices change value
// at date boundaries. Returns the number of recipes updated.
func RecalculateAll() (int, error) {
	var recipeIDs []uint
	err := database.DB.Model(&models.Recipe{}).
		Where("status <> ?", models.RecipeStatusDeleted).
		Pluck("id", &recipeIDs).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, recipeID := range recipeIDs {
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			recipe, err := findCostableRecipe(tx, recipeID)
			if err != nil {
				return err
			}
			_, err = recalculate(tx, recipe)
			return err
		})
		if txErr != nil {
			zap.L().Warn("nightly recalculation skipped a recipe",
				zap.Uint("recipe_id", recipeID), zap.Error(txErr))
			continue
		}
		updated++
	}
	return updated, nil
}

// ActualMargin derives the non-persisted actual gross margin rate:
// round4((currentPrice - totalCost) / currentPrice), defined only when
// the current price is set and positive.
func ActualMargin(currentPrice *float64, totalCost, targetMargin float64) (*float64, bool) {
	if currentPrice == nil || *currentPrice <= 0 {
		return nil, false
	}
	m := pricing.Round4((*currentPrice - totalCost) / *currentPrice)
	return &m, m < targetMargin
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// findCostableRecipe loads a recipe with its usage lines, excluding
// logically deleted recipes.
func findCostableRecipe(db *gorm.DB, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).
		Where("id = ? AND status <> ?", recipeID, models.RecipeStatusDeleted).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Recipe", recipeID)
		}
		return nil, err
	}
	return &recipe, nil
}

// recipeIDsUsingIngredient is the reverse index from an ingredient to
// the recipes referencing it through usage lines.
func recipeIDsUsingIngredient(db *gorm.DB, ingredientID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.RecipeIngredient{}).
		Distinct("recipe_id").
		Where("ingredient_id = ?", ingredientID).
		Order("recipe_id").
		Pluck("recipe_id", &ids).Error
	return ids, err
}

// totalIngredientCost sums unit price x quantity over the recipe's
// lines with today's resolved prices. Lines with no quantity or no
// resolvable price contribute zero and are skipped silently.
func totalIngredientCost(db *gorm.DB, recipe *models.Recipe, asOf time.Time) (float64, error) {
	total := 0.0
	for _, line := range recipe.Ingredients {
		if line.Quantity == nil {
			continue
		}
		price, err := pricing.ResolveCurrentPrice(db, line.IngredientID, asOf)
		if err != nil {
			return 0, err
		}
		if price == nil {
			continue
		}
		total += price.UnitPrice * *line.Quantity
	}
	return pricing.Round2(total), nil
}

func fetchOrNewCost(db *gorm.DB, recipeID uint) (*models.RecipeCost, error) {
	var cost models.RecipeCost
	err := db.Where("recipe_id = ?", recipeID).First(&cost).Error
	if err == nil {
		return &cost, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &models.RecipeCost{
		RecipeID:              recipeID,
		TargetGrossMarginRate: DefaultTargetGrossMarginRate,
	}, nil
}

func recalculate(db *gorm.DB, recipe *models.Recipe) (*models.RecipeCost, error) {
	cost, err := fetchOrNewCost(db, recipe.ID)
	if err != nil {
		return nil, err
	}
	if err := recompute(db, recipe, cost); err != nil {
		return nil, err
	}
	return cost, nil
}

// recompute refreshes the cost fields in place and saves. The
// recommended price is only touched when the margin rate is below 1;
// dividing by (1 - margin) is never attempted otherwise.
func recompute(db *gorm.DB, recipe *models.Recipe, cost *models.RecipeCost) error {
	total, err := totalIngredientCost(db, recipe, today())
	if err != nil {
		return err
	}

	cost.TotalIngredientCost = total
	cost.LastCalculatedAt = time.Now()

	if cost.TargetGrossMarginRate < 1 {
		recommended := pricing.Round2(total / (1 - cost.TargetGrossMarginRate))
		cost.RecommendedPrice = &recommended
	}

	return db.Save(cost).Error
}
