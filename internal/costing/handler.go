package costing

import (
	"time"

	"recipe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CostResponse struct {
	ID                    uint     `json:"id"`
	RecipeID              uint     `json:"recipe_id"`
	TotalIngredientCost   float64  `json:"total_ingredient_cost"`
	TargetGrossMarginRate float64  `json:"target_gross_margin_rate"`
	RecommendedPrice      *float64 `json:"recommended_price"`
	CurrentPrice          *float64 `json:"current_price"`
	ActualGrossMarginRate *float64 `json:"actual_gross_margin_rate"`
	BelowTarget           bool     `json:"below_target"`
	LastCalculatedAt      time.Time `json:"last_calculated_at"`
}

func toCostResponse(cost *models.RecipeCost) CostResponse {
	resp := CostResponse{
		ID:                    cost.ID,
		RecipeID:              cost.RecipeID,
		TotalIngredientCost:   cost.TotalIngredientCost,
		TargetGrossMarginRate: cost.TargetGrossMarginRate,
		RecommendedPrice:      cost.RecommendedPrice,
		CurrentPrice:          cost.CurrentPrice,
		LastCalculatedAt:      cost.LastCalculatedAt,
	}
	resp.ActualGrossMarginRate, resp.BelowTarget = ActualMargin(
		cost.CurrentPrice, cost.TotalIngredientCost, cost.TargetGrossMarginRate)
	return resp
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

// GET /api/recipes/:id/cost
func GetRecipeCostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		cost, err := GetRecipeCost(recipeID)
		if err != nil {
			return err
		}
		return c.JSON(toCostResponse(cost))
	}
}

// POST /api/recipes/:id/cost/calculate
func CalculateCostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		cost, err := CalculateAndSave(recipeID)
		if err != nil {
			return err
		}
		return c.JSON(toCostResponse(cost))
	}
}

// PUT /api/recipes/:id/cost
func UpdateRecipeCostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateCostInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.TargetGrossMarginRate != nil && *body.TargetGrossMarginRate < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "target_gross_margin_rate must not be negative")
		}
		if body.CurrentPrice != nil && *body.CurrentPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "current_price must not be negative")
		}

		cost, err := UpdateRecipeCost(recipeID, body)
		if err != nil {
			return err
		}
		return c.JSON(toCostResponse(cost))
	}
}

// GET /api/ingredients/:id/affected-recipes
func AffectedRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ingredientID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		recipes, err := GetAffectedRecipes(ingredientID)
		if err != nil {
			return err
		}
		return c.JSON(recipes)
	}
}

// POST /api/ingredients/:id/recalculate-costs
func RecalculateByIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ingredientID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		costs, err := RecalculateByIngredient(ingredientID)
		if err != nil {
			return err
		}

		resp := make([]CostResponse, 0, len(costs))
		for i := range costs {
			resp = append(resp, toCostResponse(&costs[i]))
		}
		return c.JSON(resp)
	}
}
