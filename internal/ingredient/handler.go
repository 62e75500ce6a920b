package ingredient

import (
	"recipe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

func validSupplyStatus(s models.SupplyStatus) bool {
	switch s {
	case models.SupplyAvailable, models.SupplyLimited, models.SupplyUnavailable, models.SupplySeasonal:
		return true
	}
	return false
}

// POST /api/ingredients
func CreateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body IngredientInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.SupplyStatus != "" && !validSupplyStatus(body.SupplyStatus) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid supply status")
		}

		ing, err := CreateIngredient(body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ing)
	}
}

// GET /api/ingredients?category=...&supply_status=...
func ListIngredientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.SupplyStatus(c.Query("supply_status"))
		if status != "" && !validSupplyStatus(status) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid supply status")
		}

		ingredients, err := ListIngredients(c.Query("category"), status)
		if err != nil {
			return err
		}
		return c.JSON(ingredients)
	}
}

// GET /api/ingredients/:id
func GetIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		ing, err := GetIngredient(id)
		if err != nil {
			return err
		}
		return c.JSON(ing)
	}
}

// PUT /api/ingredients/:id
func UpdateIngredientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body IngredientInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.SupplyStatus != "" && !validSupplyStatus(body.SupplyStatus) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid supply status")
		}

		ing, err := UpdateIngredient(id, body)
		if err != nil {
			return err
		}
		return c.JSON(ing)
	}
}

type SupplyStatusRequest struct {
	SupplyStatus models.SupplyStatus `json:"supply_status"`
}

// PUT /api/ingredients/:id/supply-status
func UpdateSupplyStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body SupplyStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if !validSupplyStatus(body.SupplyStatus) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid supply status")
		}

		ing, err := UpdateSupplyStatus(id, body.SupplyStatus)
		if err != nil {
			return err
		}
		return c.JSON(ing)
	}
}

// POST /api/ingredients/:id/prices
func AddPriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body PriceInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.EffectiveFrom.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "effective_from is required")
		}

		price, err := AddPrice(id, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(price)
	}
}

// GET /api/ingredients/:id/prices
func PriceHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		prices, err := GetPriceHistory(id)
		if err != nil {
			return err
		}
		return c.JSON(prices)
	}
}

// POST /api/ingredients/:id/seasons
func AddSeasonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body SeasonInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		season, err := AddSeason(id, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(season)
	}
}

// GET /api/ingredients/:id/seasons
func ListSeasonsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		seasons, err := ListSeasons(id)
		if err != nil {
			return err
		}
		return c.JSON(seasons)
	}
}

// DELETE /api/ingredients/:id/seasons/:seasonId
func DeleteSeasonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		seasonID, err := parseID(c, "seasonId")
		if err != nil {
			return err
		}

		if err := DeleteSeason(id, seasonID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
