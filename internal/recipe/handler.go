package recipe

import (
	"recipe-backend/internal/auth"
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

// POST /api/recipes
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecipeInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		r, err := CreateRecipe(body, userID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// GET /api/recipes?status=PUBLISHED&category=main
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.RecipeStatus(c.Query("status"))
		switch status {
		case "", models.RecipeStatusDraft, models.RecipeStatusPublished, models.RecipeStatusArchived:
			// ok
		default:
			return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
		}

		recipes, err := ListRecipes(status, c.Query("category"))
		if err != nil {
			return err
		}
		return c.JSON(recipes)
	}
}

// GET /api/recipes/:id
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		r, err := GetRecipe(id)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// PUT /api/recipes/:id
func UpdateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body RecipeInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		r, err := UpdateRecipe(id, body, userID)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// PUT /api/recipes/:id/service-design
func UpdateServiceDesignHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body ServiceDesignInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		r, err := UpdateServiceDesign(id, body, userID)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// PUT /api/recipes/:id/experience-design
func UpdateExperienceDesignHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body ExperienceDesignInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		r, err := UpdateExperienceDesign(id, body, userID)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

type ChangeStatusRequest struct {
	Status models.RecipeStatus `json:"status"`
}

// PUT /api/recipes/:id/status
func ChangeStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body ChangeStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		r, err := ChangeStatus(id, body.Status, userID)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// DELETE /api/recipes/:id
func DeleteRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		if err := DeleteRecipe(id, userID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/recipes/:id/history
func RecipeHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		rows, err := GetHistory(id)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}
