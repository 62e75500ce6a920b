package feedback

import (
	"strconv"
	"time"

	"recipe-backend/internal/auth"
	"recipe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type summaryRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// CreateFeedbackHandler handles POST /api/feedback
func CreateFeedbackHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input FeedbackInput
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		fb, err := CreateFeedback(input, userID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fb)
	}
}

// ListFeedbackHandler handles GET /api/feedback?recipe_id=&store_id=
func ListFeedbackHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, _ := strconv.ParseUint(c.Query("recipe_id"), 10, 64)
		storeID, _ := strconv.ParseUint(c.Query("store_id"), 10, 64)

		rows, err := ListFeedback(uint(recipeID), uint(storeID))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// DeleteFeedbackHandler handles DELETE /api/feedback/:id
func DeleteFeedbackHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentRole(c)
		if err != nil {
			return err
		}

		if err := DeleteFeedback(id, userID, role); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GenerateSummaryHandler handles POST /api/recipes/:id/feedback-summaries
func GenerateSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var req summaryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		summary, err := GenerateSummary(recipeID, req.PeriodStart, req.PeriodEnd)
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}

// SummaryTrendHandler handles GET /api/recipes/:id/feedback-summaries
func SummaryTrendHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipeID, err := parseID(c, "id")
		if err != nil {
			return err
		}

		rows, err := GetSummaryTrend(recipeID)
		if err != nil {
			return err
		}
		if rows == nil {
			rows = []models.FeedbackSummary{}
		}
		return c.JSON(rows)
	}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+" parameter")
	}
	return uint(id), nil
}
