package analysis

import (
	"recipe-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
)

// GET /api/stores/:id/cross-analysis?month=YYYY-MM
func CrossAnalysisHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := c.ParamsInt("id")
		if err != nil || storeID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id must be a positive integer")
		}

		month := c.Query("month")
		if !sales.ValidMonthKey(month) {
			return fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
		}

		results, err := GetCrossAnalysis(uint(storeID), month)
		if err != nil {
			return err
		}
		return c.JSON(results)
	}
}
