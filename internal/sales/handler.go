package sales

import (
	"time"

	"recipe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SalesRowResponse struct {
	ID          uint    `json:"id"`
	StoreID     uint    `json:"store_id"`
	RecipeID    uint    `json:"recipe_id"`
	RecipeTitle string  `json:"recipe_title"`
	SalesMonth  string  `json:"sales_month"`
	Quantity    int     `json:"quantity"`
	SalesAmount float64 `json:"sales_amount"`
}

type FoodCostResponse struct {
	ID                      uint    `json:"id"`
	StoreID                 uint    `json:"store_id"`
	StoreName               string  `json:"store_name,omitempty"`
	SalesMonth              string  `json:"sales_month"`
	TheoreticalFoodCost     float64 `json:"theoretical_food_cost"`
	TotalSales              float64 `json:"total_sales"`
	TheoreticalFoodCostRate float64 `json:"theoretical_food_cost_rate"`
	CalculatedAt            time.Time `json:"calculated_at"`
}

func toFoodCostResponse(fc *models.StoreMonthlyFoodCost) FoodCostResponse {
	return FoodCostResponse{
		ID:                      fc.ID,
		StoreID:                 fc.StoreID,
		StoreName:               fc.Store.Name,
		SalesMonth:              fc.SalesMonth,
		TheoreticalFoodCost:     fc.TheoreticalFoodCost,
		TotalSales:              fc.TotalSales,
		TheoreticalFoodCostRate: fc.TheoreticalFoodCostRate,
		CalculatedAt:            fc.CalculatedAt,
	}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

func monthQuery(c *fiber.Ctx, name string) (string, error) {
	month := c.Query(name)
	if !ValidMonthKey(month) {
		return "", fiber.NewError(fiber.StatusBadRequest, name+" must be YYYY-MM")
	}
	return month, nil
}

// POST /api/sales/upload  (multipart form, field "file")
func UploadPOSCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not open uploaded file")
		}
		defer file.Close()

		report, err := ImportPOSCSV(file)
		if err != nil {
			return err
		}
		return c.JSON(report)
	}
}

// GET /api/stores/:id/sales?month=YYYY-MM
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		month, err := monthQuery(c, "month")
		if err != nil {
			return err
		}

		rows, err := GetSalesByStoreAndMonth(storeID, month)
		if err != nil {
			return err
		}

		resp := make([]SalesRowResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, SalesRowResponse{
				ID:          row.ID,
				StoreID:     row.StoreID,
				RecipeID:    row.RecipeID,
				RecipeTitle: row.Recipe.Title,
				SalesMonth:  row.SalesMonth,
				Quantity:    row.Quantity,
				SalesAmount: row.SalesAmount,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/stores/:id/food-cost/calculate?month=YYYY-MM
func CalculateFoodCostHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		month, err := monthQuery(c, "month")
		if err != nil {
			return err
		}

		foodCost, err := CalculateTheoreticalFoodCost(storeID, month)
		if err != nil {
			return err
		}
		return c.JSON(toFoodCostResponse(foodCost))
	}
}

// GET /api/food-costs/comparison?month=YYYY-MM
func StoreComparisonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month, err := monthQuery(c, "month")
		if err != nil {
			return err
		}

		rows, err := GetStoreComparison(month)
		if err != nil {
			return err
		}

		resp := make([]FoodCostResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toFoodCostResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/stores/:id/food-cost/trend?from=YYYY-MM&to=YYYY-MM
func MonthlyTrendHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := parseID(c, "id")
		if err != nil {
			return err
		}
		from, err := monthQuery(c, "from")
		if err != nil {
			return err
		}
		to, err := monthQuery(c, "to")
		if err != nil {
			return err
		}
		if from > to {
			return fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
		}

		rows, err := GetMonthlyTrend(storeID, from, to)
		if err != nil {
			return err
		}

		resp := make([]FoodCostResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toFoodCostResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}
