package sales

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/food-costs/comparison/export?month=YYYY-MM
// Writes the store comparison for one month as an xlsx workbook.
func ExportComparisonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		month, err := monthQuery(c, "month")
		if err != nil {
			return err
		}

		rows, err := GetStoreComparison(month)
		if err != nil {
			return err
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := f.GetSheetName(0)
		headers := []string{"Store code", "Store", "Month", "Theoretical food cost", "Total sales", "Food cost rate (%)"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not build workbook")
			}
		}

		for i, row := range rows {
			values := []any{
				row.Store.StoreCode,
				row.Store.Name,
				row.SalesMonth,
				row.TheoreticalFoodCost,
				row.TotalSales,
				row.TheoreticalFoodCostRate,
			}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "could not build workbook")
				}
			}
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="food-cost-comparison-%s.xlsx"`, month))

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not write workbook")
		}
		return c.Send(buf.Bytes())
	}
}
