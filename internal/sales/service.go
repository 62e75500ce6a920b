// Package sales ingests POS sales data and derives per-store theoretical
// food-cost figures from it.
package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"
	"recipe-backend/internal/pricing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var salesMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidMonthKey reports whether s is a "YYYY-MM" sales-month key.
func ValidMonthKey(s string) bool {
	return salesMonthPattern.MatchString(s)
}

// ImportReport summarizes a POS CSV upload. Row failures are collected,
// not fatal; valid rows still land.
type ImportReport struct {
	TotalRows   int      `json:"total_rows"`
	SuccessRows int      `json:"success_rows"`
	ErrorRows   int      `json:"error_rows"`
	Errors      []string `json:"errors"`
}

// ImportPOSCSV reads 5-column POS rows (store_code, recipe_id, YYYY-MM,
// quantity, sales_amount). The first time a store-month appears, its
// existing rows are deleted; re-importing a month replaces it wholesale.
func ImportPOSCSV(r io.Reader) (*ImportReport, error) {
	report := &ImportReport{Errors: []string{}}
	processedStoreMonths := map[string]bool{}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1

		lineNumber := 0
		for {
			line, readErr := reader.Read()
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return apperr.Business("could not read CSV file: %v", readErr)
			}
			lineNumber++

			if lineNumber == 1 && isHeaderRow(line) {
				continue
			}

			report.TotalRows++

			if len(line) < 5 {
				report.Errors = append(report.Errors,
					fmt.Sprintf("line %d: not enough columns (5 required, %d found)", lineNumber, len(line)))
				continue
			}

			storeCode := strings.TrimSpace(line[0])
			recipeCode := strings.TrimSpace(line[1])
			salesMonth := strings.TrimSpace(line[2])
			quantityStr := strings.TrimSpace(line[3])
			amountStr := strings.TrimSpace(line[4])

			if !ValidMonthKey(salesMonth) {
				report.Errors = append(report.Errors,
					fmt.Sprintf("line %d: sales month must be YYYY-MM: %s", lineNumber, salesMonth))
				continue
			}

			var store models.Store
			if err := tx.Where("store_code = ?", storeCode).First(&store).Error; err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("line %d: unknown store code: %s", lineNumber, storeCode))
				continue
			}

			var recipe models.Recipe
			recipeID, convErr := strconv.ParseUint(recipeCode, 10, 64)
			if convErr != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("line %d: unknown recipe code: %s", lineNumber, recipeCode))
				continue
			}
			if err := tx.Where("id = ? AND status <> ?", recipeID, models.RecipeStatusDeleted).
				First(&recipe).Error; err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("line %d: unknown recipe code: %s", lineNumber, recipeCode))
				continue
			}

			quantity, qErr := strconv.Atoi(quantityStr)
			amount, aErr := strconv.ParseFloat(amountStr, 64)
			if qErr != nil || aErr != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("line %d: quantity or sales amount is not a number", lineNumber))
				continue
			}

			storeMonthKey := fmt.Sprintf("%d_%s", store.ID, salesMonth)
			if !processedStoreMonths[storeMonthKey] {
				if err := tx.Where("store_id = ? AND sales_month = ?", store.ID, salesMonth).
					Delete(&models.MonthlySales{}).Error; err != nil {
					return err
				}
				processedStoreMonths[storeMonthKey] = true
			}

			row := models.MonthlySales{
				StoreID:     store.ID,
				RecipeID:    recipe.ID,
				SalesMonth:  salesMonth,
				Quantity:    quantity,
				SalesAmount: amount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			report.SuccessRows++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.ErrorRows = len(report.Errors)
	zap.L().Info("POS CSV imported",
		zap.Int("total_rows", report.TotalRows),
		zap.Int("success_rows", report.SuccessRows),
		zap.Int("error_rows", report.ErrorRows))
	return report, nil
}

// GetSalesByStoreAndMonth lists the raw sales rows for one store-month.
func GetSalesByStoreAndMonth(storeID uint, salesMonth string) ([]models.MonthlySales, error) {
	if _, err := findStore(storeID); err != nil {
		return nil, err
	}

	var rows []models.MonthlySales
	err := database.DB.Preload("Recipe").
		Where("store_id = ? AND sales_month = ?", storeID, salesMonth).
		Order("recipe_id ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// CalculateTheoreticalFoodCost sums stored recipe cost x quantity over
// the store-month's sales rows and upserts the result. A store-month
// without sales rows is a business-rule failure, never a silent zero.
// Sales rows whose recipe has no stored cost contribute zero cost.
func CalculateTheoreticalFoodCost(storeID uint, salesMonth string) (*models.StoreMonthlyFoodCost, error) {
	var saved *models.StoreMonthlyFoodCost
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var store models.Store
		if err := tx.First(&store, storeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Store", storeID)
			}
			return err
		}

		var salesRows []models.MonthlySales
		if err := tx.Where("store_id = ? AND sales_month = ?", storeID, salesMonth).
			Order("id ASC").
			Find(&salesRows).Error; err != nil {
			return err
		}
		if len(salesRows) == 0 {
			return apperr.Business("no sales data for store id=%d, month=%s", storeID, salesMonth)
		}

		theoreticalCost := 0.0
		totalSales := 0.0
		for _, row := range salesRows {
			totalSales += row.SalesAmount

			var cost models.RecipeCost
			err := tx.Where("recipe_id = ?", row.RecipeID).First(&cost).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			theoreticalCost += cost.TotalIngredientCost * float64(row.Quantity)
		}

		rate := 0.0
		if totalSales > 0 {
			rate = pricing.Round2(theoreticalCost / totalSales * 100)
		}

		var foodCost models.StoreMonthlyFoodCost
		err := tx.Where("store_id = ? AND sales_month = ?", storeID, salesMonth).
			First(&foodCost).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			foodCost = models.StoreMonthlyFoodCost{StoreID: storeID, SalesMonth: salesMonth}
		}

		foodCost.TheoreticalFoodCost = pricing.Round2(theoreticalCost)
		foodCost.TotalSales = pricing.Round2(totalSales)
		foodCost.TheoreticalFoodCostRate = rate
		foodCost.CalculatedAt = time.Now()

		if err := tx.Save(&foodCost).Error; err != nil {
			return err
		}
		saved = &foodCost
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("theoretical food cost calculated",
		zap.Uint("store_id", storeID),
		zap.String("month", salesMonth),
		zap.Float64("cost", saved.TheoreticalFoodCost),
		zap.Float64("rate", saved.TheoreticalFoodCostRate))
	return saved, nil
}

// GetStoreComparison lists every store's food-cost record for one month.
func GetStoreComparison(salesMonth string) ([]models.StoreMonthlyFoodCost, error) {
	var rows []models.StoreMonthlyFoodCost
	err := database.DB.Preload("Store").
		Where("sales_month = ?", salesMonth).
		Order("store_id ASC").
		Find(&rows).Error
	return rows, err
}

// GetMonthlyTrend lists one store's food-cost records across a month range.
func GetMonthlyTrend(storeID uint, fromMonth, toMonth string) ([]models.StoreMonthlyFoodCost, error) {
	if _, err := findStore(storeID); err != nil {
		return nil, err
	}

	var rows []models.StoreMonthlyFoodCost
	err := database.DB.
		Where("store_id = ? AND sales_month >= ? AND sales_month <= ?", storeID, fromMonth, toMonth).
		Order("sales_month ASC").
		Find(&rows).Error
	return rows, err
}

func findStore(storeID uint) (*models.Store, error) {
	var store models.Store
	if err := database.DB.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Store", storeID)
		}
		return nil, err
	}
	return &store, nil
}

// isHeaderRow detects an optional first header line in POS exports.
func isHeaderRow(line []string) bool {
	if len(line) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(line[0]))
	return first == "store_code" || first == "store code" || strings.Contains(first, "store")
}
