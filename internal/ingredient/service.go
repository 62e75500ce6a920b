// Package ingredient owns the ingredient master, its effective-dated
// price history and its seasonality records.
package ingredient

import (
	"errors"
	"time"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IngredientInput struct {
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	StandardUnit string              `json:"standard_unit"`
	SupplyStatus models.SupplyStatus `json:"supply_status"`
	Supplier     string              `json:"supplier"`
}

type PriceInput struct {
	UnitPrice     float64    `json:"unit_price"`
	PricePerUnit  string     `json:"price_per_unit"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
}

type SeasonInput struct {
	Month            int    `json:"month"`
	AvailabilityRank string `json:"availability_rank"`
	QualityNote      string `json:"quality_note"`
}

func GetIngredient(id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := database.DB.First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Ingredient", id)
		}
		return nil, err
	}
	return &ing, nil
}

func ListIngredients(category string, supplyStatus models.SupplyStatus) ([]models.Ingredient, error) {
	q := database.DB.Order("id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if supplyStatus != "" {
		q = q.Where("supply_status = ?", supplyStatus)
	}

	var ingredients []models.Ingredient
	err := q.Find(&ingredients).Error
	return ingredients, err
}

func CreateIngredient(input IngredientInput) (*models.Ingredient, error) {
	if input.Name == "" {
		return nil, apperr.Business("ingredient name is required")
	}

	var count int64
	database.DB.Model(&models.Ingredient{}).Where("name = ?", input.Name).Count(&count)
	if count > 0 {
		return nil, apperr.Business("an ingredient with this name already exists: %s", input.Name)
	}

	status := input.SupplyStatus
	if status == "" {
		status = models.SupplyAvailable
	}

	ing := models.Ingredient{
		Name:         input.Name,
		Category:     input.Category,
		StandardUnit: input.StandardUnit,
		SupplyStatus: status,
		Supplier:     input.Supplier,
	}
	if err := database.DB.Create(&ing).Error; err != nil {
		return nil, err
	}

	zap.L().Info("ingredient created", zap.Uint("ingredient_id", ing.ID), zap.String("name", ing.Name))
	return &ing, nil
}

func UpdateIngredient(id uint, input IngredientInput) (*models.Ingredient, error) {
	ing, err := GetIngredient(id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != ing.Name {
		var count int64
		database.DB.Model(&models.Ingredient{}).
			Where("name = ? AND id <> ?", input.Name, id).
			Count(&count)
		if count > 0 {
			return nil, apperr.Business("an ingredient with this name already exists: %s", input.Name)
		}
		ing.Name = input.Name
	}
	if input.Category != "" {
		ing.Category = input.Category
	}
	if input.StandardUnit != "" {
		ing.StandardUnit = input.StandardUnit
	}
	if input.SupplyStatus != "" {
		ing.SupplyStatus = input.SupplyStatus
	}
	if input.Supplier != "" {
		ing.Supplier = input.Supplier
	}

	if err := database.DB.Save(ing).Error; err != nil {
		return nil, err
	}
	return ing, nil
}

func UpdateSupplyStatus(id uint, status models.SupplyStatus) (*models.Ingredient, error) {
	ing, err := GetIngredient(id)
	if err != nil {
		return nil, err
	}

	old := ing.SupplyStatus
	ing.SupplyStatus = status
	if err := database.DB.Save(ing).Error; err != nil {
		return nil, err
	}

	zap.L().Info("ingredient supply status changed",
		zap.Uint("ingredient_id", id),
		zap.String("from", string(old)),
		zap.String("to", string(status)))
	return ing, nil
}

// AddPrice registers a new effective-dated price interval. Overlap with
// existing intervals is allowed (retroactive corrections); the resolver's
// latest-effective-from rule keeps lookups deterministic.
func AddPrice(ingredientID uint, input PriceInput) (*models.IngredientPrice, error) {
	if _, err := GetIngredient(ingredientID); err != nil {
		return nil, err
	}

	if input.EffectiveTo != nil && input.EffectiveFrom.After(*input.EffectiveTo) {
		return nil, apperr.Business("effective_from must not be after effective_to")
	}
	if input.UnitPrice < 0 {
		return nil, apperr.Business("unit price must not be negative")
	}

	price := models.IngredientPrice{
		IngredientID:  ingredientID,
		UnitPrice:     input.UnitPrice,
		PricePerUnit:  input.PricePerUnit,
		EffectiveFrom: input.EffectiveFrom,
		EffectiveTo:   input.EffectiveTo,
	}
	if err := database.DB.Create(&price).Error; err != nil {
		return nil, err
	}

	zap.L().Info("ingredient price added",
		zap.Uint("ingredient_id", ingredientID),
		zap.Float64("unit_price", price.UnitPrice))
	return &price, nil
}

// GetPriceHistory lists price intervals, newest effective-from first.
func GetPriceHistory(ingredientID uint) ([]models.IngredientPrice, error) {
	if _, err := GetIngredient(ingredientID); err != nil {
		return nil, err
	}

	var prices []models.IngredientPrice
	err := database.DB.Where("ingredient_id = ?", ingredientID).
		Order("effective_from DESC").
		Find(&prices).Error
	return prices, err
}

func AddSeason(ingredientID uint, input SeasonInput) (*models.IngredientSeason, error) {
	if _, err := GetIngredient(ingredientID); err != nil {
		return nil, err
	}

	if input.Month < 1 || input.Month > 12 {
		return nil, apperr.Business("month must be between 1 and 12")
	}

	var count int64
	database.DB.Model(&models.IngredientSeason{}).
		Where("ingredient_id = ? AND month = ?", ingredientID, input.Month).
		Count(&count)
	if count > 0 {
		return nil, apperr.Business("season for ingredient id=%d month=%d already registered", ingredientID, input.Month)
	}

	season := models.IngredientSeason{
		IngredientID:     ingredientID,
		Month:            input.Month,
		AvailabilityRank: input.AvailabilityRank,
		QualityNote:      input.QualityNote,
	}
	if err := database.DB.Create(&season).Error; err != nil {
		return nil, err
	}
	return &season, nil
}

func ListSeasons(ingredientID uint) ([]models.IngredientSeason, error) {
	if _, err := GetIngredient(ingredientID); err != nil {
		return nil, err
	}

	var seasons []models.IngredientSeason
	err := database.DB.Where("ingredient_id = ?", ingredientID).
		Order("month ASC").
		Find(&seasons).Error
	return seasons, err
}

func DeleteSeason(ingredientID, seasonID uint) error {
	if _, err := GetIngredient(ingredientID); err != nil {
		return err
	}

	var season models.IngredientSeason
	if err := database.DB.First(&season, seasonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("IngredientSeason", seasonID)
		}
		return err
	}
	if season.IngredientID != ingredientID {
		return apperr.Business("season id=%d does not belong to ingredient id=%d", seasonID, ingredientID)
	}

	return database.DB.Delete(&season).Error
}
