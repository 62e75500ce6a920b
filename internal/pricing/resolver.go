// Package pricing resolves effective-dated ingredient prices.
package pricing

import (
	"errors"
	"time"

	"recipe-backend/internal/models"

	"gorm.io/gorm"
)

// ResolveCurrentPrice returns the price interval valid for the ingredient
// on the given date: effective_from <= date and (effective_to is null or
// effective_to >= date). When several intervals cover the date, the one
// with the latest effective_from wins. Returns (nil, nil) when no interval
// matches; callers treat a missing price as a zero cost contribution,
// never as an error.
func ResolveCurrentPrice(db *gorm.DB, ingredientID uint, asOf time.Time) (*models.IngredientPrice, error) {
	var price models.IngredientPrice
	err := db.
		Where("ingredient_id = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)",
			ingredientID, asOf, asOf).
		Order("effective_from DESC").
		First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}
