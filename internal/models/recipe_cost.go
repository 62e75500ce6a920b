package models

import "time"

// RecipeCost is the persisted costing record, exactly one per non-deleted
// recipe, created lazily on the first calculation.
type RecipeCost struct {
	ID                    uint    `gorm:"primaryKey"`
	RecipeID              uint    `gorm:"uniqueIndex;not null"`
	Recipe                Recipe
	TotalIngredientCost   float64 `gorm:"not null;default:0"`
	TargetGrossMarginRate float64 `gorm:"not null;default:0.7"`
	RecommendedPrice      *float64
	CurrentPrice          *float64 // actual menu price, set by the operator
	LastCalculatedAt      time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
