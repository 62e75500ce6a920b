package models

import "time"

type SupplyStatus string

const (
	SupplyAvailable   SupplyStatus = "AVAILABLE"
	SupplyLimited     SupplyStatus = "LIMITED"
	SupplyUnavailable SupplyStatus = "UNAVAILABLE"
	SupplySeasonal    SupplyStatus = "SEASONAL"
)

type Ingredient struct {
	ID           uint         `gorm:"primaryKey"`
	Name         string       `gorm:"size:100;uniqueIndex;not null"`
	Category     string       `gorm:"size:100"`
	StandardUnit string       `gorm:"size:50"` // kg, L, pcs
	SupplyStatus SupplyStatus `gorm:"size:20;not null;default:AVAILABLE"`
	Supplier     string       `gorm:"size:255"`
	Prices       []IngredientPrice  `gorm:"constraint:OnDelete:CASCADE"`
	Seasons      []IngredientSeason `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IngredientPrice is one effective-dated price interval. Intervals may
// overlap; the resolver picks the one with the latest effective_from.
type IngredientPrice struct {
	ID            uint      `gorm:"primaryKey"`
	IngredientID  uint      `gorm:"index;not null"`
	UnitPrice     float64   `gorm:"not null"`
	PricePerUnit  string    `gorm:"size:50"` // label the price refers to, e.g. "1kg"
	EffectiveFrom time.Time `gorm:"index;not null"`
	EffectiveTo   *time.Time // nil = open-ended
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type IngredientSeason struct {
	ID               uint   `gorm:"primaryKey"`
	IngredientID     uint   `gorm:"index;not null"`
	Month            int    `gorm:"not null"` // 1-12
	AvailabilityRank string `gorm:"size:20"`  // PEAK, GOOD, OFF
	QualityNote      string `gorm:"size:255"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
