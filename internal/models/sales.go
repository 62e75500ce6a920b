package models

import "time"

// MonthlySales is one POS row: units of one recipe sold at one store in
// one sales month. Rows for a store-month are replaced wholesale on
// re-import, never patched.
type MonthlySales struct {
	ID          uint   `gorm:"primaryKey"`
	StoreID     uint   `gorm:"index:idx_sales_store_month;not null"`
	Store       Store
	RecipeID    uint   `gorm:"index;not null"`
	Recipe      Recipe
	SalesMonth  string  `gorm:"size:7;index:idx_sales_store_month;not null"` // "YYYY-MM"
	Quantity    int     `gorm:"not null"`
	SalesAmount float64 `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreMonthlyFoodCost is the derived theoretical food cost per
// (store, month), overwritten on each recalculation.
type StoreMonthlyFoodCost struct {
	ID                      uint   `gorm:"primaryKey"`
	StoreID                 uint   `gorm:"uniqueIndex:idx_store_month_cost;not null"`
	Store                   Store
	SalesMonth              string  `gorm:"size:7;uniqueIndex:idx_store_month_cost;not null"`
	TheoreticalFoodCost     float64 `gorm:"not null;default:0"`
	TotalSales              float64 `gorm:"not null;default:0"`
	TheoreticalFoodCostRate float64 `gorm:"not null;default:0"` // percentage, 2 decimals
	CalculatedAt            time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
