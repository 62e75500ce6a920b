package models

import "time"

type Store struct {
	ID        uint   `gorm:"primaryKey"`
	StoreCode string `gorm:"size:50;uniqueIndex;not null"` // code used in POS exports
	Name      string `gorm:"size:100;not null"`
	Location  string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
