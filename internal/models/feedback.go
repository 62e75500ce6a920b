package models

import "time"

// ProductFeedback is one raw guest feedback record for a recipe.
type ProductFeedback struct {
	ID                uint  `gorm:"primaryKey"`
	RecipeID          uint  `gorm:"index;not null"`
	StoreID           *uint `gorm:"index"`
	PeriodStart       time.Time `gorm:"not null"`
	PeriodEnd         time.Time `gorm:"not null"`
	SatisfactionScore int       `gorm:"not null"` // 1-5
	EmotionScore      *int      // 1-5, optional
	Comment           string    `gorm:"size:2000"`
	CollectionMethod  string    `gorm:"size:50"` // survey, interview, review site
	RegisteredByID    uint      `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FeedbackSummary aggregates feedback for a recipe over a reporting
// period. Successive summaries form the recipe's trend series.
type FeedbackSummary struct {
	ID               uint      `gorm:"primaryKey"`
	RecipeID         uint      `gorm:"index;not null"`
	PeriodStart      time.Time `gorm:"index;not null"`
	PeriodEnd        time.Time `gorm:"not null"`
	AvgSatisfaction  float64   `gorm:"not null"`
	AvgEmotion       *float64
	FeedbackCount    int    `gorm:"not null"`
	MainCommentTrend string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
