package models

import "time"

type RecipeStatus string

const (
	RecipeStatusDraft     RecipeStatus = "DRAFT"
	RecipeStatusPublished RecipeStatus = "PUBLISHED"
	RecipeStatusArchived  RecipeStatus = "ARCHIVED"
	RecipeStatusDeleted   RecipeStatus = "DELETED" // logical delete, terminal
)

type Recipe struct {
	ID               uint               `gorm:"primaryKey"`
	Title            string             `gorm:"size:200;not null"`
	Description      string             `gorm:"size:2000"`
	Category         string             `gorm:"size:100"`
	Servings         int                `gorm:"default:1"`
	Status           RecipeStatus       `gorm:"size:20;index;not null;default:DRAFT"`
	Concept          string             `gorm:"type:text"`
	Story            string             `gorm:"type:text"`
	CreatedByID      uint               `gorm:"not null"`
	CreatedBy        User
	Ingredients      []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	Steps            []CookingStep      `gorm:"constraint:OnDelete:CASCADE"`
	ServiceDesign    *ServiceDesign     `gorm:"constraint:OnDelete:CASCADE"`
	ExperienceDesign *ExperienceDesign  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ServiceDesign captures how the dish is plated, served and narrated at
// the table. One per recipe, created lazily on first update.
type ServiceDesign struct {
	ID                  uint   `gorm:"primaryKey"`
	RecipeID            uint   `gorm:"uniqueIndex;not null"`
	PlatingInstructions string `gorm:"type:text"`
	ServiceMethod       string `gorm:"type:text"`
	CustomerScript      string `gorm:"type:text"`
	StagingMethod       string `gorm:"type:text"`
	Timing              string `gorm:"type:text"`
	Storytelling        string `gorm:"type:text"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ExperienceDesign describes the guest experience the dish is built for.
type ExperienceDesign struct {
	ID                     uint   `gorm:"primaryKey"`
	RecipeID               uint   `gorm:"uniqueIndex;not null"`
	TargetScene            string `gorm:"type:text"`
	EmotionalKeyPoints     string `gorm:"type:text"`
	SpecialOccasionSupport string `gorm:"type:text"`
	SeasonalPresentation   string `gorm:"type:text"`
	SensoryAppeal          string `gorm:"type:text"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// RecipeIngredient is one usage line: how much of an ingredient the
// recipe needs. Quantity may be absent for "to taste" lines, which then
// contribute nothing to cost.
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey"`
	RecipeID     uint `gorm:"index;not null"`
	IngredientID uint `gorm:"index;not null"`
	Ingredient   Ingredient
	Quantity     *float64
	Unit         string `gorm:"size:50"`
	SortOrder    int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CookingStep struct {
	ID          uint   `gorm:"primaryKey"`
	RecipeID    uint   `gorm:"index;not null"`
	StepNumber  int    `gorm:"not null"`
	Instruction string `gorm:"type:text;not null"`
	Tip         string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeHistory is an append-only change log for recipes.
type RecipeHistory struct {
	ID          uint   `gorm:"primaryKey"`
	RecipeID    uint   `gorm:"index;not null"`
	ChangedByID uint   `gorm:"not null"`
	Action      string `gorm:"size:50;not null"` // CREATE, UPDATE, UPDATE_SERVICE_DESIGN, UPDATE_EXPERIENCE_DESIGN, STATUS_CHANGE, DELETE
	Note        string `gorm:"size:500"`
	CreatedAt   time.Time
}
