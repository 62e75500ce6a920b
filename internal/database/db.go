package database

import (
	"log"

	"recipe-backend/internal/config"
	"recipe-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("database connected, migration complete")
}

// Migrate creates/updates the schema. Split out so tests can run it
// against their own connection.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Ingredient{},
		&models.IngredientPrice{},
		&models.IngredientSeason{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.CookingStep{},
		&models.RecipeHistory{},
		&models.ServiceDesign{},
		&models.ExperienceDesign{},
		&models.KnowledgeCategory{},
		&models.KnowledgeArticle{},
		&models.RecipeCost{},
		&models.MonthlySales{},
		&models.StoreMonthlyFoodCost{},
		&models.ProductFeedback{},
		&models.FeedbackSummary{},
		&models.AiConsultationThread{},
		&models.AiConsultationMessage{},
	)
}
