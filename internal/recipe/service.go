// Package recipe owns the recipe master: CRUD, the publication state
// machine and the append-only change history.
package recipe

import (
	"errors"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IngredientLineInput is one usage line of the recipe.
type IngredientLineInput struct {
	IngredientID uint     `json:"ingredient_id"`
	Quantity     *float64 `json:"quantity"`
	Unit         string   `json:"unit"`
}

type StepInput struct {
	Instruction string `json:"instruction"`
	Tip         string `json:"tip"`
}

type RecipeInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Servings    int                   `json:"servings"`
	Concept     string                `json:"concept"`
	Story       string                `json:"story"`
	Ingredients []IngredientLineInput `json:"ingredients"`
	Steps       []StepInput           `json:"steps"`
}

// ServiceDesignInput replaces the recipe's service design wholesale.
type ServiceDesignInput struct {
	PlatingInstructions string `json:"plating_instructions"`
	ServiceMethod       string `json:"service_method"`
	CustomerScript      string `json:"customer_script"`
	StagingMethod       string `json:"staging_method"`
	Timing              string `json:"timing"`
	Storytelling        string `json:"storytelling"`
}

type ExperienceDesignInput struct {
	TargetScene            string `json:"target_scene"`
	EmotionalKeyPoints     string `json:"emotional_key_points"`
	SpecialOccasionSupport string `json:"special_occasion_support"`
	SeasonalPresentation   string `json:"seasonal_presentation"`
	SensoryAppeal          string `json:"sensory_appeal"`
}

// GetRecipe loads a non-deleted recipe with its lines and steps.
func GetRecipe(id uint) (*models.Recipe, error) {
	var r models.Recipe
	err := database.DB.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Ingredients.Ingredient").
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_number ASC") }).
		Preload("ServiceDesign").
		Preload("ExperienceDesign").
		Where("id = ? AND status <> ?", id, models.RecipeStatusDeleted).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Recipe", id)
		}
		return nil, err
	}
	return &r, nil
}

// ListRecipes returns non-deleted recipes, optionally filtered.
func ListRecipes(status models.RecipeStatus, category string) ([]models.Recipe, error) {
	q := database.DB.Where("status <> ?", models.RecipeStatusDeleted)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var recipes []models.Recipe
	err := q.Order("id ASC").Find(&recipes).Error
	return recipes, err
}

func CreateRecipe(input RecipeInput, userID uint) (*models.Recipe, error) {
	if input.Title == "" {
		return nil, apperr.Business("recipe title is required")
	}

	r := models.Recipe{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Servings:    input.Servings,
		Concept:     input.Concept,
		Story:       input.Story,
		Status:      models.RecipeStatusDraft,
		CreatedByID: userID,
	}
	for i, line := range input.Ingredients {
		r.Ingredients = append(r.Ingredients, models.RecipeIngredient{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
			SortOrder:    i,
		})
	}
	for i, step := range input.Steps {
		r.Steps = append(r.Steps, models.CookingStep{
			StepNumber:  i + 1,
			Instruction: step.Instruction,
			Tip:         step.Tip,
		})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return recordHistory(tx, r.ID, userID, "CREATE", "recipe created")
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("recipe created", zap.Uint("recipe_id", r.ID), zap.Uint("user_id", userID))
	return &r, nil
}

// UpdateRecipe replaces the recipe's descriptive fields, usage lines and
// steps. Status is not touched here; use ChangeStatus.
func UpdateRecipe(id uint, input RecipeInput, userID uint) (*models.Recipe, error) {
	if input.Title == "" {
		return nil, apperr.Business("recipe title is required")
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.Where("id = ? AND status <> ?", id, models.RecipeStatusDeleted).
			First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Recipe", id)
			}
			return err
		}

		r.Title = input.Title
		r.Description = input.Description
		r.Category = input.Category
		r.Servings = input.Servings
		r.Concept = input.Concept
		r.Story = input.Story
		if err := tx.Save(&r).Error; err != nil {
			return err
		}

		// usage lines and steps are replaced wholesale
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i, line := range input.Ingredients {
			row := models.RecipeIngredient{
				RecipeID:     id,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
				Unit:         line.Unit,
				SortOrder:    i,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.CookingStep{}).Error; err != nil {
			return err
		}
		for i, step := range input.Steps {
			row := models.CookingStep{
				RecipeID:    id,
				StepNumber:  i + 1,
				Instruction: step.Instruction,
				Tip:         step.Tip,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return recordHistory(tx, id, userID, "UPDATE", "recipe updated")
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("recipe updated", zap.Uint("recipe_id", id), zap.Uint("user_id", userID))
	return GetRecipe(id)
}

// UpdateServiceDesign sets how the dish is served and narrated. The
// design row is created on first update and replaced wholesale after.
func UpdateServiceDesign(recipeID uint, input ServiceDesignInput, userID uint) (*models.Recipe, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireEditableRecipe(tx, recipeID); err != nil {
			return err
		}

		var sd models.ServiceDesign
		err := tx.Where("recipe_id = ?", recipeID).First(&sd).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		sd.RecipeID = recipeID
		sd.PlatingInstructions = input.PlatingInstructions
		sd.ServiceMethod = input.ServiceMethod
		sd.CustomerScript = input.CustomerScript
		sd.StagingMethod = input.StagingMethod
		sd.Timing = input.Timing
		sd.Storytelling = input.Storytelling
		if err := tx.Save(&sd).Error; err != nil {
			return err
		}

		return recordHistory(tx, recipeID, userID, "UPDATE_SERVICE_DESIGN", "service design updated")
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("service design updated", zap.Uint("recipe_id", recipeID), zap.Uint("user_id", userID))
	return GetRecipe(recipeID)
}

// UpdateExperienceDesign sets the guest-experience side of the recipe.
func UpdateExperienceDesign(recipeID uint, input ExperienceDesignInput, userID uint) (*models.Recipe, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireEditableRecipe(tx, recipeID); err != nil {
			return err
		}

		var ed models.ExperienceDesign
		err := tx.Where("recipe_id = ?", recipeID).First(&ed).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		ed.RecipeID = recipeID
		ed.TargetScene = input.TargetScene
		ed.EmotionalKeyPoints = input.EmotionalKeyPoints
		ed.SpecialOccasionSupport = input.SpecialOccasionSupport
		ed.SeasonalPresentation = input.SeasonalPresentation
		ed.SensoryAppeal = input.SensoryAppeal
		if err := tx.Save(&ed).Error; err != nil {
			return err
		}

		return recordHistory(tx, recipeID, userID, "UPDATE_EXPERIENCE_DESIGN", "experience design updated")
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("experience design updated", zap.Uint("recipe_id", recipeID), zap.Uint("user_id", userID))
	return GetRecipe(recipeID)
}

func requireEditableRecipe(tx *gorm.DB, id uint) error {
	var r models.Recipe
	if err := tx.Where("id = ? AND status <> ?", id, models.RecipeStatusDeleted).
		First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Recipe", id)
		}
		return err
	}
	return nil
}

// ChangeStatus runs the publication state machine:
// DRAFT -> PUBLISHED -> ARCHIVED -> PUBLISHED. DELETED is never reachable
// through here; the delete operation is the only way in, and there is no
// way out.
func ChangeStatus(id uint, to models.RecipeStatus, userID uint) (*models.Recipe, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.Where("id = ? AND status <> ?", id, models.RecipeStatusDeleted).
			First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Recipe", id)
			}
			return err
		}

		if err := validateTransition(r.Status, to); err != nil {
			return err
		}

		from := r.Status
		r.Status = to
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		return recordHistory(tx, id, userID, "STATUS_CHANGE",
			string(from)+" -> "+string(to))
	})
	if err != nil {
		return nil, err
	}

	return GetRecipe(id)
}

// DeleteRecipe performs the logical delete; the recipe disappears from
// every costing and analysis read.
func DeleteRecipe(id uint, userID uint) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var r models.Recipe
		if err := tx.Where("id = ? AND status <> ?", id, models.RecipeStatusDeleted).
			First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Recipe", id)
			}
			return err
		}

		r.Status = models.RecipeStatusDeleted
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		return recordHistory(tx, id, userID, "DELETE", "logical delete")
	})
	if err != nil {
		return err
	}

	zap.L().Info("recipe deleted (logical)", zap.Uint("recipe_id", id), zap.Uint("user_id", userID))
	return nil
}

// GetHistory lists a recipe's change log, newest first.
func GetHistory(recipeID uint) ([]models.RecipeHistory, error) {
	if _, err := GetRecipe(recipeID); err != nil {
		return nil, err
	}

	var rows []models.RecipeHistory
	err := database.DB.Where("recipe_id = ?", recipeID).
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func validateTransition(from, to models.RecipeStatus) error {
	if to == models.RecipeStatusDeleted {
		return apperr.Business("status cannot be changed to DELETED; use the delete operation")
	}

	var allowed []models.RecipeStatus
	switch from {
	case models.RecipeStatusDraft:
		allowed = []models.RecipeStatus{models.RecipeStatusPublished}
	case models.RecipeStatusPublished:
		allowed = []models.RecipeStatus{models.RecipeStatusArchived}
	case models.RecipeStatusArchived:
		allowed = []models.RecipeStatus{models.RecipeStatusPublished}
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return apperr.Business("status cannot change from %s to %s", from, to)
}

func recordHistory(tx *gorm.DB, recipeID, userID uint, action, note string) error {
	return tx.Create(&models.RecipeHistory{
		RecipeID:    recipeID,
		ChangedByID: userID,
		Action:      action,
		Note:        note,
	}).Error
}
