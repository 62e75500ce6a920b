// Package feedback records guest feedback per recipe and aggregates it
// into period summaries that form a trend series.
package feedback

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"
	"recipe-backend/internal/pricing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minScore = 1
	maxScore = 5
)

type FeedbackInput struct {
	RecipeID          uint      `json:"recipe_id"`
	StoreID           *uint     `json:"store_id"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	SatisfactionScore int       `json:"satisfaction_score"`
	EmotionScore      *int      `json:"emotion_score"`
	Comment           string    `json:"comment"`
	CollectionMethod  string    `json:"collection_method"`
}

func CreateFeedback(input FeedbackInput, userID uint) (*models.ProductFeedback, error) {
	if err := validatePeriod(input.PeriodStart, input.PeriodEnd); err != nil {
		return nil, err
	}
	if input.SatisfactionScore < minScore || input.SatisfactionScore > maxScore {
		return nil, apperr.Business("satisfaction score must be between %d and %d", minScore, maxScore)
	}
	if input.EmotionScore != nil && (*input.EmotionScore < minScore || *input.EmotionScore > maxScore) {
		return nil, apperr.Business("emotion score must be between %d and %d", minScore, maxScore)
	}

	if err := requireRecipe(input.RecipeID); err != nil {
		return nil, err
	}
	if input.StoreID != nil {
		var store models.Store
		if err := database.DB.First(&store, *input.StoreID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Store", *input.StoreID)
			}
			return nil, err
		}
	}

	fb := models.ProductFeedback{
		RecipeID:          input.RecipeID,
		StoreID:           input.StoreID,
		PeriodStart:       input.PeriodStart,
		PeriodEnd:         input.PeriodEnd,
		SatisfactionScore: input.SatisfactionScore,
		EmotionScore:      input.EmotionScore,
		Comment:           input.Comment,
		CollectionMethod:  input.CollectionMethod,
		RegisteredByID:    userID,
	}
	if err := database.DB.Create(&fb).Error; err != nil {
		return nil, err
	}

	zap.L().Info("product feedback created",
		zap.Uint("feedback_id", fb.ID), zap.Uint("recipe_id", fb.RecipeID))
	return &fb, nil
}

func ListFeedback(recipeID, storeID uint) ([]models.ProductFeedback, error) {
	q := database.DB.Order("id DESC")
	if recipeID > 0 {
		q = q.Where("recipe_id = ?", recipeID)
	}
	if storeID > 0 {
		q = q.Where("store_id = ?", storeID)
	}

	var rows []models.ProductFeedback
	err := q.Find(&rows).Error
	return rows, err
}

// DeleteFeedback removes a raw feedback record. Producers may delete any
// record; everyone else only their own.
func DeleteFeedback(id, userID uint, role models.UserRole) error {
	var fb models.ProductFeedback
	if err := database.DB.First(&fb, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ProductFeedback", id)
		}
		return err
	}

	if role != models.RoleProducer && fb.RegisteredByID != userID {
		return apperr.Forbidden("cannot delete another user's feedback")
	}

	return database.DB.Delete(&fb).Error
}

// GenerateSummary aggregates the recipe's raw feedback inside the period
// into a FeedbackSummary, upserted by (recipe, period). A period with no
// feedback is a business-rule failure.
func GenerateSummary(recipeID uint, periodStart, periodEnd time.Time) (*models.FeedbackSummary, error) {
	if err := validatePeriod(periodStart, periodEnd); err != nil {
		return nil, err
	}
	if err := requireRecipe(recipeID); err != nil {
		return nil, err
	}

	var saved *models.FeedbackSummary
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var rows []models.ProductFeedback
		if err := tx.Where("recipe_id = ? AND period_start >= ? AND period_end <= ?",
			recipeID, periodStart, periodEnd).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperr.Business("no feedback data in the requested period")
		}

		satisfactionSum := 0
		emotionSum := 0
		emotionCount := 0
		for _, fb := range rows {
			satisfactionSum += fb.SatisfactionScore
			if fb.EmotionScore != nil {
				emotionSum += *fb.EmotionScore
				emotionCount++
			}
		}

		avgSatisfaction := pricing.Round2(float64(satisfactionSum) / float64(len(rows)))
		var avgEmotion *float64
		if emotionCount > 0 {
			v := pricing.Round2(float64(emotionSum) / float64(emotionCount))
			avgEmotion = &v
		}

		var summary models.FeedbackSummary
		err := tx.Where("recipe_id = ? AND period_start = ? AND period_end = ?",
			recipeID, periodStart, periodEnd).
			First(&summary).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			summary = models.FeedbackSummary{
				RecipeID:    recipeID,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
			}
		}

		summary.AvgSatisfaction = avgSatisfaction
		summary.AvgEmotion = avgEmotion
		summary.FeedbackCount = len(rows)
		summary.MainCommentTrend = buildCommentTrend(rows)

		if err := tx.Save(&summary).Error; err != nil {
			return err
		}
		saved = &summary
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("feedback summary generated",
		zap.Uint("recipe_id", recipeID),
		zap.Int("feedback_count", saved.FeedbackCount))
	return saved, nil
}

// GetSummaryTrend lists the recipe's summaries chronologically by period
// start; the last element is the one CrossAnalyzer binds.
func GetSummaryTrend(recipeID uint) ([]models.FeedbackSummary, error) {
	if err := requireRecipe(recipeID); err != nil {
		return nil, err
	}

	var rows []models.FeedbackSummary
	err := database.DB.Where("recipe_id = ?", recipeID).
		Order("period_start ASC").
		Find(&rows).Error
	return rows, err
}

func requireRecipe(recipeID uint) error {
	var count int64
	err := database.DB.Model(&models.Recipe{}).
		Where("id = ? AND status <> ?", recipeID, models.RecipeStatusDeleted).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("Recipe", recipeID)
	}
	return nil
}

func validatePeriod(start, end time.Time) error {
	if start.After(end) {
		return apperr.Business("period start must not be after period end")
	}
	return nil
}

// buildCommentTrend summarizes up to five comments for the period.
func buildCommentTrend(rows []models.ProductFeedback) string {
	comments := make([]string, 0, len(rows))
	for _, fb := range rows {
		if strings.TrimSpace(fb.Comment) != "" {
			comments = append(comments, fb.Comment)
		}
	}
	if len(comments) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Comments: %d\n", len(comments))
	sb.WriteString("Highlights:\n")
	limit := len(comments)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		comment := comments[i]
		if runes := []rune(comment); len(runes) > 100 {
			comment = string(runes[:100]) + "..."
		}
		sb.WriteString("- " + comment + "\n")
	}
	return sb.String()
}
