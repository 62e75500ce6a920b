package ai

import (
	"context"
	"errors"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/database"
	"recipe-backend/internal/knowledge"
	"recipe-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateThreadInput struct {
	Theme          string `json:"theme"`
	RecipeID       *uint  `json:"recipe_id"`
	InitialMessage string `json:"initial_message"`
}

// CreateThread opens a consultation thread, stores the opening question and
// the AI's first answer.
func CreateThread(ctx context.Context, client LlmClient, input CreateThreadInput, userID uint) (*models.AiConsultationThread, error) {
	if input.Theme == "" {
		return nil, apperr.Business("theme is required")
	}
	if input.InitialMessage == "" {
		return nil, apperr.Business("initial message is required")
	}

	var recipe *models.Recipe
	if input.RecipeID != nil {
		r, err := findRecipe(*input.RecipeID)
		if err != nil {
			return nil, err
		}
		recipe = r
	}

	thread := models.AiConsultationThread{
		UserID:   userID,
		RecipeID: input.RecipeID,
		Theme:    input.Theme,
	}
	if err := database.DB.Create(&thread).Error; err != nil {
		return nil, err
	}

	articles, err := findRelatedArticles(input.Theme, input.RecipeID)
	if err != nil {
		return nil, err
	}

	systemPrompt := BuildSystemPrompt(&thread, recipe, articles)
	conversationContext := BuildConversationContext(nil, input.InitialMessage)

	answer, err := client.Chat(ctx, systemPrompt, conversationContext)
	if err != nil {
		return nil, err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		userMsg := models.AiConsultationMessage{
			ThreadID: thread.ID,
			Role:     models.SenderUser,
			Content:  input.InitialMessage,
		}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}
		aiMsg := models.AiConsultationMessage{
			ThreadID:           thread.ID,
			Role:               models.SenderAI,
			Content:            answer,
			ReferencedArticles: articles,
		}
		return tx.Create(&aiMsg).Error
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("ai consultation thread created",
		zap.Uint("thread_id", thread.ID), zap.String("theme", thread.Theme))

	return loadThread(thread.ID)
}

// GetThread returns one thread. Access is limited to the owner and
// producers.
func GetThread(threadID, userID uint, role models.UserRole) (*models.AiConsultationThread, error) {
	thread, err := loadThread(threadID)
	if err != nil {
		return nil, err
	}
	if err := validateThreadAccess(thread, userID, role); err != nil {
		return nil, err
	}
	return thread, nil
}

func ListMyThreads(userID uint) ([]models.AiConsultationThread, error) {
	var threads []models.AiConsultationThread
	err := database.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&threads).Error
	return threads, err
}

func GetMessages(threadID, userID uint, role models.UserRole) ([]models.AiConsultationMessage, error) {
	if _, err := GetThread(threadID, userID, role); err != nil {
		return nil, err
	}

	var msgs []models.AiConsultationMessage
	err := database.DB.Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

// SendMessage appends the user's question to the thread, asks the LLM with
// the full conversation as context, and stores the answer.
func SendMessage(ctx context.Context, client LlmClient, threadID uint, content string, userID uint, role models.UserRole) (*models.AiConsultationMessage, error) {
	if content == "" {
		return nil, apperr.Business("message content is required")
	}

	thread, err := GetThread(threadID, userID, role)
	if err != nil {
		return nil, err
	}

	userMsg := models.AiConsultationMessage{
		ThreadID: thread.ID,
		Role:     models.SenderUser,
		Content:  content,
	}
	if err := database.DB.Create(&userMsg).Error; err != nil {
		return nil, err
	}

	var previous []models.AiConsultationMessage
	if err := database.DB.Where("thread_id = ?", thread.ID).
		Order("created_at ASC, id ASC").
		Find(&previous).Error; err != nil {
		return nil, err
	}

	var recipe *models.Recipe
	if thread.RecipeID != nil {
		r, err := findRecipe(*thread.RecipeID)
		if err == nil {
			recipe = r
		}
	}

	articles, err := findRelatedArticles(content, thread.RecipeID)
	if err != nil {
		return nil, err
	}

	systemPrompt := BuildSystemPrompt(thread, recipe, articles)
	conversationContext := BuildConversationContext(previous, content)

	answer, err := client.Chat(ctx, systemPrompt, conversationContext)
	if err != nil {
		return nil, err
	}

	aiMsg := models.AiConsultationMessage{
		ThreadID:           thread.ID,
		Role:               models.SenderAI,
		Content:            answer,
		ReferencedArticles: articles,
	}
	if err := database.DB.Create(&aiMsg).Error; err != nil {
		return nil, err
	}

	zap.L().Info("ai consultation message answered", zap.Uint("thread_id", thread.ID))
	return &aiMsg, nil
}

func validateThreadAccess(thread *models.AiConsultationThread, userID uint, role models.UserRole) error {
	if thread.UserID != userID && role != models.RoleProducer {
		return apperr.Forbidden("cannot access another user's consultation thread")
	}
	return nil
}

func loadThread(id uint) (*models.AiConsultationThread, error) {
	var thread models.AiConsultationThread
	err := database.DB.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).First(&thread, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("AiConsultationThread", id)
		}
		return nil, err
	}
	return &thread, nil
}

// findRelatedArticles merges the keyword matches with the articles linked
// to the thread's recipe, deduplicated by id.
func findRelatedArticles(keyword string, recipeID *uint) ([]models.KnowledgeArticle, error) {
	articles, err := knowledge.SearchArticles(keyword)
	if err != nil {
		return nil, err
	}

	if recipeID != nil {
		linked, err := knowledge.SearchByRecipe(*recipeID)
		if err != nil {
			return nil, err
		}
		seen := make(map[uint]bool, len(articles))
		for _, a := range articles {
			seen[a.ID] = true
		}
		for _, a := range linked {
			if !seen[a.ID] {
				articles = append(articles, a)
			}
		}
	}

	return articles, nil
}

func findRecipe(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := database.DB.Where("status <> ?", models.RecipeStatusDeleted).
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Recipe", id)
		}
		return nil, err
	}
	return &recipe, nil
}
