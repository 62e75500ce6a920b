// Package knowledge owns the knowledge base: categorized articles of
// cooking and service know-how, optionally linked to recipes. The AI
// consultation pulls matching articles into its prompts.
package knowledge

import (
	"errors"

	"recipe-backend/internal/apperr"
	"recipe-backend/internal/auth"
	"recipe-backend/internal/database"
	"recipe-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ArticleInput struct {
	Title            string `json:"title"`
	Content          string `json:"content"`
	CategoryID       uint   `json:"category_id"`
	Tags             string `json:"tags"`
	RelatedRecipeIDs []uint `json:"related_recipe_ids"`
}

// ArticleUpdateInput carries optional fields; nil means keep as is.
type ArticleUpdateInput struct {
	Title            *string `json:"title"`
	Content          *string `json:"content"`
	CategoryID       *uint   `json:"category_id"`
	Tags             *string `json:"tags"`
	RelatedRecipeIDs []uint  `json:"related_recipe_ids"`
}

// ListCategories returns all categories in their display order.
func ListCategories() ([]models.KnowledgeCategory, error) {
	var categories []models.KnowledgeCategory
	err := database.DB.Order("sort_order ASC").Find(&categories).Error
	return categories, err
}

func CreateArticle(input ArticleInput, userID uint) (*models.KnowledgeArticle, error) {
	if input.Title == "" {
		return nil, apperr.Business("article title is required")
	}
	if input.Content == "" {
		return nil, apperr.Business("article content is required")
	}

	article := models.KnowledgeArticle{
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		Tags:       input.Tags,
		AuthorID:   userID,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireCategory(tx, input.CategoryID); err != nil {
			return err
		}

		recipes, err := resolveRecipes(tx, input.RelatedRecipeIDs)
		if err != nil {
			return err
		}
		article.RelatedRecipes = recipes

		return tx.Create(&article).Error
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("knowledge article created",
		zap.Uint("article_id", article.ID), zap.Uint("user_id", userID))
	return GetArticle(article.ID)
}

func GetArticle(id uint) (*models.KnowledgeArticle, error) {
	var article models.KnowledgeArticle
	err := database.DB.
		Preload("Category").
		Preload("Author").
		Preload("RelatedRecipes").
		First(&article, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("KnowledgeArticle", id)
		}
		return nil, err
	}
	return &article, nil
}

// ListArticles returns articles, optionally restricted to one category.
func ListArticles(categoryID uint) ([]models.KnowledgeArticle, error) {
	q := database.DB.Preload("Category").Preload("Author").Order("id DESC")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	var articles []models.KnowledgeArticle
	err := q.Find(&articles).Error
	return articles, err
}

// SearchArticles matches the keyword against title, content and tags.
func SearchArticles(keyword string) ([]models.KnowledgeArticle, error) {
	pattern := "%" + keyword + "%"

	var articles []models.KnowledgeArticle
	err := database.DB.
		Preload("Category").
		Preload("Author").
		Where("title LIKE ? OR content LIKE ? OR tags LIKE ?", pattern, pattern, pattern).
		Order("id ASC").
		Find(&articles).Error
	return articles, err
}

// SearchByRecipe returns the articles linked to the recipe.
func SearchByRecipe(recipeID uint) ([]models.KnowledgeArticle, error) {
	var articles []models.KnowledgeArticle
	err := database.DB.
		Preload("Category").
		Joins("JOIN knowledge_article_recipes r ON r.knowledge_article_id = knowledge_articles.id").
		Where("r.recipe_id = ?", recipeID).
		Order("knowledge_articles.id ASC").
		Find(&articles).Error
	return articles, err
}

func UpdateArticle(id uint, input ArticleUpdateInput, userID uint, role models.UserRole) (*models.KnowledgeArticle, error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var article models.KnowledgeArticle
		if err := tx.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("KnowledgeArticle", id)
			}
			return err
		}
		if err := validateEditPermission(&article, userID, role); err != nil {
			return err
		}

		if input.Title != nil {
			article.Title = *input.Title
		}
		if input.Content != nil {
			article.Content = *input.Content
		}
		if input.CategoryID != nil {
			if err := requireCategory(tx, *input.CategoryID); err != nil {
				return err
			}
			article.CategoryID = *input.CategoryID
		}
		if input.Tags != nil {
			article.Tags = *input.Tags
		}
		if err := tx.Save(&article).Error; err != nil {
			return err
		}

		if input.RelatedRecipeIDs != nil {
			recipes, err := resolveRecipes(tx, input.RelatedRecipeIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&article).Association("RelatedRecipes").Replace(recipes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("knowledge article updated",
		zap.Uint("article_id", id), zap.Uint("user_id", userID))
	return GetArticle(id)
}

func DeleteArticle(id uint, userID uint, role models.UserRole) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var article models.KnowledgeArticle
		if err := tx.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("KnowledgeArticle", id)
			}
			return err
		}
		if err := validateEditPermission(&article, userID, role); err != nil {
			return err
		}

		if err := tx.Model(&article).Association("RelatedRecipes").Clear(); err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
	if err != nil {
		return err
	}

	zap.L().Info("knowledge article deleted",
		zap.Uint("article_id", id), zap.Uint("user_id", userID))
	return nil
}

// validateEditPermission allows producers and the article's author.
func validateEditPermission(article *models.KnowledgeArticle, userID uint, role models.UserRole) error {
	if auth.CanModerateKnowledge(role) {
		return nil
	}
	if article.AuthorID != userID {
		return apperr.Forbidden("only the author or a producer may modify this article")
	}
	return nil
}

func requireCategory(tx *gorm.DB, categoryID uint) error {
	var category models.KnowledgeCategory
	if err := tx.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("KnowledgeCategory", categoryID)
		}
		return err
	}
	return nil
}

// resolveRecipes loads each referenced recipe, rejecting deleted ones.
func resolveRecipes(tx *gorm.DB, recipeIDs []uint) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0, len(recipeIDs))
	for _, recipeID := range recipeIDs {
		var r models.Recipe
		err := tx.Where("id = ? AND status <> ?", recipeID, models.RecipeStatusDeleted).
			First(&r).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Recipe", recipeID)
			}
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}
