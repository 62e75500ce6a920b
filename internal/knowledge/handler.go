package knowledge

import (
	"recipe-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

// GET /api/knowledge/categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := ListCategories()
		if err != nil {
			return err
		}
		return c.JSON(categories)
	}
}

// POST /api/knowledge/articles
func CreateArticleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ArticleInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		article, err := CreateArticle(body, userID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(article)
	}
}

// GET /api/knowledge/articles/:id
func GetArticleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		article, err := GetArticle(id)
		if err != nil {
			return err
		}
		return c.JSON(article)
	}
}

// GET /api/knowledge/articles?category_id=...
func ListArticlesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		categoryID := c.QueryInt("category_id")
		if categoryID < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "category_id must be a positive integer")
		}

		articles, err := ListArticles(uint(categoryID))
		if err != nil {
			return err
		}
		return c.JSON(articles)
	}
}

// GET /api/knowledge/articles/search?keyword=...
func SearchArticlesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		keyword := c.Query("keyword")
		if keyword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "keyword is required")
		}

		articles, err := SearchArticles(keyword)
		if err != nil {
			return err
		}
		return c.JSON(articles)
	}
}

// PUT /api/knowledge/articles/:id
func UpdateArticleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var body ArticleUpdateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentRole(c)
		if err != nil {
			return err
		}

		article, err := UpdateArticle(id, body, userID, role)
		if err != nil {
			return err
		}
		return c.JSON(article)
	}
}

// DELETE /api/knowledge/articles/:id
func DeleteArticleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		role, err := auth.CurrentRole(c)
		if err != nil {
			return err
		}

		if err := DeleteArticle(id, userID, role); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
