package main

import (
	"errors"
	"strings"

	"recipe-backend/internal/ai"
	"recipe-backend/internal/analysis"
	"recipe-backend/internal/apperr"
	"recipe-backend/internal/auth"
	"recipe-backend/internal/config"
	"recipe-backend/internal/costing"
	"recipe-backend/internal/database"
	"recipe-backend/internal/feedback"
	"recipe-backend/internal/ingredient"
	"recipe-backend/internal/knowledge"
	"recipe-backend/internal/recipe"
	"recipe-backend/internal/sales"
	"recipe-backend/internal/scheduler"
	"recipe-backend/internal/store"
	"recipe-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	log := logger.Must(logger.New())
	defer log.Sync()
	zap.ReplaceGlobals(log)

	cfg := config.Load()
	database.Init(cfg)

	llmClient := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterUserHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Role checks sit on each gated route; reads stay open to every
	// authenticated role.
	recipeEdit := auth.RequireRole(auth.RecipeEditRoles...)
	designEdit := auth.RequireRole(auth.DesignEditRoles...)
	costAccess := auth.RequireRole(auth.CostRoles...)
	ingredientEdit := auth.RequireRole(auth.IngredientManageRoles...)
	storeEdit := auth.RequireRole(auth.StoreManageRoles...)
	salesUpload := auth.RequireRole(auth.SalesUploadRoles...)
	feedbackWrite := auth.RequireRole(auth.FeedbackRegisterRoles...)

	// Recipes
	protected.Get("/recipes", recipe.ListRecipesHandler())
	protected.Get("/recipes/:id", recipe.GetRecipeHandler())
	protected.Get("/recipes/:id/history", recipe.RecipeHistoryHandler())
	protected.Post("/recipes", recipeEdit, recipe.CreateRecipeHandler())
	protected.Put("/recipes/:id", recipeEdit, recipe.UpdateRecipeHandler())
	protected.Put("/recipes/:id/status", recipeEdit, recipe.ChangeStatusHandler())
	protected.Put("/recipes/:id/service-design", designEdit, recipe.UpdateServiceDesignHandler())
	protected.Put("/recipes/:id/experience-design", designEdit, recipe.UpdateExperienceDesignHandler())
	protected.Delete("/recipes/:id", recipeEdit, recipe.DeleteRecipeHandler())

	// Recipe costs
	protected.Get("/recipes/:id/cost", costAccess, costing.GetRecipeCostHandler())
	protected.Post("/recipes/:id/cost/calculate", costAccess, costing.CalculateCostHandler())
	protected.Put("/recipes/:id/cost", costAccess, costing.UpdateRecipeCostHandler())
	protected.Get("/ingredients/:id/affected-recipes", costAccess, costing.AffectedRecipesHandler())
	protected.Post("/ingredients/:id/recalculate-costs", costAccess, costing.RecalculateByIngredientHandler())

	// Ingredient master
	protected.Get("/ingredients", ingredient.ListIngredientsHandler())
	protected.Get("/ingredients/:id", ingredient.GetIngredientHandler())
	protected.Get("/ingredients/:id/prices", ingredient.PriceHistoryHandler())
	protected.Get("/ingredients/:id/seasons", ingredient.ListSeasonsHandler())
	protected.Post("/ingredients", ingredientEdit, ingredient.CreateIngredientHandler())
	protected.Put("/ingredients/:id", ingredientEdit, ingredient.UpdateIngredientHandler())
	protected.Put("/ingredients/:id/supply-status", ingredientEdit, ingredient.UpdateSupplyStatusHandler())
	protected.Post("/ingredients/:id/prices", ingredientEdit, ingredient.AddPriceHandler())
	protected.Post("/ingredients/:id/seasons", ingredientEdit, ingredient.AddSeasonHandler())
	protected.Delete("/ingredients/:id/seasons/:seasonId", ingredientEdit, ingredient.DeleteSeasonHandler())

	// Store master
	protected.Get("/stores", store.ListStoresHandler())
	protected.Get("/stores/:id", store.GetStoreHandler())
	protected.Post("/stores", storeEdit, store.CreateStoreHandler())
	protected.Put("/stores/:id", storeEdit, store.UpdateStoreHandler())

	// Sales and food cost
	protected.Post("/sales/upload", salesUpload, sales.UploadPOSCSVHandler())
	protected.Get("/stores/:id/sales", sales.ListSalesHandler())
	protected.Post("/stores/:id/food-cost/calculate", sales.CalculateFoodCostHandler())
	protected.Get("/food-costs/comparison", sales.StoreComparisonHandler())
	protected.Get("/food-costs/comparison/export", sales.ExportComparisonHandler())
	protected.Get("/stores/:id/food-cost/trend", sales.MonthlyTrendHandler())

	// Cross analysis
	protected.Get("/stores/:id/cross-analysis", analysis.CrossAnalysisHandler())

	// Feedback
	protected.Post("/feedback", feedbackWrite, feedback.CreateFeedbackHandler())
	protected.Delete("/feedback/:id", feedbackWrite, feedback.DeleteFeedbackHandler())
	protected.Get("/feedback", feedback.ListFeedbackHandler())
	protected.Post("/recipes/:id/feedback-summaries", feedback.GenerateSummaryHandler())
	protected.Get("/recipes/:id/feedback-summaries", feedback.SummaryTrendHandler())

	// Knowledge base; search is registered before :id so the literal
	// path wins
	protected.Get("/knowledge/categories", knowledge.ListCategoriesHandler())
	protected.Get("/knowledge/articles/search", knowledge.SearchArticlesHandler())
	protected.Get("/knowledge/articles", knowledge.ListArticlesHandler())
	protected.Get("/knowledge/articles/:id", knowledge.GetArticleHandler())
	protected.Post("/knowledge/articles", knowledge.CreateArticleHandler())
	protected.Put("/knowledge/articles/:id", knowledge.UpdateArticleHandler())
	protected.Delete("/knowledge/articles/:id", knowledge.DeleteArticleHandler())

	// AI consultation
	protected.Post("/ai/threads", ai.CreateThreadHandler(llmClient))
	protected.Get("/ai/threads", ai.ListThreadsHandler())
	protected.Get("/ai/threads/:id", ai.GetThreadHandler())
	protected.Get("/ai/threads/:id/messages", ai.ListMessagesHandler())
	protected.Post("/ai/threads/:id/messages", ai.SendMessageHandler(llmClient))

	sched := scheduler.New(cfg.RecalcCron, log)
	sched.Start()
	defer sched.Stop()

	log.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// errorHandler maps domain errors to HTTP statuses: missing resources to
// 404, business-rule violations to 422 and permission failures to 403.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var notFound *apperr.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
		}

		var business *apperr.BusinessError
		if errors.As(err, &business) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": business.Error()})
		}

		var forbidden *apperr.ForbiddenError
		if errors.As(err, &forbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": forbidden.Error()})
		}

		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
		}

		log.Error("unexpected error", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
		})
	}
}
