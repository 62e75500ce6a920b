package ai_test

import (
	"context"
	"strings"
	"testing"

	"recipe-backend/internal/ai"
	"recipe-backend/internal/apperr"
	"recipe-backend/internal/models"
	"recipe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubClientChat(t *testing.T) {
	client := ai.NewClient("", "")

	answer, err := client.Chat(context.Background(), "system", "How do I balance acidity?")
	require.NoError(t, err)
	assert.Contains(t, answer, "stub mode")
	assert.Contains(t, answer, "How do I balance acidity?")
}

func TestStubClientTruncatesLongQuestions(t *testing.T) {
	client := ai.NewClient("", "")

	long := strings.Repeat("a", 150)
	answer, err := client.Chat(context.Background(), "system", long)
	require.NoError(t, err)
	assert.Contains(t, answer, strings.Repeat("a", 100)+"...")
	assert.NotContains(t, answer, strings.Repeat("a", 101))
}

func TestCreateThread(t *testing.T) {
	db := testutil.OpenTestDB(t)
	client := ai.NewClient("", "")

	recipe := models.Recipe{Title: "Beef stew", Status: models.RecipeStatusPublished, CreatedByID: 1}
	require.NoError(t, db.Create(&recipe).Error)

	thread, err := ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		Theme:          "Improving the sauce",
		RecipeID:       &recipe.ID,
		InitialMessage: "The sauce separates when reheated.",
	}, 3)
	require.NoError(t, err)

	assert.EqualValues(t, 3, thread.UserID)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, models.SenderUser, thread.Messages[0].Role)
	assert.Equal(t, models.SenderAI, thread.Messages[1].Role)
}

func TestCreateThreadValidation(t *testing.T) {
	testutil.OpenTestDB(t)
	client := ai.NewClient("", "")

	_, err := ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		InitialMessage: "question",
	}, 3)
	var business *apperr.BusinessError
	assert.ErrorAs(t, err, &business)

	_, err = ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		Theme: "theme",
	}, 3)
	assert.ErrorAs(t, err, &business)

	unknown := uint(999)
	_, err = ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		Theme:          "theme",
		RecipeID:       &unknown,
		InitialMessage: "question",
	}, 3)
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestThreadAccess(t *testing.T) {
	testutil.OpenTestDB(t)
	client := ai.NewClient("", "")

	thread, err := ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		Theme:          "Plating ideas",
		InitialMessage: "How should I plate the dessert course?",
	}, 3)
	require.NoError(t, err)

	// owner
	_, err = ai.GetThread(thread.ID, 3, models.RoleChef)
	require.NoError(t, err)

	// producer oversight
	_, err = ai.GetThread(thread.ID, 4, models.RoleProducer)
	require.NoError(t, err)

	// anyone else
	_, err = ai.GetThread(thread.ID, 4, models.RoleService)
	var forbidden *apperr.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestBuildSystemPromptIncludesKnowledge(t *testing.T) {
	thread := &models.AiConsultationThread{Theme: "Sauce basics"}
	articles := []models.KnowledgeArticle{{
		Title:    "Emulsion stability",
		Content:  "Whisk in butter off the heat.",
		Category: models.KnowledgeCategory{Name: "Cooking technique"},
	}}

	prompt := ai.BuildSystemPrompt(thread, nil, articles)
	assert.Contains(t, prompt, "## Reference knowledge")
	assert.Contains(t, prompt, "### Emulsion stability")
	assert.Contains(t, prompt, "Category: Cooking technique")
	assert.Contains(t, prompt, "Whisk in butter off the heat.")
}

func TestCreateThreadRecordsReferencedArticles(t *testing.T) {
	db := testutil.OpenTestDB(t)
	client := ai.NewClient("", "")

	recipe := models.Recipe{Title: "Beef stew", Status: models.RecipeStatusPublished, CreatedByID: 1}
	require.NoError(t, db.Create(&recipe).Error)

	category := models.KnowledgeCategory{Name: "Cooking technique"}
	require.NoError(t, db.Create(&category).Error)

	// matched through the theme keyword
	byKeyword := models.KnowledgeArticle{
		Title:      "Sauce emulsions",
		Content:    "Keep the heat low and whisk constantly.",
		CategoryID: category.ID,
		AuthorID:   1,
	}
	require.NoError(t, db.Create(&byKeyword).Error)

	// matched through the recipe link only
	byRecipe := models.KnowledgeArticle{
		Title:          "Stew foundations",
		Content:        "Brown the meat in batches.",
		CategoryID:     category.ID,
		AuthorID:       1,
		RelatedRecipes: []models.Recipe{recipe},
	}
	require.NoError(t, db.Create(&byRecipe).Error)

	thread, err := ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		Theme:          "sauce",
		RecipeID:       &recipe.ID,
		InitialMessage: "The sauce separates when reheated.",
	}, 3)
	require.NoError(t, err)

	var aiMsg models.AiConsultationMessage
	require.NoError(t, db.Preload("ReferencedArticles").
		Where("thread_id = ? AND role = ?", thread.ID, models.SenderAI).
		First(&aiMsg).Error)

	require.Len(t, aiMsg.ReferencedArticles, 2)
	titles := []string{aiMsg.ReferencedArticles[0].Title, aiMsg.ReferencedArticles[1].Title}
	assert.Contains(t, titles, "Sauce emulsions")
	assert.Contains(t, titles, "Stew foundations")
}

func TestSendMessageKeepsConversationOrder(t *testing.T) {
	testutil.OpenTestDB(t)
	client := ai.NewClient("", "")

	thread, err := ai.CreateThread(context.Background(), client, ai.CreateThreadInput{
		Theme:          "Menu pairing",
		InitialMessage: "What wine pairs with the stew?",
	}, 3)
	require.NoError(t, err)

	_, err = ai.SendMessage(context.Background(), client, thread.ID, "And for a non-alcoholic option?", 3, models.RoleChef)
	require.NoError(t, err)

	msgs, err := ai.GetMessages(thread.ID, 3, models.RoleChef)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, models.SenderUser, msgs[0].Role)
	assert.Equal(t, models.SenderAI, msgs[1].Role)
	assert.Equal(t, models.SenderUser, msgs[2].Role)
	assert.Equal(t, models.SenderAI, msgs[3].Role)
}
