package ai

import (
	"strings"

	"recipe-backend/internal/models"
)

const systemPromptBase = `You are the culinary advisor of a restaurant whose mission is to move
guests through food and service.

Advise from these angles:
- cooking technique and making the most of each ingredient
- service and presentation
- designing the guest experience
- the history and cultural background of dishes

Answer in Markdown, concretely and practically.
`

// BuildSystemPrompt assembles the system prompt from the thread's theme,
// the bound recipe's context (when there is one) and any matching
// knowledge articles.
func BuildSystemPrompt(thread *models.AiConsultationThread, recipe *models.Recipe, articles []models.KnowledgeArticle) string {
	var sb strings.Builder
	sb.WriteString(systemPromptBase)

	sb.WriteString("\n## Consultation theme\n")
	sb.WriteString(thread.Theme)
	sb.WriteString("\n")

	if recipe != nil {
		sb.WriteString("\n## Related recipe\n")
		sb.WriteString("- Title: " + recipe.Title + "\n")
		if recipe.Description != "" {
			sb.WriteString("- Description: " + recipe.Description + "\n")
		}
		if recipe.Concept != "" {
			sb.WriteString("- Concept: " + recipe.Concept + "\n")
		}
	}

	if len(articles) > 0 {
		sb.WriteString("\n## Reference knowledge\n")
		for _, article := range articles {
			sb.WriteString("### " + article.Title + "\n")
			sb.WriteString("Category: " + article.Category.Name + "\n")
			sb.WriteString(article.Content + "\n\n")
		}
	}

	return sb.String()
}

// BuildConversationContext flattens prior messages plus the new question
// into one prompt block.
func BuildConversationContext(previous []models.AiConsultationMessage, newUserMessage string) string {
	var sb strings.Builder

	if len(previous) > 0 {
		sb.WriteString("## Conversation so far\n")
		for _, msg := range previous {
			role := "AI"
			if msg.Role == models.SenderUser {
				role = "User"
			}
			sb.WriteString(role + ": " + msg.Content + "\n\n")
		}
	}

	sb.WriteString("## New question\n")
	sb.WriteString(newUserMessage)
	return sb.String()
}
