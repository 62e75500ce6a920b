package ai

import (
	"strconv"

	"recipe-backend/internal/auth"
	"recipe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

// CreateThreadHandler handles POST /api/ai/threads
func CreateThreadHandler(client LlmClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input CreateThreadInput
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		thread, err := CreateThread(c.Context(), client, input, userID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(thread)
	}
}

// ListThreadsHandler handles GET /api/ai/threads
func ListThreadsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		threads, err := ListMyThreads(userID)
		if err != nil {
			return err
		}
		if threads == nil {
			threads = []models.AiConsultationThread{}
		}
		return c.JSON(threads)
	}
}

// GetThreadHandler handles GET /api/ai/threads/:id
func GetThreadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		userID, role, err := caller(c)
		if err != nil {
			return err
		}

		thread, err := GetThread(id, userID, role)
		if err != nil {
			return err
		}
		return c.JSON(thread)
	}
}

// ListMessagesHandler handles GET /api/ai/threads/:id/messages
func ListMessagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		userID, role, err := caller(c)
		if err != nil {
			return err
		}

		msgs, err := GetMessages(id, userID, role)
		if err != nil {
			return err
		}
		return c.JSON(msgs)
	}
}

// SendMessageHandler handles POST /api/ai/threads/:id/messages
func SendMessageHandler(client LlmClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		userID, role, err := caller(c)
		if err != nil {
			return err
		}

		var req sendMessageRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		msg, err := SendMessage(c.Context(), client, id, req.Content, userID, role)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}

func caller(c *fiber.Ctx) (uint, models.UserRole, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return 0, "", err
	}
	role, err := auth.CurrentRole(c)
	if err != nil {
		return 0, "", err
	}
	return userID, role, nil
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id parameter")
	}
	return uint(id), nil
}
