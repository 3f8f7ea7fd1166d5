package handlers

import (
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AgentHandler struct {
	agent *services.AgentService
}

func NewAgentHandler(agent *services.AgentService) *AgentHandler {
	return &AgentHandler{agent: agent}
}

func (h *AgentHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	messages := make([]services.ChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = services.ChatMessage{Role: m.Role, Content: m.Content}
	}

	reply, err := h.agent.Chat(c.UserContext(), messages)
	if err != nil {
		return writeError(c, err, "Assistant request failed")
	}
	return c.JSON(dto.ChatResponse{OK: true, Reply: reply})
}
