package handlers

import (
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/auth"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges the admin password for an access token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	token, err := h.authService.Login(input.Password)
	if err != nil {
		return response.Unauthorized(c)
	}
	return response.Success(c, "Logged in", fiber.Map{"token": token})
}
