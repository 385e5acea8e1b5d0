package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/WinKyaw/InventSight-sub004/internal/middleware"
	"github.com/WinKyaw/InventSight-sub004/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.auth.Login(input)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := h.auth.Logout(actor.UserID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	profile, err := h.auth.GetProfile(actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(profile)
}
