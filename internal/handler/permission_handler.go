package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/WinKyaw/InventSight-sub004/internal/middleware"
	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/internal/service"
)

type PermissionHandler struct {
	permissions service.PermissionService
}

func NewPermissionHandler(permissions service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

type grantPermissionBody struct {
	GrantedToUserID uuid.UUID  `json:"granted_to_user_id"`
	PermissionType  string     `json:"permission_type"`
	StoreID         *uuid.UUID `json:"store_id,omitempty"`
	TTLMinutes      int        `json:"ttl_minutes,omitempty"`
}

func (h *PermissionHandler) Grant(c *fiber.Ctx) error {
	var body grantPermissionBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	input := service.GrantPermissionInput{
		CompanyID:       middleware.CompanyFromCtx(c),
		GrantedToUserID: body.GrantedToUserID,
		PermissionType:  model.PermissionType(body.PermissionType),
		StoreID:         body.StoreID,
		TTL:             time.Duration(body.TTLMinutes) * time.Minute,
	}

	permission, err := h.permissions.Grant(input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Permission granted", "data": permission})
}

func (h *PermissionHandler) Consume(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	permission, err := h.permissions.Consume(id, middleware.ActorFromCtx(c), middleware.CompanyFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Permission consumed", "data": permission})
}

// ListActive returns the caller's still-consumable grants, optionally
// filtered by ?type=.
func (h *PermissionHandler) ListActive(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	permissionType := model.PermissionType(c.Query("type"))

	permissions, err := h.permissions.ActiveForUser(actor.UserID, permissionType)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"data": permissions})
}
