package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/WinKyaw/InventSight-sub004/internal/middleware"
	"github.com/WinKyaw/InventSight-sub004/internal/service"
	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
)

type InventoryHandler struct {
	ledger service.LedgerService
}

func NewInventoryHandler(ledger service.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// GetAvailability answers "how much can I take" for one (location, product).
func (h *InventoryHandler) GetAvailability(c *fiber.Ctx) error {
	loc, err := locationFromQuery(c)
	if err != nil {
		return respondErr(c, err)
	}
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		return respondErr(c, apperror.BadRequest("invalid product_id"))
	}

	availability, err := h.ledger.GetAvailability(loc, productID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(availability)
}

func (h *InventoryHandler) ListLocationStock(c *fiber.Ctx) error {
	loc, err := locationFromQuery(c)
	if err != nil {
		return respondErr(c, err)
	}
	records, err := h.ledger.ListLocationStock(loc)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"data": records})
}

func (h *InventoryHandler) AddStock(c *fiber.Ctx) error {
	var input service.StockAdjustmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	input.CompanyID = middleware.CompanyFromCtx(c)

	record, err := h.ledger.RecordRestock(input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock added", "data": record})
}

func (h *InventoryHandler) RemoveStock(c *fiber.Ctx) error {
	var input service.StockAdjustmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	input.CompanyID = middleware.CompanyFromCtx(c)

	record, err := h.ledger.RecordWithdrawal(input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock removed", "data": record})
}
