package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/WinKyaw/InventSight-sub004/internal/middleware"
	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/internal/service"
)

type TransferHandler struct {
	transfers service.TransferService
}

func NewTransferHandler(transfers service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type reasonBody struct {
	Reason string `json:"reason"`
}

type notesBody struct {
	Notes string `json:"notes"`
}

func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var input service.CreateTransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	input.CompanyID = middleware.CompanyFromCtx(c)

	transfer, err := h.transfers.Request(input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transfer requested", "data": transfer})
}

func (h *TransferHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	transfer, err := h.transfers.GetByID(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(transfer)
}

func (h *TransferHandler) List(c *fiber.Ctx) error {
	limit, offset := paginationFromQuery(c)
	status := model.TransferStatus(c.Query("status"))

	// Filter by location when one is supplied, otherwise list the tenant.
	if c.Query("location_type") != "" {
		loc, err := locationFromQuery(c)
		if err != nil {
			return respondErr(c, err)
		}
		transfers, err := h.transfers.ListByLocation(loc, limit, offset)
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(fiber.Map{"data": transfers})
	}

	transfers, err := h.transfers.ListByCompany(middleware.CompanyFromCtx(c), status, limit, offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"data": transfers})
}

func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var input service.ApproveTransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.transfers.Approve(id, input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer approved", "data": transfer})
}

func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	return h.closeWithReason(c, h.transfers.Reject, "Transfer rejected")
}

func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.closeWithReason(c, h.transfers.Cancel, "Transfer cancelled")
}

func (h *TransferHandler) MarkDamaged(c *fiber.Ctx) error {
	return h.closeWithReason(c, h.transfers.MarkDamaged, "Transfer marked damaged")
}

func (h *TransferHandler) MarkLost(c *fiber.Ctx) error {
	return h.closeWithReason(c, h.transfers.MarkLost, "Transfer marked lost")
}

func (h *TransferHandler) closeWithReason(
	c *fiber.Ctx,
	op func(id uuid.UUID, reason string, actor model.Actor) (*model.TransferRequest, error),
	message string,
) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body reasonBody
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := op(id, body.Reason, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": message, "data": transfer})
}

func (h *TransferHandler) MarkReady(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var body notesBody
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.transfers.MarkReady(id, body.Notes, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer ready for shipping", "data": transfer})
}

func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var input service.ShipTransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.transfers.Ship(id, input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer shipped", "data": transfer})
}

func (h *TransferHandler) Deliver(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var input service.DeliverTransferInput
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.transfers.Deliver(id, input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer delivered", "data": transfer})
}

func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	var input service.ReceiveTransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.transfers.Receive(id, input, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer received", "data": transfer})
}

func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	transfer, err := h.transfers.Complete(id, middleware.ActorFromCtx(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer completed", "data": transfer})
}
