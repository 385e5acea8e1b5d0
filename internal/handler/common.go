package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
)

// respondErr maps typed domain errors onto their HTTP status; anything else
// is a 500 with a generic body.
func respondErr(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(fiber.Map{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid " + name)
	}
	return id, nil
}

// locationFromQuery reads ?location_type=&location_id= into a LocationRef.
func locationFromQuery(c *fiber.Ctx) (model.LocationRef, error) {
	locType := model.LocationType(c.Query("location_type"))
	if locType != model.LocationWarehouse && locType != model.LocationStore {
		return model.LocationRef{}, apperror.BadRequest("location_type must be WAREHOUSE or STORE")
	}
	locID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		return model.LocationRef{}, apperror.BadRequest("invalid location_id")
	}
	return model.LocationRef{Type: locType, ID: locID}, nil
}

func paginationFromQuery(c *fiber.Ctx) (limit, offset int) {
	return c.QueryInt("limit", 50), c.QueryInt("offset", 0)
}
