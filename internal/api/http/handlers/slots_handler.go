package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/service"
)

// SlotsHandler exposes the parking slot inventory.
type SlotsHandler struct {
	slots *service.SlotService
}

// NewSlotsHandler constructs handler.
func NewSlotsHandler(slots *service.SlotService) *SlotsHandler {
	return &SlotsHandler{slots: slots}
}

// List handles GET /parking-slots.
func (h *SlotsHandler) List(c *fiber.Ctx) error {
	page, err := h.slots.List(c.UserContext(), pageRequest(c), c.Query("vehicleType"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, page)
}

// Get handles GET /parking-slots/:id.
func (h *SlotsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "parking slot")
	if err != nil {
		return err
	}
	slot, err := h.slots.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, slot)
}

// Create handles POST /parking-slots.
func (h *SlotsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.SlotPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	slot, err := h.slots.Create(c.UserContext(), actor, service.SlotInput{
		SlotNumber:  dto.Deref(req.SlotNumber),
		VehicleType: dto.Deref(req.VehicleType),
		Size:        dto.Deref(req.Size),
		Location:    dto.Deref(req.Location),
		Status:      dto.Deref(req.Status),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, slot)
}

// BulkCreate handles POST /parking-slots/bulk.
func (h *SlotsHandler) BulkCreate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.BulkSlotRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	slots, err := h.slots.BulkCreate(c.UserContext(), actor, service.BulkSlotInput{
		Count:       req.Count,
		Prefix:      req.Prefix,
		VehicleType: req.VehicleType,
		Size:        req.Size,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, fiber.Map{"items": slots, "count": len(slots)})
}

// Update handles PUT /parking-slots/:id.
func (h *SlotsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "parking slot")
	if err != nil {
		return err
	}
	var req dto.SlotPayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	slot, err := h.slots.Update(c.UserContext(), actor, id, service.SlotPatch{
		SlotNumber:  req.SlotNumber,
		VehicleType: req.VehicleType,
		Size:        req.Size,
		Location:    req.Location,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, slot)
}

// Delete handles DELETE /parking-slots/:id.
func (h *SlotsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "parking slot")
	if err != nil {
		return err
	}
	if err := h.slots.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
