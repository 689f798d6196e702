package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/service"
)

// VehiclesHandler exposes vehicle registration and review.
type VehiclesHandler struct {
	vehicles *service.VehicleService
}

// NewVehiclesHandler constructs handler.
func NewVehiclesHandler(vehicles *service.VehicleService) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicles}
}

// List handles GET /vehicles.
func (h *VehiclesHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.vehicles.List(c.UserContext(), actor, pageRequest(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, page)
}

// Get handles GET /vehicles/:id.
func (h *VehiclesHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "vehicle")
	if err != nil {
		return err
	}
	vehicle, err := h.vehicles.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, vehicle)
}

// Create handles POST /vehicles.
func (h *VehiclesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.VehiclePayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.VehicleInput{
		OwnerID:     req.UserID,
		PlateNumber: dto.Deref(req.PlateNumber),
		VehicleType: dto.Deref(req.VehicleType),
		Size:        dto.Deref(req.Size),
	}
	if req.Attributes != nil {
		input.Color = dto.Deref(req.Attributes.Color)
		input.Model = dto.Deref(req.Attributes.Model)
	}
	vehicle, err := h.vehicles.Create(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, vehicle)
}

// Update handles PUT /vehicles/:id.
func (h *VehiclesHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "vehicle")
	if err != nil {
		return err
	}
	var req dto.VehiclePayload
	if err := parseBody(c, &req); err != nil {
		return err
	}
	patch := service.VehiclePatch{
		PlateNumber: req.PlateNumber,
		VehicleType: req.VehicleType,
		Size:        req.Size,
	}
	if req.Attributes != nil {
		patch.Color = req.Attributes.Color
		patch.Model = req.Attributes.Model
	}
	vehicle, err := h.vehicles.Update(c.UserContext(), actor, id, patch)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, vehicle)
}

// Delete handles DELETE /vehicles/:id.
func (h *VehiclesHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "vehicle")
	if err != nil {
		return err
	}
	if err := h.vehicles.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Approve handles PATCH /vehicles/:id/approve.
func (h *VehiclesHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "vehicle")
	if err != nil {
		return err
	}
	vehicle, err := h.vehicles.Approve(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, vehicle)
}

// Reject handles PATCH /vehicles/:id/reject.
func (h *VehiclesHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "vehicle")
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	vehicle, err := h.vehicles.Reject(c.UserContext(), actor, id, req.Reason)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, vehicle)
}
