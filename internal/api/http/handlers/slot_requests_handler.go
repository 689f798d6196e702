package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/service"
)

// SlotRequestsHandler exposes slot requests and their review.
type SlotRequestsHandler struct {
	requests *service.SlotRequestService
}

// NewSlotRequestsHandler constructs handler.
func NewSlotRequestsHandler(requests *service.SlotRequestService) *SlotRequestsHandler {
	return &SlotRequestsHandler{requests: requests}
}

// List handles GET /slot-requests.
func (h *SlotRequestsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.requests.List(c.UserContext(), actor, pageRequest(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, page)
}

// Get handles GET /slot-requests/:id.
func (h *SlotRequestsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "slot request")
	if err != nil {
		return err
	}
	req, err := h.requests.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, req)
}

// Create handles POST /slot-requests.
func (h *SlotRequestsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var body dto.SlotRequestPayload
	if err := parseBody(c, &body); err != nil {
		return err
	}
	req, err := h.requests.Create(c.UserContext(), actor, service.SlotRequestInput{
		VehicleID:         dto.Deref(body.VehicleID),
		PreferredLocation: dto.Deref(body.PreferredLocation),
		StartDate:         dto.Deref(body.StartDate),
		EndDate:           dto.Deref(body.EndDate),
		Notes:             dto.Deref(body.Notes),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, req)
}

// Update handles PUT /slot-requests/:id.
func (h *SlotRequestsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "slot request")
	if err != nil {
		return err
	}
	var body dto.SlotRequestPayload
	if err := parseBody(c, &body); err != nil {
		return err
	}
	req, err := h.requests.Update(c.UserContext(), actor, id, service.SlotRequestPatch{
		VehicleID:         body.VehicleID,
		PreferredLocation: body.PreferredLocation,
		StartDate:         body.StartDate,
		EndDate:           body.EndDate,
		Notes:             body.Notes,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, req)
}

// Delete handles DELETE /slot-requests/:id.
func (h *SlotRequestsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "slot request")
	if err != nil {
		return err
	}
	if err := h.requests.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Approve handles PUT /slot-requests/:id/approve.
func (h *SlotRequestsHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "slot request")
	if err != nil {
		return err
	}
	var body dto.ApproveSlotRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	req, err := h.requests.Approve(c.UserContext(), actor, id, body.SlotID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, req)
}

// Reject handles PUT /slot-requests/:id/reject.
func (h *SlotRequestsHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "slot request")
	if err != nil {
		return err
	}
	var body dto.RejectRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	req, err := h.requests.Reject(c.UserContext(), actor, id, body.Reason)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, req)
}

// Reason handles GET /slot-requests/:id/reason.
func (h *SlotRequestsHandler) Reason(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "slot request")
	if err != nil {
		return err
	}
	info, err := h.requests.Reason(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, info)
}
