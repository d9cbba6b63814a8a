package handlers

import (
	"errors"
	"net/http"

	"cov_inspection_service/internal/inspection/app"
	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// EventHandler event registry handler
type EventHandler struct {
	Events app.EventUseCase
}

// NewEventHandler create event handler
func NewEventHandler(events app.EventUseCase) *EventHandler {
	return &EventHandler{Events: events}
}

// List returns every registered event.
func (h *EventHandler) List(c *fiber.Ctx) error {
	events, err := h.Events.List(c.UserContext())
	if err != nil {
		logger.Log.Errorf("List events failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"events": events})
}

// Create registers an event. A canonical duplicate is a 409; a merely
// similar name yields a warning unless force_create is set.
func (h *EventHandler) Create(c *fiber.Ctx) error {
	req := &domain.CreateEventReq{}
	if err := c.BodyParser(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid body"})
	}
	if req.CreatedBy == "" {
		req.CreatedBy, _ = c.Locals(middlewares.TokenCAPID).(string)
	}

	res, err := h.Events.Create(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, domain.ErrEventExists) {
			return c.Status(http.StatusConflict).JSON(res)
		}
		logger.Log.Errorf("Create event failed", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(res)
}

// LockStatus reports whether an event is locked and by whom.
func (h *EventHandler) LockStatus(c *fiber.Ctx) error {
	status, err := h.Events.LockStatus(c.UserContext(), c.Params("event_name"))
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Event not found"})
		}
		logger.Log.Errorf("Event lock status failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(status)
}

// Lock freezes an event and mirrors the flag onto its inspections.
func (h *EventHandler) Lock(c *fiber.Ctx) error {
	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	count, err := h.Events.Lock(c.UserContext(), c.Params("event_name"), capid)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Event not found"})
		}
		logger.Log.Errorf("Lock event failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Event locked", "inspections_updated": count})
}

// Unlock releases an event.
func (h *EventHandler) Unlock(c *fiber.Ctx) error {
	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	count, err := h.Events.Unlock(c.UserContext(), c.Params("event_name"), capid)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Event not found"})
		}
		logger.Log.Errorf("Unlock event failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Event unlocked", "inspections_updated": count})
}

// Merge moves every inspection of the source event to the target and
// deletes the source.
func (h *EventHandler) Merge(c *fiber.Ctx) error {
	var body struct {
		SourceEvent string `json:"source_event"`
		TargetEvent string `json:"target_event"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid body"})
	}
	if body.SourceEvent == "" || body.TargetEvent == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Source and target events are required"})
	}
	if body.SourceEvent == body.TargetEvent {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot merge an event with itself"})
	}

	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	moved, err := h.Events.Merge(c.UserContext(), body.SourceEvent, body.TargetEvent, capid)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, domain.ErrEventLocked):
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Source event is locked"})
		}
		logger.Log.Errorf("Merge events failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Events merged", "inspections_moved": moved})
}

// Delete removes an empty, unlocked event.
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	err := h.Events.Delete(c.UserContext(), c.Params("event_name"), capid)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Event not found"})
		case errors.Is(err, domain.ErrEventLocked):
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Event is locked"})
		}
		logger.Log.Errorf("Delete event failed", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Event deleted"})
}
