package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cov_inspection_service/internal/inspection/app"
	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/repository"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler admin dashboard handler
type AdminHandler struct {
	Inspections app.InspectionUseCase
	Auth        app.AuthUseCase
	Activity    repository.ActivityRepo
}

// NewAdminHandler create admin handler
func NewAdminHandler(inspections app.InspectionUseCase, auth app.AuthUseCase, activity repository.ActivityRepo) *AdminHandler {
	return &AdminHandler{
		Inspections: inspections,
		Auth:        auth,
		Activity:    activity,
	}
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Inspections.Stats(c.UserContext())
	if err != nil {
		logger.Log.Errorf("Admin stats failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(stats)
}

// RecentActivity returns the latest audit entries.
func (h *AdminHandler) RecentActivity(c *fiber.Ctx) error {
	if h.Activity == nil {
		return c.JSON(fiber.Map{"activities": []domain.Activity{}})
	}
	limit := int64(parseIntDefault(c.Query("limit"), 20))
	activities, err := h.Activity.Recent(c.UserContext(), limit)
	if err != nil {
		logger.Log.Errorf("Recent activity failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"activities": activities})
}

// ExportInspectionsCSV streams every inspection as a CSV attachment.
func (h *AdminHandler) ExportInspectionsCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.Inspections.ExportCSV(c.UserContext(), &buf); err != nil {
		logger.Log.Errorf("Export inspections failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=inspections_%s.csv", time.Now().Format("01-02-2006")))
	return c.Send(buf.Bytes())
}

// ExportActivityCSV streams the whole activity log as a CSV attachment.
func (h *AdminHandler) ExportActivityCSV(c *fiber.Ctx) error {
	if h.Activity == nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database not available"})
	}
	activities, err := h.Activity.ListAll(c.UserContext())
	if err != nil {
		logger.Log.Errorf("Export activity failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"timestamp", "type", "actor_capid", "actor_name", "details"})
	for _, a := range activities {
		details := ""
		if len(a.Details) > 0 {
			if b, err := json.Marshal(a.Details); err == nil {
				details = string(b)
			}
		}
		_ = w.Write([]string{
			a.Timestamp.Format(time.RFC3339),
			a.Type,
			a.ActorID,
			a.ActorName,
			details,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=activity_%s.csv", time.Now().Format("01-02-2006")))
	return c.Send(buf.Bytes())
}

// AccessInfo reports the caller's duty positions and admin grants.
func (h *AdminHandler) AccessInfo(c *fiber.Ctx) error {
	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	info, err := h.Auth.AccessInfo(c.UserContext(), capid)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Member not found"})
		}
		logger.Log.Errorf("Access info failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(info)
}
