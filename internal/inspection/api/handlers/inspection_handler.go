package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cov_inspection_service/internal/inspection/app"
	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/middlewares"
	"cov_inspection_service/pkg/roster"

	"github.com/gofiber/fiber/v2"
)

// RosterLookup is the roster slice the intake form helpers need.
type RosterLookup interface {
	FindMemberInfo(capid string) *roster.MemberInfo
	ValidVanNumber(vanNumber string) (bool, string)
}

// InspectionHandler inspection intake and listing handler
type InspectionHandler struct {
	Inspections app.InspectionUseCase
	Videos      app.VideoUseCase
	Roster      RosterLookup
}

// NewInspectionHandler create inspection handler
func NewInspectionHandler(inspections app.InspectionUseCase, videos app.VideoUseCase, lookup RosterLookup) *InspectionHandler {
	return &InspectionHandler{
		Inspections: inspections,
		Videos:      videos,
		Roster:      lookup,
	}
}

// Submit handles the multipart inspection form. The video part is
// optional; a rejected extension still stores the record without it.
func (h *InspectionHandler) Submit(c *fiber.Ctx) error {
	req := &domain.SubmitInspectionReq{
		Date:              c.FormValue("date"),
		InspectorID:       c.FormValue("inspector_id"),
		VanNumber:         c.FormValue("van_number"),
		OdometerIn:        c.FormValue("odometer_in"),
		LicensePlate:      c.FormValue("license_plate"),
		InspectionSticker: c.FormValue("inspection_sticker"),
		Comments:          c.FormValue("comments"),
		EngineOil:         c.FormValue("engine_oil"),
		TransmissionFluid: c.FormValue("transmission_fluid"),
		WiperFluid:        c.FormValue("wiper_fluid"),
		EventName:         c.FormValue("event_name"),
		VINDisplay:        c.FormValue("vin_display_hidden"),
		VINConfirmed:      c.FormValue("vin_confirmed"),
		Checklist:         map[string]string{},
		ArrivalLevels:     map[string]string{},
		TireCodes:         map[string]string{},
	}
	for _, f := range domain.ChecklistFields {
		req.Checklist[f] = c.FormValue(f, "No")
	}
	for _, f := range domain.ArrivalFields {
		req.ArrivalLevels[f] = c.FormValue(f)
	}
	for _, f := range domain.TireFields {
		req.TireCodes[f] = c.FormValue(f)
	}

	var video io.Reader
	var videoName string
	if fileHeader, err := c.FormFile("inspection_video"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			logger.Log.Errorf("Open uploaded video failed", err)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to open video"})
		}
		defer file.Close()
		video = file
		videoName = fileHeader.Filename
	}

	insp, err := h.Inspections.Submit(c.UserContext(), req, video, videoName)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database not available"})
		}
		logger.Log.Errorf("Submit inspection failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status":                       "success",
		"inspection_id":                insp.ID.Hex(),
		"van_number":                   insp.VanNumber,
		"license_plate":                insp.LicensePlate,
		"odometer":                     insp.OdometerIn,
		"arrival_fuel_level":           insp.ArrivalFuelLevel,
		"arrival_oil_level":            insp.ArrivalOilLevel,
		"arrival_wiper_fluid_level":    insp.ArrivalWiperFluidLevel,
		"arrival_power_steering_level": insp.ArrivalPowerSteeringLevel,
		"video_filename":               insp.Video.VideoFilename,
		"video_status":                 insp.Video.VideoStatus,
		"video_location":               insp.Video.VideoLocation,
		"remote_object_id":             insp.Video.RemoteObjectID,
		"remote_error":                 insp.Video.RemoteError,
		"storage_mode":                 insp.Video.StorageMode,
	})
}

// AttachVideo attaches a late upload to the first matching record that
// has no video yet.
func (h *InspectionHandler) AttachVideo(c *fiber.Ctx) error {
	vanNumber := c.FormValue("van_number")
	inspectorID := c.FormValue("inspector_id")
	date := c.FormValue("date")

	fileHeader, err := c.FormFile("inspection_video")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Missing video file"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Errorf("Open uploaded video failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to open video"})
	}
	defer file.Close()

	asset, err := h.Inspections.AttachVideo(c.UserContext(), vanNumber, inspectorID, date, file, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadExtension):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, domain.ErrInspectionNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "No matching inspection without a video"})
		case errors.Is(err, domain.ErrStoreUnavailable):
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database not available"})
		}
		logger.Log.Errorf("Attach video failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status":         "success",
		"video_filename": asset.VideoFilename,
		"video_status":   asset.VideoStatus,
		"video_location": asset.VideoLocation,
	})
}

// ReplaceVideo swaps an inspection's footage, archiving the superseded
// file under its _REPLACED name.
func (h *InspectionHandler) ReplaceVideo(c *fiber.Ctx) error {
	inspectionID := c.FormValue("inspection_id")
	inspectorID := c.FormValue("inspector_id")
	if inspectionID == "" || inspectorID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "inspection_id and inspector_id are required"})
	}

	fileHeader, err := c.FormFile("inspection_video")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Missing video file"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Errorf("Open uploaded video failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to open video"})
	}
	defer file.Close()

	res, err := h.Videos.Replace(c.UserContext(), inspectionID, inspectorID, file, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadExtension):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, domain.ErrInspectionNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Inspection not found"})
		case errors.Is(err, domain.ErrNoVideo):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Inspection has no video to replace"})
		}
		logger.Log.Errorf("Replace video failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status":            "success",
		"message":           "Video replaced successfully",
		"original_filename": res.OriginalFilename,
		"replaced_filename": res.ReplacedFilename,
		"video_status":      res.VideoStatus,
	})
}

// InspectedVans lists inspections with paging, sorting and an optional
// event filter.
func (h *InspectionHandler) InspectedVans(c *fiber.Ctx) error {
	q := domain.ListInspectionsQuery{
		Page:      parseIntDefault(c.Query("page"), 1),
		PerPage:   parseIntDefault(c.Query("per_page"), 10),
		SortBy:    c.Query("sort", "created_at"),
		SortOrder: c.Query("order", "desc"),
		EventName: c.Query("event"),
	}
	page, err := h.Inspections.List(c.UserContext(), q)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return c.JSON(domain.InspectionPage{Inspections: []domain.Inspection{}, Page: 1, PerPage: q.PerPage})
		}
		logger.Log.Errorf("List inspections failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(page)
}

// MissingVideos lists inspections that never received footage.
func (h *InspectionHandler) MissingVideos(c *fiber.Ctx) error {
	list, err := h.Inspections.MissingVideos(c.UserContext())
	if err != nil {
		logger.Log.Errorf("List missing videos failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"inspections": list, "total": len(list)})
}

// COVs returns the per-vehicle aggregation.
func (h *InspectionHandler) COVs(c *fiber.Ctx) error {
	summaries, err := h.Inspections.COVSummaries(c.UserContext())
	if err != nil {
		logger.Log.Errorf("COV summaries failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"covs": summaries, "total": len(summaries)})
}

// COVInspections lists all inspections of one vehicle.
func (h *InspectionHandler) COVInspections(c *fiber.Ctx) error {
	list, err := h.Inspections.ListByVan(c.UserContext(), c.Params("cov"))
	if err != nil {
		logger.Log.Errorf("List COV inspections failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"inspections": list, "total": len(list)})
}

// GetInspection returns one inspection record.
func (h *InspectionHandler) GetInspection(c *fiber.Ctx) error {
	insp, err := h.Inspections.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrInspectionNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Inspection not found"})
		}
		logger.Log.Errorf("Get inspection failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(insp)
}

// DeleteInspection removes a record unless its event is locked.
func (h *InspectionHandler) DeleteInspection(c *fiber.Ctx) error {
	capid, _ := c.Locals(middlewares.TokenCAPID).(string)
	err := h.Inspections.Delete(c.UserContext(), c.Params("id"), capid)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInspectionNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Inspection not found"})
		case errors.Is(err, domain.ErrEventLocked):
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Event is locked"})
		}
		logger.Log.Errorf("Delete inspection failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Inspection deleted"})
}

// CheckCAPID resolves a member against the roster for the intake form.
func (h *InspectionHandler) CheckCAPID(c *fiber.Ctx) error {
	var body struct {
		CAPID string `json:"capid"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid body"})
	}
	info := h.Roster.FindMemberInfo(strings.TrimSpace(body.CAPID))
	if info == nil {
		return c.JSON(fiber.Map{"status": "not_found"})
	}
	return c.JSON(fiber.Map{
		"status":     "found",
		"rank":       info.Rank,
		"first_name": info.FirstName,
		"last_name":  info.LastName,
	})
}

// CheckVan validates a van number against the vehicle roster.
func (h *InspectionHandler) CheckVan(c *fiber.Ctx) error {
	var body struct {
		VanNumber string `json:"van_number"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid body"})
	}
	valid, vin := h.Roster.ValidVanNumber(strings.TrimSpace(body.VanNumber))
	status := "invalid"
	if valid {
		status = "valid"
	}
	return c.JSON(fiber.Map{"status": status, "vin_id": vin})
}

func parseIntDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
