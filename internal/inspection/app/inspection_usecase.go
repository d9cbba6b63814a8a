package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/repository"
	"cov_inspection_service/pkg/logger"

	"go.uber.org/zap"
)

// InspectionUseCase covers inspection intake, listings, late video attach,
// deletion and export.
type InspectionUseCase interface {
	// Submit stores a new inspection. video may be nil for a record
	// without footage; videoName is the client-side filename.
	Submit(ctx context.Context, req *domain.SubmitInspectionReq, video io.Reader, videoName string) (*domain.Inspection, error)
	GetByID(ctx context.Context, id string) (*domain.Inspection, error)
	List(ctx context.Context, q domain.ListInspectionsQuery) (*domain.InspectionPage, error)
	ListByVan(ctx context.Context, vanNumber string) ([]domain.Inspection, error)
	COVSummaries(ctx context.Context) ([]domain.COVSummary, error)
	MissingVideos(ctx context.Context) ([]domain.Inspection, error)
	AttachVideo(ctx context.Context, vanNumber, inspectorID, date string, video io.Reader, videoName string) (*domain.VideoAsset, error)
	// Delete removes a record unless its event is locked.
	Delete(ctx context.Context, id, actorCAPID string) error
	Stats(ctx context.Context) (*domain.AdminStats, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

type inspectionUseCase struct {
	repo     repository.InspectionRepo
	events   repository.EventRepo
	video    VideoUseCase
	activity ActivityRecorder
}

// NewInspectionUseCase create an InspectionUseCase
func NewInspectionUseCase(repo repository.InspectionRepo,
	events repository.EventRepo,
	video VideoUseCase,
	activity ActivityRecorder,
) InspectionUseCase {
	return &inspectionUseCase{repo: repo, events: events, video: video, activity: activity}
}

// arrivalPercent converts a slider increment to a percentage string. Fuel
// has 8 steps, the other fluids 4.
func arrivalPercent(field, raw string) string {
	n, err := strconv.Atoi(raw)
	if err != nil || raw == "" {
		return ""
	}
	steps := 4.0
	if field == "arrival_fuel_level" {
		steps = 8.0
	}
	pct := float64(n) / steps * 100
	// one decimal, trailing zero kept to match stored history
	return fmt.Sprintf("%.1f%%", pct)
}

func (u *inspectionUseCase) Submit(ctx context.Context, req *domain.SubmitInspectionReq, video io.Reader, videoName string) (*domain.Inspection, error) {
	if u.repo == nil {
		return nil, domain.ErrStoreUnavailable
	}

	insp := &domain.Inspection{
		Date:              req.Date,
		InspectorID:       req.InspectorID,
		VanNumber:         req.VanNumber,
		OdometerIn:        req.OdometerIn,
		LicensePlate:      req.LicensePlate,
		InspectionSticker: req.InspectionSticker,
		Comments:          req.Comments,
		EngineOil:         req.EngineOil,
		TransmissionFluid: req.TransmissionFluid,
		WiperFluid:        req.WiperFluid,
		EventName:         req.EventName,
		VINDisplay:        req.VINDisplay,
		VINConfirmed:      req.VINConfirmed,
		Checklist:         map[string]string{},
		Video: domain.VideoAsset{
			VideoStatus:   domain.VideoNone,
			VideoLocation: domain.LocationNone,
		},
	}

	for _, f := range domain.ChecklistFields {
		answer := req.Checklist[f]
		if answer == "" {
			answer = "No"
		}
		insp.Checklist[f] = answer
	}

	insp.ArrivalFuelLevel = arrivalPercent("arrival_fuel_level", req.ArrivalLevels["arrival_fuel_level"])
	insp.ArrivalOilLevel = arrivalPercent("arrival_oil_level", req.ArrivalLevels["arrival_oil_level"])
	insp.ArrivalWiperFluidLevel = arrivalPercent("arrival_wiper_fluid_level", req.ArrivalLevels["arrival_wiper_fluid_level"])
	insp.ArrivalPowerSteeringLevel = arrivalPercent("arrival_power_steering_level", req.ArrivalLevels["arrival_power_steering_level"])

	insp.TireFL = req.TireCodes["tire_fl"]
	insp.TireFR = req.TireCodes["tire_fr"]
	insp.TireRL = req.TireCodes["tire_rl"]
	insp.TireRR = req.TireCodes["tire_rr"]
	insp.TireSpare = req.TireCodes["tire_spare"]

	if video != nil {
		asset, err := u.video.Ingest(ctx, video, videoName, req.VanNumber, req.Date, req.InspectorID, req.EventName)
		if err != nil {
			if errors.Is(err, domain.ErrBadExtension) {
				// a rejected video leaves no trace; the record is still stored
				logger.Log.Warn("video rejected by extension allow-list",
					zap.String("name", videoName))
			} else {
				return nil, err
			}
		} else {
			insp.Video = *asset
		}
	}

	id, err := u.repo.Insert(ctx, insp)
	if err != nil {
		return nil, err
	}

	if insp.Video.VideoStatus == domain.VideoUploaded {
		u.video.StartBackgroundTranscode(id, insp.Video.VideoFilename, insp.EventName, insp.VanNumber)
	}
	return insp, nil
}

func (u *inspectionUseCase) GetByID(ctx context.Context, id string) (*domain.Inspection, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *inspectionUseCase) List(ctx context.Context, q domain.ListInspectionsQuery) (*domain.InspectionPage, error) {
	return u.repo.List(ctx, q)
}

func (u *inspectionUseCase) ListByVan(ctx context.Context, vanNumber string) ([]domain.Inspection, error) {
	return u.repo.ListByVan(ctx, vanNumber)
}

func (u *inspectionUseCase) COVSummaries(ctx context.Context) ([]domain.COVSummary, error) {
	return u.repo.COVSummaries(ctx)
}

func (u *inspectionUseCase) MissingVideos(ctx context.Context) ([]domain.Inspection, error) {
	return u.repo.MissingVideos(ctx)
}

func (u *inspectionUseCase) AttachVideo(ctx context.Context, vanNumber, inspectorID, date string, video io.Reader, videoName string) (*domain.VideoAsset, error) {
	asset, err := u.video.Ingest(ctx, video, videoName, vanNumber, date, inspectorID, "")
	if err != nil {
		return nil, err
	}

	id, err := u.repo.AttachVideo(ctx, vanNumber, inspectorID, asset.VideoFilename)
	if err != nil {
		return nil, err
	}

	if asset.VideoStatus == domain.VideoUploaded {
		u.video.StartBackgroundTranscode(id, asset.VideoFilename, "", vanNumber)
	}
	return asset, nil
}

func (u *inspectionUseCase) Delete(ctx context.Context, id, actorCAPID string) error {
	insp, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if insp.EventName != "" {
		event, err := u.events.GetByName(ctx, insp.EventName)
		if err == nil && event.IsLocked {
			return domain.ErrEventLocked
		}
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}

	u.activity.Record(ctx, domain.ActivityInspectionDeleted, actorCAPID, map[string]interface{}{
		"inspection_id": id,
		"van_number":    insp.VanNumber,
		"inspector_id":  insp.InspectorID,
		"event_name":    insp.EventName,
	})
	return nil
}

func (u *inspectionUseCase) Stats(ctx context.Context) (*domain.AdminStats, error) {
	return u.repo.Stats(ctx)
}

// csvHeader is the export column order: header fields, checklist, arrival
// levels, tire codes, video lifecycle fields.
var csvHeader = buildCSVHeader()

func buildCSVHeader() []string {
	header := []string{
		"date", "inspector_id", "van_number", "odometer_in", "license_plate",
		"inspection_sticker", "event_name", "comments",
		"engine_oil", "transmission_fluid", "wiper_fluid",
	}
	header = append(header, domain.ChecklistFields...)
	header = append(header, domain.ArrivalFields...)
	header = append(header, domain.TireFields...)
	header = append(header,
		"video_filename", "video_status", "video_location",
		"converted_video_filename", "storage_mode", "created_at")
	return header
}

func (u *inspectionUseCase) ExportCSV(ctx context.Context, w io.Writer) error {
	inspections, err := u.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := range inspections {
		insp := &inspections[i]
		row := []string{
			insp.Date, insp.InspectorID, insp.VanNumber, insp.OdometerIn,
			insp.LicensePlate, insp.InspectionSticker, insp.EventName, insp.Comments,
			insp.EngineOil, insp.TransmissionFluid, insp.WiperFluid,
		}
		for _, f := range domain.ChecklistFields {
			row = append(row, insp.Checklist[f])
		}
		row = append(row,
			insp.ArrivalFuelLevel, insp.ArrivalOilLevel,
			insp.ArrivalWiperFluidLevel, insp.ArrivalPowerSteeringLevel,
			insp.TireFL, insp.TireFR, insp.TireRL, insp.TireRR, insp.TireSpare,
			insp.Video.VideoFilename, string(insp.Video.VideoStatus),
			string(insp.Video.VideoLocation), insp.Video.ConvertedVideoFilename,
			insp.Video.StorageMode, insp.CreatedAt.Format("2006-01-02 15:04:05"),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
