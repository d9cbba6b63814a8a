package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChecklistFields is the fixed checklist, stored flat on the document with
// "Yes"/"No" values.
var ChecklistFields = []string{
	"body", "branding", "tire_press", "inspection", "registration",
	"inspection_card", "van_book", "form_132", "shell_card",
	"oil_level", "antifreeze_level", "power_steering", "battery",
	"horn", "backup_lights", "backup_camera", "backup_alarm",
	"head_lights", "brake_lights", "turn_signals", "windshield",
	"hazard_lights",
}

// ArrivalFields are slider readings converted to percentage strings at
// intake: fuel has 8 increments, the rest 4.
var ArrivalFields = []string{
	"arrival_fuel_level",
	"arrival_oil_level",
	"arrival_wiper_fluid_level",
	"arrival_power_steering_level",
}

// TireFields are the tire date-code inputs.
var TireFields = []string{"tire_fl", "tire_fr", "tire_rl", "tire_rr", "tire_spare"}

// Inspection is one submitted COV inspection document.
type Inspection struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"inspection_id"`

	Date              string `bson:"date" json:"date"`
	InspectorID       string `bson:"inspector_id" json:"inspector_id"`
	VanNumber         string `bson:"van_number" json:"van_number"`
	OdometerIn        string `bson:"odometer_in" json:"odometer_in"`
	LicensePlate      string `bson:"license_plate" json:"license_plate"`
	InspectionSticker string `bson:"inspection_sticker" json:"inspection_sticker"`
	Comments          string `bson:"comments" json:"comments"`
	EngineOil         string `bson:"engine_oil" json:"engine_oil"`
	TransmissionFluid string `bson:"transmission_fluid" json:"transmission_fluid"`
	WiperFluid        string `bson:"wiper_fluid" json:"wiper_fluid"`
	EventName         string `bson:"event_name" json:"event_name"`
	VINDisplay        string `bson:"vin_display_hidden" json:"vin_display_hidden"`
	VINConfirmed      string `bson:"vin_confirmed,omitempty" json:"vin_confirmed,omitempty"`

	ArrivalFuelLevel          string `bson:"arrival_fuel_level" json:"arrival_fuel_level"`
	ArrivalOilLevel           string `bson:"arrival_oil_level" json:"arrival_oil_level"`
	ArrivalWiperFluidLevel    string `bson:"arrival_wiper_fluid_level" json:"arrival_wiper_fluid_level"`
	ArrivalPowerSteeringLevel string `bson:"arrival_power_steering_level" json:"arrival_power_steering_level"`

	TireFL    string `bson:"tire_fl" json:"tire_fl"`
	TireFR    string `bson:"tire_fr" json:"tire_fr"`
	TireRL    string `bson:"tire_rl" json:"tire_rl"`
	TireRR    string `bson:"tire_rr" json:"tire_rr"`
	TireSpare string `bson:"tire_spare" json:"tire_spare"`

	Video VideoAsset `bson:",inline" json:"video"`

	// lock mirror fields, written by event lock/unlock over every
	// inspection of the event so legacy readers see the state inline
	EventLocked   bool   `bson:"event_locked,omitempty" json:"event_locked,omitempty"`
	EventLockedBy string `bson:"event_locked_by,omitempty" json:"event_locked_by,omitempty"`
	EventLockedAt string `bson:"event_locked_at,omitempty" json:"event_locked_at,omitempty"`

	// flat checklist answers and any legacy extras
	Checklist map[string]string `bson:",inline" json:"checklist,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SubmitInspectionReq is the parsed multipart form of POST /upload.
type SubmitInspectionReq struct {
	Date              string
	InspectorID       string
	VanNumber         string
	OdometerIn        string
	LicensePlate      string
	InspectionSticker string
	Comments          string
	EngineOil         string
	TransmissionFluid string
	WiperFluid        string
	EventName         string
	VINDisplay        string
	VINConfirmed      string
	Checklist         map[string]string
	ArrivalLevels     map[string]string // raw increments, converted at intake
	TireCodes         map[string]string
}

// ListInspectionsQuery is the paging/sorting/filter envelope of the
// listing endpoints.
type ListInspectionsQuery struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string // asc|desc
	EventName string
}

// InspectionPage is one page of listing results.
type InspectionPage struct {
	Inspections []Inspection `json:"inspections"`
	Total       int64        `json:"total"`
	Page        int          `json:"page"`
	Pages       int          `json:"pages"`
	PerPage     int          `json:"per_page"`
}

// COVSummary is the per-vehicle aggregation for GET /api/covs.
type COVSummary struct {
	VanNumber       string   `bson:"_id" json:"van_number"`
	InspectionCount int64    `bson:"inspection_count" json:"inspection_count"`
	Events          []string `bson:"events" json:"events"`
	Inspectors      []string `bson:"inspectors" json:"inspectors"`
	LastInspection  time.Time `bson:"last_inspection" json:"last_inspection"`
}

// AdminStats is the aggregate counters block for the admin dashboard.
type AdminStats struct {
	TotalInspections int64 `json:"total_inspections"`
	TotalVans        int64 `json:"total_vans"`
	TotalEvents      int64 `json:"total_events"`
	TotalInspectors  int64 `json:"total_inspectors"`
	VideosWithIssues int64 `json:"videos_with_issues"`
}
