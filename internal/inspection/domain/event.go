package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a named operation inspections happen under.
type Event struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	CanonicalName string             `bson:"canonical_name" json:"canonical_name"`
	CreatedBy     string             `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	IsLocked      bool               `bson:"is_locked" json:"is_locked"`
	LockedBy      string             `bson:"locked_by,omitempty" json:"locked_by,omitempty"`
	LockedAt      string             `bson:"locked_at,omitempty" json:"locked_at,omitempty"`
}

// CanonicalEventName lowercases and space-normalizes a name for duplicate
// detection.
func CanonicalEventName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Activity types written to the activity log.
const (
	ActivityInspectionDeleted = "inspection_deleted"
	ActivityEventLocked       = "event_locked"
	ActivityEventUnlocked     = "event_unlocked"
	ActivityEventsMerged      = "events_merged"
	ActivityEventDeleted      = "event_deleted"
)

// Activity is one audit entry.
type Activity struct {
	ID        string                 `bson:"activity_id" json:"activity_id"`
	Type      string                 `bson:"type" json:"type"`
	ActorID   string                 `bson:"actor_capid" json:"actor_capid"`
	ActorName string                 `bson:"actor_name" json:"actor_name"`
	Details   map[string]interface{} `bson:"details" json:"details"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}

// CreateEventReq is the body of POST /events.
type CreateEventReq struct {
	Name        string `json:"event_name"`
	CreatedBy   string `json:"created_by"`
	ForceCreate bool   `json:"force_create"`
}

// CreateEventRes reports creation or a near-duplicate warning.
type CreateEventRes struct {
	Status      string `json:"status"` // success|warning
	Message     string `json:"message,omitempty"`
	SimilarName string `json:"similar_event,omitempty"`
	Event       *Event `json:"event,omitempty"`
}

// EventLockStatus is the response of GET /event_lock_status.
type EventLockStatus struct {
	EventName string `json:"event_name"`
	IsLocked  bool   `json:"is_locked"`
	LockedBy  string `json:"locked_by,omitempty"`
	LockedAt  string `json:"locked_at,omitempty"`
}
