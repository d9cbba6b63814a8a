package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/repository"
	"cov_inspection_service/pkg/logger"
	"cov_inspection_service/pkg/roster"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditPublisher is the Kafka writer surface. *kafka.Writer satisfies it.
type AuditPublisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MemberDirectory resolves CAPIDs to display names.
type MemberDirectory interface {
	FindMemberInfo(capid string) *roster.MemberInfo
}

// ActivityRecorder writes audit entries to the activity log and mirrors
// them to the audit topic.
type ActivityRecorder interface {
	Record(ctx context.Context, activityType, actorCAPID string, details map[string]interface{})
}

type activityRecorder struct {
	repo      repository.ActivityRepo
	directory MemberDirectory
	publisher AuditPublisher
}

// NewActivityRecorder create an ActivityRecorder. publisher may be nil when
// no broker is configured.
func NewActivityRecorder(repo repository.ActivityRepo, directory MemberDirectory, publisher AuditPublisher) ActivityRecorder {
	return &activityRecorder{repo: repo, directory: directory, publisher: publisher}
}

// Record stores the entry and publishes it. Both writes are best effort:
// the action that is being audited already happened.
func (r *activityRecorder) Record(ctx context.Context, activityType, actorCAPID string, details map[string]interface{}) {
	activity := &domain.Activity{
		ID:        uuid.NewString(),
		Type:      activityType,
		ActorID:   actorCAPID,
		ActorName: r.resolveName(actorCAPID),
		Details:   details,
		Timestamp: time.Now(),
	}

	if err := r.repo.Insert(ctx, activity); err != nil {
		logger.Log.Error("activity log write failed",
			zap.String("type", activityType), zap.Error(err))
	}

	if r.publisher == nil {
		return
	}
	payload, err := json.Marshal(activity)
	if err != nil {
		return
	}
	if err := r.publisher.WriteMessages(ctx, kafka.Message{
		Key:   []byte(activityType),
		Value: payload,
	}); err != nil {
		logger.Log.Warn("audit topic publish failed",
			zap.String("type", activityType), zap.Error(err))
	}
}

func (r *activityRecorder) resolveName(capid string) string {
	if capid == "" {
		return "Unknown"
	}
	if info := r.directory.FindMemberInfo(capid); info != nil {
		return fmt.Sprintf("%s %s %s (%s)", info.Rank, info.FirstName, info.LastName, capid)
	}
	return "CAPID " + capid
}
