package app

import (
	"context"
	"fmt"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/repository"
	"cov_inspection_service/pkg/textmatch"
)

// duplicateThreshold is the similarity above which event creation warns
// instead of proceeding.
const duplicateThreshold = 0.75

// EventUseCase manages events and their lock lifecycle.
type EventUseCase interface {
	// Create warns on near-duplicate names unless ForceCreate is set; an
	// exact canonical match is always rejected.
	Create(ctx context.Context, req *domain.CreateEventReq) (*domain.CreateEventRes, error)
	List(ctx context.Context) ([]domain.Event, error)
	LockStatus(ctx context.Context, name string) (*domain.EventLockStatus, error)
	Lock(ctx context.Context, name, actorCAPID string) (int64, error)
	Unlock(ctx context.Context, name, actorCAPID string) (int64, error)
	// Merge moves every inspection of source onto target and deletes the
	// source event.
	Merge(ctx context.Context, sourceName, targetName, actorCAPID string) (int64, error)
	// Delete removes an event that has no inspections and is not locked.
	Delete(ctx context.Context, name, actorCAPID string) error
}

type eventUseCase struct {
	events      repository.EventRepo
	inspections repository.InspectionRepo
	activity    ActivityRecorder
	directory   MemberDirectory
}

// NewEventUseCase create an EventUseCase
func NewEventUseCase(events repository.EventRepo,
	inspections repository.InspectionRepo,
	activity ActivityRecorder,
	directory MemberDirectory,
) EventUseCase {
	return &eventUseCase{events: events, inspections: inspections, activity: activity, directory: directory}
}

func (u *eventUseCase) Create(ctx context.Context, req *domain.CreateEventReq) (*domain.CreateEventRes, error) {
	canonical := domain.CanonicalEventName(req.Name)
	if canonical == "" {
		return nil, fmt.Errorf("event name is required")
	}

	if existing, err := u.events.GetByCanonicalName(ctx, canonical); err == nil {
		return &domain.CreateEventRes{
			Status:      "error",
			Message:     fmt.Sprintf("An event with a similar name already exists: %q", existing.Name),
			SimilarName: existing.Name,
		}, domain.ErrEventExists
	}

	if !req.ForceCreate {
		all, err := u.events.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		for i := range all {
			similarity := textmatch.Ratio(canonical, all[i].CanonicalName)
			if similarity > duplicateThreshold {
				return &domain.CreateEventRes{
					Status:      "warning",
					Message:     fmt.Sprintf("An event with a similar name exists: %q. Submit again with force_create to create anyway.", all[i].Name),
					SimilarName: all[i].Name,
				}, nil
			}
		}
	}

	event := &domain.Event{
		Name:          req.Name,
		CanonicalName: canonical,
		CreatedBy:     req.CreatedBy,
	}
	if err := u.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return &domain.CreateEventRes{Status: "success", Event: event}, nil
}

func (u *eventUseCase) List(ctx context.Context) ([]domain.Event, error) {
	return u.events.ListAll(ctx)
}

func (u *eventUseCase) LockStatus(ctx context.Context, name string) (*domain.EventLockStatus, error) {
	event, err := u.events.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &domain.EventLockStatus{
		EventName: event.Name,
		IsLocked:  event.IsLocked,
		LockedBy:  event.LockedBy,
		LockedAt:  event.LockedAt,
	}, nil
}

// Lock marks the event and mirrors the lock onto every inspection so
// legacy readers see it inline.
func (u *eventUseCase) Lock(ctx context.Context, name, actorCAPID string) (int64, error) {
	lockedBy := u.lockerName(actorCAPID)
	lockedAt := time.Now().Format(time.RFC3339)

	if err := u.events.SetLock(ctx, name, true, lockedBy, lockedAt); err != nil {
		return 0, err
	}

	count, err := u.inspections.UpdateManyByEvent(ctx, name, map[string]interface{}{
		"event_locked":    true,
		"event_locked_by": lockedBy,
		"event_locked_at": lockedAt,
	})
	if err != nil {
		return 0, err
	}

	u.activity.Record(ctx, domain.ActivityEventLocked, actorCAPID, map[string]interface{}{
		"event_name":        name,
		"inspections_count": count,
	})
	return count, nil
}

func (u *eventUseCase) Unlock(ctx context.Context, name, actorCAPID string) (int64, error) {
	if err := u.events.SetLock(ctx, name, false, "", ""); err != nil {
		return 0, err
	}

	count, err := u.inspections.UpdateManyByEvent(ctx, name, map[string]interface{}{
		"event_locked":    false,
		"event_locked_by": "",
		"event_locked_at": "",
	})
	if err != nil {
		return 0, err
	}

	u.activity.Record(ctx, domain.ActivityEventUnlocked, actorCAPID, map[string]interface{}{
		"event_name":        name,
		"inspections_count": count,
	})
	return count, nil
}

func (u *eventUseCase) Merge(ctx context.Context, sourceName, targetName, actorCAPID string) (int64, error) {
	source, err := u.events.GetByName(ctx, sourceName)
	if err != nil {
		return 0, err
	}
	if source.IsLocked {
		return 0, domain.ErrEventLocked
	}
	if _, err := u.events.GetByName(ctx, targetName); err != nil {
		return 0, err
	}

	moved, err := u.inspections.RenameEvent(ctx, sourceName, targetName)
	if err != nil {
		return 0, err
	}

	if err := u.events.Delete(ctx, sourceName); err != nil {
		return moved, err
	}

	u.activity.Record(ctx, domain.ActivityEventsMerged, actorCAPID, map[string]interface{}{
		"source_event":      sourceName,
		"target_event":      targetName,
		"inspections_moved": moved,
	})
	return moved, nil
}

func (u *eventUseCase) Delete(ctx context.Context, name, actorCAPID string) error {
	event, err := u.events.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if event.IsLocked {
		return domain.ErrEventLocked
	}

	count, err := u.inspections.CountByEvent(ctx, name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("event %q still has %d inspections", name, count)
	}

	if err := u.events.Delete(ctx, name); err != nil {
		return err
	}

	u.activity.Record(ctx, domain.ActivityEventDeleted, actorCAPID, map[string]interface{}{
		"event_name": name,
	})
	return nil
}

func (u *eventUseCase) lockerName(capid string) string {
	if capid == "" {
		return "Unknown"
	}
	if info := u.directory.FindMemberInfo(capid); info != nil {
		return fmt.Sprintf("%s %s %s (%s)", info.Rank, info.FirstName, info.LastName, capid)
	}
	return "CAPID " + capid
}
