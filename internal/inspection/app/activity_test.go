package app

import (
	"context"
	"errors"
	"testing"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/roster"

	"github.com/stretchr/testify/mock"
)

func TestRecordResolvesActorName(t *testing.T) {
	repo := new(MockActivityRepo)
	publisher := new(MockAuditPublisher)
	directory := emptyDirectory()
	directory.members["12345"] = &roster.MemberInfo{Rank: "Capt", FirstName: "Jane", LastName: "Smith"}

	repo.On("Insert", mock.Anything, mock.MatchedBy(func(a *domain.Activity) bool {
		return a.Type == domain.ActivityEventLocked &&
			a.ActorName == "Capt Jane Smith (12345)" &&
			a.ID != ""
	})).Return(nil)
	publisher.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

	r := NewActivityRecorder(repo, directory, publisher)
	r.Record(context.Background(), domain.ActivityEventLocked, "12345", map[string]interface{}{"event_name": "Encampment"})

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRecordSurvivesBrokenSinks(t *testing.T) {
	repo := new(MockActivityRepo)
	publisher := new(MockAuditPublisher)

	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))
	publisher.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	r := NewActivityRecorder(repo, emptyDirectory(), publisher)
	// both sinks failing must not panic or propagate
	r.Record(context.Background(), domain.ActivityInspectionDeleted, "99999", nil)

	repo.AssertExpectations(t)
}

func TestRecordWithoutPublisher(t *testing.T) {
	repo := new(MockActivityRepo)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(a *domain.Activity) bool {
		return a.ActorName == "CAPID 77777"
	})).Return(nil)

	r := NewActivityRecorder(repo, emptyDirectory(), nil)
	r.Record(context.Background(), domain.ActivityEventUnlocked, "77777", nil)

	repo.AssertExpectations(t)
}
