package repository

import (
	"context"
	"time"

	"cov_inspection_service/internal/inspection/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepo definition event store
type EventRepo interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByName(ctx context.Context, name string) (*domain.Event, error)
	GetByCanonicalName(ctx context.Context, canonical string) (*domain.Event, error)
	ListAll(ctx context.Context) ([]domain.Event, error)
	SetLock(ctx context.Context, name string, locked bool, lockedBy, lockedAt string) error
	Delete(ctx context.Context, name string) error
}

type eventRepo struct {
	coll *mongo.Collection
}

// NewEventRepo create an EventRepo over the events collection
func NewEventRepo(db *mongo.Database) EventRepo {
	return &eventRepo{coll: db.Collection("events")}
}

func (r *eventRepo) Create(ctx context.Context, event *domain.Event) error {
	event.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, event)
	return err
}

func (r *eventRepo) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	var event domain.Event
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&event); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) GetByCanonicalName(ctx context.Context, canonical string) (*domain.Event, error) {
	var event domain.Event
	if err := r.coll.FindOne(ctx, bson.M{"canonical_name": canonical}).Decode(&event); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) ListAll(ctx context.Context) ([]domain.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	events := []domain.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) SetLock(ctx context.Context, name string, locked bool, lockedBy, lockedAt string) error {
	update := bson.M{"$set": bson.M{
		"is_locked": locked,
		"locked_by": lockedBy,
		"locked_at": lockedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"name": name}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, name string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
