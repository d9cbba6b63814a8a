package repository

import (
	"context"

	"cov_inspection_service/internal/inspection/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepo definition audit log store
type ActivityRepo interface {
	Insert(ctx context.Context, activity *domain.Activity) error
	Recent(ctx context.Context, limit int64) ([]domain.Activity, error)
	ListAll(ctx context.Context) ([]domain.Activity, error)
}

type activityRepo struct {
	coll *mongo.Collection
}

// NewActivityRepo create an ActivityRepo over the activity_log collection
func NewActivityRepo(db *mongo.Database) ActivityRepo {
	return &activityRepo{coll: db.Collection("activity_log")}
}

func (r *activityRepo) Insert(ctx context.Context, activity *domain.Activity) error {
	_, err := r.coll.InsertOne(ctx, activity)
	return err
}

func (r *activityRepo) Recent(ctx context.Context, limit int64) ([]domain.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	activities := []domain.Activity{}
	if err := cur.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) ListAll(ctx context.Context) ([]domain.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	activities := []domain.Activity{}
	if err := cur.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
