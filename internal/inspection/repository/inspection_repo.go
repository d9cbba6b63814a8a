package repository

import (
	"context"
	"time"

	"cov_inspection_service/internal/inspection/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InspectionRepo definition inspection record store
type InspectionRepo interface {
	Insert(ctx context.Context, insp *domain.Inspection) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Inspection, error)
	GetByVideoFilename(ctx context.Context, filename string) (*domain.Inspection, error)
	List(ctx context.Context, q domain.ListInspectionsQuery) (*domain.InspectionPage, error)
	ListByVan(ctx context.Context, vanNumber string) ([]domain.Inspection, error)
	ListAll(ctx context.Context) ([]domain.Inspection, error)
	MissingVideos(ctx context.Context) ([]domain.Inspection, error)
	// AttachVideo claims the first record for (van, inspector) that has no
	// video yet and returns its id.
	AttachVideo(ctx context.Context, vanNumber, inspectorID, filename string) (string, error)
	// SetVideoFields writes individual video fields with $set so concurrent
	// writers on disjoint fields do not clobber each other.
	SetVideoFields(ctx context.Context, id string, fields map[string]interface{}) error
	COVSummaries(ctx context.Context) ([]domain.COVSummary, error)
	Stats(ctx context.Context) (*domain.AdminStats, error)
	CountByEvent(ctx context.Context, eventName string) (int64, error)
	UpdateManyByEvent(ctx context.Context, eventName string, fields map[string]interface{}) (int64, error)
	RenameEvent(ctx context.Context, fromEvent, toEvent string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type inspectionRepo struct {
	coll *mongo.Collection
}

// NewInspectionRepo create an InspectionRepo over the inspections collection
func NewInspectionRepo(db *mongo.Database) InspectionRepo {
	return &inspectionRepo{coll: db.Collection("inspections")}
}

// noVideoFilter matches records whose video slot is empty.
var noVideoFilter = bson.M{"video_filename": bson.M{"$in": bson.A{"", nil}}}

func (r *inspectionRepo) Insert(ctx context.Context, insp *domain.Inspection) (string, error) {
	now := time.Now()
	insp.CreatedAt = now
	insp.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, insp)
	if err != nil {
		return "", err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	insp.ID = oid
	return oid.Hex(), nil
}

func (r *inspectionRepo) GetByID(ctx context.Context, id string) (*domain.Inspection, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInspectionNotFound
	}

	var insp domain.Inspection
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&insp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInspectionNotFound
		}
		return nil, err
	}
	return &insp, nil
}

func (r *inspectionRepo) GetByVideoFilename(ctx context.Context, filename string) (*domain.Inspection, error) {
	var insp domain.Inspection
	err := r.coll.FindOne(ctx, bson.M{"video_filename": filename}).Decode(&insp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInspectionNotFound
		}
		return nil, err
	}
	return &insp, nil
}

func (r *inspectionRepo) List(ctx context.Context, q domain.ListInspectionsQuery) (*domain.InspectionPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 10
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	direction := -1
	if q.SortOrder == "asc" {
		direction = 1
	}

	filter := bson.M{}
	if q.EventName != "" {
		filter["event_name"] = q.EventName
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: direction}}).
		SetSkip(int64((q.Page - 1) * q.PerPage)).
		SetLimit(int64(q.PerPage))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	inspections := []domain.Inspection{}
	if err := cur.All(ctx, &inspections); err != nil {
		return nil, err
	}

	pages := int(total) / q.PerPage
	if int(total)%q.PerPage != 0 {
		pages++
	}

	return &domain.InspectionPage{
		Inspections: inspections,
		Total:       total,
		Page:        q.Page,
		Pages:       pages,
		PerPage:     q.PerPage,
	}, nil
}

func (r *inspectionRepo) ListByVan(ctx context.Context, vanNumber string) ([]domain.Inspection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"van_number": vanNumber}, opts)
	if err != nil {
		return nil, err
	}
	var inspections []domain.Inspection
	if err := cur.All(ctx, &inspections); err != nil {
		return nil, err
	}
	return inspections, nil
}

func (r *inspectionRepo) ListAll(ctx context.Context) ([]domain.Inspection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var inspections []domain.Inspection
	if err := cur.All(ctx, &inspections); err != nil {
		return nil, err
	}
	return inspections, nil
}

func (r *inspectionRepo) MissingVideos(ctx context.Context) ([]domain.Inspection, error) {
	opts := options.Find().SetProjection(bson.M{"van_number": 1, "inspector_id": 1})
	cur, err := r.coll.Find(ctx, noVideoFilter, opts)
	if err != nil {
		return nil, err
	}
	var inspections []domain.Inspection
	if err := cur.All(ctx, &inspections); err != nil {
		return nil, err
	}
	return inspections, nil
}

func (r *inspectionRepo) AttachVideo(ctx context.Context, vanNumber, inspectorID, filename string) (string, error) {
	filter := bson.M{"van_number": vanNumber, "inspector_id": inspectorID}
	for k, v := range noVideoFilter {
		filter[k] = v
	}

	update := bson.M{"$set": bson.M{
		"video_filename": filename,
		"video_status":   domain.VideoUploaded,
		"updated_at":     time.Now(),
	}}

	var updated domain.Inspection
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", domain.ErrInspectionNotFound
		}
		return "", err
	}
	return updated.ID.Hex(), nil
}

func (r *inspectionRepo) SetVideoFields(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInspectionNotFound
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	return err
}

func (r *inspectionRepo) COVSummaries(ctx context.Context) ([]domain.COVSummary, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":              "$van_number",
			"inspection_count": bson.M{"$sum": 1},
			"events":           bson.M{"$addToSet": "$event_name"},
			"inspectors":       bson.M{"$addToSet": "$inspector_id"},
			"last_inspection":  bson.M{"$max": "$created_at"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var summaries []domain.COVSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *inspectionRepo) Stats(ctx context.Context) (*domain.AdminStats, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	vans, err := r.coll.Distinct(ctx, "van_number", bson.M{})
	if err != nil {
		return nil, err
	}
	events, err := r.coll.Distinct(ctx, "event_name", bson.M{})
	if err != nil {
		return nil, err
	}
	inspectors, err := r.coll.Distinct(ctx, "inspector_id", bson.M{})
	if err != nil {
		return nil, err
	}

	issues, err := r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"video_status": domain.VideoFailed},
		bson.M{"video_status": bson.M{"$exists": false}},
		bson.M{
			"video_filename":           bson.M{"$exists": true, "$ne": ""},
			"converted_video_filename": bson.M{"$exists": false},
			"video_status":             bson.M{"$ne": domain.VideoReady},
		},
	}})
	if err != nil {
		return nil, err
	}

	return &domain.AdminStats{
		TotalInspections: total,
		TotalVans:        int64(len(vans)),
		TotalEvents:      int64(len(events)),
		TotalInspectors:  int64(len(inspectors)),
		VideosWithIssues: issues,
	}, nil
}

func (r *inspectionRepo) CountByEvent(ctx context.Context, eventName string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"event_name": eventName})
}

func (r *inspectionRepo) UpdateManyByEvent(ctx context.Context, eventName string, fields map[string]interface{}) (int64, error) {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.coll.UpdateMany(ctx, bson.M{"event_name": eventName}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *inspectionRepo) RenameEvent(ctx context.Context, fromEvent, toEvent string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"event_name": fromEvent},
		bson.M{"$set": bson.M{"event_name": toEvent, "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *inspectionRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInspectionNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrInspectionNotFound
	}
	return nil
}
