package app

import (
	"context"
	"io"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/database"
	"cov_inspection_service/pkg/roster"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

// MockInspectionRepo mocks repository.InspectionRepo
type MockInspectionRepo struct {
	mock.Mock
}

func (m *MockInspectionRepo) Insert(ctx context.Context, insp *domain.Inspection) (string, error) {
	args := m.Called(ctx, insp)
	return args.String(0), args.Error(1)
}

func (m *MockInspectionRepo) GetByID(ctx context.Context, id string) (*domain.Inspection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inspection), args.Error(1)
}

func (m *MockInspectionRepo) GetByVideoFilename(ctx context.Context, filename string) (*domain.Inspection, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inspection), args.Error(1)
}

func (m *MockInspectionRepo) List(ctx context.Context, q domain.ListInspectionsQuery) (*domain.InspectionPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InspectionPage), args.Error(1)
}

func (m *MockInspectionRepo) ListByVan(ctx context.Context, vanNumber string) ([]domain.Inspection, error) {
	args := m.Called(ctx, vanNumber)
	return args.Get(0).([]domain.Inspection), args.Error(1)
}

func (m *MockInspectionRepo) ListAll(ctx context.Context) ([]domain.Inspection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Inspection), args.Error(1)
}

func (m *MockInspectionRepo) MissingVideos(ctx context.Context) ([]domain.Inspection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Inspection), args.Error(1)
}

func (m *MockInspectionRepo) AttachVideo(ctx context.Context, vanNumber, inspectorID, filename string) (string, error) {
	args := m.Called(ctx, vanNumber, inspectorID, filename)
	return args.String(0), args.Error(1)
}

func (m *MockInspectionRepo) SetVideoFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockInspectionRepo) COVSummaries(ctx context.Context) ([]domain.COVSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.COVSummary), args.Error(1)
}

func (m *MockInspectionRepo) Stats(ctx context.Context) (*domain.AdminStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*domain.AdminStats), args.Error(1)
}

func (m *MockInspectionRepo) CountByEvent(ctx context.Context, eventName string) (int64, error) {
	args := m.Called(ctx, eventName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInspectionRepo) UpdateManyByEvent(ctx context.Context, eventName string, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, eventName, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInspectionRepo) RenameEvent(ctx context.Context, fromEvent, toEvent string) (int64, error) {
	args := m.Called(ctx, fromEvent, toEvent)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInspectionRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventRepo mocks repository.EventRepo
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepo) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepo) GetByCanonicalName(ctx context.Context, canonical string) (*domain.Event, error) {
	args := m.Called(ctx, canonical)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepo) ListAll(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepo) SetLock(ctx context.Context, name string, locked bool, lockedBy, lockedAt string) error {
	args := m.Called(ctx, name, locked, lockedBy, lockedAt)
	return args.Error(0)
}

func (m *MockEventRepo) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockActivityRepo mocks repository.ActivityRepo
type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepo) Recent(ctx context.Context, limit int64) ([]domain.Activity, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityRepo) ListAll(ctx context.Context) ([]domain.Activity, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Activity), args.Error(1)
}

// MockRemote mocks storage.Remote
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Put(ctx context.Context, localPath, filename, event, cov string) (string, error) {
	args := m.Called(ctx, localPath, filename, event, cov)
	return args.String(0), args.Error(1)
}

func (m *MockRemote) Get(ctx context.Context, filename string) (io.ReadCloser, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockLocal mocks storage.Local for placement-failure paths
type MockLocal struct {
	mock.Mock
}

func (m *MockLocal) Save(r io.Reader, filename string) error {
	args := m.Called(r, filename)
	return args.Error(0)
}

func (m *MockLocal) Open(filename string) (io.ReadSeekCloser, error) {
	args := m.Called(filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Error(1)
}

func (m *MockLocal) Exists(filename string) bool {
	args := m.Called(filename)
	return args.Bool(0)
}

func (m *MockLocal) Rename(oldName, newName string) error {
	args := m.Called(oldName, newName)
	return args.Error(0)
}

func (m *MockLocal) Path(filename string) string {
	args := m.Called(filename)
	return args.String(0)
}

// MockTranscoder mocks the ffmpeg adapter
type MockTranscoder struct {
	mock.Mock
}

func (m *MockTranscoder) ExtractThumbnail(videoFilename string) bool {
	args := m.Called(videoFilename)
	return args.Bool(0)
}

func (m *MockTranscoder) TranscodeToMP4(inputFilename string) (string, error) {
	args := m.Called(inputFilename)
	return args.String(0), args.Error(1)
}

// MockVideoUseCase mocks the lifecycle manager for inspection tests
type MockVideoUseCase struct {
	mock.Mock
}

func (m *MockVideoUseCase) Ingest(ctx context.Context, file io.Reader, originalName, vanNumber, date, inspectorID, eventName string) (*domain.VideoAsset, error) {
	args := m.Called(ctx, file, originalName, vanNumber, date, inspectorID, eventName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VideoAsset), args.Error(1)
}

func (m *MockVideoUseCase) StartBackgroundTranscode(inspectionID, filename, eventName, vanNumber string) {
	m.Called(inspectionID, filename, eventName, vanNumber)
}

func (m *MockVideoUseCase) ProcessVideo(inspectionID, filename, eventName, vanNumber string) {
	m.Called(inspectionID, filename, eventName, vanNumber)
}

func (m *MockVideoUseCase) Replace(ctx context.Context, inspectionID, inspectorID string, file io.Reader, originalName string) (*domain.ReplaceVideoRes, error) {
	args := m.Called(ctx, inspectionID, inspectorID, file, originalName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReplaceVideoRes), args.Error(1)
}

func (m *MockVideoUseCase) Resolve(ctx context.Context, filename string) (*domain.ResolvedVideo, error) {
	args := m.Called(ctx, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedVideo), args.Error(1)
}

func (m *MockVideoUseCase) ThumbnailPath(filename string) (string, error) {
	args := m.Called(filename)
	return args.String(0), args.Error(1)
}

// MockActivityRecorder mocks the audit recorder
type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) Record(ctx context.Context, activityType, actorCAPID string, details map[string]interface{}) {
	m.Called(ctx, activityType, actorCAPID, details)
}

// fakeDirectory is a canned roster lookup
type fakeDirectory struct {
	members map[string]*roster.MemberInfo
	admins  map[string]bool
	duties  map[string][]string
}

func (d *fakeDirectory) FindMemberInfo(capid string) *roster.MemberInfo {
	return d.members[capid]
}

func (d *fakeDirectory) IsWingAdmin(capid string, adminDuties []string) bool {
	return d.admins[capid]
}

func (d *fakeDirectory) DutyPositions(capid string) []string {
	return d.duties[capid]
}

// fakeSessions is an in-memory database.RedisRepository[domain.Session]
type fakeSessions struct {
	store map[string]domain.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{store: map[string]domain.Session{}}
}

func (f *fakeSessions) Set(ctx context.Context, key string, value domain.Session, ttl time.Duration) error {
	f.store[key] = value
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, key string) (domain.Session, error) {
	s, ok := f.store[key]
	if !ok {
		return domain.Session{}, database.ErrRedisNil
	}
	return s, nil
}

func (f *fakeSessions) Del(ctx context.Context, key string) error {
	delete(f.store, key)
	return nil
}

func (f *fakeSessions) GetTTL(ctx context.Context, key string) (int, error) {
	return 0, nil
}

func (f *fakeSessions) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

// MockAuditPublisher mocks the Kafka writer
type MockAuditPublisher struct {
	mock.Mock
}

func (m *MockAuditPublisher) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}
