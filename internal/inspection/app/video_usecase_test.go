package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/storage"
	"cov_inspection_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Initialize("app-test", "")
	os.Exit(m.Run())
}

func newLocalStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestIngestBothModeRemoteFailure(t *testing.T) {
	local, _ := newLocalStore(t)
	remote := new(MockRemote)
	transcoder := new(MockTranscoder)
	repo := new(MockInspectionRepo)

	transcoder.On("ExtractThumbnail", "V1_08-15-2024_12345.mov").Return(true)
	remote.On("Put", mock.Anything, mock.Anything, "V1_08-15-2024_12345.mov", "Encampment", "V1").
		Return("", errors.New("remote upload failed: connection refused"))

	u := NewVideoUseCase(repo, local, remote, transcoder, ModeBoth, []string{"mov", "mp4"}, t.TempDir())

	asset, err := u.Ingest(context.Background(), strings.NewReader("bytes"), "clip.mov",
		"V1", "08/15/2024", "12345", "Encampment")
	require.NoError(t, err)

	// the local write succeeded, so the upload as a whole succeeded; the
	// remote failure is recorded, not claimed
	assert.Equal(t, "V1_08-15-2024_12345.mov", asset.VideoFilename)
	assert.Equal(t, domain.LocationLocal, asset.VideoLocation)
	assert.Equal(t, domain.VideoUploaded, asset.VideoStatus)
	assert.Contains(t, asset.RemoteError, "connection refused")
	assert.Empty(t, asset.RemoteObjectID)
	assert.True(t, local.Exists("V1_08-15-2024_12345.mov"))
}

func TestIngestAllBackendsFail(t *testing.T) {
	local := new(MockLocal)
	remote := new(MockRemote)
	transcoder := new(MockTranscoder)
	repo := new(MockInspectionRepo)

	local.On("Save", mock.Anything, "V1_08-15-2024_12345.mov").Return(errors.New("disk full"))
	local.On("Exists", "V1_08-15-2024_12345.mov").Return(false)

	u := NewVideoUseCase(repo, local, remote, transcoder, ModeBoth, []string{"mov"}, t.TempDir())

	asset, err := u.Ingest(context.Background(), strings.NewReader("bytes"), "clip.mov",
		"V1", "08/15/2024", "12345", "")
	require.NoError(t, err)

	assert.Equal(t, domain.LocationNone, asset.VideoLocation)
	assert.Equal(t, domain.VideoFailed, asset.VideoStatus)
	remote.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	transcoder.AssertNotCalled(t, "ExtractThumbnail", mock.Anything)
}

func TestIngestRejectsExtensionBeforeAnyWrite(t *testing.T) {
	local := new(MockLocal)
	u := NewVideoUseCase(new(MockInspectionRepo), local, new(MockRemote),
		new(MockTranscoder), ModeLocal, []string{"mp4", "mov"}, t.TempDir())

	_, err := u.Ingest(context.Background(), strings.NewReader("x"), "malware.exe",
		"V1", "08/15/2024", "12345", "")
	assert.True(t, errors.Is(err, domain.ErrBadExtension))
	local.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngestRemoteOnlyCleansStaging(t *testing.T) {
	local, _ := newLocalStore(t)
	remote := new(MockRemote)
	transcoder := new(MockTranscoder)

	remote.On("Put", mock.Anything, mock.Anything, "V1_08-15-2024_12345.mov", "", "V1").
		Return("videos/COV_V1/V1_08-15-2024_12345.mov", nil)

	u := NewVideoUseCase(new(MockInspectionRepo), local, remote, transcoder,
		ModeRemote, []string{"mov"}, t.TempDir())

	asset, err := u.Ingest(context.Background(), strings.NewReader("bytes"), "clip.mov",
		"V1", "08/15/2024", "12345", "")
	require.NoError(t, err)

	assert.Equal(t, domain.LocationRemote, asset.VideoLocation)
	assert.Equal(t, "videos/COV_V1/V1_08-15-2024_12345.mov", asset.RemoteObjectID)
	assert.False(t, local.Exists("V1_08-15-2024_12345.mov"), "staging copy removed")
	transcoder.AssertNotCalled(t, "ExtractThumbnail", mock.Anything)
}

func TestProcessVideoSuccess(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)
	transcoder := new(MockTranscoder)

	repo.On("SetVideoFields", mock.Anything, "id1", map[string]interface{}{
		"video_status": domain.VideoProcessing,
	}).Return(nil)
	transcoder.On("TranscodeToMP4", "V1_08-15-2024_12345.mov").Return("V1_08-15-2024_12345.mp4", nil)
	repo.On("SetVideoFields", mock.Anything, "id1", map[string]interface{}{
		"converted_video_filename": "V1_08-15-2024_12345.mp4",
		"converted_video_location": domain.LocationLocal,
		"video_status":             domain.VideoReady,
	}).Return(nil)

	u := NewVideoUseCase(repo, local, new(MockRemote), transcoder, ModeLocal, []string{"mov"}, t.TempDir())
	u.ProcessVideo("id1", "V1_08-15-2024_12345.mov", "", "V1")

	repo.AssertExpectations(t)
}

func TestProcessVideoFailureIsBestEffort(t *testing.T) {
	repo := new(MockInspectionRepo)
	transcoder := new(MockTranscoder)

	repo.On("SetVideoFields", mock.Anything, "id1", map[string]interface{}{
		"video_status": domain.VideoProcessing,
	}).Return(nil)
	transcoder.On("TranscodeToMP4", "broken.mov").Return("", errors.New("transcode failed"))
	// even the failed-status write failing must not panic the worker
	repo.On("SetVideoFields", mock.Anything, "id1", map[string]interface{}{
		"video_status": domain.VideoFailed,
	}).Return(errors.New("db down"))

	local, _ := newLocalStore(t)
	u := NewVideoUseCase(repo, local, new(MockRemote), transcoder, ModeLocal, []string{"mov"}, t.TempDir())
	u.ProcessVideo("id1", "broken.mov", "", "V1")

	repo.AssertExpectations(t)
}

func TestReplaceArchivesAndResets(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)
	transcoder := new(MockTranscoder)

	require.NoError(t, local.Save(strings.NewReader("old original"), "V1_08-15-2024_12345.mov"))
	require.NoError(t, local.Save(strings.NewReader("old converted"), "V1_08-15-2024_12345.mp4"))

	repo.On("GetByID", mock.Anything, "id1").Return(&domain.Inspection{
		VanNumber: "V1",
		EventName: "Encampment",
		Video:     domain.VideoAsset{VideoFilename: "V1_08-15-2024_12345.mov"},
	}, nil)
	transcoder.On("ExtractThumbnail", "V1_08-15-2024_12345.mov").Return(true)
	repo.On("SetVideoFields", mock.Anything, "id1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		return fields["video_status"] == domain.VideoUploaded &&
			fields["video_filename"] == "V1_08-15-2024_12345.mov" &&
			fields["video_replaced_by"] == "67890" &&
			fields["replaced_video_filename"] == "V1_08-15-2024_12345_67890_REPLACED.mov"
	})).Return(nil)
	// background transcode kicked off by Replace runs concurrently
	repo.On("SetVideoFields", mock.Anything, "id1", mock.Anything).Return(nil).Maybe()
	transcoder.On("TranscodeToMP4", "V1_08-15-2024_12345.mov").Return("V1_08-15-2024_12345.mp4", nil).Maybe()

	u := NewVideoUseCase(repo, local, new(MockRemote), transcoder, ModeLocal, []string{"mov", "mp4"}, t.TempDir())

	res, err := u.Replace(context.Background(), "id1", "67890",
		strings.NewReader("new bytes"), "replacement.mov")
	require.NoError(t, err)

	// the primary filename survives the replacement
	assert.Equal(t, "V1_08-15-2024_12345.mov", res.OriginalFilename)
	assert.Equal(t, "V1_08-15-2024_12345_67890_REPLACED.mov", res.ReplacedFilename)
	assert.Equal(t, domain.VideoUploaded, res.VideoStatus)

	assert.True(t, local.Exists("V1_08-15-2024_12345_67890_REPLACED.mov"))
	assert.True(t, local.Exists("V1_08-15-2024_12345_67890_REPLACED.mp4"))

	f, err := local.Open("V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	defer f.Close()
	content, _ := io.ReadAll(f)
	assert.Equal(t, "new bytes", string(content))
}

func TestReplaceWithoutExistingVideo(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)

	repo.On("GetByID", mock.Anything, "id1").Return(&domain.Inspection{}, nil)

	u := NewVideoUseCase(repo, local, new(MockRemote), new(MockTranscoder), ModeLocal, []string{"mov"}, t.TempDir())
	_, err := u.Replace(context.Background(), "id1", "67890", strings.NewReader("x"), "a.mov")
	assert.True(t, errors.Is(err, domain.ErrNoVideo))
}

func TestResolvePrefersConvertedSibling(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)

	require.NoError(t, local.Save(strings.NewReader("original"), "V1_08-15-2024_12345.mov"))
	require.NoError(t, local.Save(strings.NewReader("converted"), "V1_08-15-2024_12345.mp4"))

	repo.On("GetByVideoFilename", mock.Anything, "V1_08-15-2024_12345.mov").Return(&domain.Inspection{
		Video: domain.VideoAsset{
			VideoFilename: "V1_08-15-2024_12345.mov",
			VideoLocation: domain.LocationLocal,
		},
	}, nil)

	u := NewVideoUseCase(repo, local, new(MockRemote), new(MockTranscoder), ModeLocal, []string{"mov"}, t.TempDir())

	resolved, err := u.Resolve(context.Background(), "V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	defer resolved.Content.Close()

	assert.Equal(t, "V1_08-15-2024_12345.mp4", resolved.Filename)
	content, _ := io.ReadAll(resolved.Content)
	assert.Equal(t, "converted", string(content))
}

func TestResolveFallsBackToOriginalAfterFailedTranscode(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)

	require.NoError(t, local.Save(strings.NewReader("original"), "V1_08-15-2024_12345.mov"))

	repo.On("GetByVideoFilename", mock.Anything, "V1_08-15-2024_12345.mov").Return(&domain.Inspection{
		Video: domain.VideoAsset{
			VideoFilename: "V1_08-15-2024_12345.mov",
			VideoLocation: domain.LocationLocal,
			VideoStatus:   domain.VideoFailed,
		},
	}, nil)

	u := NewVideoUseCase(repo, local, new(MockRemote), new(MockTranscoder), ModeLocal, []string{"mov"}, t.TempDir())

	resolved, err := u.Resolve(context.Background(), "V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	defer resolved.Content.Close()
	assert.Equal(t, "V1_08-15-2024_12345.mov", resolved.Filename)
}

func TestResolveLegacyRecordProbesDisk(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)

	require.NoError(t, local.Save(strings.NewReader("converted"), "old.mp4"))
	repo.On("GetByVideoFilename", mock.Anything, "old.avi").Return(nil, domain.ErrInspectionNotFound)

	u := NewVideoUseCase(repo, local, new(MockRemote), new(MockTranscoder), ModeLocal, []string{"avi"}, t.TempDir())

	resolved, err := u.Resolve(context.Background(), "old.avi")
	require.NoError(t, err)
	defer resolved.Content.Close()
	assert.Equal(t, "old.mp4", resolved.Filename)
}

func TestResolveRemoteFallback(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)
	remote := new(MockRemote)

	repo.On("GetByVideoFilename", mock.Anything, "V1_08-15-2024_12345.mov").Return(&domain.Inspection{
		Video: domain.VideoAsset{
			VideoFilename: "V1_08-15-2024_12345.mov",
			VideoLocation: domain.LocationBoth,
		},
	}, nil)
	remote.On("Get", mock.Anything, "V1_08-15-2024_12345.mov").
		Return(io.NopCloser(strings.NewReader("remote bytes")), nil)

	u := NewVideoUseCase(repo, local, remote, new(MockTranscoder), ModeBoth, []string{"mov"}, t.TempDir())

	resolved, err := u.Resolve(context.Background(), "V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	defer resolved.Content.Close()

	assert.Equal(t, domain.LocationRemote, resolved.Source)
	content, _ := io.ReadAll(resolved.Content)
	assert.Equal(t, "remote bytes", string(content))
}

func TestResolveTotalMissIsNotFound(t *testing.T) {
	local, _ := newLocalStore(t)
	repo := new(MockInspectionRepo)

	repo.On("GetByVideoFilename", mock.Anything, "gone.mov").Return(nil, domain.ErrInspectionNotFound)

	u := NewVideoUseCase(repo, local, new(MockRemote), new(MockTranscoder), ModeLocal, []string{"mov"}, t.TempDir())

	_, err := u.Resolve(context.Background(), "gone.mov")
	assert.True(t, errors.Is(err, domain.ErrVideoNotFound))
}

// fileWritingTranscoder simulates ffmpeg by writing the converted sibling.
type fileWritingTranscoder struct {
	dir string
}

func (f *fileWritingTranscoder) ExtractThumbnail(videoFilename string) bool { return true }

func (f *fileWritingTranscoder) TranscodeToMP4(inputFilename string) (string, error) {
	out := domain.ConvertedFilename(inputFilename)
	if err := os.WriteFile(filepath.Join(f.dir, out), []byte("mp4 bytes"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func TestLocalModeLifecycle(t *testing.T) {
	local, dir := newLocalStore(t)
	repo := new(MockInspectionRepo)

	repo.On("SetVideoFields", mock.Anything, "id1", map[string]interface{}{
		"video_status": domain.VideoProcessing,
	}).Return(nil)
	repo.On("SetVideoFields", mock.Anything, "id1", map[string]interface{}{
		"converted_video_filename": "V1_08-15-2024_12345.mp4",
		"converted_video_location": domain.LocationLocal,
		"video_status":             domain.VideoReady,
	}).Return(nil)

	u := NewVideoUseCase(repo, local, new(MockRemote), &fileWritingTranscoder{dir: dir},
		ModeLocal, []string{"mov"}, t.TempDir())

	asset, err := u.Ingest(context.Background(), strings.NewReader("raw"), "clip.mov",
		"V1", "08/15/2024", "12345", "")
	require.NoError(t, err)
	assert.Equal(t, "V1_08-15-2024_12345.mov", asset.VideoFilename)
	assert.Equal(t, domain.VideoUploaded, asset.VideoStatus)

	u.ProcessVideo("id1", asset.VideoFilename, "", "V1")
	repo.AssertExpectations(t)

	repo.On("GetByVideoFilename", mock.Anything, "V1_08-15-2024_12345.mov").Return(&domain.Inspection{
		Video: domain.VideoAsset{
			VideoFilename:          "V1_08-15-2024_12345.mov",
			VideoLocation:          domain.LocationLocal,
			VideoStatus:            domain.VideoReady,
			ConvertedVideoFilename: "V1_08-15-2024_12345.mp4",
		},
	}, nil)

	resolved, err := u.Resolve(context.Background(), "V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	defer resolved.Content.Close()
	assert.Equal(t, "V1_08-15-2024_12345.mp4", resolved.Filename)
}
