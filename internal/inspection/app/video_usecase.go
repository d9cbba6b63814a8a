package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/internal/inspection/repository"
	"cov_inspection_service/internal/inspection/storage"
	errprocess "cov_inspection_service/pkg/err"
	"cov_inspection_service/pkg/logger"

	"go.uber.org/zap"
)

// Storage modes a deployment can configure. The observed location on a
// record is always derived from confirmed writes, never from the mode.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
	ModeBoth   = "both"
)

// VideoUseCase is the inspection video lifecycle manager: placement,
// background transcode, replacement with audit trail, serve-time
// resolution.
type VideoUseCase interface {
	// Ingest validates and places an upload. It returns the asset block
	// to embed in the inspection record; the caller hands off to
	// StartBackgroundTranscode once the record id is known.
	Ingest(ctx context.Context, file io.Reader, originalName, vanNumber, date, inspectorID, eventName string) (*domain.VideoAsset, error)
	// StartBackgroundTranscode detaches a goroutine owning copies of its
	// inputs. It is never tied to the request lifetime.
	StartBackgroundTranscode(inspectionID, filename, eventName, vanNumber string)
	// ProcessVideo is the synchronous transcode worker behind
	// StartBackgroundTranscode.
	ProcessVideo(inspectionID, filename, eventName, vanNumber string)
	Replace(ctx context.Context, inspectionID, inspectorID string, file io.Reader, originalName string) (*domain.ReplaceVideoRes, error)
	Resolve(ctx context.Context, filename string) (*domain.ResolvedVideo, error)
	ThumbnailPath(filename string) (string, error)
}

type videoUseCase struct {
	repo        repository.InspectionRepo
	local       storage.Local
	remote      storage.Remote
	transcoder  Transcoder
	mode        string
	allowedExts []string
	thumbDir    string
}

// NewVideoUseCase create a VideoUseCase. remote may be nil when the mode
// never places remotely.
func NewVideoUseCase(repo repository.InspectionRepo,
	local storage.Local,
	remote storage.Remote,
	transcoder Transcoder,
	mode string,
	allowedExts []string,
	thumbDir string,
) VideoUseCase {
	return &videoUseCase{
		repo:        repo,
		local:       local,
		remote:      remote,
		transcoder:  transcoder,
		mode:        mode,
		allowedExts: allowedExts,
		thumbDir:    thumbDir,
	}
}

func (u *videoUseCase) usesLocal() bool  { return u.mode == ModeLocal || u.mode == ModeBoth }
func (u *videoUseCase) usesRemote() bool { return u.mode == ModeRemote || u.mode == ModeBoth }

func (u *videoUseCase) Ingest(ctx context.Context, file io.Reader, originalName, vanNumber, date, inspectorID, eventName string) (*domain.VideoAsset, error) {
	if !domain.AllowedFile(originalName, u.allowedExts) {
		return nil, domain.ErrBadExtension
	}

	filename := domain.BuildVideoFilename(vanNumber, date, inspectorID, originalName)
	asset := &domain.VideoAsset{
		VideoFilename: filename,
		StorageMode:   u.mode,
	}

	// bytes always land on disk first; remote-only mode uploads from a
	// staging copy that is removed afterwards
	localOK := false
	if err := u.local.Save(file, filename); err != nil {
		logger.Log.Error("local video save failed",
			zap.String("file", filename), zap.Error(err))
	} else if u.usesLocal() {
		localOK = true
		u.transcoder.ExtractThumbnail(filename)
	}

	remoteOK := false
	if u.usesRemote() && u.local.Exists(filename) {
		objectID, err := u.remote.Put(ctx, u.local.Path(filename), filename, eventName, vanNumber)
		if err != nil {
			asset.RemoteError = err.Error()
		} else {
			asset.RemoteObjectID = objectID
			remoteOK = true
		}
		if u.mode == ModeRemote {
			if err := os.Remove(u.local.Path(filename)); err != nil {
				logger.Log.Warn("staging copy cleanup failed",
					zap.String("file", filename), zap.Error(err))
			}
		}
	}

	asset.VideoLocation = domain.CombineLocations(localOK, remoteOK)
	if asset.VideoLocation == domain.LocationNone {
		asset.VideoStatus = domain.VideoFailed
		logger.Log.Error("video placement failed on every backend",
			zap.String("file", filename))
	} else {
		asset.VideoStatus = domain.VideoUploaded
	}
	return asset, nil
}

func (u *videoUseCase) StartBackgroundTranscode(inspectionID, filename, eventName, vanNumber string) {
	go u.ProcessVideo(inspectionID, filename, eventName, vanNumber)
}

// ProcessVideo transcodes to MP4 and records the outcome. Every DB write on
// the failure path is best effort: losing the status update must not crash
// the worker.
func (u *videoUseCase) ProcessVideo(inspectionID, filename, eventName, vanNumber string) {
	ctx := context.Background()
	logger.Log.Info("background processing started", zap.String("file", filename))

	if err := u.repo.SetVideoFields(ctx, inspectionID, map[string]interface{}{
		"video_status": domain.VideoProcessing,
	}); err != nil {
		logger.Log.Error("status update to processing failed",
			zap.String("file", filename), zap.Error(err))
	}

	converted, err := u.transcoder.TranscodeToMP4(filename)
	if err != nil {
		logger.Log.Error("video processing failed",
			zap.String("file", filename), zap.Error(err))
		if dbErr := u.repo.SetVideoFields(ctx, inspectionID, map[string]interface{}{
			"video_status": domain.VideoFailed,
		}); dbErr != nil {
			logger.Log.Error("failed-status write lost",
				zap.String("file", filename), zap.Error(dbErr))
		}
		return
	}

	fields := map[string]interface{}{
		"converted_video_filename": converted,
		"converted_video_location": domain.LocationLocal,
		"video_status":             domain.VideoReady,
	}

	if u.usesRemote() {
		objectID, err := u.remote.Put(ctx, u.local.Path(converted), converted, eventName, vanNumber)
		if err != nil {
			fields["remote_converted_error"] = err.Error()
		} else {
			fields["remote_converted_object_id"] = objectID
			fields["converted_video_location"] = domain.LocationBoth
		}
	}

	if err := u.repo.SetVideoFields(ctx, inspectionID, fields); err != nil {
		logger.Log.Error("ready-status write lost",
			zap.String("file", filename), zap.Error(err))
		return
	}
	logger.Log.Info("background processing finished",
		zap.String("file", filename), zap.String("converted", converted))
}

func (u *videoUseCase) Replace(ctx context.Context, inspectionID, inspectorID string, file io.Reader, originalName string) (*domain.ReplaceVideoRes, error) {
	if !domain.AllowedFile(originalName, u.allowedExts) {
		return nil, domain.ErrBadExtension
	}

	insp, err := u.repo.GetByID(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	primary := insp.Video.VideoFilename
	if primary == "" {
		return nil, domain.ErrNoVideo
	}

	// archive the superseded bytes by rename; nothing is deleted. A
	// transcode still running on the old file loses the race and its
	// output is orphaned, which we accept.
	archival := domain.ArchivalFilename(primary, inspectorID)
	if u.local.Exists(primary) {
		if err := u.local.Rename(primary, archival); err != nil {
			return nil, errprocess.Set("archive of replaced video failed: " + err.Error())
		}
		converted := domain.ConvertedFilename(primary)
		if u.local.Exists(converted) {
			if err := u.local.Rename(converted, domain.ArchivalFilename(converted, inspectorID)); err != nil {
				logger.Log.Warn("archive of converted sibling failed",
					zap.String("file", converted), zap.Error(err))
			}
		}
	}

	// the primary filename stays stable across replacements
	if err := u.local.Save(file, primary); err != nil {
		return nil, errprocess.Set("replacement video save failed: " + err.Error())
	}
	u.transcoder.ExtractThumbnail(primary)

	now := time.Now()
	if err := u.repo.SetVideoFields(ctx, inspectionID, map[string]interface{}{
		"video_filename":          primary,
		"video_status":            domain.VideoUploaded,
		"video_replaced_by":       inspectorID,
		"video_replaced_at":       now,
		"replaced_video_filename": archival,
	}); err != nil {
		return nil, err
	}

	u.StartBackgroundTranscode(inspectionID, primary, insp.EventName, insp.VanNumber)

	return &domain.ReplaceVideoRes{
		OriginalFilename: primary,
		ReplacedFilename: archival,
		VideoStatus:      domain.VideoUploaded,
	}, nil
}

// Resolve finds the best servable artifact for a primary filename: the
// converted MP4 first, the original second, the remote copy when the
// record says the bytes live there. Records the DB never heard of fall
// back to probing the disk.
func (u *videoUseCase) Resolve(ctx context.Context, filename string) (*domain.ResolvedVideo, error) {
	insp, err := u.repo.GetByVideoFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, domain.ErrInspectionNotFound) {
			return u.resolveFromDisk(filename)
		}
		return nil, err
	}

	location := insp.Video.VideoLocation
	if location == "" {
		// legacy records predate location tracking
		location = domain.LocationLocal
	}

	if location == domain.LocationLocal || location == domain.LocationBoth {
		if resolved, err := u.resolveFromDisk(filename); err == nil {
			return resolved, nil
		}
	}

	if location == domain.LocationRemote || location == domain.LocationBoth {
		content, err := u.remote.Get(ctx, filename)
		if err == nil {
			return &domain.ResolvedVideo{
				Filename: filename,
				Content:  content,
				Source:   domain.LocationRemote,
			}, nil
		}
		if !errors.Is(err, domain.ErrVideoNotFound) {
			logger.Log.Warn("remote resolve failed",
				zap.String("file", filename), zap.Error(err))
		}
	}

	return nil, domain.ErrVideoNotFound
}

func (u *videoUseCase) resolveFromDisk(filename string) (*domain.ResolvedVideo, error) {
	converted := domain.ConvertedFilename(filename)
	if u.local.Exists(converted) {
		f, err := u.local.Open(converted)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedVideo{Filename: converted, Content: f, Source: domain.LocationLocal}, nil
	}
	if u.local.Exists(filename) {
		f, err := u.local.Open(filename)
		if err != nil {
			return nil, err
		}
		return &domain.ResolvedVideo{Filename: filename, Content: f, Source: domain.LocationLocal}, nil
	}
	return nil, domain.ErrVideoNotFound
}

func (u *videoUseCase) ThumbnailPath(filename string) (string, error) {
	path := filepath.Join(u.thumbDir, domain.ThumbnailFilename(filepath.Base(filename)))
	if _, err := os.Stat(path); err != nil {
		return "", domain.ErrVideoNotFound
	}
	return path, nil
}
