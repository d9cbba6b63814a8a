package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"cov_inspection_service/internal/inspection/domain"
	errprocess "cov_inspection_service/pkg/err"
	"cov_inspection_service/pkg/logger"

	"go.uber.org/zap"
)

const (
	thumbnailTimeout = 30 * time.Second
	transcodeTimeout = 300 * time.Second
)

// Transcoder wraps the external media tooling. Both operations are
// idempotent functions of filesystem state: an existing output means skip.
type Transcoder interface {
	// ExtractThumbnail writes {base}.jpg to the thumbnail dir. Failure is
	// reported, never returned as an error that could block ingest.
	ExtractThumbnail(videoFilename string) bool
	// TranscodeToMP4 writes {base}.mp4 beside the input and returns the
	// output filename.
	TranscodeToMP4(inputFilename string) (string, error)
}

// FFmpegTranscoder shells out to the ffmpeg binary.
type FFmpegTranscoder struct {
	ffmpegPath string
	uploadDir  string
	thumbDir   string
}

// NewFFmpegTranscoder creates the thumbnail dir and returns the adapter.
func NewFFmpegTranscoder(ffmpegPath, uploadDir, thumbDir string) (*FFmpegTranscoder, error) {
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail dir %s: %w", thumbDir, err)
	}
	return &FFmpegTranscoder{
		ffmpegPath: ffmpegPath,
		uploadDir:  uploadDir,
		thumbDir:   thumbDir,
	}, nil
}

// ExtractThumbnail grabs one frame at the 1 second mark, skipping any black
// lead-in frame.
func (t *FFmpegTranscoder) ExtractThumbnail(videoFilename string) bool {
	videoPath := filepath.Join(t.uploadDir, videoFilename)
	thumbPath := filepath.Join(t.thumbDir, domain.ThumbnailFilename(videoFilename))

	if _, err := os.Stat(thumbPath); err == nil {
		return true
	}
	if _, err := os.Stat(videoPath); err != nil {
		logger.Log.Warn("thumbnail source missing", zap.String("video", videoFilename))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), thumbnailTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-i", videoPath,
		"-ss", "00:00:01",
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		thumbPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		logger.Log.Warn("thumbnail extraction failed",
			zap.String("video", videoFilename),
			zap.String("output", string(output)),
			zap.Error(err))
		return false
	}
	return true
}

// TranscodeToMP4 remuxes to MP4 with AAC audio and faststart so browsers
// can begin playback before the full download.
func (t *FFmpegTranscoder) TranscodeToMP4(inputFilename string) (string, error) {
	outputFilename := domain.ConvertedFilename(inputFilename)
	inputPath := filepath.Join(t.uploadDir, inputFilename)
	outputPath := filepath.Join(t.uploadDir, outputFilename)

	if _, err := os.Stat(outputPath); err == nil {
		logger.Log.Info("converted file already exists", zap.String("file", outputFilename))
		return outputFilename, nil
	}
	if _, err := os.Stat(inputPath); err != nil {
		return "", errprocess.Set("transcode input not found: " + inputFilename)
	}

	ctx, cancel := context.WithTimeout(context.Background(), transcodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-i", inputPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errprocess.Set("transcode timed out: " + inputFilename)
		}
		return "", errprocess.Set(fmt.Sprintf("transcode failed for %s: %v, output: %s",
			inputFilename, err, string(output)))
	}
	return outputFilename, nil
}

// ThumbnailPath returns the on-disk location of a thumbnail.
func (t *FFmpegTranscoder) ThumbnailPath(videoFilename string) string {
	return filepath.Join(t.thumbDir, domain.ThumbnailFilename(filepath.Base(videoFilename)))
}
