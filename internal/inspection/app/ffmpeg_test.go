package app

import (
	"os"
	"path/filepath"
	"testing"

	"cov_inspection_service/internal/inspection/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tool path points at a binary that cannot exist, so any test that
// reaches ffmpeg fails loudly instead of silently doing work.
func newStatOnlyTranscoder(t *testing.T) (*FFmpegTranscoder, string, string) {
	t.Helper()
	uploadDir := t.TempDir()
	thumbDir := t.TempDir()
	tr, err := NewFFmpegTranscoder(filepath.Join(t.TempDir(), "no-such-ffmpeg"), uploadDir, thumbDir)
	require.NoError(t, err)
	return tr, uploadDir, thumbDir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestTranscodeSkipsExistingOutput(t *testing.T) {
	tr, uploadDir, _ := newStatOnlyTranscoder(t)
	writeFile(t, uploadDir, "V1_08-15-2024_12345.mov", "mov bytes")
	writeFile(t, uploadDir, "V1_08-15-2024_12345.mp4", "already converted")

	out, err := tr.TranscodeToMP4("V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	assert.Equal(t, "V1_08-15-2024_12345.mp4", out)

	// the pre-existing artifact is untouched
	data, err := os.ReadFile(filepath.Join(uploadDir, "V1_08-15-2024_12345.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "already converted", string(data))
}

func TestTranscodeWithoutOutputInvokesTool(t *testing.T) {
	tr, uploadDir, _ := newStatOnlyTranscoder(t)
	writeFile(t, uploadDir, "V1_08-15-2024_12345.mov", "mov bytes")

	_, err := tr.TranscodeToMP4("V1_08-15-2024_12345.mov")
	assert.Error(t, err)
}

func TestTranscodeMissingInput(t *testing.T) {
	tr, _, _ := newStatOnlyTranscoder(t)

	_, err := tr.TranscodeToMP4("V1_08-15-2024_12345.mov")
	assert.Error(t, err)
}

func TestThumbnailSkipsExistingOutput(t *testing.T) {
	tr, uploadDir, thumbDir := newStatOnlyTranscoder(t)
	writeFile(t, uploadDir, "V1_08-15-2024_12345.mov", "mov bytes")
	writeFile(t, thumbDir, domain.ThumbnailFilename("V1_08-15-2024_12345.mov"), "jpg bytes")

	assert.True(t, tr.ExtractThumbnail("V1_08-15-2024_12345.mov"))

	data, err := os.ReadFile(filepath.Join(thumbDir, "V1_08-15-2024_12345.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpg bytes", string(data))
}

func TestThumbnailWithoutOutputInvokesTool(t *testing.T) {
	tr, uploadDir, _ := newStatOnlyTranscoder(t)
	writeFile(t, uploadDir, "V1_08-15-2024_12345.mov", "mov bytes")

	assert.False(t, tr.ExtractThumbnail("V1_08-15-2024_12345.mov"))
}

func TestThumbnailMissingSource(t *testing.T) {
	tr, _, _ := newStatOnlyTranscoder(t)

	assert.False(t, tr.ExtractThumbnail("V1_08-15-2024_12345.mov"))
}
