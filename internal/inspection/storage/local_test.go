package storage

import (
	"errors"
	"io"
	"strings"
	"testing"

	"cov_inspection_service/internal/inspection/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(strings.NewReader("video bytes"), "V1_08-15-2024_12345.mov"))
	assert.True(t, s.Exists("V1_08-15-2024_12345.mov"))

	f, err := s.Open("V1_08-15-2024_12345.mov")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(content))
}

func TestLocalStoreOpenMissing(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open("missing.mov")
	assert.True(t, errors.Is(err, domain.ErrVideoNotFound))
}

func TestLocalStoreRenameArchivesOriginal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(strings.NewReader("old"), "V1_08-15-2024_12345.mov"))
	require.NoError(t, s.Rename("V1_08-15-2024_12345.mov", "V1_08-15-2024_12345_67890_REPLACED.mov"))

	assert.False(t, s.Exists("V1_08-15-2024_12345.mov"))
	assert.True(t, s.Exists("V1_08-15-2024_12345_67890_REPLACED.mov"))
}

func TestLocalStoreSaveOverwrites(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(strings.NewReader("first"), "a.mov"))
	require.NoError(t, s.Save(strings.NewReader("second"), "a.mov"))

	f, err := s.Open("a.mov")
	require.NoError(t, err)
	defer f.Close()
	content, _ := io.ReadAll(f)
	assert.Equal(t, "second", string(content))
}

func TestLocalStorePathStripsDirectories(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	// path traversal in a submitted filename must not escape the root
	assert.Equal(t, s.Path("evil.mov"), s.Path("../../evil.mov"))
}
