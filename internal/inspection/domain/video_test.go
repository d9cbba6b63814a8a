package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildVideoFilename(t *testing.T) {
	assert.Equal(t, "V1_08-15-2024_12345.mov",
		BuildVideoFilename("V1", "08/15/2024", "12345", "IMG_0042.MOV"))
	// already-dashed dates pass through unchanged
	assert.Equal(t, "V1_08-15-2024_12345.mp4",
		BuildVideoFilename("V1", "08-15-2024", "12345", "clip.mp4"))
}

func TestArchivalFilename(t *testing.T) {
	assert.Equal(t, "V1_08-15-2024_12345_67890_REPLACED.mov",
		ArchivalFilename("V1_08-15-2024_12345.mov", "67890"))
	assert.Equal(t, "V1_08-15-2024_12345_67890_REPLACED.mp4",
		ArchivalFilename("V1_08-15-2024_12345.mp4", "67890"))
}

func TestConvertedAndThumbnailNames(t *testing.T) {
	assert.Equal(t, "V1_08-15-2024_12345.mp4", ConvertedFilename("V1_08-15-2024_12345.mov"))
	assert.Equal(t, "V1_08-15-2024_12345.jpg", ThumbnailFilename("V1_08-15-2024_12345.mov"))
}

func TestAllowedFile(t *testing.T) {
	allowed := []string{"mp4", "avi", "mov", "wmv", "mpg", "mpeg", "m4v", "flv", "webm", "mkv", "3gp"}

	assert.True(t, AllowedFile("clip.mov", allowed))
	assert.True(t, AllowedFile("CLIP.MOV", allowed))
	assert.False(t, AllowedFile("malware.exe", allowed))
	assert.False(t, AllowedFile("noextension", allowed))
	assert.False(t, AllowedFile("", allowed))
}

func TestCombineLocations(t *testing.T) {
	assert.Equal(t, LocationBoth, CombineLocations(true, true))
	assert.Equal(t, LocationLocal, CombineLocations(true, false))
	assert.Equal(t, LocationRemote, CombineLocations(false, true))
	assert.Equal(t, LocationNone, CombineLocations(false, false))
}

func TestCanonicalEventName(t *testing.T) {
	assert.Equal(t, "wing encampment 2024", CanonicalEventName("  Wing   Encampment  2024 "))
	assert.Equal(t, "", CanonicalEventName("   "))
}
