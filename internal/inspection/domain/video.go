package domain

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// StorageLocation names where video bytes are confirmed to live. It is
// derived only from writes that actually succeeded, never from the
// configured storage mode.
type StorageLocation string

const (
	//LocationNone no backend holds the bytes
	LocationNone StorageLocation = "none"
	//LocationLocal local disk holds the bytes
	LocationLocal StorageLocation = "local"
	//LocationRemote the object store holds the bytes
	LocationRemote StorageLocation = "remote"
	//LocationBoth both backends hold the bytes
	LocationBoth StorageLocation = "both"
)

// CombineLocations derives the observed location from per-backend outcomes.
func CombineLocations(localOK, remoteOK bool) StorageLocation {
	switch {
	case localOK && remoteOK:
		return LocationBoth
	case localOK:
		return LocationLocal
	case remoteOK:
		return LocationRemote
	default:
		return LocationNone
	}
}

// VideoStatus definition video processing status. Transitions are forward
// only: {none|uploaded} -> processing -> {ready|failed}. A replacement
// resets the new file to uploaded.
type VideoStatus string

const (
	//VideoNone no video was ever attached
	VideoNone VideoStatus = "none"
	//VideoUploaded bytes placed, processing not started
	VideoUploaded VideoStatus = "uploaded"
	//VideoProcessing transcode in flight
	VideoProcessing VideoStatus = "processing"
	//VideoReady converted artifact available
	VideoReady VideoStatus = "ready"
	//VideoFailed terminal failure for this attempt
	VideoFailed VideoStatus = "failed"
)

// Domain sentinel errors, matched with errors.Is at the HTTP boundary.
var (
	// ErrVideoNotFound no servable artifact anywhere
	ErrVideoNotFound = errors.New("video not found")
	// ErrNoVideo the inspection record carries no video
	ErrNoVideo = errors.New("inspection has no video")
	// ErrStoreUnavailable the record store is not connected
	ErrStoreUnavailable = errors.New("database not available")
	// ErrBadExtension the upload extension is not on the allow-list
	ErrBadExtension = errors.New("video file type not allowed")
	// ErrInspectionNotFound record id matched nothing
	ErrInspectionNotFound = errors.New("inspection not found")
	// ErrEventLocked the owning event is locked against changes
	ErrEventLocked = errors.New("event is locked")
	// ErrEventNotFound event name matched nothing
	ErrEventNotFound = errors.New("event not found")
	// ErrEventExists canonical event name already taken
	ErrEventExists = errors.New("event already exists")
)

// VideoAsset is the video lifecycle block embedded flat in an inspection
// document.
type VideoAsset struct {
	VideoFilename          string          `bson:"video_filename" json:"video_filename"`
	StorageMode            string          `bson:"storage_mode" json:"storage_mode"`
	VideoLocation          StorageLocation `bson:"video_location" json:"video_location"`
	VideoStatus            VideoStatus     `bson:"video_status" json:"video_status"`
	ConvertedVideoFilename string          `bson:"converted_video_filename,omitempty" json:"converted_video_filename,omitempty"`
	ConvertedVideoLocation StorageLocation `bson:"converted_video_location,omitempty" json:"converted_video_location,omitempty"`
	RemoteObjectID         string          `bson:"remote_object_id,omitempty" json:"remote_object_id,omitempty"`
	RemoteConvertedObjectID string         `bson:"remote_converted_object_id,omitempty" json:"remote_converted_object_id,omitempty"`
	RemoteError            string          `bson:"remote_error,omitempty" json:"remote_error,omitempty"`
	RemoteConvertedError   string          `bson:"remote_converted_error,omitempty" json:"remote_converted_error,omitempty"`
	VideoReplacedBy        string          `bson:"video_replaced_by,omitempty" json:"video_replaced_by,omitempty"`
	VideoReplacedAt        *time.Time      `bson:"video_replaced_at,omitempty" json:"video_replaced_at,omitempty"`
	ReplacedVideoFilename  string          `bson:"replaced_video_filename,omitempty" json:"replaced_video_filename,omitempty"`
}

// ReplaceVideoRes reports a completed replacement.
type ReplaceVideoRes struct {
	OriginalFilename string      `json:"original_filename"`
	ReplacedFilename string      `json:"replaced_filename"`
	VideoStatus      VideoStatus `json:"video_status"`
}

// ResolvedVideo is a servable stream plus the name it resolved to.
type ResolvedVideo struct {
	Filename string
	Content  io.ReadCloser
	Source   StorageLocation
}

// BuildVideoFilename produces the deterministic primary filename
// {van}_{MM-DD-YYYY}_{inspector}.{ext}. Slashes in the submitted date are
// folded to dashes.
func BuildVideoFilename(vanNumber, date, inspectorID, originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	return fmt.Sprintf("%s_%s_%s.%s",
		vanNumber, strings.ReplaceAll(date, "/", "-"), inspectorID, ext)
}

// ArchivalFilename produces the rename target for a superseded file:
// {base}_{replacingInspectorID}_REPLACED.{ext}.
func ArchivalFilename(filename, replacingInspectorID string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%s_REPLACED%s", base, replacingInspectorID, ext)
}

// ConvertedFilename is the deterministic transcode output name {base}.mp4.
func ConvertedFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".mp4"
}

// ThumbnailFilename is the deterministic thumbnail name {base}.jpg.
func ThumbnailFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

// AllowedFile gates uploads on the configured extension allow-list.
func AllowedFile(filename string, allowed []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
