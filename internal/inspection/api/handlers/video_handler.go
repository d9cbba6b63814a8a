package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"cov_inspection_service/internal/inspection/app"
	"cov_inspection_service/internal/inspection/domain"
	"cov_inspection_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// VideoHandler serves inspection footage and thumbnails
type VideoHandler struct {
	Videos app.VideoUseCase
}

// NewVideoHandler create video handler
func NewVideoHandler(videos app.VideoUseCase) *VideoHandler {
	return &VideoHandler{Videos: videos}
}

var mediaContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

func mediaContentType(filename string) string {
	if ct, ok := mediaContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// GetVideo resolves a filename to its best servable artifact and streams
// it inline. A miss is a 404; only a store fault is a 500.
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	filename := c.Params("filename")
	res, err := h.Videos.Resolve(c.UserContext(), filename)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Video not found"})
		}
		logger.Log.Errorf("Resolve video failed", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to resolve video"})
	}

	c.Set("Content-Type", mediaContentType(res.Filename))
	c.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", res.Filename))
	return c.SendStream(res.Content)
}

// GetThumbnail serves the jpg extracted at ingest.
func (h *VideoHandler) GetThumbnail(c *fiber.Ctx) error {
	path, err := h.Videos.ThumbnailPath(c.Params("filename"))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Thumbnail not found"})
	}
	c.Set("Content-Type", "image/jpeg")
	return c.SendFile(path)
}
