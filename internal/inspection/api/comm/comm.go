package comm

import (
	"cov_inspection_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ConnectCheck liveness probe.
func ConnectCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// DebugLogFlag toggles debug-level logging at runtime.
func DebugLogFlag(c *fiber.Ctx) error {
	var body struct {
		Debug bool `json:"debug"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid body"})
	}
	logger.Log.SetDebugMode(body.Debug)
	return c.JSON(fiber.Map{"status": "success", "debug": body.Debug})
}
