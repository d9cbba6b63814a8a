package router

import (
	"cov_inspection_service/internal/inspection/api/comm"
	"cov_inspection_service/internal/inspection/api/handlers"
	"cov_inspection_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the HTTP surface: public intake and playback,
// admin endpoints behind the JWT + role middlewares.
func RegisterRoutes(app *fiber.App,
	inspectionHandler *handlers.InspectionHandler,
	videoHandler *handlers.VideoHandler,
	eventHandler *handlers.EventHandler,
	adminHandler *handlers.AdminHandler,
	authHandler *handlers.AuthHandler,
) {
	app.Get("/", comm.ConnectCheck)
	app.Post("/debug", comm.DebugLogFlag)

	// intake
	app.Post("/upload", inspectionHandler.Submit)
	app.Post("/attach_video", inspectionHandler.AttachVideo)
	app.Post("/replace_video", inspectionHandler.ReplaceVideo)
	app.Post("/check_capid", inspectionHandler.CheckCAPID)
	app.Post("/check_van", inspectionHandler.CheckVan)

	// listings and playback
	app.Get("/inspected_vans", inspectionHandler.InspectedVans)
	app.Get("/missing_videos", inspectionHandler.MissingVideos)
	app.Get("/api/covs", inspectionHandler.COVs)
	app.Get("/api/cov/:cov/inspections", inspectionHandler.COVInspections)
	app.Get("/api/inspection/:id", inspectionHandler.GetInspection)
	app.Get("/video/:filename", videoHandler.GetVideo)
	app.Get("/thumbnail/:filename", videoHandler.GetThumbnail)

	// events
	app.Get("/events", eventHandler.List)
	app.Post("/events", eventHandler.Create)
	app.Get("/api/events/:event_name/lock-status", eventHandler.LockStatus)

	// auth
	app.Post("/admin_login", authHandler.Login)
	app.Get("/logout", middlewares.JWTMiddleware(), authHandler.Logout)

	adminRoutes := app.Group("/api/admin")
	adminRoutes.Use(middlewares.JWTMiddleware(), middlewares.RequireAdmin())
	adminRoutes.Get("/stats", adminHandler.Stats)
	adminRoutes.Get("/recent-activity", adminHandler.RecentActivity)
	adminRoutes.Get("/export-csv", adminHandler.ExportInspectionsCSV)
	adminRoutes.Get("/export-activity", adminHandler.ExportActivityCSV)
	adminRoutes.Get("/access-info", adminHandler.AccessInfo)
	adminRoutes.Post("/events/:event_name/lock", eventHandler.Lock)
	adminRoutes.Post("/events/:event_name/unlock", eventHandler.Unlock)
	adminRoutes.Post("/merge-events", eventHandler.Merge)

	adminRoutes.Delete("/events/:event_name", middlewares.RequireSuperAdmin(), eventHandler.Delete)
	adminRoutes.Delete("/inspections/:id", middlewares.RequireSuperAdmin(), inspectionHandler.DeleteInspection)
}
