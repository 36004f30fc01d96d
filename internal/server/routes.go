package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corysite/internal/handlers"
	"corysite/internal/handlers/api"
	"corysite/internal/leads"
	"corysite/internal/middleware"
)

// ContentStore is everything the routes need from the content database.
// *db.DB satisfies it.
type ContentStore interface {
	handlers.ContentReader
	handlers.ContentAdmin
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Content ContentStore
	Leads   *leads.Service

	// Render serves public resource bodies, Preview the admin editor.
	Render  handlers.Renderer
	Preview handlers.Renderer
	Cache   handlers.Invalidator

	Views  handlers.ViewRecorder
	Chat   api.Poster
	Probes map[string]handlers.Pinger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	// Initialize handlers
	pageHandler := handlers.NewPageHandler(d.Content, d.Render, d.Views, s.Cfg, s.Site)
	adminHandler := handlers.NewAdminHandler(d.Content, d.Leads, d.Preview, d.Cache, s.Cfg, s.Site)
	probeHandler := handlers.NewProbeHandler(d.Probes)

	roiAPI := api.NewROIHandler(s.Site)
	leadAPI := api.NewLeadHandler(d.Leads)
	contentAPI := api.NewContentHandler(d.Content, d.Render, d.Views)
	chatAPI := api.NewChatHandler(d.Chat, s.Cfg.ChatWebhookURL, d.Leads, s.Log)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public pages
	s.App.Get("/", pageHandler.Home)
	s.App.Get("/roi", pageHandler.ROI)
	s.App.Post("/roi", pageHandler.ROISubmit)
	s.App.Get("/resources", pageHandler.Resources)
	s.App.Get("/resources/:slug", pageHandler.Resource)

	// JSON API
	apiGroup := s.App.Group("/api")
	apiGroup.Post("/roi", roiAPI.Calculate)
	apiGroup.Get("/roi/presets", roiAPI.Presets)
	apiGroup.Post("/leads", leadAPI.Create)
	apiGroup.Get("/content", contentAPI.List)
	apiGroup.Get("/content/:slug", contentAPI.Get)
	apiGroup.Post("/chat", chatAPI.Send)

	// Admin panel, hidden unless enabled
	admin := s.App.Group("/admin", middleware.AdminGate(s.Cfg.AdminEnabled))
	admin.Get("/", adminHandler.Index)
	admin.Get("/new", adminHandler.New)
	admin.Post("/content", adminHandler.Create)
	admin.Get("/content/:id/edit", adminHandler.Edit)
	admin.Post("/content/:id", adminHandler.Update)
	admin.Post("/content/:id/publish", adminHandler.Publish)
	admin.Post("/content/:id/unpublish", adminHandler.Unpublish)
	admin.Delete("/content/:id", adminHandler.Delete)
	admin.Post("/preview", adminHandler.Preview)
	admin.Get("/leads", adminHandler.Leads)
}
