// Package server HTTP API for the patient dashboard
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	parser "github.com/pulso-odonto/go-br-patient-parser"
	"github.com/pulso-odonto/go-br-patient-parser/internal/outreach"
	"github.com/pulso-odonto/go-br-patient-parser/internal/roster"
)

// Handler serves the import, patient list and outreach endpoints
type Handler struct {
	parser    *parser.Parser
	roster    *roster.Roster
	templates []outreach.Template
	logger    zerolog.Logger

	// age range applied when the client sends none
	defaultQuery roster.Query
}

// HandlerConfig Handler dependencies
type HandlerConfig struct {
	Parser        *parser.Parser
	Roster        *roster.Roster
	Templates     []outreach.Template
	Logger        zerolog.Logger
	DefaultMinAge int
	DefaultMaxAge int
}

func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		parser:    cfg.Parser,
		roster:    cfg.Roster,
		templates: cfg.Templates,
		logger:    cfg.Logger,
		defaultQuery: roster.Query{
			MinAge: cfg.DefaultMinAge,
			MaxAge: cfg.DefaultMaxAge,
		},
	}
	if h.parser == nil {
		h.parser = parser.New()
	}
	if h.roster == nil {
		h.roster = roster.New()
	}
	if h.templates == nil {
		h.templates = outreach.DefaultTemplates()
	}
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.GET("/formats", h.ListFormats)

	api.POST("/import/preview", h.PreviewImport)
	api.POST("/import", h.Import)

	api.GET("/patients", h.ListPatients)
	api.POST("/patients/:id/select", h.ToggleSelection)
	api.POST("/patients/:id/ghost", h.ToggleGhost)
	api.GET("/patients/:id/whatsapp", h.PatientLink)
	api.POST("/selection/all", h.SelectAll)
	api.DELETE("/selection", h.ClearSelection)
	api.GET("/stats", h.Stats)

	api.GET("/templates", h.ListTemplates)
	api.POST("/messages/links", h.BuildLinks)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, parser.GetSupportedFormats())
}
