package handlers

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/config"
)

// DashboardSettings is the configuration shown on, and used by, the dashboard page.
type DashboardSettings struct {
	Provider       string
	Model          string
	Currency       string
	Port           int
	MCPEnabled     bool
	ETFs           []string
	DefaultCapital int
	MinCapital     int
	MaxCapital     int
	CapitalStep    int
}

// DashboardHandler serves the single-page dashboard.
type DashboardHandler struct {
	logger    *common.Logger
	templates *template.Template
	settings  DashboardSettings
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, settings DashboardSettings) *DashboardHandler {
	if settings.CapitalStep <= 0 {
		settings.CapitalStep = 100
	}
	return &DashboardHandler{
		logger:    logger,
		templates: loadTemplates(nil),
		settings:  settings,
	}
}

// ServeHTTP renders the dashboard at "/" and 404s anything else the
// catch-all pattern routes here.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	data := map[string]interface{}{
		"Page":           "dashboard",
		"Version":        config.GetVersion(),
		"Provider":       h.settings.Provider,
		"Model":          h.settings.Model,
		"Currency":       h.settings.Currency,
		"MCPEnabled":     h.settings.MCPEnabled,
		"MCPEndpoint":    fmt.Sprintf("http://localhost:%d/mcp", h.settings.Port),
		"ETFs":           h.settings.ETFs,
		"DefaultCapital": h.settings.DefaultCapital,
		"MinCapital":     h.settings.MinCapital,
		"MaxCapital":     h.settings.MaxCapital,
		"CapitalStep":    h.settings.CapitalStep,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", "dashboard.html").Str("error", err.Error()).Msg("failed to render dashboard")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
