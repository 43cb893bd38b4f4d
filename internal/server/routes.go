package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Dashboard (HTML template) and static assets
	mux.Handle("/", s.app.DashboardHandler)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Analysis
	mux.HandleFunc("POST /api/analysis/swing", s.app.AnalysisHandler.HandleSwing)
	mux.HandleFunc("POST /api/analysis/portfolio", s.app.AnalysisHandler.HandlePortfolio)
	mux.Handle("POST /api/portfolio/preview", s.app.PreviewHandler)

	// Export and relay
	mux.Handle("POST /api/export", s.app.ExportHandler)
	mux.Handle("POST /api/relay", s.app.RelayHandler)

	// Market data
	mux.HandleFunc("GET /api/market/holdings/{etf}", s.app.MarketHandler.HandleHoldings)
	mux.HandleFunc("GET /api/market/history/{ticker}", s.app.MarketHandler.HandleHistory)

	// Service info
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
