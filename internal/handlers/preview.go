package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/portfolio"
)

// PreviewRows is how many portfolio rows the preview returns.
const PreviewRows = 5

// PreviewResponse is the body of POST /api/portfolio/preview.
type PreviewResponse struct {
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	Positions  int        `json:"positions"`
	TotalValue string     `json:"total_value"`
	ChartPNG   string     `json:"chart_png,omitempty"`
}

// PreviewHandler shows the head of an uploaded portfolio and its value chart.
type PreviewHandler struct {
	logger        *common.Logger
	maxUploadSize int64
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(logger *common.Logger, maxUploadSize int64) *PreviewHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &PreviewHandler{logger: logger, maxUploadSize: maxUploadSize}
}

// ServeHTTP handles POST /api/portfolio/preview.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	p, err := readPortfolioUpload(r, h.maxUploadSize)
	if err != nil {
		WriteErrorWithCode(w, err)
		return
	}

	resp := PreviewResponse{
		Columns:    p.Columns,
		Rows:       p.Head(PreviewRows),
		Positions:  len(p.Positions),
		TotalValue: p.TotalValue().StringFixed(2),
	}

	// A chart failure still leaves a usable table.
	if png, err := portfolio.RenderValueChart(p); err != nil {
		h.logger.Warn().Err(err).Msg("portfolio chart rendering failed")
	} else {
		resp.ChartPNG = base64.StdEncoding.EncodeToString(png)
	}

	WriteJSON(w, http.StatusOK, resp)
}
