package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
	"github.com/bobmcallan/stock-radar/internal/portfolio"
)

// Analyzer runs the two model-backed analyses.
type Analyzer interface {
	RunSwing(ctx context.Context, capital models.Capital) (*models.AnalysisResult, error)
	RunPortfolio(ctx context.Context, p *portfolio.Portfolio) (*models.AnalysisResult, error)
	Currency() string
}

// AnalysisResponse is returned by both analysis endpoints.
type AnalysisResponse struct {
	Result *models.AnalysisResult `json:"result"`
	HTML   string                 `json:"html"`
}

// SwingRequest is the body of POST /api/analysis/swing.
type SwingRequest struct {
	Capital  decimal.Decimal `json:"capital"`
	Currency string          `json:"currency,omitempty"`
}

// AnalysisHandler serves the swing and portfolio analysis endpoints.
type AnalysisHandler struct {
	logger        *common.Logger
	analyzer      Analyzer
	maxUploadSize int64
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(logger *common.Logger, analyzer Analyzer, maxUploadSize int64) *AnalysisHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &AnalysisHandler{logger: logger, analyzer: analyzer, maxUploadSize: maxUploadSize}
}

// HandleSwing handles POST /api/analysis/swing.
func (h *AnalysisHandler) HandleSwing(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req SwingRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorWithCode(w, err)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = h.analyzer.Currency()
	}

	result, err := h.analyzer.RunSwing(r.Context(), models.NewCapital(req.Capital, currency))
	if err != nil {
		h.logger.Warn().Str("kind", "swing").Str("code", models.ErrorCode(err)).Err(err).Msg("swing analysis failed")
		WriteErrorWithCode(w, err)
		return
	}
	h.writeResult(w, result)
}

// HandlePortfolio handles POST /api/analysis/portfolio (multipart field "file").
func (h *AnalysisHandler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	p, err := readPortfolioUpload(r, h.maxUploadSize)
	if err != nil {
		WriteErrorWithCode(w, err)
		return
	}

	result, err := h.analyzer.RunPortfolio(r.Context(), p)
	if err != nil {
		h.logger.Warn().Str("kind", "portfolio").Str("code", models.ErrorCode(err)).Err(err).Msg("portfolio analysis failed")
		WriteErrorWithCode(w, err)
		return
	}
	h.writeResult(w, result)
}

func (h *AnalysisHandler) writeResult(w http.ResponseWriter, result *models.AnalysisResult) {
	rendered, err := RenderMarkdown(result.Text)
	if err != nil {
		h.logger.Warn().Err(err).Msg("markdown rendering failed, returning plain text only")
	}
	WriteJSON(w, http.StatusOK, AnalysisResponse{Result: result, HTML: rendered})
}

// readPortfolioUpload parses the multipart "file" field as a portfolio CSV.
func readPortfolioUpload(r *http.Request, maxSize int64) (*portfolio.Portfolio, error) {
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, models.NewInputError("se esperaba un formulario multipart con el campo file", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, models.NewInputError("falta el archivo CSV (campo file)", err)
	}
	defer file.Close()

	if err := checkCSVName(header); err != nil {
		return nil, err
	}
	return portfolio.Parse(file)
}

func checkCSVName(header *multipart.FileHeader) error {
	if header == nil || header.Filename == "" {
		return nil
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		return models.NewInputError(fmt.Sprintf("el archivo %q no es un CSV", header.Filename), nil)
	}
	return nil
}
