package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/document"
	"github.com/bobmcallan/stock-radar/internal/models"
)

// DocumentRenderer turns an analysis result into a downloadable document.
type DocumentRenderer interface {
	Render(result *models.AnalysisResult) (*document.RenderedDocument, error)
}

// ExportHandler serves POST /api/export.
type ExportHandler struct {
	logger   *common.Logger
	renderer DocumentRenderer
}

// NewExportHandler creates a new export handler.
func NewExportHandler(logger *common.Logger, renderer DocumentRenderer) *ExportHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &ExportHandler{logger: logger, renderer: renderer}
}

// ServeHTTP renders the posted result and returns it as an attachment.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var result models.AnalysisResult
	if err := decodeJSON(r, &result); err != nil {
		WriteErrorWithCode(w, err)
		return
	}

	doc, err := h.renderer.Render(&result)
	if err != nil {
		h.logger.Warn().Str("kind", string(result.Kind)).Err(err).Msg("export failed")
		WriteErrorWithCode(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}
