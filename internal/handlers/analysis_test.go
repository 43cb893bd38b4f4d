package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stock-radar/internal/models"
	"github.com/bobmcallan/stock-radar/internal/portfolio"
)

const samplePortfolio = "Ticker,Acciones,Precio_Compra,Valor_Actual\n" +
	"AAPL,10,150.00,1800.00\n" +
	"MSFT,5,300.00,2100.00\n" +
	"PLTR,40,20.50,1000.00\n"

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeAnalyzer struct {
	text      string
	err       error
	capital   models.Capital
	portfolio *portfolio.Portfolio
	calls     int
}

func (f *fakeAnalyzer) RunSwing(_ context.Context, capital models.Capital) (*models.AnalysisResult, error) {
	f.calls++
	f.capital = capital
	if f.err != nil {
		return nil, f.err
	}
	return models.NewAnalysisResult(models.KindSwing, fixedNow, &capital, f.text), nil
}

func (f *fakeAnalyzer) RunPortfolio(_ context.Context, p *portfolio.Portfolio) (*models.AnalysisResult, error) {
	f.calls++
	f.portfolio = p
	if f.err != nil {
		return nil, f.err
	}
	return models.NewAnalysisResult(models.KindPortfolio, fixedNow, nil, f.text), nil
}

func (f *fakeAnalyzer) Currency() string { return "EUR" }

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalysisHandler_SwingReturnsResultAndHTML(t *testing.T) {
	analyzer := &fakeAnalyzer{text: "## TOP 3\n\n**AAPL**"}
	handler := NewAnalysisHandler(nil, analyzer, 1<<20)

	req := httptest.NewRequest("POST", "/api/analysis/swing", strings.NewReader(`{"capital": 1000}`))
	w := httptest.NewRecorder()
	handler.HandleSwing(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.KindSwing, resp.Result.Kind)
	assert.Equal(t, "2025-03-14", resp.Result.Date)
	assert.Equal(t, "## TOP 3\n\n**AAPL**", resp.Result.Text)
	require.NotNil(t, resp.Result.Capital)
	assert.Equal(t, "EUR", resp.Result.Capital.Currency)
	assert.Contains(t, resp.HTML, "<strong>AAPL</strong>")

	assert.Equal(t, "EUR", analyzer.capital.Currency)
	assert.Equal(t, "1000", analyzer.capital.Amount.String())
}

func TestAnalysisHandler_SwingRejectsBadJSON(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	handler := NewAnalysisHandler(nil, analyzer, 1<<20)

	for _, body := range []string{`{`, `{"capital": "lots"}`, `{"capital": 1000, "extra": true}`} {
		w := httptest.NewRecorder()
		handler.HandleSwing(w, httptest.NewRequest("POST", "/api/analysis/swing", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Equal(t, 0, analyzer.calls)
}

func TestAnalysisHandler_SwingMapsErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"missing credential", models.NewConfigurationError("ANTHROPIC_API_KEY not configured", nil), http.StatusServiceUnavailable, "configuration"},
		{"upstream failure", models.NewTransportError("model request failed", nil), http.StatusBadGateway, "transport"},
		{"capital out of range", models.NewInputError("capital must be between 100 and 10000", nil), http.StatusBadRequest, "input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAnalysisHandler(nil, &fakeAnalyzer{err: tt.err}, 1<<20)
			w := httptest.NewRecorder()
			handler.HandleSwing(w, httptest.NewRequest("POST", "/api/analysis/swing", strings.NewReader(`{"capital": 1000}`)))

			assert.Equal(t, tt.want, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestAnalysisHandler_SwingRejectsGET(t *testing.T) {
	handler := NewAnalysisHandler(nil, &fakeAnalyzer{}, 1<<20)
	w := httptest.NewRecorder()
	handler.HandleSwing(w, httptest.NewRequest("GET", "/api/analysis/swing", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAnalysisHandler_PortfolioParsesUpload(t *testing.T) {
	analyzer := &fakeAnalyzer{text: "Salud general: buena"}
	handler := NewAnalysisHandler(nil, analyzer, 1<<20)

	body, contentType := multipartBody(t, "cartera.csv", samplePortfolio)
	req := httptest.NewRequest("POST", "/api/analysis/portfolio", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.HandlePortfolio(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, analyzer.portfolio)
	assert.Len(t, analyzer.portfolio.Positions, 3)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.KindPortfolio, resp.Result.Kind)
	assert.Nil(t, resp.Result.Capital)
}

func TestAnalysisHandler_PortfolioRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"not a csv", "cartera.xlsx", samplePortfolio},
		{"missing column", "cartera.csv", "Ticker,Acciones\nAAPL,10\n"},
		{"empty", "cartera.csv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{}
			handler := NewAnalysisHandler(nil, analyzer, 1<<20)

			body, contentType := multipartBody(t, tt.filename, tt.content)
			req := httptest.NewRequest("POST", "/api/analysis/portfolio", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			handler.HandlePortfolio(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, analyzer.calls)
		})
	}
}

func TestAnalysisHandler_PortfolioRequiresMultipart(t *testing.T) {
	handler := NewAnalysisHandler(nil, &fakeAnalyzer{}, 1<<20)
	req := httptest.NewRequest("POST", "/api/analysis/portfolio", strings.NewReader(samplePortfolio))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	handler.HandlePortfolio(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewHandler_ReturnsHeadAndChart(t *testing.T) {
	handler := NewPreviewHandler(nil, 1<<20)

	body, contentType := multipartBody(t, "cartera.csv", samplePortfolio)
	req := httptest.NewRequest("POST", "/api/portfolio/preview", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Ticker", "Acciones", "Precio_Compra", "Valor_Actual"}, resp.Columns)
	assert.Len(t, resp.Rows, 3)
	assert.Equal(t, 3, resp.Positions)
	assert.Equal(t, "4900.00", resp.TotalValue)
	assert.NotEmpty(t, resp.ChartPNG)
}

func TestPreviewHandler_LimitsRows(t *testing.T) {
	var csv strings.Builder
	csv.WriteString("Ticker,Acciones,Precio_Compra,Valor_Actual\n")
	for _, ticker := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		csv.WriteString(ticker + ",1,1,1\n")
	}

	handler := NewPreviewHandler(nil, 1<<20)
	body, contentType := multipartBody(t, "cartera.csv", csv.String())
	req := httptest.NewRequest("POST", "/api/portfolio/preview", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Rows, PreviewRows)
	assert.Equal(t, 7, resp.Positions)
}
