package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/document"
	"github.com/bobmcallan/stock-radar/internal/market"
	"github.com/bobmcallan/stock-radar/internal/models"
)

func TestExportHandler_ReturnsPDFAttachment(t *testing.T) {
	handler := NewExportHandler(nil, document.NewRenderer(common.NewSilentLogger()))

	body := `{"kind":"swing","date":"2025-03-14","capital":{"amount":"1000","currency":"EUR"},"text":"RESUMEN\n\nAAPL sube — objetivo 200 €"}`
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/export", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="stock_radar_swing_2025-03-14.pdf"`, w.Header().Get("Content-Disposition"))

	data := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.GreaterOrEqual(t, reader.NumPage(), 1)
	text, err := reader.Page(1).GetPlainText(nil)
	require.NoError(t, err)
	assert.Contains(t, text, "RESUMEN")
}

func TestExportHandler_PortfolioFilename(t *testing.T) {
	handler := NewExportHandler(nil, document.NewRenderer(common.NewSilentLogger()))

	body := `{"kind":"portfolio","date":"2025-03-14","text":"Salud general"}`
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/export", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "stock_radar_cartera_2025-03-14.pdf")
}

func TestExportHandler_RejectsInvalidResult(t *testing.T) {
	handler := NewExportHandler(nil, document.NewRenderer(common.NewSilentLogger()))

	for _, body := range []string{
		`{"kind":"weekly","date":"2025-03-14","text":"x"}`,
		`{"kind":"swing","date":"14/03/2025","text":"x"}`,
		`not json`,
	} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/export", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestExportHandler_OversizedBodyIs413(t *testing.T) {
	handler := NewExportHandler(nil, document.NewRenderer(common.NewSilentLogger()))

	body := `{"kind":"swing","date":"2025-03-14","text":"` + strings.Repeat("x", 2048) + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/export", strings.NewReader(body))
	req.Body = http.MaxBytesReader(w, req.Body, 256)
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type fakeRelayer struct {
	result   *models.AnalysisResult
	botToken string
	chatID   string
	err      error
}

func (f *fakeRelayer) Relay(_ context.Context, result *models.AnalysisResult, botToken, chatID string) error {
	f.result, f.botToken, f.chatID = result, botToken, chatID
	return f.err
}

func TestRelayHandler_ForwardsResult(t *testing.T) {
	relayer := &fakeRelayer{}
	handler := NewRelayHandler(nil, relayer)

	body := `{"result":{"kind":"swing","date":"2025-03-14","text":"hola"},"bot_token":"123:abc","chat_id":"42"}`
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/relay", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sent", resp["status"])

	require.NotNil(t, relayer.result)
	assert.Equal(t, "hola", relayer.result.Text)
	assert.Equal(t, "123:abc", relayer.botToken)
	assert.Equal(t, "42", relayer.chatID)
}

func TestRelayHandler_MapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing fields", models.NewInputError("completa ambos campos: bot token y chat id", nil), http.StatusBadRequest},
		{"telegram rejected", models.NewTransportError("telegram returned HTTP 401", nil), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRelayHandler(nil, &fakeRelayer{err: tt.err})
			body := `{"result":{"kind":"swing","date":"2025-03-14","text":"hola"},"bot_token":"t","chat_id":"c"}`
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/relay", strings.NewReader(body)))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type fakeMarket struct {
	ticker string
	days   int
	etf    string
	err    error
}

func (f *fakeMarket) History(_ context.Context, ticker string, days int) (*market.History, error) {
	f.ticker, f.days = ticker, days
	if f.err != nil {
		return nil, f.err
	}
	return &market.History{Ticker: strings.ToUpper(ticker)}, nil
}

func (f *fakeMarket) Holdings(_ context.Context, etf string) (*market.Holdings, error) {
	f.etf = etf
	if f.err != nil {
		return nil, f.err
	}
	return &market.Holdings{ETF: strings.ToUpper(etf)}, nil
}

func marketMux(h *MarketHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/market/holdings/{etf}", h.HandleHoldings)
	mux.HandleFunc("GET /api/market/history/{ticker}", h.HandleHistory)
	return mux
}

func TestMarketHandler_Holdings(t *testing.T) {
	data := &fakeMarket{}
	mux := marketMux(NewMarketHandler(nil, data))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/market/holdings/iwm", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "iwm", data.etf)
	var resp market.Holdings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "IWM", resp.ETF)
}

func TestMarketHandler_HistoryDays(t *testing.T) {
	data := &fakeMarket{}
	mux := marketMux(NewMarketHandler(nil, data))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/market/history/aapl?days=30", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aapl", data.ticker)
	assert.Equal(t, 30, data.days)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/market/history/aapl", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, data.days)
}

func TestMarketHandler_HistoryRejectsBadDays(t *testing.T) {
	data := &fakeMarket{}
	mux := marketMux(NewMarketHandler(nil, data))

	for _, q := range []string{"days=abc", "days=0", "days=-5"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/market/history/aapl?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Empty(t, data.ticker)
}

func TestMarketHandler_UnsupportedETF(t *testing.T) {
	data := &fakeMarket{err: models.NewInputError("unsupported ETF", nil)}
	mux := marketMux(NewMarketHandler(nil, data))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/api/market/holdings/SPY", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
