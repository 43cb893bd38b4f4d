package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stock-radar/internal/config"
	"github.com/bobmcallan/stock-radar/internal/models"
	"github.com/bobmcallan/stock-radar/internal/portfolio"
	"github.com/bobmcallan/stock-radar/internal/prompt"
	"github.com/bobmcallan/stock-radar/internal/secrets"
)

type staticSource map[string]string

func (s staticSource) Name() string { return "static" }
func (s staticSource) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok && v != ""
}

type fakeModel struct {
	prompt      string
	maxTokens   int
	temperature float64
	reply       string
	err         error
}

func (m *fakeModel) Submit(_ context.Context, p string, maxTokens int, temperature float64) (string, error) {
	m.prompt = p
	m.maxTokens = maxTokens
	m.temperature = temperature
	return m.reply, m.err
}

func newTestService(t *testing.T, creds staticSource, model *fakeModel, factoryCalls *int32) *Service {
	t.Helper()
	prompts, err := prompt.Load(t.TempDir())
	require.NoError(t, err)

	factory := func(_ context.Context, apiKey string) (Model, error) {
		atomic.AddInt32(factoryCalls, 1)
		return model, nil
	}
	svc := NewService(config.NewDefaultConfig().Analysis, prompts, secrets.NewResolver(creds), factory, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRunSwing_FillsPromptAndUsesSwingBudget(t *testing.T) {
	var calls int32
	model := &fakeModel{reply: "### TOP 3"}
	svc := newTestService(t, staticSource{"ANTHROPIC_API_KEY": "k"}, model, &calls)

	result, err := svc.RunSwing(context.Background(), models.NewCapital(decimal.NewFromInt(1000), ""))
	require.NoError(t, err)

	assert.Equal(t, models.KindSwing, result.Kind)
	assert.Equal(t, "2026-03-09", result.Date)
	assert.Equal(t, "### TOP 3", result.Text)
	require.NotNil(t, result.Capital)
	assert.Equal(t, "EUR", result.Capital.Currency)

	assert.Equal(t, 8000, model.maxTokens)
	assert.Equal(t, 0.3, model.temperature)
	assert.Contains(t, model.prompt, "2026-03-09")
	assert.Contains(t, model.prompt, "€1,000.00")
	assert.NotContains(t, model.prompt, "[INSERTAR")
	assert.Equal(t, int32(1), calls)
}

func TestRunPortfolio_UsesPortfolioBudgetAndTable(t *testing.T) {
	var calls int32
	model := &fakeModel{reply: "ok"}
	svc := newTestService(t, staticSource{"ANTHROPIC_API_KEY": "k"}, model, &calls)

	p, err := portfolio.Parse(strings.NewReader("Ticker,Acciones,Precio_Compra,Valor_Actual\nAAPL,10,150,1800\n"))
	require.NoError(t, err)

	result, err := svc.RunPortfolio(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, models.KindPortfolio, result.Kind)
	assert.Nil(t, result.Capital)
	assert.Equal(t, 6000, model.maxTokens)
	assert.Contains(t, model.prompt, "AAPL")
	assert.Contains(t, model.prompt, "Valor_Actual")
}

func TestRunSwing_MissingCredentialMakesNoCall(t *testing.T) {
	var calls int32
	model := &fakeModel{}
	svc := newTestService(t, staticSource{}, model, &calls)

	_, err := svc.RunSwing(context.Background(), models.NewCapital(decimal.NewFromInt(1000), "EUR"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	assert.Equal(t, int32(0), calls)
	assert.Empty(t, model.prompt)
}

func TestRunSwing_MissingCredentialNoNetworkTraffic(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	cfg := config.NewDefaultConfig().Analysis
	cfg.BaseURL = srv.URL
	prompts, err := prompt.Load("")
	require.NoError(t, err)

	svc := NewService(cfg, prompts, secrets.NewResolver(staticSource{}), NewModelFactory(cfg, nil), nil)
	_, err = svc.RunSwing(context.Background(), models.NewCapital(decimal.NewFromInt(500), "EUR"))
	assert.True(t, errors.Is(err, models.ErrConfiguration))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestRunSwing_CapitalOutOfRange(t *testing.T) {
	var calls int32
	svc := newTestService(t, staticSource{"ANTHROPIC_API_KEY": "k"}, &fakeModel{}, &calls)

	for _, amount := range []int64{0, 99, 10001} {
		_, err := svc.RunSwing(context.Background(), models.NewCapital(decimal.NewFromInt(amount), "EUR"))
		assert.True(t, errors.Is(err, models.ErrInput), "amount %d", amount)
	}
	assert.Equal(t, int32(0), calls)
}

func TestRunPortfolio_EmptyPortfolioIsInputError(t *testing.T) {
	var calls int32
	svc := newTestService(t, staticSource{"ANTHROPIC_API_KEY": "k"}, &fakeModel{}, &calls)

	_, err := svc.RunPortfolio(context.Background(), &portfolio.Portfolio{})
	assert.True(t, errors.Is(err, models.ErrInput))
	assert.Equal(t, int32(0), calls)
}

func TestRun_ModelErrorPropagates(t *testing.T) {
	var calls int32
	model := &fakeModel{err: models.NewTransportError("boom", nil)}
	svc := newTestService(t, staticSource{"ANTHROPIC_API_KEY": "k"}, model, &calls)

	_, err := svc.RunSwing(context.Background(), models.NewCapital(decimal.NewFromInt(1000), "EUR"))
	assert.True(t, errors.Is(err, models.ErrTransport))
}

func TestNewModelFactory_EndToEndAnthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
			"content":[{"type":"text","text":"RESULTADO"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	cfg := config.NewDefaultConfig().Analysis
	cfg.BaseURL = srv.URL
	prompts, err := prompt.Load("")
	require.NoError(t, err)

	svc := NewService(cfg, prompts, secrets.NewResolver(staticSource{"ANTHROPIC_API_KEY": "k"}), NewModelFactory(cfg, nil), nil)
	result, err := svc.RunSwing(context.Background(), models.NewCapital(decimal.NewFromInt(1000), "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "RESULTADO", result.Text)
}

func TestNewModelFactory_UnknownProvider(t *testing.T) {
	cfg := config.NewDefaultConfig().Analysis
	cfg.Provider = "openai"
	_, err := NewModelFactory(cfg, nil)(context.Background(), "k")
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}
