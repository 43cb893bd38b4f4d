package relay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stock-radar/internal/models"
)

type fakeSender struct {
	calls  int
	token  string
	chatID string
	text   string
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, botToken, chatID, text string) error {
	f.calls++
	f.token, f.chatID, f.text = botToken, chatID, text
	return f.err
}

var relayDate = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

func swing(text string) *models.AnalysisResult {
	c := models.NewCapital(decimal.NewFromInt(1000), "EUR")
	return models.NewAnalysisResult(models.KindSwing, relayDate, &c, text)
}

func TestBuildMessage_Swing(t *testing.T) {
	msg := BuildMessage(swing("### TOP 3"), DefaultMaxChars)

	want := "🎯 **STOCK RADAR - Análisis Swing Trading**\n" +
		"📅 2026-03-09\n" +
		"💰 Capital: €1,000.00\n" +
		"\n" +
		"### TOP 3...\n" +
		"\n" +
		"_Ver análisis completo en la app_"
	assert.Equal(t, want, msg)
}

func TestBuildMessage_PortfolioHasNoCapitalLine(t *testing.T) {
	msg := BuildMessage(models.NewAnalysisResult(models.KindPortfolio, relayDate, nil, "ok"), DefaultMaxChars)

	assert.True(t, strings.HasPrefix(msg, "📊 **STOCK RADAR - Análisis de Cartera**\n📅 2026-03-09\n\nok..."))
	assert.NotContains(t, msg, "Capital")
}

func TestBuildMessage_TruncatesAt4000Runes(t *testing.T) {
	text := strings.Repeat("x", 4500)
	msg := BuildMessage(swing(text), DefaultMaxChars)

	assert.Contains(t, msg, "\n\n"+strings.Repeat("x", 4000)+"...\n\n")
	assert.NotContains(t, msg, strings.Repeat("x", 4001))
}

func TestBuildMessage_TruncatesOnRunes(t *testing.T) {
	text := strings.Repeat("ñ", 4001)
	msg := BuildMessage(swing(text), DefaultMaxChars)

	assert.True(t, utf8.ValidString(msg))
	assert.Contains(t, msg, strings.Repeat("ñ", 4000)+"...")
	assert.NotContains(t, msg, strings.Repeat("ñ", 4001))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "añ", Truncate("añb", 2))
}

func TestRelay_Sends(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, 0, nil)

	err := svc.Relay(context.Background(), swing("texto"), " 123:ABC ", "-100")
	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "123:ABC", sender.token)
	assert.Equal(t, "-100", sender.chatID)
	assert.Contains(t, sender.text, "texto...")
}

func TestRelay_MissingFieldsIsInputError(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, 0, nil)

	for _, tc := range [][2]string{{"", "chat"}, {"token", ""}, {"  ", "  "}} {
		err := svc.Relay(context.Background(), swing("x"), tc[0], tc[1])
		assert.True(t, errors.Is(err, models.ErrInput))
	}
	assert.Equal(t, 0, sender.calls)
}

func TestRelay_SenderErrorPropagates(t *testing.T) {
	sender := &fakeSender{err: models.NewTransportError("telegram returned HTTP 400", nil)}
	svc := NewService(sender, 100, nil)

	err := svc.Relay(context.Background(), swing("x"), "t", "c")
	assert.True(t, errors.Is(err, models.ErrTransport))
}

func TestRelay_InvalidResult(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, 0, nil)

	err := svc.Relay(context.Background(), &models.AnalysisResult{Kind: "swing", Date: "09/03/2026"}, "t", "c")
	assert.True(t, errors.Is(err, models.ErrInput))
	assert.Equal(t, 0, sender.calls)
}
