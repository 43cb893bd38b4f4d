// Package relay forwards a shortened copy of an analysis to a chat bot.
package relay

import (
	"context"
	"strings"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const (
	DefaultMaxChars = 4000
	// Ellipsis is appended after the excerpt, even when nothing was cut.
	Ellipsis    = "..."
	closingLine = "_Ver análisis completo en la app_"
)

// Sender delivers one message. The Telegram client implements it.
type Sender interface {
	SendMessage(ctx context.Context, botToken, chatID, text string) error
}

// Service builds and sends relay messages.
type Service struct {
	sender   Sender
	maxChars int
	logger   *common.Logger
}

// NewService creates a relay service. maxChars <= 0 uses DefaultMaxChars.
func NewService(sender Sender, maxChars int, logger *common.Logger) *Service {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{sender: sender, maxChars: maxChars, logger: logger}
}

// Relay sends result to chatID through the bot identified by botToken.
// A nil error means the endpoint answered HTTP 200.
func (s *Service) Relay(ctx context.Context, result *models.AnalysisResult, botToken, chatID string) error {
	botToken = strings.TrimSpace(botToken)
	chatID = strings.TrimSpace(chatID)
	if botToken == "" || chatID == "" {
		return models.NewInputError("completa ambos campos: bot token y chat id", nil)
	}
	if err := result.Validate(); err != nil {
		return err
	}

	msg := BuildMessage(result, s.maxChars)
	if err := s.sender.SendMessage(ctx, botToken, chatID, msg); err != nil {
		s.logger.Warn().Str("kind", string(result.Kind)).Err(err).Msg("Relay failed")
		return err
	}

	s.logger.Info().Str("kind", string(result.Kind)).Str("date", result.Date).Msg("Analysis relayed")
	return nil
}

// BuildMessage lays out the relay text: a kind-specific title, the date,
// the capital for swing scans, the first maxChars runes of the analysis
// followed by "..." and a closing line.
func BuildMessage(result *models.AnalysisResult, maxChars int) string {
	var b strings.Builder

	switch result.Kind {
	case models.KindPortfolio:
		b.WriteString("📊 **STOCK RADAR - Análisis de Cartera**\n")
	default:
		b.WriteString("🎯 **STOCK RADAR - Análisis Swing Trading**\n")
	}
	b.WriteString("📅 " + result.Date + "\n")
	if result.Kind == models.KindSwing && result.Capital != nil {
		b.WriteString("💰 Capital: " + result.Capital.String() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(Truncate(result.Text, maxChars))
	b.WriteString(Ellipsis)
	b.WriteString("\n\n")
	b.WriteString(closingLine)

	return b.String()
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
