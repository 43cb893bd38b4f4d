// Package analysis runs the swing scan and the portfolio review: it fills the
// prompt, resolves the provider credential and makes exactly one model call.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/config"
	"github.com/bobmcallan/stock-radar/internal/models"
	"github.com/bobmcallan/stock-radar/internal/portfolio"
	"github.com/bobmcallan/stock-radar/internal/prompt"
)

// Capital bounds accepted by the swing scan.
var (
	MinCapital = decimal.NewFromInt(100)
	MaxCapital = decimal.NewFromInt(10000)
)

// Model submits one prompt and returns the response text.
type Model interface {
	Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// ModelFactory builds a Model for an API key.
type ModelFactory func(ctx context.Context, apiKey string) (Model, error)

// CredentialResolver looks up the provider API key.
type CredentialResolver interface {
	ResolveWithSource(key string) (value, source string, err error)
}

// Service is stateless between calls; it is safe for concurrent use.
type Service struct {
	cfg     config.AnalysisConfig
	prompts *prompt.Set
	creds   CredentialResolver
	factory ModelFactory
	logger  *common.Logger
	now     func() time.Time
}

// NewService wires a Service.
func NewService(cfg config.AnalysisConfig, prompts *prompt.Set, creds CredentialResolver, factory ModelFactory, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		cfg:     cfg,
		prompts: prompts,
		creds:   creds,
		factory: factory,
		logger:  logger,
		now:     time.Now,
	}
}

// Currency is the default currency for capital amounts.
func (s *Service) Currency() string { return s.cfg.Currency }

// ValidateCapital checks the swing capital is within the accepted range.
func ValidateCapital(c models.Capital) error {
	if c.Amount.LessThan(MinCapital) || c.Amount.GreaterThan(MaxCapital) {
		return models.NewInputError(
			fmt.Sprintf("el capital debe estar entre %s y %s", MinCapital, MaxCapital), nil)
	}
	return nil
}

// RunSwing performs the market-wide swing scan for the given capital.
func (s *Service) RunSwing(ctx context.Context, capital models.Capital) (*models.AnalysisResult, error) {
	if err := ValidateCapital(capital); err != nil {
		return nil, err
	}

	now := s.now()
	text, err := s.prompts.Swing.Fill(map[string]string{
		prompt.ParamDate:    now.Format(models.DateFormat),
		prompt.ParamCapital: capital.String(),
	})
	if err != nil {
		return nil, err
	}

	out, err := s.submit(ctx, models.KindSwing, text, s.cfg.SwingMaxTokens)
	if err != nil {
		return nil, err
	}
	return models.NewAnalysisResult(models.KindSwing, now, &capital, out), nil
}

// RunPortfolio reviews the uploaded positions.
func (s *Service) RunPortfolio(ctx context.Context, p *portfolio.Portfolio) (*models.AnalysisResult, error) {
	if p == nil || len(p.Positions) == 0 {
		return nil, models.NewInputError("la cartera no contiene posiciones", nil)
	}

	now := s.now()
	text, err := s.prompts.Portfolio.Fill(map[string]string{
		prompt.ParamDate:      now.Format(models.DateFormat),
		prompt.ParamPortfolio: p.Table(),
	})
	if err != nil {
		return nil, err
	}

	out, err := s.submit(ctx, models.KindPortfolio, text, s.cfg.PortfolioMaxTokens)
	if err != nil {
		return nil, err
	}
	return models.NewAnalysisResult(models.KindPortfolio, now, nil, out), nil
}

func (s *Service) submit(ctx context.Context, kind models.Kind, text string, maxTokens int) (string, error) {
	key := s.cfg.CredentialKey()
	apiKey, source, err := s.creds.ResolveWithSource(key)
	if err != nil {
		s.logger.Warn().Str("kind", string(kind)).Str("key", key).Msg("Model credential not configured")
		return "", err
	}

	model, err := s.factory(ctx, apiKey)
	if err != nil {
		return "", err
	}

	if timeout := s.cfg.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info().
		Str("kind", string(kind)).
		Str("provider", s.cfg.Provider).
		Str("model", s.cfg.Model).
		Str("credential_source", source).
		Int("max_tokens", maxTokens).
		Msg("Submitting analysis")

	out, err := model.Submit(ctx, text, maxTokens, s.cfg.Temperature)
	if err != nil {
		s.logger.Error().Str("kind", string(kind)).Dur("elapsed", time.Since(start)).Err(err).Msg("Analysis failed")
		return "", err
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Dur("elapsed", time.Since(start)).
		Int("chars", len([]rune(out))).
		Msg("Analysis completed")
	return out, nil
}
