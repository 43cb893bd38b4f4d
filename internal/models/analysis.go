package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DateFormat is the layout of AnalysisResult.Date.
const DateFormat = "2006-01-02"

// Kind identifies which analysis produced a result.
type Kind string

const (
	KindSwing     Kind = "swing"
	KindPortfolio Kind = "portfolio"
)

// ParseKind accepts the API names plus the Spanish "cartera" alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindSwing):
		return KindSwing, nil
	case string(KindPortfolio), "cartera":
		return KindPortfolio, nil
	}
	return "", NewInputError(fmt.Sprintf("unknown analysis kind %q (expected swing or portfolio)", s), nil)
}

// Slug is the kind's token in exported filenames.
func (k Kind) Slug() string {
	if k == KindPortfolio {
		return "cartera"
	}
	return string(k)
}

// Title is the human label used in relay messages.
func (k Kind) Title() string {
	if k == KindPortfolio {
		return "Análisis de Cartera"
	}
	return "Análisis Swing Trading"
}

// Capital is an amount of money available for the swing scan.
type Capital struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewCapital builds a Capital, defaulting the currency to EUR.
func NewCapital(amount decimal.Decimal, currency string) Capital {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "EUR"
	}
	return Capital{Amount: amount, Currency: currency}
}

// UnmarshalJSON normalises the currency the same way NewCapital does.
func (c *Capital) UnmarshalJSON(data []byte) error {
	type rawCapital Capital
	var raw rawCapital
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = NewCapital(raw.Amount, raw.Currency)
	return nil
}

// String formats the amount with its currency glyph, e.g. "€1,000.00".
func (c Capital) String() string {
	m := money.New(c.minorUnits(), c.Currency)
	return m.Display()
}

func (c Capital) minorUnits() int64 {
	cur := money.GetCurrency(c.Currency)
	fraction := 2
	if cur != nil {
		fraction = cur.Fraction
	}
	return c.Amount.Shift(int32(fraction)).Round(0).IntPart()
}

// AnalysisResult is the text returned by one model call plus the run parameters.
// Text is never modified after construction.
type AnalysisResult struct {
	Kind    Kind     `json:"kind"`
	Date    string   `json:"date"`
	Capital *Capital `json:"capital,omitempty"`
	Text    string   `json:"text"`
}

// NewAnalysisResult stamps a result with the given time's calendar date.
func NewAnalysisResult(kind Kind, now time.Time, capital *Capital, text string) *AnalysisResult {
	return &AnalysisResult{
		Kind:    kind,
		Date:    now.Format(DateFormat),
		Capital: capital,
		Text:    text,
	}
}

// Validate checks a result received back from a client before export or relay.
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return NewInputError("analysis result is required", nil)
	}
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	if _, err := time.Parse(DateFormat, r.Date); err != nil {
		return NewInputError(fmt.Sprintf("date %q must use YYYY-MM-DD", r.Date), err)
	}
	if r.Capital != nil {
		if r.Capital.Amount.IsNegative() {
			return NewInputError("capital must not be negative", nil)
		}
		if money.GetCurrency(r.Capital.Currency) == nil {
			return NewInputError(fmt.Sprintf("unknown currency %q", r.Capital.Currency), nil)
		}
	}
	return nil
}
