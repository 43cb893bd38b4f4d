// Package stooq downloads end-of-day price history from stooq.com.
package stooq

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const (
	DefaultBaseURL = "https://stooq.com"
	DefaultDays    = 200
)

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,12}$`)

// Bar is one daily OHLCV row.
type Bar struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Client fetches Stooq CSV downloads.
type Client struct {
	client *resty.Client
	logger *common.Logger
}

// NewClient creates a Stooq client.
func NewClient(baseURL string, timeout time.Duration, logger *common.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &Client{client: client, logger: logger}
}

// ValidateTicker rejects anything that is not a plain US ticker symbol.
func ValidateTicker(ticker string) error {
	if !tickerPattern.MatchString(ticker) {
		return models.NewInputError(fmt.Sprintf("invalid ticker %q", ticker), nil)
	}
	return nil
}

// History returns the last days daily bars for a US-listed ticker, oldest first.
func (c *Client) History(ctx context.Context, ticker string, days int) ([]Bar, error) {
	if err := ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultDays
	}

	symbol := strings.ToLower(ticker) + ".us"
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"s": symbol, "i": "d"}).
		Get("/q/d/l/")
	if err != nil {
		return nil, models.NewTransportError(fmt.Sprintf("failed to fetch history for %s", ticker), err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewTransportError(fmt.Sprintf("stooq returned HTTP %d for %s", resp.StatusCode(), ticker), nil)
	}

	bars, err := ParseHistory(resp.Body())
	if err != nil {
		return nil, err
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	c.logger.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("Fetched Stooq history")
	return bars, nil
}

// ParseHistory reads a Stooq daily CSV (Date,Open,High,Low,Close[,Volume]).
func ParseHistory(data []byte) ([]Bar, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.EqualFold(trimmed, []byte("No data")) {
		return nil, models.NewInputError("no price data for ticker", nil)
	}

	reader := csv.NewReader(bytes.NewReader(trimmed))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, models.NewTransportError("malformed stooq csv", err)
	}
	if len(records) < 2 || len(records[0]) < 5 || !strings.EqualFold(records[0][0], "Date") {
		return nil, models.NewInputError("no price data for ticker", nil)
	}

	bars := make([]Bar, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		bar := Bar{Date: rec[0]}
		var parseErr error
		for i, dst := range []*decimal.Decimal{&bar.Open, &bar.High, &bar.Low, &bar.Close} {
			d, err := decimal.NewFromString(rec[i+1])
			if err != nil {
				parseErr = err
				break
			}
			*dst = d
		}
		if parseErr != nil {
			continue
		}
		if len(rec) > 5 {
			if v, err := strconv.ParseFloat(rec[5], 64); err == nil {
				bar.Volume = int64(v)
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
