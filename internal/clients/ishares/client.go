// Package ishares downloads ETF holdings files published by iShares.
package ishares

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const (
	DefaultBaseURL = "https://www.ishares.com"
	// preambleLines precede the CSV header in every holdings file.
	preambleLines = 10
)

// MinWeight is the weight (%) a holding must exceed to be returned.
var MinWeight = decimal.RequireFromString("0.1")

// fund is the product path segment for each supported ETF.
var funds = map[string]string{
	"IWM": "/us/products/239710/ishares-russell-2000-etf",
	"IWC": "/us/products/239382/ishares-microcap-etf",
	"IJR": "/us/products/239774/ishares-core-sp-smallcap-etf",
}

// Holding is one row of a holdings file.
type Holding struct {
	Ticker      string          `json:"ticker"`
	Name        string          `json:"name"`
	Sector      string          `json:"sector"`
	MarketValue decimal.Decimal `json:"market_value"`
	Weight      decimal.Decimal `json:"weight"`
	Price       decimal.Decimal `json:"price"`
}

// Client fetches holdings CSVs.
type Client struct {
	client *resty.Client
	logger *common.Logger
}

// NewClient creates an iShares client.
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

// SupportedETFs lists the tickers Holdings accepts.
func SupportedETFs() []string {
	out := make([]string, 0, len(funds))
	for k := range funds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Holdings returns the ETF's holdings weighing more than MinWeight.
func (c *Client) Holdings(ctx context.Context, etf string) ([]Holding, error) {
	etf = strings.ToUpper(strings.TrimSpace(etf))
	path, ok := funds[etf]
	if !ok {
		return nil, models.NewInputError(
			fmt.Sprintf("unsupported ETF %q (expected one of %s)", etf, strings.Join(SupportedETFs(), ", ")), nil)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fileType": "csv",
			"fileName": etf + "_holdings",
			"dataType": "fund",
		}).
		Get(path + "/1467271812596.ajax")
	if err != nil {
		return nil, models.NewTransportError(fmt.Sprintf("failed to download %s holdings", etf), err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewTransportError(fmt.Sprintf("ishares returned HTTP %d for %s", resp.StatusCode(), etf), nil)
	}

	holdings, err := ParseHoldings(resp.Body())
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("etf", etf).Int("holdings", len(holdings)).Msg("Fetched iShares holdings")
	return holdings, nil
}

// ParseHoldings skips the preamble, reads the table and keeps rows whose
// "Weight (%)" exceeds MinWeight. The disclaimer rows after the table are ignored.
func ParseHoldings(data []byte) ([]Holding, error) {
	lines := bytes.SplitN(data, []byte("\n"), preambleLines+1)
	if len(lines) <= preambleLines {
		return nil, models.NewTransportError("holdings file shorter than its preamble", nil)
	}

	reader := csv.NewReader(bytes.NewReader(lines[preambleLines]))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, models.NewTransportError("malformed holdings csv", err)
	}
	if len(records) == 0 {
		return nil, models.NewTransportError("holdings file has no header", nil)
	}

	col := make(map[string]int)
	for i, h := range records[0] {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	weightIdx, ok := col["Weight (%)"]
	if !ok {
		return nil, models.NewTransportError("holdings file has no Weight (%) column", nil)
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Holding
	for _, rec := range records[1:] {
		if weightIdx >= len(rec) {
			continue
		}
		weight, err := number(rec[weightIdx])
		if err != nil || !weight.GreaterThan(MinWeight) {
			continue
		}
		mv, _ := number(field(rec, "Market Value"))
		price, _ := number(field(rec, "Price"))
		out = append(out, Holding{
			Ticker:      field(rec, "Ticker"),
			Name:        field(rec, "Name"),
			Sector:      field(rec, "Sector"),
			MarketValue: mv,
			Weight:      weight,
			Price:       price,
		})
	}
	return out, nil
}

func number(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}
