package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stock-radar/internal/market"
	"github.com/bobmcallan/stock-radar/internal/models"
	"github.com/bobmcallan/stock-radar/internal/portfolio"
)

// Analyzer runs the model-backed analyses exposed as tools.
type Analyzer interface {
	RunSwing(ctx context.Context, capital models.Capital) (*models.AnalysisResult, error)
	RunPortfolio(ctx context.Context, p *portfolio.Portfolio) (*models.AnalysisResult, error)
	Currency() string
}

// MarketData serves the public market data tools.
type MarketData interface {
	History(ctx context.Context, ticker string, days int) (*market.History, error)
	Holdings(ctx context.Context, etf string) (*market.Holdings, error)
}

// DefaultCapital is used when swing_analysis is called without a capital.
const DefaultCapital = 1000

// RegisterTools adds the analysis and market tools to s. A nil market skips
// the market tools. Returns the number of tools registered.
func RegisterTools(s *server.MCPServer, analyzer Analyzer, data MarketData) int {
	count := 0
	if analyzer != nil {
		s.AddTool(SwingTool(), SwingToolHandler(analyzer))
		s.AddTool(PortfolioTool(), PortfolioToolHandler(analyzer))
		count += 2
	}
	if data != nil {
		s.AddTool(HoldingsTool(), HoldingsToolHandler(data))
		s.AddTool(HistoryTool(), HistoryToolHandler(data))
		count += 2
	}
	return count
}

// SwingTool describes swing_analysis.
func SwingTool() mcp.Tool {
	return mcp.NewTool("swing_analysis",
		mcp.WithDescription("Run the swing trading scan for US small caps and return the model's report (markdown, Spanish)."),
		mcp.WithNumber("capital",
			mcp.Description(fmt.Sprintf("Capital available for the trade, in the configured currency. Default %d.", DefaultCapital)),
		),
	)
}

// SwingToolHandler runs a swing analysis.
func SwingToolHandler(analyzer Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount := r.GetFloat("capital", DefaultCapital)
		capital := models.NewCapital(decimal.NewFromFloat(amount), analyzer.Currency())

		result, err := analyzer.RunSwing(ctx, capital)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(result.Text), nil
	}
}

// PortfolioTool describes portfolio_analysis.
func PortfolioTool() mcp.Tool {
	return mcp.NewTool("portfolio_analysis",
		mcp.WithDescription("Analyse a portfolio given as CSV text with columns Ticker, Acciones, Precio_Compra, Valor_Actual."),
		mcp.WithString("csv",
			mcp.Description("Portfolio CSV including the header row."),
			mcp.Required(),
		),
	)
}

// PortfolioToolHandler parses the csv argument and runs a portfolio analysis.
func PortfolioToolHandler(analyzer Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		csv := r.GetString("csv", "")
		if strings.TrimSpace(csv) == "" {
			return errorResult("Error: csv is required"), nil
		}

		p, err := portfolio.Parse(strings.NewReader(csv))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		result, err := analyzer.RunPortfolio(ctx, p)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(result.Text), nil
	}
}

// HoldingsTool describes get_etf_holdings.
func HoldingsTool() mcp.Tool {
	return mcp.NewTool("get_etf_holdings",
		mcp.WithDescription("List the holdings above 0.1% weight of a small-cap iShares ETF (IWM, IWC or IJR)."),
		mcp.WithString("etf",
			mcp.Description("ETF ticker"),
			mcp.Required(),
			mcp.Enum("IWM", "IWC", "IJR"),
		),
	)
}

// HoldingsToolHandler returns ETF holdings as JSON.
func HoldingsToolHandler(data MarketData) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		holdings, err := data.Holdings(ctx, r.GetString("etf", ""))
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(holdings), nil
	}
}

// HistoryTool describes get_price_history.
func HistoryTool() mcp.Tool {
	return mcp.NewTool("get_price_history",
		mcp.WithDescription("Daily OHLCV bars for a US ticker from Stooq, most recent last."),
		mcp.WithString("ticker",
			mcp.Description("US ticker, e.g. AAPL"),
			mcp.Required(),
		),
		mcp.WithNumber("days",
			mcp.Description("Number of trading days to return. Default 200."),
		),
	)
}

// HistoryToolHandler returns price history as JSON.
func HistoryToolHandler(data MarketData) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := r.GetInt("days", 0)
		history, err := data.History(ctx, r.GetString("ticker", ""), days)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(history), nil
	}
}
