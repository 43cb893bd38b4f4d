// Package portfolio parses the user-supplied positions CSV.
package portfolio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stock-radar/internal/models"
)

// Required column names.
const (
	ColTicker        = "Ticker"
	ColShares        = "Acciones"
	ColPurchasePrice = "Precio_Compra"
	ColCurrentValue  = "Valor_Actual"
)

// RequiredColumns are the headers every portfolio CSV must carry.
var RequiredColumns = []string{ColTicker, ColShares, ColPurchasePrice, ColCurrentValue}

var numericColumns = []string{ColShares, ColPurchasePrice, ColCurrentValue}

const columnGuidance = "el CSV debe tener columnas: Ticker, Acciones, Precio_Compra, Valor_Actual"

// Position is one parsed row.
type Position struct {
	Ticker        string
	Shares        decimal.Decimal
	PurchasePrice decimal.Decimal
	CurrentValue  decimal.Decimal
}

// Portfolio keeps the header and raw rows in file order alongside the parsed positions.
type Portfolio struct {
	Columns   []string
	Rows      [][]string
	Positions []Position
}

// Parse reads a portfolio CSV. Any structural or numeric problem is an input error.
func Parse(r io.Reader) (*Portfolio, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
			return nil, models.NewInputError(fmt.Sprintf("fila %d con número de columnas distinto a la cabecera", parseErr.Line), err)
		}
		return nil, models.NewInputError("no se pudo leer el CSV", err)
	}
	if len(records) == 0 {
		return nil, models.NewInputError("el archivo está vacío; "+columnGuidance, nil)
	}

	header := make([]string, len(records[0]))
	index := make(map[string]int, len(header))
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		index[h] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewInputError(
			fmt.Sprintf("faltan columnas %s; %s", strings.Join(missing, ", "), columnGuidance), nil)
	}

	rows := records[1:]
	if len(rows) == 0 {
		return nil, models.NewInputError("el CSV no contiene posiciones", nil)
	}

	p := &Portfolio{Columns: header, Rows: make([][]string, 0, len(rows))}
	for n, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		pos := Position{Ticker: row[index[ColTicker]]}
		if pos.Ticker == "" {
			return nil, models.NewInputError(fmt.Sprintf("fila %d: Ticker vacío", n+2), nil)
		}

		values := make(map[string]decimal.Decimal, len(numericColumns))
		for _, col := range numericColumns {
			raw := row[index[col]]
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, models.NewInputError(
					fmt.Sprintf("fila %d: %s=%q no es numérico", n+2, col, raw), err)
			}
			values[col] = d
		}
		pos.Shares = values[ColShares]
		pos.PurchasePrice = values[ColPurchasePrice]
		pos.CurrentValue = values[ColCurrentValue]

		p.Rows = append(p.Rows, row)
		p.Positions = append(p.Positions, pos)
	}
	return p, nil
}

// Head returns at most n rows.
func (p *Portfolio) Head(n int) [][]string {
	if n > len(p.Rows) {
		n = len(p.Rows)
	}
	return p.Rows[:n]
}

// TotalValue sums Valor_Actual over all positions.
func (p *Portfolio) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		total = total.Add(pos.CurrentValue)
	}
	return total
}

// Table renders every row as an aligned plain-text table for the prompt.
func (p *Portfolio) Table() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(p.Columns, "\t"))
	for _, row := range p.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
