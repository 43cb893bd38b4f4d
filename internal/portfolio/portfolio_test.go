package portfolio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stock-radar/internal/models"
)

const sampleCSV = `Ticker,Acciones,Precio_Compra,Valor_Actual,Sector
AAPL,10,150.25,1800.50,Tech
MSFT,5,300,1650,Tech
KO,20,55.10,1240,Consumer
`

func TestParse_Valid(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ticker", "Acciones", "Precio_Compra", "Valor_Actual", "Sector"}, p.Columns)
	require.Len(t, p.Positions, 3)
	assert.Equal(t, "AAPL", p.Positions[0].Ticker)
	assert.True(t, p.Positions[0].PurchasePrice.Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, "Tech", p.Rows[0][4])
	assert.True(t, p.TotalValue().Equal(decimal.RequireFromString("4690.50")))
}

func TestParse_BOMAndSpaces(t *testing.T) {
	p, err := Parse(strings.NewReader("\ufeffTicker, Acciones, Precio_Compra, Valor_Actual\nAAPL, 1, 2, 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "Ticker", p.Columns[0])
	assert.Equal(t, "Acciones", p.Columns[1])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty file", "", "vacío"},
		{"missing column", "Ticker,Acciones,Precio_Compra\nAAPL,1,2\n", "Valor_Actual"},
		{"header only", "Ticker,Acciones,Precio_Compra,Valor_Actual\n", "no contiene posiciones"},
		{"ragged row", "Ticker,Acciones,Precio_Compra,Valor_Actual\nAAPL,1,2\n", "columnas"},
		{"non numeric", "Ticker,Acciones,Precio_Compra,Valor_Actual\nAAPL,diez,2,3\n", "no es numérico"},
		{"blank ticker", "Ticker,Acciones,Precio_Compra,Valor_Actual\n,1,2,3\n", "Ticker vacío"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInput), "want input error, got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestHead(t *testing.T) {
	var b strings.Builder
	b.WriteString("Ticker,Acciones,Precio_Compra,Valor_Actual\n")
	for _, tk := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		b.WriteString(tk + ",1,1,1\n")
	}
	p, err := Parse(strings.NewReader(b.String()))
	require.NoError(t, err)

	head := p.Head(5)
	require.Len(t, head, 5)
	assert.Equal(t, "E", head[4][0])
	assert.Len(t, p.Head(50), 7)
}

func TestTable_AlignedColumns(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	lines := strings.Split(p.Table(), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Ticker  Acciones"))
	assert.Equal(t, strings.Index(lines[0], "Acciones"), strings.Index(lines[1], "10"))
}

func TestRenderValueChart(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	png, err := RenderValueChart(p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRenderValueChart_NoPositions(t *testing.T) {
	_, err := RenderValueChart(&Portfolio{})
	assert.Error(t, err)
}
