package pipeline

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{
		"SKU", "Price Increase due to stock location or Low stock",
		"SKU Description",
		"UK Stock", "UK Cover", "NL Stock", "NL Cover", "MG Stock", "MG Cover",
	}, Header(model.DefaultOptions()))

	assert.NotContains(t, Header(model.Options{}), model.ColumnDescription)
	assert.Len(t, Header(model.Options{}), 8)
}

func TestMarshalCSV(t *testing.T) {
	desc := "Mug, blue"
	rows := []model.JoinedRow{
		{
			PriceChangeRow: model.PriceChangeRow{SKU: "42", Flag: true},
			Stock: &model.StockReportRow{
				SKU:         "42",
				Description: &desc,
				UKStock:     decimal.NewNullDecimal(decimal.RequireFromString("10")),
				UKCover:     decimal.NewNullDecimal(decimal.RequireFromString("2.50")),
				MGCover:     decimal.NewNullDecimal(decimal.RequireFromString("-1")),
			},
		},
		{PriceChangeRow: model.PriceChangeRow{SKU: "77", Flag: true}},
	}

	out, err := MarshalCSV(rows, model.DefaultOptions())
	require.NoError(t, err)

	want := "SKU,Price Increase due to stock location or Low stock,SKU Description,UK Stock,UK Cover,NL Stock,NL Cover,MG Stock,MG Cover\n" +
		"42,True,\"Mug, blue\",10,2.5,,,,-1\n" +
		"77,True,,,,,,,\n"
	assert.Equal(t, want, string(out))
}

func TestMarshalCSVEmpty(t *testing.T) {
	out, err := MarshalCSV(nil, model.Options{})
	require.NoError(t, err)
	assert.Equal(t, "SKU,Price Increase due to stock location or Low stock,UK Stock,UK Cover,NL Stock,NL Cover,MG Stock,MG Cover\n", string(out))
}

func TestMarshalCSVRoundTrip(t *testing.T) {
	prices := flagHeader + "1,a,True\n2,b,True\n3,c,False\n"
	stock := stockReport(
		stockLine("2", "Two", "4", "0.5", "", "", "1", "1"),
		stockLine("1", "He said \"hi\"\nline2, again", "1", "1", "1", "1", "1", "1"),
	)
	opts := model.DefaultOptions()

	left, err := ParsePriceChanges([]byte(prices), opts)
	require.NoError(t, err)
	right, err := ParseStockReport([]byte(stock), opts)
	require.NoError(t, err)
	joined, err := Join(left, right)
	require.NoError(t, err)
	out, err := MarshalCSV(joined, opts)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"He said ""hi""`+"\nline2, again\"")

	recs, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, Header(opts), recs[0])
	assert.Equal(t, []string{"1", "True", "He said \"hi\"\nline2, again", "1", "1", "1", "1", "1", "1"}, recs[1])
	assert.Equal(t, []string{"2", "True", "Two", "4", "0.5", "", "", "1", "1"}, recs[2])
}
