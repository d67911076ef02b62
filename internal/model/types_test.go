package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockReportLookupFirstWins(t *testing.T) {
	first := "first"
	second := "second"
	rep := NewStockReport([]StockReportRow{
		{SKU: "A", Description: &first},
		{SKU: "B"},
		{SKU: "A", Description: &second},
	}, true)

	row, ok := rep.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "first", *row.Description)
	assert.Equal(t, 1, rep.Duplicates())

	_, ok = rep.Lookup("missing")
	assert.False(t, ok)
}
