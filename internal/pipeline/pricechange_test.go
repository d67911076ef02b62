package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

const flagHeader = "SKU,Product,Price Increase due to stock location or Low stock\n"

func skus(rows []model.PriceChangeRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.SKU
	}
	return out
}

func TestParsePriceChangesLastOccurrenceWins(t *testing.T) {
	data := flagHeader +
		"100,Widget,True\n" +
		"200,Gadget,True\n" +
		"100,Widget,False\n" +
		"300,Gizmo,True\n"

	rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"200", "300"}, skus(rows))
}

func TestParsePriceChangesKeepsPositionOfLastOccurrence(t *testing.T) {
	data := flagHeader +
		"A,,False\n" +
		"B,,True\n" +
		"A,,True\n"

	rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, skus(rows))
	for _, r := range rows {
		assert.True(t, r.Flag)
	}
}

func TestParsePriceChangesFlagValues(t *testing.T) {
	cases := []struct {
		cell string
		want bool
	}{
		{"True", true},
		{"TRUE", true},
		{"true", true},
		{" True ", true},
		{"False", false},
		{"", false},
		{"yes", false},
		{"1", false},
		{"Y", false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%q", c.cell), func(t *testing.T) {
			data := flagHeader + "X1,Thing," + c.cell + "\n"
			rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
			require.NoError(t, err)
			if c.want {
				assert.Equal(t, []string{"X1"}, skus(rows))
			} else {
				assert.Empty(t, rows)
			}
		})
	}
}

func TestParsePriceChangesTrimsIdentifiers(t *testing.T) {
	data := flagHeader +
		"\" 42 \",Thing,True\n" +
		"\"   \",Blank,True\n" +
		",Empty,True\n" +
		"7,Other,True\n"

	rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "7"}, skus(rows))
}

func TestParsePriceChangesDedupesBeforeTrimming(t *testing.T) {
	data := flagHeader +
		"\" 42 \",Thing,True\n" +
		"42,Thing,False\n"

	rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
	require.NoError(t, err)
	// " 42 " and "42" are different raw SKUs; only the flagged one survives.
	assert.Equal(t, []string{"42"}, skus(rows))
}

func TestParsePriceChangesBlankLastOccurrenceDropped(t *testing.T) {
	data := flagHeader +
		"\"  \",Thing,True\n" +
		"\"  \",Thing,True\n" +
		"5,Other,True\n"

	rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, skus(rows))
}

func TestParsePriceChangesUntrimmedVariant(t *testing.T) {
	data := flagHeader +
		"\" 42 \",Thing,True\n" +
		"42,Thing,False\n"

	rows, err := ParsePriceChanges([]byte(data), model.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{" 42 "}, skus(rows))
}

func TestParsePriceChangesMissingColumn(t *testing.T) {
	_, err := ParsePriceChanges([]byte("SKU,Product\nA,Thing\n"), model.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, SourcePriceChange, pe.Source)
	assert.Equal(t, model.ColumnFlag, pe.Column)
	assert.Equal(t, 1, pe.Line)
}

func TestParsePriceChangesMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"bare quote":   flagHeader + "A,\"unterminated,True\n",
		"extra fields": flagHeader + "A,Thing,True,surplus\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParsePriceChangesShortRowIsUnflagged(t *testing.T) {
	data := flagHeader + "A,Thing\nB,Thing,True\n"
	rows, err := ParsePriceChanges([]byte(data), model.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, skus(rows))
}

func TestParsePriceChangesLargeInputUniqueSKUs(t *testing.T) {
	var b strings.Builder
	b.WriteString(flagHeader)
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "%d,Item,%s\n", i%250, []string{"True", "False"}[i%2])
	}
	rows, err := ParsePriceChanges([]byte(b.String()), model.DefaultOptions())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.SKU], "duplicate SKU %s", r.SKU)
		seen[r.SKU] = true
		assert.True(t, r.Flag)
	}
	// Every SKU i%250 appears with a fixed parity, so even SKUs stay flagged.
	assert.Len(t, rows, 125)
}
