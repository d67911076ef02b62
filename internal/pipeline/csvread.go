package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// record is one CSV record with the line it started on.
type record struct {
	line   int
	fields []string
}

// readRecords parses data into records, allowing a varying field count.
func readRecords(src Source, data []byte) ([]record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	var out []record
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Source: src, Line: pe.StartLine, Err: pe.Err}
			}
			return nil, &ParseError{Source: src, Err: err}
		}
		line, _ := r.FieldPos(0)
		out = append(out, record{line: line, fields: fields})
	}
}

// cell returns field i of rec, or "" when the record is short.
func cell(rec record, i int) string {
	if i < len(rec.fields) {
		return rec.fields[i]
	}
	return ""
}

// naMarkers are cell values read as missing, matching common spreadsheet exports.
var naMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	if _, ok := naMarkers[s]; ok {
		return true
	}
	// Spreadsheet formula errors such as #DIV/0! or #REF!.
	return strings.HasPrefix(s, "#") && strings.HasSuffix(s, "!")
}

// parseMetric reads a stock or cover cell. Thousands separators are accepted.
func parseMetric(s string) (decimal.NullDecimal, error) {
	if isMissing(s) {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// isBoolTrue reports whether a cell holds the boolean true, as spelled in CSV exports.
func isBoolTrue(s string) bool {
	switch strings.TrimSpace(s) {
	case "true", "True", "TRUE":
		return true
	}
	return false
}
