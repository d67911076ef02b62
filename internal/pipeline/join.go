package pipeline

import "github.com/fairyhunter13/price-stock-merger/internal/model"

// Join left-joins price-change rows onto the stock report by SKU.
// The result has exactly one row per input row, in input order.
func Join(left []model.PriceChangeRow, right *model.StockReport) ([]model.JoinedRow, error) {
	if right == nil {
		return nil, ErrJoinSkipped
	}
	out := make([]model.JoinedRow, 0, len(left))
	for _, l := range left {
		jr := model.JoinedRow{PriceChangeRow: l}
		if s, ok := right.Lookup(l.SKU); ok {
			jr.Stock = &s
		}
		out = append(out, jr)
	}
	return out, nil
}
