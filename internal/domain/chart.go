package domain

import "github.com/shopspring/decimal"

// ChartSlice is one proportional segment of the budget visualization.
type ChartSlice struct {
	Category Category        `json:"category"`
	Name     string          `json:"name"`
	Value    decimal.Decimal `json:"value"`
	Percent  decimal.Decimal `json:"percent"`
	Color    string          `json:"color"`
}

// ChartData is what the presentation layer draws. Empty means there is
// nothing to visualize yet; it is a display state, not an error.
type ChartData struct {
	Slices         []ChartSlice    `json:"slices"`
	Empty          bool            `json:"empty"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	GoingToSavings decimal.Decimal `json:"going_to_savings"`
}

// chartOrder is the slice order: raw totals first, then savings with the
// unallocated surplus folded in.
var chartOrder = []Category{
	CategoryDebts,
	CategoryFixedExpenses,
	CategoryFun,
	CategorySavings,
}

var chartColors = map[Category]string{
	CategoryDebts:         "debts",
	CategoryFixedExpenses: "expenses",
	CategoryFun:           "fun",
	CategorySavings:       "savings",
}

var hundred = decimal.NewFromInt(100)

// BuildChart derives chart data from a snapshot. Slices with a value of
// zero or less are dropped.
func BuildChart(s Snapshot) ChartData {
	data := ChartData{
		Slices:         []ChartSlice{},
		TotalAllocated: s.Allocated,
		GoingToSavings: s.DisplaySavings,
	}

	sum := decimal.Zero
	for _, c := range chartOrder {
		v := s.Total(c)
		if c == CategorySavings {
			v = s.DisplaySavings
		}
		if !v.IsPositive() {
			continue
		}
		data.Slices = append(data.Slices, ChartSlice{
			Category: c,
			Name:     c.DisplayName(),
			Value:    v,
			Color:    chartColors[c],
		})
		sum = sum.Add(v)
	}

	if len(data.Slices) == 0 {
		data.Empty = true
		return data
	}
	for i := range data.Slices {
		data.Slices[i].Percent = data.Slices[i].Value.Mul(hundred).Div(sum).Round(1)
	}
	return data
}
