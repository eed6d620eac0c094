package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SnapshotDisplay carries the snapshot's money values formatted for display.
type SnapshotDisplay struct {
	Salary         string              `json:"salary"`
	CategoryTotals map[Category]string `json:"category_totals"`
	Allocated      string              `json:"allocated"`
	Remaining      string              `json:"remaining"`
	DisplaySavings string              `json:"display_savings"`
	Unallocated    string              `json:"unallocated,omitempty"`
}

// FormatMoney renders d as US dollars, rounded to cents: "$1,150.00",
// "-$500.00". Rounding happens here and nowhere else, and the value never
// passes through a float.
func FormatMoney(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Abs()
	}

	fixed := r.StringFixed(2)
	cents := fixed[len(fixed)-2:]

	whole := r.Truncate(0)
	var dollars string
	if whole.LessThan(maxPrintableDollars) {
		dollars = moneyPrinter.Sprintf("%d", whole.IntPart())
	} else {
		dollars = groupThousands(whole.String())
	}
	return sign + "$" + dollars + "." + cents
}

var (
	moneyPrinter        = message.NewPrinter(language.AmericanEnglish)
	maxPrintableDollars = decimal.New(math.MaxInt64, 0)
)

// groupThousands inserts commas into a run of digits. Only used for totals
// too large for int64.
func groupThousands(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a percentage with one fraction digit: "12.5%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FormatSnapshot formats every money value of s. Unallocated is left
// empty when there is no surplus.
func FormatSnapshot(s Snapshot) SnapshotDisplay {
	totals := make(map[Category]string, len(Categories))
	for _, c := range Categories {
		totals[c] = FormatMoney(s.Total(c))
	}
	d := SnapshotDisplay{
		Salary:         FormatMoney(s.Salary),
		CategoryTotals: totals,
		Allocated:      FormatMoney(s.Allocated),
		Remaining:      FormatMoney(s.Remaining),
		DisplaySavings: FormatMoney(s.DisplaySavings),
	}
	if s.HasUnallocated {
		d.Unallocated = FormatMoney(s.Unallocated)
	}
	return d
}
