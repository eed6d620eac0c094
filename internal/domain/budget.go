// Package domain defines the core budgeting entities and the rules that
// derive totals from them. Nothing in this package performs I/O; the
// service and handler layers own sessions, transport and observability.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Categories
// ============================================================

// Category is one of the four fixed budget buckets.
type Category string

const (
	CategoryDebts         Category = "debts"
	CategoryFixedExpenses Category = "fixed_expenses"
	CategorySavings       Category = "savings"
	CategoryFun           Category = "fun"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryDebts,
	CategoryFixedExpenses,
	CategorySavings,
	CategoryFun,
}

var categoryNames = map[Category]string{
	CategoryDebts:         "Debts",
	CategoryFixedExpenses: "Fixed Expenses",
	CategorySavings:       "Savings",
	CategoryFun:           "Fun & Leisure",
}

// DisplayName returns the human-readable bucket title.
func (c Category) DisplayName() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// ParseCategory resolves a wire name ("fixed_expenses", "fixed-expenses",
// "Fun") to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// ============================================================
// Line items
// ============================================================

// LineItem is a single labeled amount within a category.
type LineItem struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// ItemField names the mutable attributes of a LineItem.
type ItemField string

const (
	FieldLabel  ItemField = "label"
	FieldAmount ItemField = "amount"
)

// ParseItemField resolves a wire field name.
func ParseItemField(s string) (ItemField, bool) {
	switch f := ItemField(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldLabel, FieldAmount:
		return f, true
	}
	return "", false
}

// ============================================================
// State & snapshot
// ============================================================

// BudgetState is a copy of everything a BudgetModel stores.
// All four categories are always present, possibly empty.
type BudgetState struct {
	Salary     decimal.Decimal         `json:"salary"`
	Categories map[Category][]LineItem `json:"categories"`
}

// Snapshot holds the values derived from a BudgetState at one instant.
// Unallocated is max(Remaining, 0); it is never added to the Savings total.
type Snapshot struct {
	Salary         decimal.Decimal              `json:"salary"`
	CategoryTotals map[Category]decimal.Decimal `json:"category_totals"`
	Allocated      decimal.Decimal              `json:"allocated"`
	Remaining      decimal.Decimal              `json:"remaining"`
	DisplaySavings decimal.Decimal              `json:"display_savings"`
	Unallocated    decimal.Decimal              `json:"unallocated"`
	HasUnallocated bool                         `json:"has_unallocated"`
	OverAllocated  bool                         `json:"over_allocated"`
}

// Total returns the total for c, zero when absent.
func (s Snapshot) Total(c Category) decimal.Decimal {
	if t, ok := s.CategoryTotals[c]; ok {
		return t
	}
	return decimal.Zero
}

// Equal compares two snapshots by numeric value.
func (s Snapshot) Equal(o Snapshot) bool {
	if !s.Salary.Equal(o.Salary) ||
		!s.Allocated.Equal(o.Allocated) ||
		!s.Remaining.Equal(o.Remaining) ||
		!s.DisplaySavings.Equal(o.DisplaySavings) ||
		!s.Unallocated.Equal(o.Unallocated) ||
		s.HasUnallocated != o.HasUnallocated ||
		s.OverAllocated != o.OverAllocated {
		return false
	}
	for _, c := range Categories {
		if !s.Total(c).Equal(o.Total(c)) {
			return false
		}
	}
	return true
}
