package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

func TestSplitItem(t *testing.T) {
	tests := []struct {
		raw, label, amount string
	}{
		{"Rent=1000", "Rent", "1000"},
		{"1000", "", "1000"},
		{" Car loan =500", "Car loan", "500"},
		{"a=b=12", "a=b", "12"},
	}
	for _, tt := range tests {
		label, amount := splitItem(tt.raw)
		if label != tt.label || amount != tt.amount {
			t.Errorf("splitItem(%q) = %q, %q; want %q, %q", tt.raw, label, amount, tt.label, tt.amount)
		}
	}
}

func TestBuildModel(t *testing.T) {
	m := buildModel("3000", map[domain.Category][]string{
		domain.CategoryDebts:         {"Car=500"},
		domain.CategoryFixedExpenses: {"Rent=1000", "200"},
		domain.CategoryFun:           {"Movies=150", "Junk=abc"},
	})

	snap := m.Snapshot()
	if snap.Allocated.String() != "1850" {
		t.Errorf("expected allocated 1850, got %s", snap.Allocated)
	}
	if snap.DisplaySavings.String() != "1150" {
		t.Errorf("expected display savings 1150, got %s", snap.DisplaySavings)
	}
	if got := len(m.Items(domain.CategoryFun)); got != 2 {
		t.Errorf("expected 2 fun items, got %d", got)
	}
}

func TestWriteSummary(t *testing.T) {
	m := buildModel("3000", map[domain.Category][]string{
		domain.CategoryDebts:         {"Car=500"},
		domain.CategoryFixedExpenses: {"Rent=1000", "Power=200"},
		domain.CategoryFun:           {"Movies=150"},
	})

	var buf bytes.Buffer
	writeSummary(&buf, m)
	out := buf.String()

	for _, want := range []string{
		"$3,000.00",
		"Fixed Expenses",
		"$1,200.00",
		"Rent",
		"$1,850.00",
		"$1,150.00 unallocated goes to savings",
		"38.3%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q\n%s", want, out)
		}
	}
}

func TestWriteSummary_SavingsRowShowsEnteredItems(t *testing.T) {
	m := buildModel("3000", map[domain.Category][]string{
		domain.CategorySavings:       {"IRA=100"},
		domain.CategoryFixedExpenses: {"Rent=1000"},
	})

	var buf bytes.Buffer
	writeSummary(&buf, m)
	out := buf.String()

	var savingsRow string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, domain.CategorySavings.DisplayName()) {
			savingsRow = line
			break
		}
	}
	if savingsRow == "" {
		t.Fatalf("expected a savings row\n%s", out)
	}
	if !strings.Contains(savingsRow, "$100.00") || strings.Contains(savingsRow, "$2,000.00") {
		t.Errorf("expected savings row to show only entered items, got %q", savingsRow)
	}
	if !strings.Contains(out, "$1,900.00 unallocated goes to savings") {
		t.Errorf("expected the surplus on its own line\n%s", out)
	}
}

func TestWriteSummary_OverBudget(t *testing.T) {
	m := buildModel("1000", map[domain.Category][]string{
		domain.CategoryFixedExpenses: {"Rent=1500"},
	})

	var buf bytes.Buffer
	writeSummary(&buf, m)

	if !strings.Contains(buf.String(), "Over budget by $500.00") {
		t.Errorf("expected over budget warning\n%s", buf.String())
	}
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, buildModel("", nil))

	if !strings.Contains(buf.String(), "Enter your salary and expenses") {
		t.Errorf("expected empty state hint\n%s", buf.String())
	}
}
