package domain_test

import (
	"testing"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
)

func TestBuildChart_EmptyWhenNothingEntered(t *testing.T) {
	s := domain.NewBudgetModel().Snapshot()

	chart := domain.BuildChart(s)
	if !chart.Empty {
		t.Fatal("expected empty chart")
	}
	if len(chart.Slices) != 0 {
		t.Errorf("expected no slices, got %d", len(chart.Slices))
	}
	assertDec(t, "allocated", s.Allocated, "0")
}

func TestBuildChart_SalaryOnlyIsAllSavings(t *testing.T) {
	m := domain.NewBudgetModel()
	m.SetSalaryInput("2000")

	chart := domain.BuildChart(m.Snapshot())
	if chart.Empty || len(chart.Slices) != 1 {
		t.Fatalf("expected one slice, got %+v", chart)
	}
	got := chart.Slices[0]
	if got.Category != domain.CategorySavings || got.Name != "Savings" {
		t.Errorf("expected savings slice, got %+v", got)
	}
	assertDec(t, "value", got.Value, "2000")
	assertDec(t, "percent", got.Percent, "100")
	assertDec(t, "going to savings", chart.GoingToSavings, "2000")
	assertDec(t, "total allocated", chart.TotalAllocated, "0")
}

func TestBuildChart_DropsZeroSlicesAndOrders(t *testing.T) {
	m := domain.NewBudgetModel()
	m.SetSalaryInput("1000")
	addWithAmount(m, domain.CategoryFun, "250")
	addWithAmount(m, domain.CategoryDebts, "250")

	chart := domain.BuildChart(m.Snapshot())
	want := []struct {
		category domain.Category
		value    string
		percent  string
		color    string
	}{
		{domain.CategoryDebts, "250", "25", "debts"},
		{domain.CategoryFun, "250", "25", "fun"},
		{domain.CategorySavings, "500", "50", "savings"},
	}
	if len(chart.Slices) != len(want) {
		t.Fatalf("expected %d slices, got %+v", len(want), chart.Slices)
	}
	for i, w := range want {
		got := chart.Slices[i]
		if got.Category != w.category || got.Color != w.color {
			t.Errorf("slice %d: expected %s/%s, got %s/%s", i, w.category, w.color, got.Category, got.Color)
		}
		assertDec(t, string(w.category)+" value", got.Value, w.value)
		assertDec(t, string(w.category)+" percent", got.Percent, w.percent)
	}
}

func TestBuildChart_OverAllocatedOmitsSurplus(t *testing.T) {
	m := domain.NewBudgetModel()
	m.SetSalaryInput("1000")
	addWithAmount(m, domain.CategoryDebts, "1500")

	chart := domain.BuildChart(m.Snapshot())
	if len(chart.Slices) != 1 || chart.Slices[0].Category != domain.CategoryDebts {
		t.Fatalf("expected only the debts slice, got %+v", chart.Slices)
	}
	assertDec(t, "going to savings", chart.GoingToSavings, "0")
	assertDec(t, "total allocated", chart.TotalAllocated, "1500")
}

func TestBuildChart_PercentRounding(t *testing.T) {
	m := domain.NewBudgetModel()
	addWithAmount(m, domain.CategoryDebts, "1")
	addWithAmount(m, domain.CategoryFixedExpenses, "1")
	addWithAmount(m, domain.CategoryFun, "1")

	chart := domain.BuildChart(m.Snapshot())
	for _, s := range chart.Slices {
		assertDec(t, s.Name, s.Percent, "33.3")
	}
}
