package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"
	"github.com/boddenberg/budgetwise-bfa-go/internal/infra/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	flagSalary   string
	flagDebts    []string
	flagFixed    []string
	flagSavings  []string
	flagFun      []string
	flagPNG      string
	flagPNGWidth int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a budget summary for the given salary and items",
	Example: `  budgetwise summary --salary 3000 --debts "Car=500" \
    --fixed "Rent=1000" --fixed "Power=200" --fun 150 --png budget.png`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagSalary, "salary", "s", "", "Monthly salary")
	summaryCmd.Flags().StringArrayVar(&flagDebts, "debts", nil, "Debt item as Label=Amount or Amount (repeatable)")
	summaryCmd.Flags().StringArrayVar(&flagFixed, "fixed", nil, "Fixed expense item (repeatable)")
	summaryCmd.Flags().StringArrayVar(&flagSavings, "savings", nil, "Savings item (repeatable)")
	summaryCmd.Flags().StringArrayVar(&flagFun, "fun", nil, "Fun & leisure item (repeatable)")
	summaryCmd.Flags().StringVar(&flagPNG, "png", "", "Also write the pie chart to this PNG file")
	summaryCmd.Flags().IntVar(&flagPNGWidth, "png-size", 600, "Width and height of the PNG chart")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	m := buildModel(flagSalary, map[domain.Category][]string{
		domain.CategoryDebts:         flagDebts,
		domain.CategoryFixedExpenses: flagFixed,
		domain.CategorySavings:       flagSavings,
		domain.CategoryFun:           flagFun,
	})

	out := cmd.OutOrStdout()
	writeSummary(out, m)

	if flagPNG == "" {
		return nil
	}
	chart := domain.BuildChart(m.Snapshot())
	if chart.Empty {
		fmt.Fprintln(out, mutedStyle.Render("  Nothing allocated yet, no chart written."))
		return nil
	}
	img, err := render.NewPieRenderer(flagPNGWidth, flagPNGWidth, 1).RenderPNG(context.Background(), chart)
	if err != nil {
		return err
	}
	if err := os.WriteFile(flagPNG, img, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Fprintf(out, "  Chart written to %s\n", flagPNG)
	return nil
}

// buildModel fills a fresh model from command-line input. Each item is
// "Label=Amount" or a bare amount.
func buildModel(salary string, items map[domain.Category][]string) *domain.BudgetModel {
	m := domain.NewBudgetModel(domain.WithIDGenerator(domain.CounterIDs()))
	m.SetSalaryInput(salary)

	for _, c := range domain.Categories {
		for _, raw := range items[c] {
			label, amount := splitItem(raw)
			item := m.AddItem(c)
			m.SetItemLabel(c, item.ID, label)
			m.SetItemAmount(c, item.ID, domain.ParseAmount(amount))
		}
	}
	return m
}

func splitItem(raw string) (label, amount string) {
	i := strings.LastIndex(raw, "=")
	if i < 0 {
		return "", raw
	}
	return strings.TrimSpace(raw[:i]), raw[i+1:]
}

// ============================================================
// Rendering
// ============================================================

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Width(44).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(colorText).Width(20)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText).Width(14).Align(lipgloss.Right)
	shareStyle  = lipgloss.NewStyle().Foreground(colorMuted).Width(8).Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	goodStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	badStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// writeSummary prints the category totals, allocation and chart shares.
func writeSummary(w io.Writer, m *domain.BudgetModel) {
	snap := m.Snapshot()
	chart := domain.BuildChart(snap)

	shares := make(map[domain.Category]string, len(chart.Slices))
	for _, s := range chart.Slices {
		shares[s.Category] = domain.FormatPercent(s.Percent)
	}

	fmt.Fprintln(w, titleStyle.Render("BUDGET  "+domain.FormatMoney(snap.Salary)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+headerStyle.Render("Categories"))

	for _, c := range domain.Categories {
		fmt.Fprintln(w, "  "+row(c.DisplayName(), domain.FormatMoney(snap.Total(c)), shares[c]))
		for _, it := range m.Items(c) {
			label := it.Label
			if label == "" {
				label = "(unnamed)"
			}
			fmt.Fprintln(w, "    "+mutedStyle.Render(fmt.Sprintf("%-18s %14s", label, domain.FormatMoney(it.Amount))))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+row("Allocated", domain.FormatMoney(snap.Allocated), ""))

	remaining := domain.FormatMoney(snap.Remaining)
	switch {
	case snap.OverAllocated:
		remaining = badStyle.Render(remaining)
	case snap.HasUnallocated:
		remaining = goodStyle.Render(remaining)
	}
	fmt.Fprintln(w, "  "+labelStyle.Render("Remaining")+valueStyle.Render(remaining))

	switch {
	case snap.OverAllocated:
		fmt.Fprintln(w, "  "+badStyle.Render("Over budget by "+domain.FormatMoney(snap.Remaining.Neg())))
	case snap.HasUnallocated:
		fmt.Fprintln(w, "  "+mutedStyle.Render(domain.FormatMoney(snap.Unallocated)+" unallocated goes to savings"))
	}
	if chart.Empty {
		fmt.Fprintln(w, "  "+mutedStyle.Render("Enter your salary and expenses to see the breakdown."))
	}
}

func row(label, value, share string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + shareStyle.Render(share)
}
