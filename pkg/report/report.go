// Package report renders analytics results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/format"
	"github.com/yurifrl/finsight/pkg/models"
)

type Styles struct {
	Header   lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style
	Muted    lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
	Box      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true),
		Income:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // green
		Expense:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // red
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),  // gray
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

type Renderer struct {
	w      io.Writer
	fmt    *format.Formatter
	styles Styles
}

func New(w io.Writer, f *format.Formatter) *Renderer {
	if f == nil {
		f = format.Default()
	}
	return &Renderer{w: w, fmt: f, styles: DefaultStyles()}
}

func (r *Renderer) Title(title string) {
	fmt.Fprintln(r.w, r.styles.Header.Render(title))
}

func (r *Renderer) Summary(s analytics.Summary) {
	var b strings.Builder
	fmt.Fprintf(&b, "Operations: %d over %d month(s)\n", s.Operations, s.Months)
	fmt.Fprintf(&b, "Income:     %s\n", r.styles.Income.Render(r.fmt.Money(s.TotalIncome)))
	fmt.Fprintf(&b, "Expenses:   %s (mandatory %s, variable %s)\n",
		r.styles.Expense.Render(r.fmt.Money(s.TotalExpense)),
		r.fmt.Money(s.MandatoryExpense), r.fmt.Money(s.VariableExpense))
	fmt.Fprintf(&b, "Net:        %s\n", r.signed(s.Net))
	fmt.Fprintf(&b, "Monthly:    income %s, expense %s, mandatory %s\n",
		r.fmt.Money(s.AvgIncome), r.fmt.Money(s.AvgExpense), r.fmt.Money(s.AvgMandatory))
	fmt.Fprintf(&b, "Savings:    %s (%s)\n", r.fmt.Percent(s.SavingsRate), r.fmt.Tier(s.Tier))
	fmt.Fprintf(&b, "Cushion:    %s, %s month(s) of mandatory spend", r.fmt.Money(s.Cushion), r.fmt.Months(s.CushionMonths))
	fmt.Fprintln(r.w, r.styles.Box.Render(b.String()))
}

func (r *Renderer) Notifications(notes []analytics.Notification) {
	if len(notes) == 0 {
		fmt.Fprintln(r.w, r.styles.Muted.Render("No notifications"))
		return
	}
	for _, n := range notes {
		style := r.styleFor(n.Kind)
		fmt.Fprintln(r.w, style.Render(fmt.Sprintf("[%s] %s", n.Kind, n.Title)))
		if d := r.fmt.Detail(n); d != "" {
			fmt.Fprintln(r.w, "    "+d)
		}
		if n.Code == analytics.CodeAnomaly {
			continue
		}
		for _, it := range n.Items {
			fmt.Fprintf(r.w, "    %s  %-30s %s\n", it.Date, it.Title, r.signed(it.Amount))
		}
	}
}

func (r *Renderer) Chart(c analytics.ChartData) {
	if !c.HasData {
		fmt.Fprintln(r.w, r.styles.Muted.Render("No data for the selected period"))
		return
	}
	total := c.Income + c.Expenses
	const width = 40
	bar := func(v float64) string {
		n := int(v / total * width)
		return strings.Repeat("█", n)
	}
	fmt.Fprintf(r.w, "Income   %s %s\n", r.styles.Income.Render(bar(c.Income)), r.fmt.Money(c.Income))
	fmt.Fprintf(r.w, "Expenses %s %s\n", r.styles.Expense.Render(bar(c.Expenses)), r.fmt.Money(c.Expenses))
}

func (r *Renderer) Totals(t analytics.Totals) {
	fmt.Fprintf(r.w, "%d operation(s): %s / %s\n", t.Count,
		r.styles.Income.Render("+"+r.fmt.Money(t.Deposit)),
		r.styles.Expense.Render("-"+r.fmt.Money(t.Withdrawal)))
}

// Operations prints one line per operation in date order.
func (r *Renderer) Operations(ops []models.Operation) {
	if len(ops) == 0 {
		fmt.Fprintln(r.w, r.styles.Muted.Render("No operations"))
		return
	}
	for _, op := range analytics.SortByDate(ops) {
		mark := " "
		if op.Mandatory {
			mark = "*"
		}
		fmt.Fprintf(r.w, "%s %s %-16s %-30s %s\n", mark, op.Date, op.Category, op.DisplayTitle(), r.signed(op.Amount))
	}
}

func (r *Renderer) Categories(categories []string) {
	for _, c := range categories {
		fmt.Fprintln(r.w, c)
	}
}

func (r *Renderer) signed(v float64) string {
	s := r.fmt.Signed(v)
	switch {
	case v > 0:
		return r.styles.Income.Render(s)
	case v < 0:
		return r.styles.Expense.Render(s)
	}
	return s
}

func (r *Renderer) styleFor(k analytics.Kind) lipgloss.Style {
	switch k {
	case analytics.KindCritical:
		return r.styles.Critical
	case analytics.KindWarning:
		return r.styles.Warning
	}
	return r.styles.Info
}
