// Package render formats tracker output for the terminal and provides the
// pagination boundary used when displaying history.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mtracker/internal/nutrition"
	"mtracker/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Estimation renders the computed entry presented at the confirmation gate.
func Estimation(e nutrition.Entry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("--- Nutrition Estimation ---"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Food: %s\n", e.FoodItem)
	fmt.Fprintf(&b, "Quantity: %g %s\n", e.Quantity, e.QuantityUnit)
	fmt.Fprintf(&b, "Calories: %.2f kcal\n", e.Calories)
	fmt.Fprintf(&b, "Protein: %.2fg\n", e.Protein)
	fmt.Fprintf(&b, "Carbs: %.2fg\n", e.Carbs)
	fmt.Fprintf(&b, "Fat: %.2fg\n", e.Fat)
	b.WriteString(titleStyle.Render("--------------------------"))
	return b.String()
}

// Summary renders a totals block under the given label.
func Summary(label string, t nutrition.Totals) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("--- %s ---", label)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Calories: %.2f kcal\n", t.Calories)
	fmt.Fprintf(&b, "Total Protein: %.2fg\n", t.Protein)
	fmt.Fprintf(&b, "Total Carbs: %.2fg\n", t.Carbs)
	fmt.Fprintf(&b, "Total Fat: %.2fg", t.Fat)
	return b.String()
}

// Meals renders the individual entries of one day, one block per meal with
// the time of day it was logged.
func Meals(dateStr string, entries []nutrition.Entry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("--- Meals for %s ---", dateStr)))
	b.WriteString("\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n- %s (%g%s) - %.2f kcal\n", e.FoodItem, e.Quantity, e.QuantityUnit, e.Calories)
		fmt.Fprintf(&b, "  Protein: %.2fg, Carbs: %.2fg, Fat: %.2fg\n", e.Protein, e.Carbs, e.Fat)
		fmt.Fprintf(&b, "  Logged at: %s\n", loggedAt(e.Timestamp))
	}
	return b.String()
}

func loggedAt(timestamp string) string {
	t, err := store.ParseTimestamp(timestamp)
	if err != nil {
		return timestamp
	}
	return t.Format("15:04:05")
}

// Paginator displays text page by page with a continue prompt between
// pages. End of input on the prompt reader stops the remaining pages.
type Paginator struct {
	PageSize int
	Out      io.Writer
	In       io.Reader
}

// NewPaginator returns a paginator with the default 10-line page size.
func NewPaginator(out io.Writer, in io.Reader) *Paginator {
	return &Paginator{PageSize: 10, Out: out, In: in}
}

// Show writes the text in fixed-size pages, waiting for Enter between them.
func (p *Paginator) Show(text string) error {
	lines := strings.Split(text, "\n")
	reader, ok := p.In.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(p.In)
	}

	for i := 0; i < len(lines); i += p.PageSize {
		end := i + p.PageSize
		if end > len(lines) {
			end = len(lines)
		}
		if _, err := fmt.Fprintln(p.Out, strings.Join(lines[i:end], "\n")); err != nil {
			return err
		}

		if end < len(lines) {
			fmt.Fprint(p.Out, dimStyle.Render("Press Enter to continue..."))
			if _, err := reader.ReadString('\n'); err != nil {
				// EOF on the prompt: the consumer is done reading.
				fmt.Fprintln(p.Out)
				return nil
			}
		}
	}
	return nil
}
