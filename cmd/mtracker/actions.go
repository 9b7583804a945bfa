package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"mtracker/internal/config"
	"mtracker/internal/render"
	"mtracker/internal/tracker"
)

// logFood resolves a free-text meal description and, after an explicit
// confirmation, commits it. Any non-affirmative answer discards the
// computation with no side effect.
func (a *app) logFood(ctx context.Context, text string) {
	res, err := a.engine.Resolve(ctx, text)
	if err != nil {
		fmt.Printf("Error: Could not process input. %v\n", err)
		return
	}

	if res.CacheHit {
		fmt.Println("\n(🎯)")
	}
	fmt.Println()
	fmt.Println(render.Estimation(res.Entry))

	if !a.confirm("Is this correct? (y/n): ") {
		fmt.Println("❌ Entry discarded.")
		return
	}

	if _, err := a.engine.Commit(res); err != nil {
		logger.Error("failed to save entry", zap.Error(err))
		fmt.Printf("Error: Could not save entry. %v\n", err)
		return
	}
	fmt.Println("✅ Food entry saved!")
}

// showTodaysSummary recomputes today's totals, materializes the snapshot,
// and prints it. An empty day is reported as such, not as zeros.
func (a *app) showTodaysSummary() {
	totals, ok, err := a.engine.TodaySummary()
	if err != nil {
		fmt.Printf("Error: Could not compute summary. %v\n", err)
		return
	}

	fmt.Println()
	if !ok {
		fmt.Println("No entries for today.")
		return
	}
	fmt.Println(render.Summary("Today's Summary", totals))
}

// showSummaryForDate prints the materialized snapshot for a date.
func (a *app) showSummaryForDate(dateStr string) {
	totals, ok, err := a.engine.SummaryForDate(dateStr)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidDate) {
			fmt.Println("Invalid date format. Please use YYYY-MM-DD.")
			return
		}
		fmt.Printf("Error: Could not read summary. %v\n", err)
		return
	}
	if !ok {
		fmt.Printf("No summary found for %s\n", dateStr)
		return
	}

	p := render.NewPaginator(os.Stdout, a.in)
	if err := p.Show(render.Summary("Summary for "+dateStr, totals)); err != nil {
		logger.Error("failed to display summary", zap.Error(err))
	}
}

// showMealsForDate prints all entries of a date through the paginator.
func (a *app) showMealsForDate(dateStr string) {
	meals, err := a.engine.MealsForDate(dateStr)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidDate) {
			fmt.Println("Invalid date format. Please use YYYY-MM-DD.")
			return
		}
		fmt.Printf("Error: Could not read meals. %v\n", err)
		return
	}
	if len(meals) == 0 {
		fmt.Printf("No meals found for %s\n", dateStr)
		return
	}

	p := render.NewPaginator(os.Stdout, a.in)
	if err := p.Show(render.Meals(dateStr, meals)); err != nil {
		logger.Error("failed to display meals", zap.Error(err))
	}
}

// removeLastEntry removes today's most recent entry and reprints the
// refreshed summary.
func (a *app) removeLastEntry() {
	removed, err := a.engine.RemoveLastToday()
	if err != nil {
		fmt.Printf("Error: Could not remove entry. %v\n", err)
		return
	}
	if removed == nil {
		fmt.Println("No entries for today to remove.")
		return
	}

	fmt.Printf("Removing last entry: %g%s of %s...\n", removed.Quantity, removed.QuantityUnit, removed.FoodItem)
	fmt.Println("✅ Entry removed.")
	fmt.Println("Updating summary...")
	a.showTodaysSummary()
}

// confirm asks a yes/no question. Only an explicit yes counts.
func (a *app) confirm(prompt string) bool {
	answer := strings.ToLower(a.promptLine(prompt))
	return answer == "y" || answer == "yes"
}

// promptLine prints a prompt and reads one trimmed line.
func (a *app) promptLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// runSetup interactively writes a .env file.
func runSetup() error {
	reader := bufio.NewReader(os.Stdin)
	prompt := func(text string) string {
		fmt.Print(text)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	fmt.Println("Please provide the following information:")
	apiKey := prompt("Enter your OpenAI API key: ")
	baseURL := prompt("Enter the OpenAI base URL (or press Enter for default): ")
	model := prompt("Enter the OpenAI model name (or press Enter for default): ")

	if err := config.WriteEnvFile(".env", apiKey, baseURL, model); err != nil {
		return err
	}

	fmt.Println("\n.env file created successfully.")
	return nil
}
