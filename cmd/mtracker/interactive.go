// This file implements the interactive menu mode, entered when mtracker
// runs with no arguments.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var menuStyle = lipgloss.NewStyle().Bold(true)

const menuText = `
What would you like to do?
1. ✍️  Log a new food entry
2. 📊 Show today's summary
3. 📅 Show summary for a specific date
4. 📜 View meals for a specific date
5. 🚪 Exit`

// runMenu loops over the interactive menu until the user exits or stdin is
// closed. Every operation runs to completion before the next prompt.
func (a *app) runMenu(ctx context.Context) error {
	for {
		fmt.Println(menuStyle.Render(menuText))
		fmt.Print("> ")

		line, err := a.in.ReadString('\n')
		if err != nil {
			// stdin closed: treat like exit.
			fmt.Println()
			return nil
		}

		switch strings.TrimSpace(line) {
		case "1":
			text := a.promptLine("Enter food entry (e.g., 'comi 100g de frango'): ")
			if text != "" {
				a.logFood(ctx, text)
			}
		case "2":
			a.showTodaysSummary()
		case "3":
			a.showSummaryForDate(a.promptLine("Enter date (YYYY-MM-DD): "))
		case "4":
			a.showMealsForDate(a.promptLine("Enter date (YYYY-MM-DD): "))
		case "5":
			return nil
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}
