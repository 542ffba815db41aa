package ui

import (
	"os"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question on the terminal. Without a terminal there
// is nobody to ask, so the answer is the given default.
func Confirm(title, description string, def bool) (bool, error) {
	if !IsTerminal(os.Stdin) {
		return def, nil
	}

	answer := def
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&answer),
		),
	)

	if err := form.Run(); err != nil {
		// Ctrl+C or Esc
		return false, nil
	}
	return answer, nil
}
