package ui

import (
	"io"
	"os"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"golang.org/x/term"
)

// SelectMode is how one instance is chosen from a resolution list.
type SelectMode int

const (
	// SelectFirst takes the first instance in API order without asking.
	SelectFirst SelectMode = iota
	// SelectMenu prints the numbered menu and reads one answer.
	SelectMenu
	// SelectPicker runs the full-screen list picker, or the menu when
	// stdin isn't a terminal.
	SelectPicker
)

// ModeFor maps the -s and --picker flags to a mode.
func ModeFor(interactive, picker bool) SelectMode {
	switch {
	case picker:
		return SelectPicker
	case interactive:
		return SelectMenu
	default:
		return SelectFirst
	}
}

// Selector picks the instance to connect to.
type Selector struct {
	Mode  SelectMode
	Title string
	In    io.Reader
	Out   io.Writer
	Log   logger.Logger

	// IsTerminal reports whether In is an interactive terminal.
	// Defaults to checking In with x/term.
	IsTerminal func() bool
}

// Select returns one entry of instances according to the mode. instances
// must not be empty; the caller reports "no instances" itself.
func (s *Selector) Select(instances []inventory.Instance) (inventory.Instance, error) {
	if len(instances) == 0 {
		return inventory.Instance{}, errors.NewInput("Nothing to select from", "")
	}

	switch s.Mode {
	case SelectFirst:
		if len(instances) > 1 {
			s.Log.Debug("%d matches, taking the first: %s", len(instances), instances[0].Label())
		}
		return instances[0], nil
	case SelectMenu:
		return PromptSelection(instances, s.In, s.Out)
	case SelectPicker:
		if !s.isTerminal() {
			s.Log.Debug("stdin is not a terminal, using the numbered menu")
			return PromptSelection(instances, s.In, s.Out)
		}
		return PickInstance(instances, s.Title, s.In, s.Out)
	default:
		return inventory.Instance{}, errors.NewUsage("Unknown selection mode", "")
	}
}

func (s *Selector) isTerminal() bool {
	if s.IsTerminal != nil {
		return s.IsTerminal()
	}
	return IsTerminal(s.In)
}

// IsTerminal reports whether r is a file attached to a terminal.
func IsTerminal(r any) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
