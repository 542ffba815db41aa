// Package ui holds the terminal pieces ec2ssm shows the operator: the
// resolve spinner, the two ways of choosing between several matching
// instances, and the yes/no prompt used before installing the plugin.
//
// # Choosing an instance
//
// A Selector decides how to pick from a resolver result:
//
//	SelectFirst  - take the first match and log the count
//	SelectMenu   - numbered list on stdout, answer read from stdin
//	SelectPicker - full-screen filterable list (Bubble Tea)
//
// The picker needs a terminal on stdin; without one the selector falls back
// to the numbered menu so piped answers keep working:
//
//	sel := &ui.Selector{
//		Mode: ui.ModeFor(interactive, picker),
//		In:   os.Stdin,
//		Out:  os.Stdout,
//		Log:  log,
//	}
//	inst, err := sel.Select(instances)
//
// An empty answer at the menu picks entry 1. Anything that isn't a listed
// number is an input error.
//
// # Spinner
//
//	s := ui.NewSpinner(os.Stderr, "Finding instances")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail() or s.Skip()
//
// # Colors
//
// Colors are ANSI codes rendered through Lip Gloss. DisableColors switches
// the profile to plain ASCII for --no-color and NO_COLOR.
package ui
