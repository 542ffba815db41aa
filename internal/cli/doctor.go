package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/doctor"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/ui"
	"github.com/spf13/cobra"
)

// categoryOrder is the order report sections are printed in.
var categoryOrder = []string{"CONFIG", "SESSION", "AWS", "SSH"}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func (a *App) newDoctorCmd() *cobra.Command {
	var fix, asJSON bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that sessions can be started from this machine",
		Long: `Run every preflight check and print a report:

  CONFIG   the config file parses and validates
  SESSION  session-manager-plugin is installed
  AWS      the aws CLI is new enough for port forwarding
  SSH      known_hosts won't reject tunnels to different instances

Examples:
  ec2ssm doctor
  ec2ssm doctor --fix
  ec2ssm doctor -o 2222`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.doctorCommand(cmd, fix, asJSON)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "install missing pieces where possible")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	addPortFlag(cmd.Flags(), &a.opts)
	return cmd
}

func (a *App) doctorCommand(cmd *cobra.Command, fix, asJSON bool) error {
	ctx := cmd.Context()

	// A broken config file is something to report, not a reason to stop.
	settings, _, err := config.LoadSettings(a.opts.ConfigPath)
	if err != nil {
		settings = config.DefaultSettings()
	}
	cfg, err := BuildConfig(a.opts, settings, cmd.Flags().Changed, a.logger())
	if err != nil {
		return err
	}

	checks := a.doctorChecks(cfg)
	results := doctor.RunAll(ctx, checks)

	if fix {
		results = a.attemptFixes(ctx, checks, results)
	}

	if asJSON {
		if err := outputDoctorJSON(a.Stdout, checks, results); err != nil {
			return err
		}
	} else {
		outputDoctorText(a.Stdout, checks, results, fix)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

// doctorChecks is the preflight set plus the checks only worth reporting.
func (a *App) doctorChecks(cfg config.Config) []doctor.Check {
	checks := []doctor.Check{&doctor.ConfigFileCheck{ConfigPath: a.opts.ConfigPath}}
	checks = append(checks, a.preflightChecks(cfg)...)
	checks = append(checks, &doctor.TunnelHostKeyCheck{Port: cfg.LocalPort})
	return checks
}

// attemptFixes runs Fix for fixable problems and re-runs those checks.
func (a *App) attemptFixes(ctx context.Context, checks []doctor.Check, results []doctor.CheckResult) []doctor.CheckResult {
	for i, result := range results {
		if !result.Fixable || result.Status == doctor.StatusPass {
			continue
		}
		if err := checks[i].Fix(ctx); err != nil {
			a.logger().Warn("fixing %s failed", checks[i].Name())
			fmt.Fprint(a.Stderr, err.Error())
			continue
		}
		results[i] = checks[i].Run(ctx)
	}
	return results
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := make(map[string][]doctor.CheckResult)
	var order []string

	for i, check := range checks {
		cat := check.Category()
		if _, exists := grouped[cat]; !exists {
			order = append(order, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(order)),
	}
	for _, cat := range order {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("ec2ssm diagnostic report"))
	fmt.Fprintln(w)

	grouped := make(map[string][]int)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], i)
	}

	for _, category := range categoryOrder {
		indices := grouped[category]
		if len(indices) == 0 {
			continue
		}

		fmt.Fprintln(w, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(w, results[idx])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))

		if doctor.FixableCount(results) > 0 && !fixed {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  Run with %s to install what's missing.\n", mutedStyle.Render("--fix"))
		}
	}

	fmt.Fprintln(w)
}

// renderCheckResult renders a single check result.
func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolComplete
		style = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	case doctor.StatusWarn:
		symbol = ui.SymbolWarning
		style = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	default:
		symbol = ui.SymbolFail
		style = lipgloss.NewStyle().Foreground(ui.ColorError)
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", muted.Render(line))
		}
	}
}
