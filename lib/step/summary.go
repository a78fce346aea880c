// Copyright 2026 The Wheelwright Authors
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the colors for summary output. All colors use lipgloss
// ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	Success     lipgloss.Color
	Failure     lipgloss.Color
	SoftFailure lipgloss.Color
	Faint       lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	Success:     lipgloss.Color("114"), // green
	Failure:     lipgloss.Color("196"), // bright red
	SoftFailure: lipgloss.Color("220"), // yellow/amber
	Faint:       lipgloss.Color("245"), // gray
}

// Render writes the human-readable end-of-run report: succeeded step
// names, hard failures with their errors, soft failures with their
// errors, each with elapsed time, then aggregate counts and the
// success rate. The profile controls styling; pass termenv.Ascii for
// files and pipes. Every failure, hard or soft, appears here so a run
// can be audited without re-reading the full log.
func (l *Ledger) Render(w io.Writer, theme Theme, profile termenv.Profile) {
	// The renderer would re-detect the profile from the environment
	// unless it is set explicitly; the caller already knows whether the
	// sink is a terminal.
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	success := renderer.NewStyle().Foreground(theme.Success)
	failure := renderer.NewStyle().Foreground(theme.Failure)
	soft := renderer.NewStyle().Foreground(theme.SoftFailure)
	faint := renderer.NewStyle().Foreground(theme.Faint)

	for _, s := range l.succeeded {
		fmt.Fprintln(w, success.Render(fmt.Sprintf("✓ %s (%s)", s.Name, formatDuration(s.Duration))))
	}
	for _, f := range l.failed {
		fmt.Fprintln(w, failure.Render(fmt.Sprintf("✗ %s (%s): %s", f.Name, formatDuration(f.Duration), f.Message)))
	}
	for _, f := range l.softFailed {
		fmt.Fprintln(w, soft.Render(fmt.Sprintf("⚠ %s (%s): %s", f.Name, formatDuration(f.Duration), f.Message)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, faint.Render(fmt.Sprintf(
		"%d succeeded, %d failed, %d soft-failed (success rate %.1f%%)",
		len(l.succeeded), len(l.failed), len(l.softFailed), l.SuccessRate())))
}

func formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.1fs", duration.Seconds())
}
