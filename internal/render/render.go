// Package render formats pipeline plans and reports for the terminal.
// Styled output is only used on a tty; piped output (CI logs) stays plain.
package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/kaiachai/scanpipe/engine"
	"github.com/kaiachai/scanpipe/types"
)

// Styled reports whether stdout is a terminal.
func Styled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Plan renders the planned stage sequence of a definition (dry-run output).
func Plan(def *types.PipelineDefinition, styled bool) string {
	var b strings.Builder
	header := fmt.Sprintf("Pipeline %s (%d stages, global timeout %s)", def.Name, len(def.Stages), def.GlobalTimeout())
	if styled {
		header = titleStyle.Render(header)
	}
	b.WriteString(header + "\n")
	if def.Trigger != "" {
		line := fmt.Sprintf("  trigger: %s", def.Trigger)
		if styled {
			line = dimStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	for i, s := range def.Stages {
		gate := "advisory"
		if s.Required {
			gate = "required"
		}
		b.WriteString(fmt.Sprintf("  %d. %-16s %-16s %s  timeout=%s on_failure=%s %s\n",
			i+1, s.Name, s.Tool, gate, s.Timeout(), s.OnFailure, commandLine(s)))
	}
	return b.String()
}

// Summary renders the per-stage outcomes and overall status of a report.
func Summary(rep *engine.Report, styled bool) string {
	var b strings.Builder
	header := fmt.Sprintf("Pipeline %s: %s (%s)", rep.Pipeline, strings.ToUpper(string(rep.Overall)), rep.Duration.Round(time.Millisecond))
	if styled {
		header = overallStyle(rep.Overall).Render(header)
	}
	b.WriteString(header + "\n")

	for _, s := range rep.Stages {
		glyph, style := statusGlyph(s.Status)
		line := fmt.Sprintf("  %s %-16s %-10s %s", glyph, s.Name, s.Status, renderFindings(s.Findings))
		if styled {
			line = style.Render(line)
		}
		b.WriteString(line + "\n")
		if s.Detail != "" {
			detail := fmt.Sprintf("      %s", s.Detail)
			if styled {
				detail = dimStyle.Render(detail)
			}
			b.WriteString(detail + "\n")
		}
	}
	return b.String()
}

func commandLine(s types.StageDescriptor) string {
	parts := append([]string{s.Command}, s.Args...)
	return strings.Join(parts, " ")
}

func renderFindings(f map[string]int) string {
	if len(f) == 0 {
		return ""
	}
	categories := make([]string, 0, len(f))
	for c := range f {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("%s=%d", c, f[c]))
	}
	return strings.Join(parts, " ")
}

func statusGlyph(s engine.Status) (string, lipgloss.Style) {
	switch s {
	case engine.StatusSuccess:
		return "✓", successStyle
	case engine.StatusFailure:
		return "✗", errorStyle
	case engine.StatusTimeout:
		return "⏱", warningStyle
	case engine.StatusToolError:
		return "!", errorStyle
	default:
		return "-", dimStyle
	}
}

func overallStyle(s engine.OverallStatus) lipgloss.Style {
	switch s {
	case engine.OverallPass:
		return successStyle
	case engine.OverallTimedOut, engine.OverallAborted:
		return warningStyle
	default:
		return errorStyle
	}
}
