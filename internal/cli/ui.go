package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/usage"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleUnused for unreferenced archives.
	StyleUnused = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleTableHead = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNewline prints an empty line.
func printNewline(w io.Writer) {
	fmt.Fprintln(w)
}

// =============================================================================
// Run Summary
// =============================================================================

// printSummary prints the counters of a finished run.
func printSummary(w io.Writer, r *pipeline.Result) {
	if r.Project != nil {
		printKeyValue(w, "Project", r.Project.Coordinate.String())
	}
	printKeyValue(w, "Run", r.RunID)
	printKeyValue(w, "Nodes", StyleNumber.Render(fmt.Sprint(r.Tree.Len())))
	if r.Index != nil {
		classes := fmt.Sprintf("%d units, %d types", r.Index.Units, r.Index.Types.Len())
		if r.Index.Missing {
			classes = StyleWarning.Render("directory missing")
		}
		printKeyValue(w, "Classes", classes)
	}

	unused := fmt.Sprintf("%d of %d archives", len(r.Unused), len(r.Verdicts))
	if len(r.Unused) > 0 {
		unused = StyleUnused.Render(unused)
	}
	printKeyValue(w, "Unused", unused)

	conflicts := fmt.Sprintf("%d omitted", len(r.Conflicts.Entries))
	if missed := r.Conflicts.Missed(); missed > 0 {
		conflicts += StyleWarning.Render(fmt.Sprintf(", %d without winner", missed))
	}
	printKeyValue(w, "Conflicts", conflicts)
	printKeyValue(w, "Time", StyleDim.Render(r.Stats.Duration.Round(time.Millisecond).String()))
}

// =============================================================================
// Verdict Table
// =============================================================================

// verdictTable renders verdicts as a table with one row per archive.
func verdictTable(verdicts []pipeline.ArtifactVerdict) string {
	rows := make([][]string, 0, len(verdicts))
	for _, v := range verdicts {
		coords := make([]string, len(v.Coordinates))
		for i, c := range v.Coordinates {
			coords[i] = c.String()
		}
		declared := ""
		if v.Declared {
			declared = iconSuccess
		}
		rows = append(rows, []string{strings.Join(coords, "\n"), string(v.Reason), declared, v.Evidence})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Artifact", "Reason", "Declared", "Evidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHead
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(verdicts) {
				return base
			}
			switch {
			case col == 3:
				return base.Foreground(colorDim)
			case !verdicts[row].Used:
				return base.Foreground(colorRed)
			case verdicts[row].Reason == usage.ReasonMissing || verdicts[row].Reason == usage.ReasonArchiveError:
				return base.Foreground(colorYellow)
			}
			return base
		})
	return t.Render()
}
