package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/depscope/pkg/conflict"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConflictListModel - Interactive conflict browser
// =============================================================================

// ConflictListModel is the bubbletea model for browsing omitted dependencies.
// Enter toggles the paths of the entry under the cursor.
type ConflictListModel struct {
	Entries  []conflict.Entry
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// NewConflictListModel creates a new conflict list model.
func NewConflictListModel(entries []conflict.Entry) ConflictListModel {
	return ConflictListModel{
		Entries: entries,
		Height:  15,
	}
}

func (m ConflictListModel) Init() tea.Cmd {
	return nil
}

func (m ConflictListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Expanded {
				m.Expanded = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Entries) > 0 {
				m.Expanded = !m.Expanded
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ConflictListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Omitted Dependencies"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ paths  q quit"))
	b.WriteString("\n\n")

	if len(m.Entries) == 0 {
		b.WriteString(StyleSuccess.Render("No dependency was omitted for a conflict."))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		winner := e.Omitted.Winner
		if !e.Resolved() {
			winner += " " + iconWarning
		}
		rows = append(rows, []string{cursor, e.Omitted.Label(), winner, fmt.Sprint(len(e.OmittedPath) - 1)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Omitted", "Winner", "Depth").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.Entries[idx].Resolved() && col == 2 {
				base = base.Foreground(colorYellow)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Expanded {
		b.WriteString("\n")
		b.WriteString(m.detail(m.Entries[m.Cursor]))
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))
	return b.String()
}

func (m ConflictListModel) detail(e conflict.Entry) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(e.Omitted.Label()))
	b.WriteString("\n")
	b.WriteString("  " + StyleDim.Render("omitted ") + conflict.FormatPath(e.OmittedPath) + "\n")
	if e.Resolved() {
		b.WriteString("  " + StyleDim.Render("winner  ") + conflict.FormatPath(e.WinnerPath) + "\n")
	} else {
		b.WriteString("  " + StyleWarning.Render("winner "+e.Omitted.Winner+" not found in tree") + "\n")
	}
	return b.String()
}
