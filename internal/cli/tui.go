package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// DocumentListModel - Interactive document selection
// =============================================================================

// DocumentEntry is one row of the document list.
type DocumentEntry struct {
	Name        string
	Nodes       int
	Connections int
	Issues      int
	// Err is set when the document could not be loaded.
	Err string
}

// DocumentListModel is the bubbletea model for `store browse`.
type DocumentListModel struct {
	Entries  []DocumentEntry
	Cursor   int
	Offset   int
	Height   int
	Selected string
}

// NewDocumentListModel creates a new document list model.
func NewDocumentListModel(entries []DocumentEntry) DocumentListModel {
	return DocumentListModel{Entries: entries, Height: 15}
}

func (m DocumentListModel) Init() tea.Cmd {
	return nil
}

func (m DocumentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
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
		case "enter":
			if len(m.Entries) == 0 || m.Entries[m.Cursor].Err != "" {
				return m, nil
			}
			m.Selected = m.Entries[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m DocumentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stored Documents"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Entries))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := "✓"
		switch {
		case e.Err != "":
			status = "unreadable"
		case e.Issues > 0:
			status = fmt.Sprintf("%d issues", e.Issues)
		}
		rows = append(rows, []string{cursor, e.Name, strconv.Itoa(e.Nodes), strconv.Itoa(e.Connections), status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Document", "Nodes", "Edges", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			e := m.Entries[idx]
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			switch {
			case e.Err != "":
				return base.Foreground(colorRed)
			case e.Issues > 0 && col == 4:
				return base.Foreground(colorYellow)
			case idx == m.Cursor:
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}
