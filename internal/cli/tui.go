package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okanele/orrery/pkg/drawing"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// drawingEntry is one row of the interactive picker.
type drawingEntry struct {
	Path      string
	Nodes     int
	Edges     int
	Canvas    string
	CreatedAt time.Time
}

// listDrawings collects the drawing files in dir, newest first. Files
// that don't parse as drawings are skipped.
func listDrawings(dir string) ([]drawingEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var entries []drawingEntry
	for _, path := range paths {
		d, err := drawing.ReadFile(path)
		if err != nil {
			continue
		}
		entries = append(entries, drawingEntry{
			Path:      path,
			Nodes:     len(d.Nodes),
			Edges:     len(d.Edges),
			Canvas:    fmt.Sprintf("%.0fx%.0f", d.Width, d.Height),
			CreatedAt: d.CreatedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// runDrawingPicker shows the picker and returns the selected path, or
// "" when the user quits without selecting.
func runDrawingPicker(entries []drawingEntry) (string, error) {
	model := newDrawingListModel(entries)
	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(drawingListModel)
	if !ok || m.selected == "" {
		return "", nil
	}
	return m.selected, nil
}

// drawingListModel is the bubbletea model for interactive drawing selection.
type drawingListModel struct {
	entries  []drawingEntry
	cursor   int
	offset   int
	height   int
	selected string
}

func newDrawingListModel(entries []drawingEntry) drawingListModel {
	return drawingListModel{entries: entries, height: 15}
}

func (m drawingListModel) Init() tea.Cmd {
	return nil
}

func (m drawingListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.selected = m.entries[m.cursor].Path
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m drawingListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Drawing"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.entries))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			e.Path,
			fmt.Sprintf("%d", e.Nodes),
			fmt.Sprintf("%d", e.Edges),
			e.Canvas,
			formatRelativeTime(e.CreatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Drawing", "Nodes", "Edges", "Canvas", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.entries))))

	return b.String()
}

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
