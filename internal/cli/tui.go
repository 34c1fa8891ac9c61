package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SuiteBrowserModel - Interactive suite browser
// =============================================================================

// SuiteBrowserModel is the bubbletea model behind classify --interactive.
// The upper pane lists the suites; the lower pane details the selected one.
type SuiteBrowserModel struct {
	Result suite.Result
	Paths  release.PathResolver
	Cursor int
	Height int
	Offset int

	shared map[string][]string
}

// NewSuiteBrowserModel creates a browser over r.
func NewSuiteBrowserModel(r suite.Result, paths release.PathResolver) SuiteBrowserModel {
	shared := make(map[string][]string)
	for _, s := range r.Shared() {
		var roots []string
		for _, id := range s.Roots {
			roots = append(roots, id.Name)
		}
		shared[s.Module.Identity.String()] = roots
	}
	return SuiteBrowserModel{Result: r, Paths: paths, Height: 10, shared: shared}
}

func (m SuiteBrowserModel) Init() tea.Cmd {
	return nil
}

func (m SuiteBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Result.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Result.Entries); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help line and the detail pane.
		m.Height = max(3, (msg.Height-8)/2)
	}
	return m, nil
}

func (m SuiteBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Suites"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.Result.Entries) == 0 {
		b.WriteString(listDimStyle.Render("  no suites"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Result.Entries))
	for i := m.Offset; i < end; i++ {
		e := m.Result.Entries[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		kind := "single"
		if e.IsBundle() {
			kind = fmt.Sprintf("suite of %d", len(e.Members))
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-30s %-12s", cursor, e.Root.Label(), e.Root.Identity.Version)))
		b.WriteString(listDimStyle.Render(kind))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detail(m.Result.Entries[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Result.Entries))))
	return b.String()
}

func (m SuiteBrowserModel) detail(e suite.Entry) string {
	var b strings.Builder
	b.WriteString(listDimStyle.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", listDimStyle.Render("root"), StyleValue.Render(e.Root.Identity.String()))
	fmt.Fprintf(&b, "%s %s\n", listDimStyle.Render("file"), StyleHighlight.Render(m.Paths.ResolveEntry(e)))
	for _, mem := range e.Absorbed() {
		line := "  " + iconArrow + " " + mem.Identity.String()
		if roots, ok := m.shared[mem.Identity.String()]; ok {
			b.WriteString(styleShared.Render(line + "  (also in " + strings.Join(otherRoots(roots, e.Root.Identity.Name), ", ") + ")"))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func otherRoots(roots []string, self string) []string {
	var out []string
	for _, r := range roots {
		if r != self {
			out = append(out, r)
		}
	}
	return out
}
