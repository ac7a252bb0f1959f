package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/topolab/pkg/topo"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TopologyModel - Interactive topology browser
// =============================================================================

// Browser tabs.
const (
	tabNodes = iota
	tabLinks
)

// TopologyModel is the bubbletea model for browsing a topology.
type TopologyModel struct {
	Source string // lab file the topology came from
	Graph  *topo.Graph
	Nodes  []*topo.Node
	Links  []topo.Link
	Tab    int
	Cursor int
	Height int
	Offset int
}

// newTopologyModel creates a browser over the given graph.
func newTopologyModel(source string, g *topo.Graph) TopologyModel {
	return TopologyModel{
		Source: source,
		Graph:  g,
		Nodes:  g.Nodes(),
		Links:  g.Links(),
		Height: 15,
	}
}

func (m TopologyModel) Init() tea.Cmd {
	return nil
}

// rowCount returns the number of rows in the active tab.
func (m TopologyModel) rowCount() int {
	if m.Tab == tabLinks {
		return len(m.Links)
	}
	return len(m.Nodes)
}

func (m TopologyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "left", "right", "h", "l":
			if m.Tab == tabNodes {
				m.Tab = tabLinks
			} else {
				m.Tab = tabNodes
			}
			m.Cursor = 0
			m.Offset = 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rowCount()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TopologyModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Topology: " + m.Source))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ switch tab  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n")

	if m.Tab == tabLinks {
		b.WriteString(m.linkTable())
	} else {
		b.WriteString(m.nodeTable())
	}

	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.rowCount())))

	return b.String()
}

// tabBar renders the tab labels with the active one highlighted.
func (m TopologyModel) tabBar() string {
	nodes := fmt.Sprintf("Nodes (%d)", len(m.Nodes))
	links := fmt.Sprintf("Links (%d)", len(m.Links))
	if m.Tab == tabLinks {
		return "  " + listDimStyle.Render(nodes) + "   " + listSelectedStyle.Render(links)
	}
	return "  " + listSelectedStyle.Render(nodes) + "   " + listDimStyle.Render(links)
}

// nodeTable renders the visible window of the node list.
func (m TopologyModel) nodeTable() string {
	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mgmt := n.MgmtAddress
		if mgmt == "" {
			mgmt = "—"
		}

		role := "—"
		if n.Role != topo.RoleUndetermined {
			role = n.Role.String()
		}

		rows = append(rows, []string{
			cursor,
			n.ID,
			role,
			mgmt,
			strconv.Itoa(len(n.Ports)),
			strconv.Itoa(m.Graph.Degree(n.ID)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Role", "Mgmt", "Ports", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			n := m.Nodes[actualIdx]

			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorGray)
			}

			if actualIdx == m.Cursor {
				if col == 3 {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			if n.Isolated {
				return base.Foreground(colorDim)
			}
			if col == 3 {
				return base
			}
			return base.Foreground(colorWhite)
		})

	return t.Render()
}

// linkTable renders the visible window of the link list.
func (m TopologyModel) linkTable() string {
	end := m.Offset + m.Height
	if end > len(m.Links) {
		end = len(m.Links)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := m.Links[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		name := l.Name
		if name == "" {
			name = "—"
		}

		rows = append(rows, []string{cursor, l.A.Key(), l.B.Key(), linkKind(l), name})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "A", "B", "Kind", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			base := lipgloss.NewStyle()
			if col == 4 {
				base = base.Foreground(colorGray)
			}

			if m.Offset+row == m.Cursor {
				if col == 4 {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 4 {
				return base
			}
			return base.Foreground(colorWhite)
		})

	return t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

// linkKind labels a link by its endpoint kinds.
func linkKind(l topo.Link) string {
	switch {
	case l.A.IsLAG() || l.B.IsLAG():
		return "lag"
	case l.A.IsBreakout() || l.B.IsBreakout():
		return "breakout"
	default:
		return "port"
	}
}
