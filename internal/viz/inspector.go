package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pairenergy/internal/atoms"
	"github.com/san-kum/pairenergy/internal/energy"
	"github.com/san-kum/pairenergy/internal/geom"
)

// Inspector is a bubbletea model that pages through the single-site energies
// of a system next to a top-down projection of the cell.
type Inspector struct {
	sys       atoms.System
	report    *energy.Report
	sites     []float64
	comp      []int
	positions []geom.Vec3
	lengths   geom.Vec3
	canvas    *Canvas

	cursor, offset int
	width, height  int
	theme          int
}

func NewInspector(sys atoms.System, report *energy.Report, sites []float64) (Inspector, error) {
	if len(sites) != sys.Len() {
		return Inspector{}, fmt.Errorf("viz: %d site energies for %d particles", len(sites), sys.Len())
	}
	counts := report.Counts
	if report.Surface {
		counts = counts[:len(counts)-1]
	}
	offsets, err := atoms.Offsets(counts)
	if err != nil {
		return Inspector{}, err
	}

	comp := make([]int, sys.Len())
	c := 0
	for i := range comp {
		for c+1 < len(offsets)-1 && i >= offsets[c+1] {
			c++
		}
		comp[i] = c
	}

	lengths, err := sys.Cell().Lengths()
	if err != nil {
		return Inspector{}, err
	}

	return Inspector{
		sys:       sys,
		report:    report,
		sites:     sites,
		comp:      comp,
		positions: atoms.Positions(sys),
		lengths:   lengths,
		canvas:    NewCanvas(24, 10),
		width:     100,
		height:    24,
	}, nil
}

// WithTheme starts the inspector on the named theme.
func (m Inspector) WithTheme(name string) (Inspector, error) {
	i, ok := themeIndex(name)
	if !ok {
		return m, fmt.Errorf("viz: unknown theme %q", name)
	}
	m.theme = i
	return m, nil
}

func (m Inspector) Cursor() int { return m.cursor }

func (m Inspector) Theme() Theme { return Themes[m.theme] }

func (m Inspector) Init() tea.Cmd { return nil }

func (m Inspector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
	}
	return m, nil
}

func (m Inspector) handleKey(msg tea.KeyMsg) (Inspector, tea.Cmd) {
	n := len(m.sites)
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.rows()
	case "pgdown":
		m.cursor += m.rows()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = n - 1
	case "n":
		m.cursor = m.nextComponent()
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	}
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	m.scroll()
	return m, nil
}

// nextComponent returns the first particle of the next non-empty component,
// wrapping to the start.
func (m Inspector) nextComponent() int {
	if len(m.comp) == 0 {
		return 0
	}
	cur := m.comp[m.cursor]
	for i := m.cursor + 1; i < len(m.comp); i++ {
		if m.comp[i] != cur {
			return i
		}
	}
	return 0
}

func (m Inspector) rows() int {
	return max(m.height-8, 3)
}

func (m *Inspector) scroll() {
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m Inspector) View() string {
	th := m.Theme()
	title := lipgloss.NewStyle().Bold(true).Foreground(th.Primary)
	muted := lipgloss.NewStyle().Foreground(th.Muted)
	cursor := Selected.Foreground(th.Accent)

	var list strings.Builder
	list.WriteString(muted.Render(fmt.Sprintf("  %6s %-4s %4s %16s", "index", "sp", "comp", "site energy")) + "\n")
	end := min(m.offset+m.rows(), len(m.sites))
	for i := m.offset; i < end; i++ {
		c := m.comp[i]
		line := fmt.Sprintf("%6d %-4s %4d %16.8g", i, m.sys.Species(i), c, m.sites[i])
		if i == m.cursor {
			list.WriteString(cursor.Render("▶ "+line) + "\n")
			continue
		}
		list.WriteString("  " + th.stateStyle(m.report.Frozen[c]).Render(line) + "\n")
	}

	side := m.detail(title, muted, lipgloss.NewStyle().Foreground(th.Text))

	body := lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "   ", side)
	help := KeyHint.Render("↑/↓ move · pgup/pgdn page · n next component · t theme · q quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		title.Render(fmt.Sprintf("site energies · %d particles · total %.8g", m.report.Particles, m.report.TotalEnergy)),
		"",
		body,
		help,
	)
}

func (m Inspector) detail(title, muted, text lipgloss.Style) string {
	if len(m.sites) == 0 {
		return muted.Render("empty system")
	}
	i := m.cursor
	c := m.comp[i]
	p := m.positions[i]

	state := "free"
	if m.report.Frozen[c] {
		state = "frozen"
	}

	Projection(m.canvas, m.positions, m.lengths, i)

	lines := []string{
		title.Render(fmt.Sprintf("particle %d", i)),
		text.Render(fmt.Sprintf("species    %s", m.sys.Species(i))),
		text.Render(fmt.Sprintf("component  %d (%s)", c, state)),
		text.Render(fmt.Sprintf("position   %.3f %.3f %.3f", p[0], p[1], p[2])),
		text.Render(fmt.Sprintf("energy     %.8g", m.sites[i])),
		"",
		SparklineChart(m.sites, m.canvas.Width),
		strings.TrimRight(m.canvas.String(), "\n"),
	}
	return strings.Join(lines, "\n")
}
