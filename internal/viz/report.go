package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pairenergy/internal/energy"
)

const maxMatrixColumns = 8

// RenderReport draws a decomposition as a panel: the aggregates, one line per
// component and, for small systems, the block matrix.
func RenderReport(r *energy.Report) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%d particles · %s · %s", r.Particles, r.Potential, r.Backend)))
	b.WriteString("\n\n")

	metric := func(label string, v float64) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%16.8g", v)))
		b.WriteString("\n")
	}
	metric("frozen", r.FrozenEnergy)
	metric("interacting", r.InteractingEnergy)
	metric("total", r.TotalEnergy)

	share := 0.0
	if den := math.Abs(r.FrozenEnergy) + math.Abs(r.InteractingEnergy); den > 0 {
		share = math.Abs(r.FrozenEnergy) / den
	}
	b.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", "frozen share")) + ShareBar(share, 20) + "\n")

	if r.Volume > 0 {
		b.WriteString("\n")
		metric("volume", r.Volume)
		metric("density", r.Density)
	}

	b.WriteString("\n" + Separator(44) + "\n\n")

	b.WriteString(Subtle.Render(fmt.Sprintf("%-4s %-8s %6s %16s %16s", "#", "state", "n", "intra", "with all")) + "\n")
	for c := 0; c < r.Components(); c++ {
		b.WriteString(fmt.Sprintf("%-4d %-8s %6d %16.8g %16.8g\n",
			c, componentState(r, c), r.Counts[c], r.Blocks[c][c], r.Row(c)))
	}

	if n := r.Components(); n > 1 && n <= maxMatrixColumns {
		b.WriteString("\n" + Title.Render("blocks") + "\n")
		for i := 0; i < n; i++ {
			row := make([]string, n)
			for j := 0; j < n; j++ {
				row[j] = fmt.Sprintf("%12.5g", r.Blocks[i][j])
			}
			b.WriteString(strings.Join(row, " ") + "\n")
		}
	}

	return GlassPanel.Render(strings.TrimRight(b.String(), "\n"))
}

func componentState(r *energy.Report, c int) string {
	switch {
	case r.Surface && c == r.Components()-1:
		return "surface"
	case r.Frozen[c]:
		return "frozen"
	default:
		return "free"
	}
}

// RenderConsistency shows the three ways of assembling the total energy and
// whether they agree within tol.
func RenderConsistency(c *energy.Consistency, tol float64) string {
	status := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88")).Render("consistent")
	if !c.OK(tol) {
		status = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444")).Render("INCONSISTENT")
	}

	lines := []string{
		Title.Render("decomposition check") + "  " + status,
		"",
		MetricLabel.Render(fmt.Sprintf("%-24s", "frozen + interacting")) + MetricValue.Render(fmt.Sprintf("%18.10g", c.Frozen+c.Interacting)),
		MetricLabel.Render(fmt.Sprintf("%-24s", "total")) + MetricValue.Render(fmt.Sprintf("%18.10g", c.Total)),
		MetricLabel.Render(fmt.Sprintf("%-24s", "sum of sites / 2")) + MetricValue.Render(fmt.Sprintf("%18.10g", c.SiteSum/2)),
		"",
		Subtle.Render(fmt.Sprintf("partition delta %.3g, site delta %.3g, tolerance %.1g", c.PartitionDelta(), c.SiteDelta(), tol)),
	}
	return GlassPanel.Render(strings.Join(lines, "\n"))
}
