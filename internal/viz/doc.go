// Package viz renders energy decompositions for the terminal.
//
//   - [RenderReport]: lipgloss panel with aggregates, per-component lines and
//     the block matrix
//   - [RenderConsistency]: result of an invariant check
//   - [Inspector]: Bubble Tea model for paging through single-site energies
//   - [Canvas]: Braille pixel canvas used for the cell projection
//
// # Key Bindings
//
//	↑/↓ j/k   - Move between particles
//	PgUp/PgDn - Page
//	g/G       - First/last particle
//	N         - Jump to the next component
//	T         - Cycle color themes
//	Q         - Quit
package viz
