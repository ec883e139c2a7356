// Package render draws layout snapshots as text.
//
// # Overview
//
// Dashboards are normally rendered by a browser; this package gives the CLI
// and the terminal editor a faithful character-grid preview instead. Each
// grid column becomes [Options.CellWidth] characters and each row
// [Options.CellHeight] lines, so relative sizes and positions read the same
// as on screen.
//
//	fmt.Print(render.Text(snapshot, 12, render.Options{}))
//
// Conventions:
//   - widgets are boxed with their title on the top border
//   - collapsed widgets are drawn as a single bar, mirroring their
//     header-only height
//   - locked widgets have their title prefixed with "*"
//   - cells covered by more than one widget are filled with "#"
//
// [Styled] renders the same canvas coloured with lipgloss and highlights a
// selected widget. On terminals without colour support the output matches
// [Text].
package render
