package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/board"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/render"
)

// Editor styles
var (
	editorModeView = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	editorModeEdit = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	editorHelp     = lipgloss.NewStyle().Foreground(colorDim)
)

const editorHelpText = "tab select  e edit  ←↑↓→ move  shift+←↑↓→ resize  l lock  c collapse  x remove  v/h/n compact  s save  r reset  q quit"

// =============================================================================
// EditorModel - Interactive layout editor
// =============================================================================

// EditorModel is the bubbletea model for the interactive layout editor.
// Arrow keys become pixel displacements of exactly one grid unit, so every
// edit goes through the same gesture path a pointer would.
type EditorModel struct {
	Board    *board.Board
	Record   *layout.Record
	Selected string
	Status   string
	Dirty    bool

	save      func(*layout.Record) error
	cellWidth int
}

// NewEditorModel creates an editor for rec at the given container width.
// save is called with the updated record when the user presses s.
func NewEditorModel(rec *layout.Record, width float64, opts grid.Options, save func(*layout.Record) error) *EditorModel {
	m := &EditorModel{Record: rec, save: save}
	m.Board = board.New(rec.Widgets, rec.Config(width), opts,
		board.OnChange(func(grid.Snapshot) { m.Dirty = true }),
		board.OnRemove(func(id string) { m.Status = "removed " + id }),
		board.OnReset(func() {
			m.Status = "reset"
			m.Dirty = m.unsaved()
		}),
	)
	if len(rec.Widgets) > 0 {
		m.Selected = rec.Widgets[0].ID
	}
	return m
}

func (m *EditorModel) Init() tea.Cmd {
	return nil
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		cols := max(m.Board.Config().Cols, 1)
		m.cellWidth = max(msg.Width/cols, 3)
	}
	return m, nil
}

func (m *EditorModel) handleKey(key string) tea.Cmd {
	m.Status = ""
	cfg := m.Board.Config()
	stepX := grid.ColumnWidth(cfg) + cfg.Gap
	stepY := cfg.RowHeight + cfg.Gap

	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "e":
		if !m.Board.ToggleEdit() {
			m.Status = "editing is disabled"
		}

	case "left":
		m.drag(-stepX, 0)
	case "right":
		m.drag(stepX, 0)
	case "up":
		m.drag(0, -stepY)
	case "down":
		m.drag(0, stepY)
	case "shift+left":
		m.resize(-stepX, 0)
	case "shift+right":
		m.resize(stepX, 0)
	case "shift+up":
		m.resize(0, -stepY)
	case "shift+down":
		m.resize(0, stepY)

	case "l":
		if !m.needsEdit() {
			m.Board.ToggleLock(m.Selected)
		}
	case "c":
		m.Board.ToggleCollapse(m.Selected)
	case "x":
		m.remove()

	case "v":
		m.setCompact(grid.CompactVertical)
	case "h":
		m.setCompact(grid.CompactHorizontal)
	case "n":
		m.setCompact(grid.CompactNone)

	case "s":
		m.doSave()
	case "r":
		m.Board.Reset()
		m.clampSelection()
	}
	return nil
}

func (m *EditorModel) cycle(step int) {
	s := m.Board.Snapshot()
	if len(s) == 0 {
		m.Selected = ""
		return
	}
	i := s.Index(m.Selected)
	if i < 0 {
		i = 0
	} else {
		i = (i + step + len(s)) % len(s)
	}
	m.Selected = s[i].ID
}

func (m *EditorModel) clampSelection() {
	if m.Board.Snapshot().Index(m.Selected) < 0 {
		m.Selected = ""
		m.cycle(0)
	}
}

func (m *EditorModel) drag(dx, dy float64) {
	if m.needsEdit() {
		return
	}
	if !m.Board.Drag(m.Selected, dx, dy) {
		m.Status = "move rejected"
	}
}

func (m *EditorModel) resize(dx, dy float64) {
	if m.needsEdit() {
		return
	}
	if !m.Board.Resize(m.Selected, dx, dy) {
		m.Status = "resize rejected"
	}
}

func (m *EditorModel) remove() {
	if m.needsEdit() {
		return
	}
	if !m.Board.Remove(m.Selected) {
		m.Status = m.Selected + " is locked"
		return
	}
	m.clampSelection()
}

func (m *EditorModel) setCompact(kind grid.CompactType) {
	if m.needsEdit() {
		return
	}
	m.Board.SetCompact(kind)
	m.Status = "compact: " + compactName(kind)
}

func (m *EditorModel) needsEdit() bool {
	if m.Board.Mode() != board.Edit {
		m.Status = "press e to edit"
		return true
	}
	return false
}

// unsaved reports whether the board differs from the last saved record.
// Reset returns to the layout the editor opened with, which after a save is
// no longer what is on disk.
func (m *EditorModel) unsaved() bool {
	cur := m.Record.Clone()
	cur.Widgets = m.Board.Snapshot()
	return layout.Fingerprint(cur) != layout.Fingerprint(m.Record)
}

// doSave writes the current layout back under the original record's
// identity.
func (m *EditorModel) doSave() {
	rec, err := m.Board.Save(m.Record.Name, m.Record.Description)
	if err != nil {
		m.Status = "save failed: " + err.Error()
		return
	}
	rec.ID = m.Record.ID
	rec.CreatedAt = m.Record.CreatedAt
	rec.IsDefault = m.Record.IsDefault
	if m.save != nil {
		if err := m.save(rec); err != nil {
			m.Status = "save failed: " + err.Error()
			return
		}
	}
	m.Record = rec
	m.Dirty = false
	m.Status = "saved"
}

func (m *EditorModel) View() string {
	var b strings.Builder

	mode := editorModeView.Render("VIEW")
	if m.Board.Mode() == board.Edit {
		mode = editorModeEdit.Render("EDIT")
	}
	title := m.Record.Name
	if m.Dirty {
		title += "*"
	}
	b.WriteString(StyleTitle.Render(title) + "  " + mode)
	b.WriteString("\n")
	b.WriteString(editorHelp.Render(editorHelpText))
	b.WriteString("\n\n")

	b.WriteString(render.Styled(m.Board.Snapshot(), m.Board.Config().Cols, render.Options{
		CellWidth: m.cellWidth,
		Selected:  m.Selected,
	}))
	b.WriteString("\n\n")

	sel := "none"
	if w, ok := m.Board.Snapshot().Find(m.Selected); ok {
		sel = fmt.Sprintf("%s %s", w.ID, w.Position)
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  selected: %s  compact: %s  %s", sel, compactName(m.Board.Options().Compact), m.Board.Breakpoint())))
	if m.Status != "" {
		b.WriteString("\n  " + StyleWarning.Render(m.Status))
	}
	return b.String()
}

func compactName(kind grid.CompactType) string {
	if kind == grid.CompactNone {
		return "none"
	}
	return string(kind)
}

// =============================================================================
// edit command
// =============================================================================

func (c *CLI) editCommand() *cobra.Command {
	var o editOpts

	cmd := &cobra.Command{
		Use:   "edit [layout]",
		Short: "Edit a layout file interactively",
		Long: `Edit a layout file interactively.

The editor starts in view mode; press e to switch to edit mode. Arrow keys
move the selected widget by one grid unit and shift+arrows resize it. Press
s to write the layout back to the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rec, err := c.readLayout(path)
			if err != nil {
				return err
			}
			width, opts, err := c.policy(cmd, &o)
			if err != nil {
				return err
			}

			m := NewEditorModel(rec, width, opts, func(r *layout.Record) error {
				_, err := writeLayout(r, path, o.output)
				return err
			})
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return err
			}
			if m.Dirty {
				printWarning("Unsaved changes discarded")
			}
			return nil
		},
	}

	addPolicyFlags(cmd, &o)
	addOutputFlag(cmd, &o)
	return cmd
}
