package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/store"
)

// layoutsCommand creates the saved-layout management command.
func (c *CLI) layoutsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Manage layouts in the configured store",
		Long: `Manage layouts in the configured store.

The store backend is chosen by [store] backend in the config file or the
GRIDBOARD_STORE environment variable: memory, file, sqlite, redis or mongo.`,
	}

	cmd.AddCommand(c.layoutsListCommand())
	cmd.AddCommand(c.layoutsGetCommand())
	cmd.AddCommand(c.layoutsSaveCommand())
	cmd.AddCommand(c.layoutsDeleteCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) layoutsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved layouts, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				recs, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					printInfo("No saved layouts")
					return nil
				}
				fmt.Println(layoutsTable(recs))
				return nil
			})
		},
	}
}

func layoutsTable(recs []*layout.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		def := ""
		if r.IsDefault {
			def = "default"
		}
		rows = append(rows, []string{
			r.ID,
			r.Name,
			fmt.Sprintf("%d", len(r.Widgets)),
			fmt.Sprintf("%d", r.Cols),
			formatRelativeTime(r.UpdatedAt),
			def,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Widgets", "Cols", "Updated", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0 || col == 4:
				return StyleDim
			case col == 5:
				return StyleSuccess
			}
			return StyleValue
		}).
		Render()
}

func (c *CLI) layoutsGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Print a saved layout or write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				rec, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					data, err := layout.Marshal(rec)
					if err != nil {
						return err
					}
					fmt.Print(string(data))
					return nil
				}
				if err := layout.WriteFile(output, rec); err != nil {
					return err
				}
				printSuccess("Exported %s", rec.Name)
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file (.json, .yaml) instead of stdout")
	return cmd
}

func (c *CLI) layoutsSaveCommand() *cobra.Command {
	var (
		name        string
		description string
		asNew       bool
	)

	cmd := &cobra.Command{
		Use:   "save [layout]",
		Short: "Save a layout file to the store",
		Long: `Save a layout file to the store.

The record keeps the id in the file unless --new is given or the file has
no id, in which case a fresh id is assigned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := layout.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				rec.Name = name
			}
			if cmd.Flags().Changed("description") {
				rec.Description = description
			}
			if asNew || rec.ID == "" {
				fresh := layout.New(rec.Name, rec.Widgets, rec.Config(0))
				fresh.Description = rec.Description
				rec = fresh
			}
			if err := gberr.ValidateName(rec.Name); err != nil {
				return fmt.Errorf("layout name: %w (use --name)", err)
			}

			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Save(cmd.Context(), rec); err != nil {
					return err
				}
				printSuccess("Saved %s", rec.Name)
				printKeyValue("ID", rec.ID)
				printKeyValue("Store", c.config().Store.Backend)
				printNewline()
				printNextStep("Preview", appName+" layouts get "+rec.ID+" -o layout.json && "+appName+" show layout.json")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "layout name (default: name in the file)")
	cmd.Flags().StringVar(&description, "description", "", "layout description")
	cmd.Flags().BoolVar(&asNew, "new", false, "save as a new layout with a fresh id")
	return cmd
}

func (c *CLI) layoutsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := gberr.ValidateID(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
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
