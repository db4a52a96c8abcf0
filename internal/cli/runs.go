package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/pkg/graph"
)

// runsCommand creates the command group for stored layouts.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and manage stored layouts",
	}
	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsDeleteCommand())
	return cmd
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored layouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRunsList(cmd.Context(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	return cmd
}

func (c *CLI) runRunsList(ctx context.Context, limit int) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	metas, err := st.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		printInfo("No stored layouts")
		return nil
	}
	writeRuns(stdout, metas)
	return nil
}

// writeRuns prints run metadata as a table.
func writeRuns(w io.Writer, metas []graph.Meta) {
	rows := make([][]string, len(metas))
	for i, m := range metas {
		rows[i] = []string{
			m.RunID,
			m.Source,
			m.Ref,
			shortRef(m.Head),
			shortRef(m.Target),
			m.CreatedAt.Local().Format(time.DateTime),
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Source", "Ref", "Head", "Target", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return browseHeaderStyle
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>...",
		Short: "Delete stored layouts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
			}
			return nil
		},
	}
}
