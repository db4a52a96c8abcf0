package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/pipeline"
	"github.com/matzehuels/gitnetwork/pkg/render/text"
)

var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// browseCommand creates the interactive network viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "browse [repo]",
		Short: "Browse the commit network interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = "."
			if len(args) == 1 {
				opts.Repo = args[0]
			}
			return c.runBrowse(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "history to walk (default: HEAD)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "commit or ref to center the window on")
	cmd.Flags().StringVar(&opts.PrimaryRef, "primary-ref", "", "ref whose commits take lane 1")
	cmd.Flags().IntVar(&opts.MaxCommits, "max-commits", 0, "window size")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
	c.setCLIDefaults(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Laying out "+opts.Repo+"...").start()
	l, _, err := runner.Layout(ctx, opts)
	spin.stop()
	if err != nil {
		return err
	}
	if l.Len() == 0 {
		printInfo("No commits to show")
		return nil
	}

	m := newBrowseModel(l, true)
	if opts.Target != "" {
		m.focus(l.Meta.Target)
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// browseModel shows the text rendering with a cursor and a detail pane for
// the selected commit. Row 0 is the newest commit.
type browseModel struct {
	layout graph.Layout
	lines  []string
	cursor int
	offset int
	height int
}

func newBrowseModel(l graph.Layout, color bool) browseModel {
	rendered := strings.TrimSuffix(text.Render(l, text.Options{Color: color, Author: true}), "\n")
	return browseModel{
		layout: l,
		lines:  strings.Split(rendered, "\n"),
		height: 20,
	}
}

// node returns the commit on display row i.
func (m browseModel) node(i int) *graph.Node {
	return m.layout.At(m.layout.Len() - 1 - i)
}

// focus moves the cursor to the commit with the given id.
func (m *browseModel) focus(id string) {
	n, ok := m.layout.Node(id)
	if !ok {
		return
	}
	m.cursor = m.layout.Len() - 1 - n.Time
	m.scroll()
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.lines)-1 {
				m.cursor++
			}
		case "pgup":
			m.cursor = max(0, m.cursor-m.height)
		case "pgdown":
			m.cursor = min(len(m.lines)-1, m.cursor+m.height)
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.lines) - 1
		case "p":
			if n := m.node(m.cursor); n != nil && len(n.ParentLanes) > 0 {
				m.focus(n.ParentLanes[0].ID)
				return m, nil
			}
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.height = max(5, msg.Height-12)
		m.scroll()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s @ %s", m.layout.Source, shortRef(m.layout.Head))))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ navigate  p parent  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.lines))
	for i := m.offset; i < end; i++ {
		if i == m.cursor {
			b.WriteString(browseCursorStyle.Render("▸ "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(m.lines[i])
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if n := m.node(m.cursor); n != nil {
		b.WriteString(commitDetails(n))
		b.WriteString("\n")
	}
	b.WriteString(styleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.lines))))
	return b.String()
}

// commitDetails renders the selected commit as a two-column table.
func commitDetails(n *graph.Node) string {
	lanes := make([]string, len(n.Lanes))
	for i, lane := range n.Lanes {
		lanes[i] = laneStyle(lane).Render(strconv.Itoa(lane))
	}
	parents := make([]string, len(n.Parents))
	for i, p := range n.Parents {
		parents[i] = shortRef(p)
	}
	rows := [][]string{
		{"commit", n.ID},
		{"author", n.Author},
		{"date", n.CommittedAt.Format(time.DateTime)},
		{"lanes", strings.Join(lanes, " ")},
		{"parents", strings.Join(parents, " ")},
		{"refs", strings.Join(n.Refs, ", ")},
		{"subject", n.Subject()},
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return browseHeaderStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func shortRef(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
