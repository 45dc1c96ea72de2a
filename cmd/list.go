package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/tagscan"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

var (
	listKind        string
	listMatch       string
	listSortBy      string
	listReverse     bool
	listInteractive bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List vendored assets from the last run",
	Long: `List the assets recorded in the run manifest.

Records are shown in document order unless --sort is given.

Interactive controls:
  - ↑/↓       : Navigate
  - Enter / c : Copy the rewritten tag
  - q         : Quit`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "Filter by kind (script or stylesheet)")
	listCmd.Flags().StringVarP(&listMatch, "match", "m", "", "Filter paths by glob (e.g. 'css/**')")
	listCmd.Flags().StringVar(&listSortBy, "sort", "", "Sort by: path, size, kind")
	listCmd.Flags().BoolVarP(&listReverse, "reverse", "r", false, "Reverse order")
	listCmd.Flags().BoolVarP(&listInteractive, "interactive", "i", false, "Browse records in a table")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)

	if err := requireManifest(ctx); err != nil {
		return err
	}

	resp, err := listService.Execute(ctx, services.ListRequest{
		Kind:    domain.AssetKind(listKind),
		Match:   listMatch,
		SortBy:  listSortBy,
		Reverse: listReverse,
	})
	if err != nil {
		return err
	}

	if resp.Total == 0 {
		ui.Println(ui.FormatInfo("No vendored assets match"))
		return nil
	}

	if listInteractive {
		_, err := tea.NewProgram(newManifestModel(resp.Records), tea.WithOutput(ui.Out)).Run()
		return err
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "KIND", Width: 10},
		{Header: "PATH", MaxWidth: 50},
		{Header: "SIZE", Align: "right"},
		{Header: "DIGEST", MaxWidth: 24},
	})
	for _, r := range resp.Records {
		table.AddRow(string(r.Kind), r.RelPath, ui.FormatBytes(r.Size), r.Digest)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, table.Render())
	fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("%d assets, %s, run %s",
		resp.Total, ui.FormatBytes(resp.TotalSize), resp.Manifest.RunID)))
	return nil
}

// --- TUI Model ---

type manifestModel struct {
	table   table.Model
	records []domain.IntegrityRecord
	status  string
	copy    func(string) error
}

func newManifestModel(records []domain.IntegrityRecord) manifestModel {
	columns := []table.Column{
		{Title: "Kind", Width: 10},
		{Title: "Path", Width: 40},
		{Title: "Size", Width: 10},
		{Title: "Source", Width: 50},
	}

	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			string(r.Kind),
			r.RelPath,
			ui.FormatBytes(r.Size),
			r.Source,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 15)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ui.ColorDefault).
		Background(ui.ColorPrimary).
		Bold(true)
	t.SetStyles(s)

	return manifestModel{
		table:   t,
		records: records,
		copy:    clipboard.WriteAll,
	}
}

func (m manifestModel) Init() tea.Cmd { return nil }

func (m manifestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "enter", "c":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.records) {
				r := m.records[idx]
				if err := m.copy(tagscan.RenderTag(r.Kind, r.WebPath, r.Digest)); err != nil {
					m.status = ui.FormatError("Clipboard access failed")
				} else {
					m.status = ui.FormatSuccess("Copied tag for " + r.RelPath)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m manifestModel) View() string {
	var b strings.Builder
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.records) {
		b.WriteString(ui.FormatMuted(m.records[idx].Digest))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(ui.FormatMuted("↑/↓ navigate • enter copy tag • q quit"))
	b.WriteString("\n")
	return b.String()
}
