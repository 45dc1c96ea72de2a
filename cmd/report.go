package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/internal/adapters/report"
	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

var (
	reportOut   string
	reportMatch string
	reportTitle string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an HTML chart of vendored asset sizes",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "sri-report.html", "Output HTML file")
	reportCmd.Flags().StringVarP(&reportMatch, "match", "m", "", "Only chart paths matching a glob")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Chart title")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)

	if err := requireManifest(ctx); err != nil {
		return err
	}

	resp, err := listService.Execute(ctx, services.ListRequest{Match: reportMatch})
	if err != nil {
		return err
	}

	charted := &domain.Manifest{
		RunID:     resp.Manifest.RunID,
		CreatedAt: resp.Manifest.CreatedAt,
		Encoding:  resp.Manifest.Encoding,
		Records:   resp.Records,
	}

	f, err := os.Create(reportOut)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := report.NewChartRenderer(reportTitle).Render(charted, f); err != nil {
		return err
	}

	ui.Println(ui.FormatSuccess(fmt.Sprintf("Charted %d assets to %s", resp.Total, reportOut)))
	return nil
}
