package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

var (
	verifyMatch string
	verifyAll   bool
)

var errVerifyFailed = errors.New("integrity check failed")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-hash vendored files against the manifest",
	Long: `Re-compute the digest of every file recorded in the run manifest and
compare it with the recorded value.

Exits with status 1 if any file changed or is missing.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyMatch, "match", "m", "", "Only check paths matching a glob (e.g. 'js/**')")
	verifyCmd.Flags().BoolVarP(&verifyAll, "all", "a", false, "List passing files too")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)

	if err := requireManifest(ctx); err != nil {
		return err
	}

	resp, err := verifyService.Execute(ctx, services.VerifyRequest{Match: verifyMatch})
	if err != nil {
		return err
	}

	if len(resp.Results) == 0 {
		ui.Println(ui.FormatInfo("No manifest records to verify"))
		return nil
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "STATUS", Width: 8},
		{Header: "PATH", MaxWidth: 60},
	})
	for _, r := range resp.Results {
		if r.Status == services.StatusOK && !verifyAll {
			continue
		}
		table.AddRow(string(r.Status), r.Record.RelPath)
	}
	if len(table.Rows) > 0 {
		ui.Println(table.Render())
	}

	summary := fmt.Sprintf("%d ok, %d changed, %d missing", resp.OK, resp.Mismatched, resp.Missing)
	if !resp.Passed() {
		ui.Println(ui.FormatError(summary))
		return errVerifyFailed
	}

	ui.Println(ui.FormatSuccess(summary))
	return nil
}
