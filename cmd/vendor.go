package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/atotto/clipboard"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/tagscan"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

var (
	vendorOutput     string
	vendorDemo       bool
	vendorSelect     bool
	vendorCopy       bool
	vendorNoManifest bool
	vendorNoProgress bool
)

var vendorCmd = &cobra.Command{
	Use:   "vendor [file|-]",
	Short: "Download referenced assets and add integrity attributes",
	Long: `Scan an HTML fragment for <script src="..."></script> and
<link rel="stylesheet" href="..."> tags, store each referenced asset under
the asset root and print the fragment with every tag rewritten to the local
copy plus a sha512 integrity attribute.

Input is read from the named file, or from stdin when no file (or "-") is
given. Assets that cannot be fetched keep their original tag and are reported
on stderr; the run still succeeds.

Examples:
  sri vendor index.html > index.sri.html
  cat head.html | sri vendor -o head.sri.html
  sri vendor --demo
  sri vendor --select page.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVendor,
}

func init() {
	vendorCmd.Flags().StringVarP(&vendorOutput, "output", "o", "", "Write the rewritten HTML to a file instead of stdout")
	vendorCmd.Flags().BoolVar(&vendorDemo, "demo", false, "Process the built-in example fragment")
	vendorCmd.Flags().BoolVarP(&vendorSelect, "select", "s", false, "Pick the references to vendor with a fuzzy finder")
	vendorCmd.Flags().BoolVarP(&vendorCopy, "copy", "c", false, "Copy the rewritten HTML to the clipboard")
	vendorCmd.Flags().BoolVar(&vendorNoManifest, "no-manifest", false, "Do not write the run manifest")
	vendorCmd.Flags().BoolVar(&vendorNoProgress, "no-progress", false, "Hide the progress bar")
}

func runVendor(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)

	input, err := readVendorInput(cmd.InOrStdin(), args, vendorDemo)
	if err != nil {
		return err
	}

	req := services.VendorRequest{
		HTML:          input,
		WriteManifest: appConfig.WriteManifest && !vendorNoManifest,
	}

	if vendorSelect {
		chosen, err := selectRefs(refFinder, tagscan.Extract(input))
		if err != nil {
			return err
		}
		if chosen == nil {
			ui.Println(ui.FormatInfo("Selection cancelled."))
			return nil
		}
		req.Select = func(ref domain.AssetRef) bool { return chosen[ref.Start] }
	}

	resp, err := runVendorPass(ctx, req, appConfig.Progress && !vendorNoProgress)
	if err != nil {
		return err
	}

	if err := writeVendorOutput(cmd.OutOrStdout(), vendorOutput, resp.HTML); err != nil {
		return err
	}

	if vendorCopy {
		if err := clipboard.WriteAll(resp.HTML); err != nil {
			ui.Println(ui.FormatMuted("(Clipboard access failed)"))
		} else {
			ui.Println(ui.FormatInfo("Rewritten HTML copied to clipboard"))
		}
	}

	return nil
}

// runVendorPass creates the asset root, runs the service and prints the summary
func runVendorPass(ctx context.Context, req services.VendorRequest, showProgress bool) (*services.VendorResponse, error) {
	if err := appLayout.Initialize(); err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		req.OnProgress = func(ref domain.AssetRef, done, total int) {
			if bar == nil {
				bar = newVendorProgressBar(total)
			}
			bar.Describe(path.Base(ref.URL))
			_ = bar.Add(1)
		}
	}

	resp, err := vendorService.Execute(ctx, req)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, err
	}

	printVendorSummary(resp)
	return resp, nil
}

func newVendorProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.Out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("vendoring"),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// readVendorInput returns the HTML to process
func readVendorInput(stdin io.Reader, args []string, demo bool) (string, error) {
	if demo {
		return demoFragment, nil
	}

	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// writeVendorOutput writes the result to target, or to out when target is empty
func writeVendorOutput(out io.Writer, target, html string) error {
	if target == "" {
		_, err := fmt.Fprintln(out, html)
		return err
	}

	if err := os.WriteFile(target, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	ui.Println(ui.FormatSuccess("Wrote " + target))
	return nil
}

func printVendorSummary(resp *services.VendorResponse) {
	for _, f := range resp.Failures {
		ui.Println(ui.FormatWarning(fmt.Sprintf("Could not fetch %s", f.Ref.URL)))
		ui.Println(ui.FormatMuted("  " + f.Err.Error()))
	}

	if len(resp.Refs) == 0 {
		ui.Println(ui.FormatInfo("No script or stylesheet tags found"))
		return
	}

	msg := vendorSummaryLine(resp)
	if len(resp.Failures) > 0 {
		ui.Println(ui.FormatWarning(msg))
	} else {
		ui.Println(ui.FormatLocked(msg))
	}
	if resp.Skipped > 0 {
		ui.Println(ui.FormatMuted(fmt.Sprintf("%d tags left unselected", resp.Skipped)))
	}
}

// vendorSummaryLine counts only the tags the run tried to fetch; unselected
// tags are reported separately
func vendorSummaryLine(resp *services.VendorResponse) string {
	var total int64
	for _, r := range resp.Records {
		total += r.Size
	}

	attempted := len(resp.Records) + len(resp.Failures)
	return fmt.Sprintf("Vendored %d of %d assets (%s)", len(resp.Records), attempted, ui.FormatBytes(total))
}

// multiFinder is the part of go-fuzzyfinder used for --select
type multiFinder interface {
	FindMulti(slice interface{}, itemFunc func(i int) string, opts ...fuzzyfinder.Option) ([]int, error)
}

type terminalFinder struct{}

func (terminalFinder) FindMulti(slice interface{}, itemFunc func(i int) string, opts ...fuzzyfinder.Option) ([]int, error) {
	return fuzzyfinder.FindMulti(slice, itemFunc, opts...)
}

var refFinder multiFinder = terminalFinder{}

// selectRefs asks the user which references to vendor. The result is keyed
// by tag offset; nil means the user cancelled.
func selectRefs(f multiFinder, refs []domain.AssetRef) (map[int]bool, error) {
	if len(refs) == 0 {
		return map[int]bool{}, nil
	}

	idxs, err := f.FindMulti(
		refs,
		func(i int) string {
			return fmt.Sprintf("[%s] %s", refs[i].Kind, refs[i].URL)
		},
		fuzzyfinder.WithPromptString("vendor> "),
		fuzzyfinder.WithHeader("Tab to mark, Enter to confirm"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return refs[i].Tag
		}),
	)
	if err == fuzzyfinder.ErrAbort {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}

	chosen := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		chosen[refs[i].Start] = true
	}
	return chosen, nil
}
