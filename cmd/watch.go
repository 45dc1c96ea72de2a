package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/logger"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

const watchDebounce = 500 * time.Millisecond

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-vendor an HTML file whenever it changes",
	Long: `Watch an HTML file and re-run vendoring each time it is saved.

The rewritten HTML is written to --output on every run. Changes are debounced
so an editor's burst of writes triggers a single pass.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "File to write the rewritten HTML to (required)")
	_ = watchCmd.MarkFlagRequired("output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := getContext(cmd)
	log := logger.Logger()

	input, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	output, err := filepath.Abs(watchOutput)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", watchOutput, err)
	}
	if input == output {
		return fmt.Errorf("output must differ from the watched file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: many editors save by renaming a temp file over the original
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(input), err)
	}

	var mu sync.Mutex
	pass := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := vendorFile(ctx, input, output); err != nil {
			ui.Println(ui.FormatError("Vendoring failed: " + err.Error()))
			log.Errorw("watch pass failed", "input", input, "error", err)
		}
	}

	ui.Println(ui.FormatInfo("Watching " + input))
	ui.Println(ui.FormatMuted("Press Ctrl+C to stop"))
	pass()

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			log.Debugw("change detected", "file", event.Name, "op", event.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, pass)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watcher error", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			ui.Println(ui.FormatMuted("Watch stopped"))
			return nil
		}
	}
}

// vendorFile runs one vendoring pass from input to output
func vendorFile(ctx context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	resp, err := runVendorPass(ctx, services.VendorRequest{
		HTML:          string(data),
		WriteManifest: appConfig.WriteManifest,
	}, false)
	if err != nil {
		return err
	}

	return writeVendorOutput(nil, output, resp.HTML)
}
