package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/internal/adapters/fetcher"
	"github.com/kamal-hamza/sri-cli/internal/adapters/repository"
	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/config"
	"github.com/kamal-hamza/sri-cli/pkg/integrity"
	"github.com/kamal-hamza/sri-cli/pkg/layout"
	"github.com/kamal-hamza/sri-cli/pkg/logger"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool

	appConfig *config.Config
	appLayout *layout.Layout
	hasher    *integrity.Hasher

	// Services
	vendorService *services.VendorService
	verifyService *services.VerifyService
	listService   *services.ListService

	// Adapters
	assetFetcher *fetcher.AssetFetcher
	manifestRepo *repository.FileManifestRepository
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sri",
	Short: "SRI - vendor CDN assets with Subresource Integrity",
	Long: ui.FormatTitle("SRI") + " - Subresource Integrity vendoring\n\n" +
		"Downloads the scripts and stylesheets an HTML fragment references,\n" +
		"stores them under a local asset root and rewrites each tag to point at\n" +
		"the local copy with a sha512 integrity attribute.",
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		ui.Println(ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-asset debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")

	rootCmd.AddCommand(vendorCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads configuration and wires adapters into services
func initializeApp(cmd *cobra.Command, args []string) error {
	// Skip for commands that must work with a broken or missing config
	if cmd.Name() == "version" || (cmd.Name() == "init" && cmd.Parent() == configCmd) {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg

	ui.SetTheme(cfg.ColorTheme)

	if _, err := logger.Init(logger.Level(verbose, quiet)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	appLayout = layout.New(cfg).Anchor(workDir)
	hasher = integrity.New(integrity.ParseEncoding(cfg.DigestEncoding), cfg.ChunkSize)

	client := fetcher.NewHTTPClient(time.Duration(cfg.HTTPTimeoutSeconds) * time.Second)
	assetFetcher = fetcher.NewAssetFetcher(client, appLayout, workDir)
	manifestRepo = repository.NewFileManifestRepository(appLayout)

	vendorService = services.NewVendorService(assetFetcher, manifestRepo, appLayout, hasher)
	verifyService = services.NewVerifyService(manifestRepo, appLayout, hasher)
	listService = services.NewListService(manifestRepo)

	return nil
}

var errNoManifest = errors.New("no manifest found, run 'sri vendor' first")

// requireManifest fails early when there is no vendoring run to read from
func requireManifest(ctx context.Context) error {
	if !appLayout.Exists() || !manifestRepo.Exists(ctx) {
		return errNoManifest
	}
	return nil
}

// getContext returns the command context, cancelled on interrupt
func getContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
