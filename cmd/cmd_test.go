package cmd

import (
	"testing"

	"github.com/kamal-hamza/sri-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/sri-cli/internal/core/services"
	"github.com/kamal-hamza/sri-cli/pkg/config"
	"github.com/kamal-hamza/sri-cli/pkg/integrity"
	"github.com/kamal-hamza/sri-cli/pkg/layout"
)

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	commands := []string{
		"vendor", "watch", "verify", "hash", "list", "report", "config", "version",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{cmdName})
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", cmdName, err)
			}
			if cmd == nil {
				t.Fatalf("Command '%s' is nil", cmdName)
			}
			if cmd.Use == "" {
				t.Errorf("Command '%s' has no Use field", cmdName)
			}
		})
	}
}

// TestRootCommandExists verifies the root command is properly configured
func TestRootCommandExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("Root command is nil")
	}

	if rootCmd.Use != "sri" {
		t.Errorf("Expected root command Use to be 'sri', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Root command Short description is empty")
	}

	for _, flag := range []string{"config", "verbose", "quiet"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Expected persistent flag --%s", flag)
		}
	}
}

// TestCommandsHaveHelp verifies all commands have help text
func TestCommandsHaveHelp(t *testing.T) {
	commands := rootCmd.Commands()

	if len(commands) == 0 {
		t.Fatal("No commands registered")
	}

	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			if cmd.Short == "" {
				t.Errorf("Command '%s' has no Short description", cmd.Name())
			}
		})
	}
}

// TestSubcommands verifies specific subcommands exist
func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent     string
		subcommand string
	}{
		{"config", "init"},
		{"config", "show"},
	}

	for _, tt := range tests {
		t.Run(tt.parent+"_"+tt.subcommand, func(t *testing.T) {
			parentCmd, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil {
				t.Fatalf("Parent command '%s' not found: %v", tt.parent, err)
			}

			found := false
			for _, cmd := range parentCmd.Commands() {
				if cmd.Name() == tt.subcommand {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("Subcommand '%s' not found under '%s'", tt.subcommand, tt.parent)
			}
		})
	}
}

// TestVendorFlags verifies the vendor command exposes its options
func TestVendorFlags(t *testing.T) {
	for _, flag := range []string{"output", "demo", "select", "copy", "no-manifest", "no-progress"} {
		if vendorCmd.Flags().Lookup(flag) == nil {
			t.Errorf("Expected vendor flag --%s", flag)
		}
	}

	if f := watchCmd.Flags().Lookup("output"); f == nil {
		t.Error("Expected watch flag --output")
	}
}

// TestServiceInitialization verifies services can be initialized with mocks
func TestServiceInitialization(t *testing.T) {
	mockFetcher := mocks.NewMockFetcher()
	mockRepo := mocks.NewMockManifestRepository()

	cfg := config.DefaultConfig()
	cfg.AssetRoot = t.TempDir()
	l := layout.New(cfg)
	h := integrity.New(integrity.EncodingHex, cfg.ChunkSize)

	if services.NewVendorService(mockFetcher, mockRepo, l, h) == nil {
		t.Error("VendorService is nil")
	}
	if services.NewVerifyService(mockRepo, l, h) == nil {
		t.Error("VerifyService is nil")
	}
	if services.NewListService(mockRepo) == nil {
		t.Error("ListService is nil")
	}
}
