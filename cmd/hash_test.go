package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kamal-hamza/sri-cli/pkg/integrity"
)

func TestCheckHashes(t *testing.T) {
	quietUI(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "a.js")
	if err := os.WriteFile(file, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	hexHasher := integrity.New(integrity.EncodingHex, 0)
	b64 := integrity.New(integrity.EncodingBase64, 0).Bytes([]byte("a"))

	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{"hex match", hexHasher.Bytes([]byte("a")), nil},
		{"base64 match with hex hasher", b64, nil},
		{"mismatch", hexHasher.Bytes([]byte("b")), errVerifyFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkHashes(hexHasher, []string{file}, tt.want)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := checkHashes(hexHasher, []string{filepath.Join(dir, "nope.js")}, b64); err == nil || errors.Is(err, errVerifyFailed) {
		t.Errorf("expected a read error for a missing file, got %v", err)
	}
}

func TestEncodingOf(t *testing.T) {
	h := integrity.New(integrity.EncodingHex, 0)
	if got := encodingOf(h.Bytes([]byte("x"))); got != integrity.EncodingHex {
		t.Errorf("expected hex, got %s", got)
	}

	b := integrity.New(integrity.EncodingBase64, 0)
	if got := encodingOf(b.Bytes([]byte("x"))); got != integrity.EncodingBase64 {
		t.Errorf("expected base64, got %s", got)
	}
}

// Commands that read the manifest fail with a hint before any vendoring run
func TestManifestCommands_WithoutManifest(t *testing.T) {
	quietUI(t)
	chdir(t, t.TempDir())
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	for _, name := range []string{"list", "verify", "report"} {
		t.Run(name, func(t *testing.T) {
			rootCmd.SetArgs([]string{name, "--quiet"})
			if err := rootCmd.Execute(); !errors.Is(err, errNoManifest) {
				t.Errorf("expected errNoManifest, got %v", err)
			}
		})
	}

	if _, err := os.Stat("sri-report.html"); !os.IsNotExist(err) {
		t.Error("expected report not to be written without a manifest")
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
