package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/pkg/config"
)

func newTestLayout(t *testing.T, prefix string) *Layout {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AssetRoot = filepath.Join(t.TempDir(), "assets")
	cfg.URLPrefix = prefix
	return New(cfg)
}

func TestLayout_Initialize(t *testing.T) {
	l := newTestLayout(t, "assets")

	if l.Exists() {
		t.Fatal("expected layout not to exist before Initialize")
	}
	if err := l.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !l.Exists() {
		t.Error("expected layout to exist after Initialize")
	}

	for _, dir := range []string{l.ScriptsPath, l.StylesPath} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
}

func TestLayout_DestDir(t *testing.T) {
	l := newTestLayout(t, "assets")

	if got := l.DestDir(domain.KindScript); got != filepath.Join(l.RootPath, "js") {
		t.Errorf("unexpected script dir %s", got)
	}
	if got := l.DestDir(domain.KindStylesheet); got != filepath.Join(l.RootPath, "css") {
		t.Errorf("unexpected style dir %s", got)
	}
}

func TestLayout_RelPath(t *testing.T) {
	l := newTestLayout(t, "assets")

	rel, err := l.RelPath(filepath.Join(l.RootPath, "js", "sub", "a.js"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel != "js/sub/a.js" {
		t.Errorf("expected forward-slash path, got %s", rel)
	}

	if _, err := l.RelPath(filepath.Join(filepath.Dir(l.RootPath), "other.js")); err == nil {
		t.Error("expected error for path outside the root")
	}
}

func TestLayout_WebPath(t *testing.T) {
	tests := []struct {
		prefix   string
		expected string
	}{
		{"assets", "assets/js/a.js"},
		{"assets/", "assets/js/a.js"},
		{"/static", "/static/js/a.js"},
		{"https://cdn.example.com/v1", "https://cdn.example.com/v1/js/a.js"},
		{"", "js/a.js"},
		{"/", "/js/a.js"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			l := newTestLayout(t, tt.prefix)
			if got := l.WebPath("js/a.js"); got != tt.expected {
				t.Errorf("WebPath with prefix %q = %s, want %s", tt.prefix, got, tt.expected)
			}
		})
	}
}

func TestLayout_Paths(t *testing.T) {
	l := newTestLayout(t, "assets")

	if got := l.ManifestPath(); got != filepath.Join(l.RootPath, ManifestFilename) {
		t.Errorf("unexpected manifest path %s", got)
	}
	if got := l.GetAssetPath("css/site.css"); got != filepath.Join(l.RootPath, "css", "site.css") {
		t.Errorf("unexpected asset path %s", got)
	}
}

func TestLayout_Anchor(t *testing.T) {
	dir := t.TempDir()

	l := New(config.DefaultConfig()).Anchor(dir)
	if l.RootPath != filepath.Join(dir, "assets") {
		t.Errorf("expected root under %s, got %s", dir, l.RootPath)
	}
	if l.ScriptsPath != filepath.Join(dir, "assets", "js") {
		t.Errorf("unexpected scripts path %s", l.ScriptsPath)
	}
	if got := l.WebPath("js/a.js"); got != "assets/js/a.js" {
		t.Errorf("expected web path to keep the prefix, got %s", got)
	}

	abs := newTestLayout(t, "assets")
	root := abs.RootPath
	if abs.Anchor(dir).RootPath != root {
		t.Errorf("expected absolute root %s to be kept", root)
	}
}
