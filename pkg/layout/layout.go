package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/pkg/config"
)

// ManifestFilename is the run report kept inside the asset root
const ManifestFilename = ".sri-manifest.json"

// Layout represents the local directory tree vendored assets are written to
type Layout struct {
	RootPath    string
	ScriptsPath string
	StylesPath  string
	URLPrefix   string
}

// New creates a Layout from configuration values
func New(cfg *config.Config) *Layout {
	root := filepath.Clean(cfg.AssetRoot)
	return &Layout{
		RootPath:    root,
		ScriptsPath: filepath.Join(root, cfg.ScriptDir),
		StylesPath:  filepath.Join(root, cfg.StyleDir),
		URLPrefix:   cfg.URLPrefix,
	}
}

// Anchor resolves a relative asset root against dir. The web prefix is untouched.
func (l *Layout) Anchor(dir string) *Layout {
	if filepath.IsAbs(l.RootPath) {
		return l
	}
	under := func(p string) string {
		return filepath.Join(dir, p)
	}
	l.RootPath = under(l.RootPath)
	l.ScriptsPath = under(l.ScriptsPath)
	l.StylesPath = under(l.StylesPath)
	return l
}

// Initialize creates the asset directory structure if it doesn't exist
func (l *Layout) Initialize() error {
	directories := []string{
		l.RootPath,
		l.ScriptsPath,
		l.StylesPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the asset root has been created
func (l *Layout) Exists() bool {
	info, err := os.Stat(l.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DestDir returns the destination directory for an asset kind
func (l *Layout) DestDir(kind domain.AssetKind) string {
	if kind == domain.KindStylesheet {
		return l.StylesPath
	}
	return l.ScriptsPath
}

// RelPath returns localPath relative to the asset root, using forward slashes
func (l *Layout) RelPath(localPath string) (string, error) {
	rel, err := filepath.Rel(l.RootPath, localPath)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", localPath, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside asset root %s", localPath, l.RootPath)
	}
	return filepath.ToSlash(rel), nil
}

// WebPath joins a root-relative path under the URL prefix
// e.g. "js/jquery.js" -> "assets/js/jquery.js"
func (l *Layout) WebPath(rel string) string {
	prefix := strings.TrimRight(l.URLPrefix, "/")
	if prefix == "" {
		if strings.HasPrefix(l.URLPrefix, "/") {
			return "/" + rel
		}
		return rel
	}
	return prefix + "/" + rel
}

// ManifestPath returns the path to the run manifest
func (l *Layout) ManifestPath() string {
	return filepath.Join(l.RootPath, ManifestFilename)
}

// GetAssetPath returns the full local path for a root-relative web path
func (l *Layout) GetAssetPath(rel string) string {
	return filepath.Join(l.RootPath, filepath.FromSlash(rel))
}
