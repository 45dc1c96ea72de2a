package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/ports"
	"github.com/kamal-hamza/sri-cli/pkg/layout"
	"github.com/kamal-hamza/sri-cli/pkg/logger"
)

// AssetFetcher downloads remote assets and copies local ones into the layout
type AssetFetcher struct {
	client  *http.Client
	layout  *layout.Layout
	workDir string
}

// NewAssetFetcher creates a fetcher. Local paths are resolved, and their
// copies laid out, relative to workDir.
func NewAssetFetcher(client *http.Client, l *layout.Layout, workDir string) *AssetFetcher {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &AssetFetcher{
		client:  client,
		layout:  l,
		workDir: workDir,
	}
}

// Ensure it implements the interface
var _ ports.Fetcher = (*AssetFetcher)(nil)

// Fetch retrieves ref. Remote assets land in destDir; local files are copied
// under the asset root keeping their path relative to the working directory.
func (f *AssetFetcher) Fetch(ctx context.Context, ref domain.AssetRef, destDir string) (string, error) {
	if ref.IsRemote() {
		return f.download(ctx, ref.URL, destDir)
	}
	return f.copyLocal(ref.URL, destDir)
}

// download issues a single GET and writes the body to destDir/<last path segment>
func (f *AssetFetcher) download(ctx context.Context, rawURL, destDir string) (string, error) {
	log := logger.Logger()

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", domain.NewFetchError(rawURL, "invalid URL", err)
	}

	name := path.Base(u.Path)
	if name == "." || name == ".." || name == "/" || name == "" {
		return "", domain.NewFetchError(rawURL, "cannot derive a filename from the URL path", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", domain.NewFetchError(rawURL, "invalid request", err)
	}

	log.Debugw("downloading", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", domain.NewFetchError(rawURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewFetchError(rawURL, fmt.Sprintf("bad status: %s", resp.Status), nil)
	}

	// Read the whole body before touching disk so a broken transfer never leaves a file
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewFetchError(rawURL, "failed to read response body", err)
	}

	destDir = f.resolve(destDir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	destPath := filepath.Join(destDir, name)
	if err := os.WriteFile(destPath, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	log.Debugw("downloaded", "url", rawURL, "path", destPath, "bytes", len(body))
	return destPath, nil
}

// copyLocal copies an existing file into the asset root
func (f *AssetFetcher) copyLocal(src, destDir string) (string, error) {
	log := logger.Logger()

	absPath := f.resolve(src)

	info, err := os.Stat(absPath)
	if err != nil {
		return "", domain.NewFetchError(src, "local file not found", err)
	}
	if info.IsDir() {
		return "", domain.NewFetchError(src, "local path is a directory", nil)
	}

	destPath := f.localDest(absPath, destDir)

	// Source already lives at its destination
	if destPath == absPath {
		return destPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", filepath.Dir(destPath), err)
	}

	if err := copyFile(absPath, destPath); err != nil {
		return "", err
	}

	log.Debugw("copied", "source", src, "path", destPath, "bytes", info.Size())
	return destPath, nil
}

// localDest mirrors the working-directory-relative path under the asset root.
// Files outside the working directory fall back to destDir/<basename>.
func (f *AssetFetcher) localDest(absPath, destDir string) string {
	rel, err := filepath.Rel(f.workDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Join(f.resolve(destDir), filepath.Base(absPath))
	}
	return filepath.Join(f.resolve(f.layout.RootPath), rel)
}

// resolve makes p absolute against the working directory, so a relative
// asset root means the same place for sources and destinations
func (f *AssetFetcher) resolve(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.workDir, p)
	}
	return filepath.Clean(p)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
