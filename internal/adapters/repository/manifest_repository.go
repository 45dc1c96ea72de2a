package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/ports"
	"github.com/kamal-hamza/sri-cli/pkg/layout"
)

// FileManifestRepository stores the run manifest as JSON inside the asset root
type FileManifestRepository struct {
	manifestPath string
	mu           sync.RWMutex
}

func NewFileManifestRepository(l *layout.Layout) *FileManifestRepository {
	return &FileManifestRepository{
		manifestPath: l.ManifestPath(),
	}
}

// Ensure it implements the interface
var _ ports.ManifestRepository = (*FileManifestRepository)(nil)

// Save overwrites the manifest on disk
func (r *FileManifestRepository) Save(ctx context.Context, manifest *domain.Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.manifestPath), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	if err := os.WriteFile(r.manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load reads the manifest from disk
func (r *FileManifestRepository) Load(ctx context.Context) (*domain.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", r.manifestPath, err)
	}
	return &manifest, nil
}

// Exists checks if a manifest has been written
func (r *FileManifestRepository) Exists(ctx context.Context) bool {
	info, err := os.Stat(r.manifestPath)
	return err == nil && !info.IsDir()
}

// Path returns the manifest location
func (r *FileManifestRepository) Path() string {
	return r.manifestPath
}
