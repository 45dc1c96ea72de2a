package ports

import (
	"context"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
)

// Fetcher defines the port for retrieving an asset into the local tree
type Fetcher interface {
	// Fetch downloads or copies ref and returns the path it was written to.
	// destDir is the kind-specific destination for remote assets.
	// Failures to retrieve the asset are *domain.FetchError (errors.Is ErrNotFound);
	// any other error is an unexpected I/O failure.
	Fetch(ctx context.Context, ref domain.AssetRef, destDir string) (string, error)
}

// ManifestRepository defines the port for the per-run integrity report
type ManifestRepository interface {
	// Save replaces the stored manifest
	Save(ctx context.Context, manifest *domain.Manifest) error

	// Load returns the stored manifest
	Load(ctx context.Context) (*domain.Manifest, error)

	// Exists checks if a manifest has been written
	Exists(ctx context.Context) bool
}
