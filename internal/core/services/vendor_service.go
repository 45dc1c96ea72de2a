package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/ports"
	"github.com/kamal-hamza/sri-cli/pkg/integrity"
	"github.com/kamal-hamza/sri-cli/pkg/layout"
	"github.com/kamal-hamza/sri-cli/pkg/logger"
	"github.com/kamal-hamza/sri-cli/pkg/tagscan"
)

// VendorService runs the extract -> fetch -> hash -> rewrite pipeline.
// Assets are processed one at a time in document order.
type VendorService struct {
	fetcher      ports.Fetcher
	manifestRepo ports.ManifestRepository
	layout       *layout.Layout
	hasher       *integrity.Hasher
}

// NewVendorService creates a new vendor service. manifestRepo may be nil.
func NewVendorService(fetcher ports.Fetcher, manifestRepo ports.ManifestRepository, l *layout.Layout, hasher *integrity.Hasher) *VendorService {
	return &VendorService{
		fetcher:      fetcher,
		manifestRepo: manifestRepo,
		layout:       l,
		hasher:       hasher,
	}
}

// VendorRequest represents a request to vendor the assets of an HTML fragment
type VendorRequest struct {
	HTML string

	// Select limits which references are processed. Unselected tags are
	// left untouched and never fetched. Nil selects everything.
	Select func(ref domain.AssetRef) bool

	// OnProgress is called after each selected reference is processed
	OnProgress func(ref domain.AssetRef, done, total int)

	WriteManifest bool
}

// Failure is a reference whose asset could not be retrieved
type Failure struct {
	Ref domain.AssetRef
	Err error
}

// VendorResponse represents the outcome of a vendoring run
type VendorResponse struct {
	RunID    string
	HTML     string
	Refs     []domain.AssetRef
	Records  []domain.IntegrityRecord
	Failures []Failure
	Skipped  int
}

// Execute vendors every selected reference in req.HTML. Fetch failures are
// logged and leave the original tag in place; any other error aborts the run.
func (s *VendorService) Execute(ctx context.Context, req VendorRequest) (*VendorResponse, error) {
	log := logger.Logger()

	refs := tagscan.Extract(req.HTML)
	resp := &VendorResponse{
		RunID: uuid.NewString(),
		Refs:  refs,
	}

	total := 0
	for _, ref := range refs {
		if req.Select == nil || req.Select(ref) {
			total++
		}
	}

	replacements := make([]string, len(refs))
	done := 0

	for i, ref := range refs {
		if req.Select != nil && !req.Select(ref) {
			resp.Skipped++
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := s.vendorOne(ctx, ref)
		done++
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			log.Warnw("fetch failed, keeping original tag", "url", ref.URL, "error", err)
			resp.Failures = append(resp.Failures, Failure{Ref: ref, Err: err})
		} else {
			replacements[i] = tagscan.RenderTag(ref.Kind, record.WebPath, record.Digest)
			resp.Records = append(resp.Records, *record)
			log.Debugw("vendored", "url", ref.URL, "path", record.WebPath, "digest", record.Digest)
		}

		if req.OnProgress != nil {
			req.OnProgress(ref, done, total)
		}
	}

	resp.HTML = tagscan.Rewrite(req.HTML, refs, replacements)

	if req.WriteManifest && s.manifestRepo != nil && len(resp.Records) > 0 {
		manifest := &domain.Manifest{
			RunID:     resp.RunID,
			CreatedAt: time.Now().UTC(),
			Encoding:  string(s.hasher.Encoding),
			Records:   resp.Records,
		}
		if err := s.manifestRepo.Save(ctx, manifest); err != nil {
			return nil, fmt.Errorf("failed to save manifest: %w", err)
		}
	}

	return resp, nil
}

// vendorOne fetches, hashes and locates a single asset
func (s *VendorService) vendorOne(ctx context.Context, ref domain.AssetRef) (*domain.IntegrityRecord, error) {
	localPath, err := s.fetcher.Fetch(ctx, ref, s.layout.DestDir(ref.Kind))
	if err != nil {
		return nil, err
	}

	digest, size, err := s.hasher.File(localPath)
	if err != nil {
		return nil, err
	}

	rel, err := s.layout.RelPath(localPath)
	if err != nil {
		return nil, err
	}

	return &domain.IntegrityRecord{
		Source:    ref.URL,
		Kind:      ref.Kind,
		LocalPath: localPath,
		RelPath:   rel,
		WebPath:   s.layout.WebPath(rel),
		Digest:    digest,
		Size:      size,
	}, nil
}
