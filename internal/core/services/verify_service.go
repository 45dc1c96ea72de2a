package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/ports"
	"github.com/kamal-hamza/sri-cli/pkg/integrity"
	"github.com/kamal-hamza/sri-cli/pkg/layout"
)

// VerifyStatus is the outcome of re-hashing one manifest record
type VerifyStatus string

const (
	StatusOK       VerifyStatus = "ok"
	StatusMismatch VerifyStatus = "mismatch"
	StatusMissing  VerifyStatus = "missing"
)

// VerifyService re-hashes vendored files against the manifest
type VerifyService struct {
	manifestRepo ports.ManifestRepository
	layout       *layout.Layout
	hasher       *integrity.Hasher
}

// NewVerifyService creates a new verify service
func NewVerifyService(manifestRepo ports.ManifestRepository, l *layout.Layout, hasher *integrity.Hasher) *VerifyService {
	return &VerifyService{
		manifestRepo: manifestRepo,
		layout:       l,
		hasher:       hasher,
	}
}

// VerifyRequest represents a request to verify vendored assets
type VerifyRequest struct {
	Match string // doublestar pattern on the root-relative path (optional)
}

// VerifyResult is the outcome for one record
type VerifyResult struct {
	Record domain.IntegrityRecord
	Status VerifyStatus
	Actual string
}

// VerifyResponse summarises a verification run
type VerifyResponse struct {
	Results    []VerifyResult
	OK         int
	Mismatched int
	Missing    int
}

// Passed reports whether every checked file still matches its digest
func (r *VerifyResponse) Passed() bool {
	return r.Mismatched == 0 && r.Missing == 0
}

// Execute re-hashes every matching manifest record
func (s *VerifyService) Execute(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	manifest, err := s.manifestRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	records, err := filterRecords(manifest.Records, req.Match)
	if err != nil {
		return nil, err
	}

	// The manifest may have been written with the other encoding
	hasher := s.hasher
	if manifest.Encoding != "" {
		hasher = integrity.New(integrity.ParseEncoding(manifest.Encoding), s.hasher.ChunkSize)
	}

	resp := &VerifyResponse{}
	for _, record := range records {
		path := s.layout.GetAssetPath(record.RelPath)

		actual, _, err := hasher.File(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			resp.Results = append(resp.Results, VerifyResult{Record: record, Status: StatusMissing})
			resp.Missing++
		case err != nil:
			return nil, err
		case actual != record.Digest:
			resp.Results = append(resp.Results, VerifyResult{Record: record, Status: StatusMismatch, Actual: actual})
			resp.Mismatched++
		default:
			resp.Results = append(resp.Results, VerifyResult{Record: record, Status: StatusOK, Actual: actual})
			resp.OK++
		}
	}

	return resp, nil
}
