package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/ports"
)

// ListService handles listing and filtering manifest records
type ListService struct {
	manifestRepo ports.ManifestRepository
}

// NewListService creates a new list service
func NewListService(manifestRepo ports.ManifestRepository) *ListService {
	return &ListService{
		manifestRepo: manifestRepo,
	}
}

// ListRequest represents a request to list vendored assets
type ListRequest struct {
	Kind    domain.AssetKind // Filter by kind (optional)
	Match   string           // doublestar pattern on the root-relative path (optional)
	SortBy  string           // "path", "size", "kind" (default: document order)
	Reverse bool             // Reverse sort order
}

// ListResponse represents the response from listing assets
type ListResponse struct {
	Manifest  *domain.Manifest
	Records   []domain.IntegrityRecord
	Total     int
	TotalSize int64
}

// Execute lists manifest records with optional filtering and sorting
func (s *ListService) Execute(ctx context.Context, req ListRequest) (*ListResponse, error) {
	manifest, err := s.manifestRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	records, err := filterRecords(manifest.Records, req.Match)
	if err != nil {
		return nil, err
	}

	if req.Kind != "" {
		records = s.filterByKind(records, req.Kind)
	}

	records = s.sortRecords(records, req.SortBy, req.Reverse)

	var totalSize int64
	for _, r := range records {
		totalSize += r.Size
	}

	return &ListResponse{
		Manifest:  manifest,
		Records:   records,
		Total:     len(records),
		TotalSize: totalSize,
	}, nil
}

func (s *ListService) filterByKind(records []domain.IntegrityRecord, kind domain.AssetKind) []domain.IntegrityRecord {
	var filtered []domain.IntegrityRecord
	for _, r := range records {
		if strings.EqualFold(string(r.Kind), string(kind)) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (s *ListService) sortRecords(records []domain.IntegrityRecord, sortBy string, reverse bool) []domain.IntegrityRecord {
	switch sortBy {
	case "path", "size", "kind":
	default:
		// Document order; only reversal applies
		if reverse {
			for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
				records[i], records[j] = records[j], records[i]
			}
		}
		return records
	}

	less := func(a, b domain.IntegrityRecord) bool {
		switch sortBy {
		case "size":
			return a.Size < b.Size
		case "kind":
			return a.Kind < b.Kind
		default: // "path"
			return a.RelPath < b.RelPath
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if reverse {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
	return records
}

// filterRecords keeps records whose RelPath matches a doublestar pattern.
// An empty pattern keeps everything.
func filterRecords(records []domain.IntegrityRecord, pattern string) ([]domain.IntegrityRecord, error) {
	filtered := make([]domain.IntegrityRecord, 0, len(records))
	if strings.TrimSpace(pattern) == "" {
		return append(filtered, records...), nil
	}

	for _, r := range records {
		ok, err := doublestar.Match(pattern, r.RelPath)
		if err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", pattern, err)
		}
		if ok {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
