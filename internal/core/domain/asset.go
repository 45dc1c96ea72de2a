package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AssetKind distinguishes the two tag shapes the tool rewrites
type AssetKind string

const (
	KindScript     AssetKind = "script"
	KindStylesheet AssetKind = "stylesheet"
)

// CrossOrigin is the fixed crossorigin attribute on rewritten tags
const CrossOrigin = "anonymous"

// AssetRef is one matched tag in the input HTML
type AssetRef struct {
	URL   string    // Raw src/href value, passed through unvalidated
	Kind  AssetKind // script or stylesheet
	Tag   string    // Full original tag text
	Start int       // Byte offset of Tag in the input
	End   int
}

// IsRemote reports whether the reference is fetched over HTTP
func (r AssetRef) IsRemote() bool {
	return IsRemoteURL(r.URL)
}

// IntegrityRecord is the result of vendoring one asset
type IntegrityRecord struct {
	Source    string    `json:"source"`     // Original URL or local path
	Kind      AssetKind `json:"kind"`       // script or stylesheet
	LocalPath string    `json:"local_path"` // Where the bytes were written
	RelPath   string    `json:"rel_path"`   // Relative to the asset root, forward slashes
	WebPath   string    `json:"web_path"`   // Value written into src/href
	Digest    string    `json:"digest"`     // e.g. sha512-abcd...
	Size      int64     `json:"size"`
}

// Manifest is the report written after each run
type Manifest struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Encoding  string            `json:"encoding"`
	Records   []IntegrityRecord `json:"records"`
}

// ErrNotFound marks a fetch failure: the asset could not be retrieved.
// Fetch failures are reported and skipped, never fatal.
var ErrNotFound = errors.New("asset not found")

// FetchError describes why a single asset could not be retrieved
type FetchError struct {
	Source string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNotFound) true for every FetchError
func (e *FetchError) Is(target error) bool {
	return target == ErrNotFound
}

// NewFetchError builds a FetchError for source
func NewFetchError(source, reason string, err error) *FetchError {
	return &FetchError{Source: source, Reason: reason, Err: err}
}

// IsRemoteURL reports whether s is an http:// or https:// URL
func IsRemoteURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
