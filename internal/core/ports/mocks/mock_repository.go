package mocks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
)

// --- MockFetcher ---

// MockFetcher is a mock implementation of the Fetcher interface for testing.
// Registered sources are written into destDir under their base name.
type MockFetcher struct {
	mu        sync.Mutex
	content   map[string][]byte
	failures  map[string]error
	calls     []string
	ioFailure error
}

// NewMockFetcher creates a new mock fetcher
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		content:  make(map[string][]byte),
		failures: make(map[string]error),
	}
}

// SetContent registers the bytes returned for source
func (m *MockFetcher) SetContent(source string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[source] = body
}

// SetFailure makes source fail as a fetch failure
func (m *MockFetcher) SetFailure(source string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[source] = domain.NewFetchError(source, reason, nil)
}

// SetIOFailure makes every call fail with a non-fetch error
func (m *MockFetcher) SetIOFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ioFailure = err
}

func (m *MockFetcher) Fetch(ctx context.Context, ref domain.AssetRef, destDir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ref.URL)

	if m.ioFailure != nil {
		return "", m.ioFailure
	}
	if err, ok := m.failures[ref.URL]; ok {
		return "", err
	}
	body, ok := m.content[ref.URL]
	if !ok {
		return "", domain.NewFetchError(ref.URL, "not registered", nil)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, path.Base(ref.URL))
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return "", fmt.Errorf("mock write failed: %w", err)
	}
	return dest, nil
}

func (m *MockFetcher) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

func (m *MockFetcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.failures = make(map[string]error)
	m.ioFailure = nil
}

// --- MockManifestRepository ---

// MockManifestRepository keeps the manifest in memory
type MockManifestRepository struct {
	mu       sync.RWMutex
	manifest *domain.Manifest
	saves    int
}

// NewMockManifestRepository creates a new mock manifest repository
func NewMockManifestRepository() *MockManifestRepository {
	return &MockManifestRepository{}
}

func (m *MockManifestRepository) Save(ctx context.Context, manifest *domain.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifest = manifest
	m.saves++
	return nil
}

func (m *MockManifestRepository) Load(ctx context.Context) (*domain.Manifest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.manifest == nil {
		return nil, os.ErrNotExist
	}
	return m.manifest, nil
}

func (m *MockManifestRepository) Exists(ctx context.Context) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.manifest != nil
}

// SaveCount returns how many times Save was called
func (m *MockManifestRepository) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
