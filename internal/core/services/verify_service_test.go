package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
	"github.com/kamal-hamza/sri-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/sri-cli/pkg/integrity"
)

// vendorFixture runs a real vendoring pass so the manifest and files agree
func vendorFixture(t *testing.T, encoding integrity.Encoding) (*VerifyService, *mocks.MockManifestRepository, string) {
	t.Helper()
	l := newTestLayout(t)
	mockFetcher := mocks.NewMockFetcher()
	mockRepo := mocks.NewMockManifestRepository()
	hasher := integrity.New(encoding, 8192)

	mockFetcher.SetContent("https://a.example/a.js", []byte("a"))
	mockFetcher.SetContent("https://a.example/b.js", []byte("b"))
	mockFetcher.SetContent("https://a.example/c.css", []byte("c"))

	input := `<script src="https://a.example/a.js"></script>
<script src="https://a.example/b.js"></script>
<link rel="stylesheet" href="https://a.example/c.css">`

	vendor := NewVendorService(mockFetcher, mockRepo, l, hasher)
	if _, err := vendor.Execute(context.Background(), VendorRequest{HTML: input, WriteManifest: true}); err != nil {
		t.Fatalf("vendor run failed: %v", err)
	}

	return NewVerifyService(mockRepo, l, integrity.New(integrity.EncodingHex, 8192)), mockRepo, l.RootPath
}

func TestVerifyService_Execute_AllMatch(t *testing.T) {
	svc, _, _ := vendorFixture(t, integrity.EncodingHex)

	resp, err := svc.Execute(context.Background(), VerifyRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.OK != 3 || !resp.Passed() {
		t.Errorf("expected 3 matching files, got %+v", resp)
	}
}

func TestVerifyService_Execute_UsesManifestEncoding(t *testing.T) {
	svc, _, _ := vendorFixture(t, integrity.EncodingBase64)

	resp, err := svc.Execute(context.Background(), VerifyRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Passed() {
		t.Errorf("expected base64 manifest to verify, got %+v", resp.Results)
	}
}

func TestVerifyService_Execute_DetectsChanges(t *testing.T) {
	svc, _, root := vendorFixture(t, integrity.EncodingHex)

	if err := os.WriteFile(filepath.Join(root, "js", "a.js"), []byte("tampered"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "css", "c.css")); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Execute(context.Background(), VerifyRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Passed() {
		t.Fatal("expected verification to fail")
	}
	if resp.OK != 1 || resp.Mismatched != 1 || resp.Missing != 1 {
		t.Errorf("expected 1 ok, 1 mismatch, 1 missing; got %d/%d/%d", resp.OK, resp.Mismatched, resp.Missing)
	}

	for _, r := range resp.Results {
		if r.Status == StatusMismatch && !strings.HasSuffix(r.Record.RelPath, "a.js") {
			t.Errorf("unexpected mismatch on %s", r.Record.RelPath)
		}
		if r.Status == StatusMissing && r.Record.Kind != domain.KindStylesheet {
			t.Errorf("unexpected missing record %s", r.Record.RelPath)
		}
	}
}

func TestVerifyService_Execute_Match(t *testing.T) {
	svc, _, _ := vendorFixture(t, integrity.EncodingHex)

	resp, err := svc.Execute(context.Background(), VerifyRequest{Match: "js/**"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Errorf("expected only script records, got %d", len(resp.Results))
	}
}

func TestVerifyService_Execute_NoManifest(t *testing.T) {
	svc := NewVerifyService(mocks.NewMockManifestRepository(), newTestLayout(t), integrity.New(integrity.EncodingHex, 0))

	if _, err := svc.Execute(context.Background(), VerifyRequest{}); err == nil {
		t.Fatal("expected error without a manifest")
	}
}
