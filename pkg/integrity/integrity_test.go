package integrity

import (
	"bytes"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestHasher_File_MatchesIndependentDigest(t *testing.T) {
	content := []byte("/*! jQuery v3.7.1 */ (function(){})();")
	path := writeTemp(t, "jquery.js", content)

	got, size, err := New(EncodingHex, 8192).File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := sha512.Sum512(content)
	want := "sha512-" + hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("File() = %q, want %q", got, want)
	}
	if size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), size)
	}
}

func TestHasher_File_Base64(t *testing.T) {
	content := []byte("body { color: red; }")
	path := writeTemp(t, "style.css", content)

	got, _, err := New(EncodingBase64, 0).File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := sha512.Sum512(content)
	want := "sha512-" + base64.StdEncoding.EncodeToString(sum[:])
	if got != want {
		t.Errorf("File() = %q, want %q", got, want)
	}
}

func TestHasher_ChunkSizeDoesNotChangeDigest(t *testing.T) {
	// Larger than every chunk size below, and not a multiple of any
	content := bytes.Repeat([]byte("0123456789abcdef"), 4099)
	content = append(content, 'x')
	path := writeTemp(t, "large.bin", content)

	expected := New(EncodingHex, 0).Bytes(content)

	for _, chunk := range []int{1, 7, 512, 8192, 1 << 20} {
		got, _, err := New(EncodingHex, chunk).File(path)
		if err != nil {
			t.Fatalf("chunk %d: unexpected error: %v", chunk, err)
		}
		if got != expected {
			t.Errorf("chunk %d: digest %q, want %q", chunk, got, expected)
		}
	}
}

func TestHasher_Deterministic(t *testing.T) {
	path := writeTemp(t, "a.js", []byte("console.log('a')"))
	h := New(EncodingHex, 8192)

	first, _, err := h.File(path)
	if err != nil {
		t.Fatalf("first hash failed: %v", err)
	}
	second, _, err := h.File(path)
	if err != nil {
		t.Fatalf("second hash failed: %v", err)
	}

	if first != second {
		t.Errorf("expected identical digests, got %q and %q", first, second)
	}
}

func TestHasher_SensitiveToEveryByte(t *testing.T) {
	h := New(EncodingHex, 8192)
	base := []byte("var answer = 42;")
	original := h.Bytes(base)

	for i := range base {
		mutated := append([]byte(nil), base...)
		mutated[i] ^= 0x01
		if h.Bytes(mutated) == original {
			t.Errorf("flipping byte %d did not change the digest", i)
		}
	}
}

func TestHasher_EmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.css", nil)

	got, size, err := New(EncodingHex, 8192).File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := sha512.Sum512(nil)
	if got != "sha512-"+hex.EncodeToString(sum[:]) {
		t.Errorf("unexpected digest for empty file: %q", got)
	}
	if size != 0 {
		t.Errorf("expected size 0, got %d", size)
	}
}

func TestHasher_MissingFile(t *testing.T) {
	_, _, err := New(EncodingHex, 8192).File("/non/existent/file.js")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestHasher_Matches(t *testing.T) {
	path := writeTemp(t, "b.js", []byte("b"))
	h := New(EncodingHex, 8192)
	digest := h.Bytes([]byte("b"))

	ok, err := h.Matches(path, digest)
	if err != nil || !ok {
		t.Errorf("Matches() = %v, %v; want true, nil", ok, err)
	}

	if err := os.WriteFile(path, []byte("c"), 0644); err != nil {
		t.Fatalf("failed to rewrite file: %v", err)
	}
	ok, err = h.Matches(path, digest)
	if err != nil || ok {
		t.Errorf("Matches() after change = %v, %v; want false, nil", ok, err)
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in   string
		want Encoding
	}{
		{"hex", EncodingHex},
		{"base64", EncodingBase64},
		{"BASE64", EncodingBase64},
		{"", EncodingHex},
		{"sha", EncodingHex},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseEncoding(tt.in); got != tt.want {
				t.Errorf("ParseEncoding(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasher_Prefix(t *testing.T) {
	got := New(EncodingHex, 0).Bytes([]byte("x"))
	if !strings.HasPrefix(got, Algorithm+"-") {
		t.Errorf("expected %q prefix, got %q", Algorithm+"-", got)
	}
	// 512 bits -> 128 hex characters
	if len(got) != len("sha512-")+128 {
		t.Errorf("unexpected digest length %d", len(got))
	}
}
