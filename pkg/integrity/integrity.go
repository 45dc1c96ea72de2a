// Package integrity computes Subresource Integrity strings for vendored files.
//
// Only SHA-512 is supported. The digest is streamed in fixed-size chunks so
// memory use does not grow with the asset size.
package integrity

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Algorithm is the identifier prefixed to every digest
const Algorithm = "sha512"

// DefaultChunkSize is the read buffer used when none is configured
const DefaultChunkSize = 8192

// Encoding selects how the raw digest bytes are rendered
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
)

// ParseEncoding maps a config value to an Encoding, defaulting to hex
func ParseEncoding(s string) Encoding {
	if strings.EqualFold(s, string(EncodingBase64)) {
		return EncodingBase64
	}
	return EncodingHex
}

// Hasher produces integrity strings
type Hasher struct {
	Encoding  Encoding
	ChunkSize int
}

// New creates a Hasher; a non-positive chunkSize falls back to DefaultChunkSize
func New(encoding Encoding, chunkSize int) *Hasher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{Encoding: encoding, ChunkSize: chunkSize}
}

// Reader hashes everything read from r and returns "<algorithm>-<digest>"
// together with the number of bytes consumed.
func (h *Hasher) Reader(r io.Reader) (string, int64, error) {
	sum := sha512.New()
	n, err := io.CopyBuffer(sum, r, make([]byte, h.chunkSize()))
	if err != nil {
		return "", n, fmt.Errorf("failed to calculate hash: %w", err)
	}
	return Algorithm + "-" + h.encode(sum.Sum(nil)), n, nil
}

// File hashes the file at path
func (h *Hasher) File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return h.Reader(onlyReader{f})
}

// Bytes hashes an in-memory buffer
func (h *Hasher) Bytes(b []byte) string {
	sum := sha512.Sum512(b)
	return Algorithm + "-" + h.encode(sum[:])
}

// Matches reports whether path currently hashes to want
func (h *Hasher) Matches(path, want string) (bool, error) {
	got, _, err := h.File(path)
	if err != nil {
		return false, err
	}
	return got == want, nil
}

func (h *Hasher) encode(raw []byte) string {
	if h.Encoding == EncodingBase64 {
		return base64.StdEncoding.EncodeToString(raw)
	}
	return hex.EncodeToString(raw)
}

func (h *Hasher) chunkSize() int {
	if h.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return h.ChunkSize
}

// onlyReader hides WriterTo so io.CopyBuffer reads through the chunk buffer
type onlyReader struct {
	io.Reader
}
