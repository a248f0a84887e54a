// Package checksum computes the SHA-256 digests stored with each resource.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/opencontainers/go-digest"
)

// Size is the width in bytes of a Sum.
const Size = sha256.Size

// Algorithm is the digest algorithm used for resource checksums.
const Algorithm = digest.SHA256

// Sum is the SHA-256 digest of a resource's raw bytes.
type Sum [Size]byte

// Of returns the digest of b.
func Of(b []byte) Sum {
	return sha256.Sum256(b)
}

// FromReader streams r to EOF and returns its digest and length.
func FromReader(r io.Reader) (Sum, uint64, error) {
	hr := NewHashingReader(r, Algorithm.Hash())
	n, err := io.Copy(io.Discard, hr)
	if err != nil {
		return Sum{}, 0, err
	}
	var s Sum
	copy(s[:], hr.Sum())
	return s, uint64(n), nil //nolint:gosec // io.Copy never returns a negative count
}

// FromBytes copies a raw digest into a Sum.
func FromBytes(b []byte) (Sum, error) {
	var s Sum
	if len(b) != Size {
		return s, fmt.Errorf("invalid checksum length: %d", len(b))
	}
	copy(s[:], b)
	return s, nil
}

// Digest renders the sum as an OCI digest.
func (s Sum) Digest() digest.Digest {
	return digest.NewDigestFromBytes(Algorithm, s[:])
}

// String returns the "sha256:<hex>" form of the sum.
func (s Sum) String() string {
	return s.Digest().String()
}

// Short returns the first 12 hex characters, for display.
func (s Sum) Short() string {
	return hex.EncodeToString(s[:6])
}

// HashingReader wraps an io.Reader and computes a hash of all data read.
type HashingReader struct {
	r io.Reader
	h hash.Hash
}

// NewHashingReader creates a reader that computes a hash while reading.
func NewHashingReader(r io.Reader, h hash.Hash) *HashingReader {
	return &HashingReader{r: r, h: h}
}

// Read implements io.Reader.
func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		_, _ = hr.h.Write(p[:n]) //nolint:errcheck // hash writes never fail
	}
	return n, err
}

// Sum returns the hash sum computed so far.
func (hr *HashingReader) Sum() []byte {
	return hr.h.Sum(nil)
}
