// Package storage manages the physical files behind document attachments.
// Files are keyed by a generated storage name and live either in a flat
// directory on disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Kind classifies an attachment by its extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindDocument
)

var imageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

var documentExts = map[string]struct{}{
	".pdf": {},
}

// Store saves, serves and removes attachment files. Put generates the
// storage name; Delete is idempotent and a missing name is a no-op.
type Store interface {
	Put(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// Classify reports the media kind of a file name, case-insensitive.
func Classify(name string) Kind {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := imageExts[ext]; ok {
		return KindImage
	}
	if _, ok := documentExts[ext]; ok {
		return KindDocument
	}
	return KindUnknown
}

// Allowed reports whether the extension is one the application accepts.
func Allowed(name string) bool {
	return Classify(name) != KindUnknown
}

const tokenAlphabet = "0123456789abcdef"

// NewToken mints the random prefix used in storage names. 16 hex characters
// gives 64 bits, enough to make collisions with existing names negligible.
func NewToken() string {
	return gonanoid.MustGenerate(tokenAlphabet, 16)
}

// NewName builds a fresh storage name for an uploaded file: a random token
// joined to a sanitized version of the user-supplied name.
func NewName(originalName string) string {
	return NewToken() + "_" + Sanitize(originalName)
}

// Sanitize strips an untrusted file name down to something safe to place in
// a flat directory: path components are discarded and anything outside
// [A-Za-z0-9._-] is dropped. The extension survives even when the base name
// does not (non-Latin names collapse to "file.ext"), so classification of
// the stored name matches the uploaded one.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	ext := path.Ext(name)
	base := sanitizePart(strings.TrimSuffix(name, ext))
	ext = strings.ToLower(sanitizePart(ext))
	if ext == "." {
		ext = ""
	}

	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return base + ext
}

func sanitizePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
