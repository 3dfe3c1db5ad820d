package adapters

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// GenericAdapter is the fallback adapter for unknown file types. It reads
// anything that decodes as text and returns "" for binary content.
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(path string, contentType string) bool {
	return true
}

// Extract decodes data as text
func (a *GenericAdapter) Extract(ctx context.Context, path string, data []byte) (string, error) {
	text, ok := decodeText(data)
	if !ok {
		return "", nil
	}
	return text, nil
}

// PlainAdapter reads plain text and markdown files
type PlainAdapter struct{}

// NewPlainAdapter creates a new plain text adapter
func NewPlainAdapter() *PlainAdapter {
	return &PlainAdapter{}
}

// Name returns the adapter name
func (a *PlainAdapter) Name() string {
	return "plain"
}

// CanHandle matches text extensions or a sniffed text/plain type
func (a *PlainAdapter) CanHandle(path string, contentType string) bool {
	if hasExt(path, ".txt", ".text", ".md", ".markdown", ".csv", ".eml") {
		return true
	}
	return strings.HasPrefix(contentType, "text/plain")
}

// Extract decodes data and strips markdown emphasis markers
func (a *PlainAdapter) Extract(ctx context.Context, path string, data []byte) (string, error) {
	text, ok := decodeText(data)
	if !ok {
		return "", nil
	}
	if hasExt(path, ".md", ".markdown") {
		text = strings.NewReplacer("**", "", "__", "", "`", "").Replace(text)
	}
	return text, nil
}

// decodeText returns data as UTF-8. UTF-16 input is recognised by its byte
// order mark; anything else must already be valid UTF-8 without NUL bytes.
func decodeText(data []byte) (string, bool) {
	utf16 := bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
	if !utf16 && (bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)) {
		return "", false
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", false
	}
	return string(out), true
}
