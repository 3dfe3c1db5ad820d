package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Davide-02/certifi-ai/internal/model"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// canonicalJSON encodes v with every object's keys sorted and no
// insignificant whitespace. Numbers keep their original text.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExtractionHash hashes the canonical form of ext. Metadata is left out.
func ExtractionHash(ext *model.StructuredExtraction) (string, error) {
	if ext == nil {
		return "", fmt.Errorf("nil extraction")
	}
	stripped := *ext
	stripped.Metadata = nil

	data, err := canonicalJSON(stripped)
	if err != nil {
		return "", fmt.Errorf("canonical extraction: %w", err)
	}
	return sha256Hex(data), nil
}

// ClaimHash hashes the canonical form of c
func ClaimHash(c *model.Claim) (string, error) {
	if c == nil {
		return "", fmt.Errorf("nil claim")
	}
	data, err := canonicalJSON(c)
	if err != nil {
		return "", fmt.Errorf("canonical claim: %w", err)
	}
	return sha256Hex(data), nil
}

// TextHash hashes the extracted text
func TextHash(text string) string {
	return sha256Hex([]byte(text))
}

// combineHashes folds b into a
func combineHashes(a, b string) string {
	return sha256Hex([]byte(a + b))
}
