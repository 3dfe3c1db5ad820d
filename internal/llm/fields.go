package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/textutil"
)

const (
	fieldSystemPrompt = "You extract fields from document text. Reply with one JSON object and nothing else."
	maxPromptChars    = 6000
)

// Throttle blocks until a request may proceed; *rate.Limiter satisfies it
type Throttle interface {
	Wait(ctx context.Context) error
}

// FieldExtractor asks a provider for missing structured fields. Returned
// values must occur verbatim in the document text, anything else is
// dropped as hallucinated.
type FieldExtractor struct {
	provider Provider
	throttle Throttle
	logger   *slog.Logger
}

// NewFieldExtractor wraps a provider. throttle may be nil.
func NewFieldExtractor(provider Provider, throttle Throttle, logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldExtractor{provider: provider, throttle: throttle, logger: logger}
}

// ExtractFields returns the requested fields the model found in text
func (f *FieldExtractor) ExtractFields(ctx context.Context, docType model.DocumentType, text string, fields []string) (map[string]string, error) {
	if f == nil || f.provider == nil {
		return nil, ErrNoProvider
	}
	if len(fields) == 0 {
		return map[string]string{}, nil
	}
	if f.throttle != nil {
		if err := f.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("llm throttle: %w", err)
		}
	}

	resp, err := f.provider.Complete(ctx, CompletionRequest{
		System: fieldSystemPrompt,
		Prompt: BuildFieldPrompt(docType, text, fields),
	})
	if err != nil {
		return nil, err
	}

	got, err := ParseFields(resp.Text, fields)
	if err != nil {
		return nil, fmt.Errorf("%s reply: %w", f.provider.Name(), err)
	}

	for name, value := range got {
		if !grounded(value, text) {
			f.logger.Debug("dropping ungrounded field", "provider", f.provider.Name(), "field", name)
			delete(got, name)
		}
	}
	f.logger.Debug("llm field fallback", "provider", f.provider.Name(), "model", resp.Model,
		"tokens", resp.TokensUsed, "fields", len(got))
	return got, nil
}

// BuildFieldPrompt lists the wanted keys and embeds the document text
func BuildFieldPrompt(docType model.DocumentType, text string, fields []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document type: %s\n\n", docType)
	b.WriteString("Return a JSON object with exactly these keys:\n")
	for _, name := range fields {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString(`
RULES:
1. Copy each value exactly as it appears in the text. Do not reformat dates or numbers.
2. Use an empty string when a field is not present. Never guess.
3. Do not add keys that are not listed.

Text:
`)
	b.WriteString(textutil.Head(text, maxPromptChars))
	return b.String()
}

// ParseFields decodes the first JSON object in reply and keeps the
// non-empty string values of the requested keys.
func ParseFields(reply string, fields []string) (map[string]string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	out := make(map[string]string, len(fields))
	for _, name := range fields {
		var value string
		switch v := raw[name].(type) {
		case string:
			value = strings.TrimSpace(v)
		case float64:
			value = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if value != "" && !strings.EqualFold(value, "null") {
			out[name] = value
		}
	}
	return out, nil
}

func grounded(value, text string) bool {
	squash := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), ""))
	}
	return strings.Contains(squash(text), squash(value))
}
