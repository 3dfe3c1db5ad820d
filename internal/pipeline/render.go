package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

const banner = "═══════════════════════════════════════════════════════════"

// Renderer writes results as JSON reports and console summaries
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer; pretty indents JSON output
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// WriteJSON encodes res to w
func (r *Renderer) WriteJSON(w io.Writer, res *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// RenderJSON writes res to path, creating parent directories
func (r *Renderer) RenderJSON(res *model.Result, path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return r.WriteJSON(f, res)
}

// RenderSummary prints a human-readable banner for res
func (r *Renderer) RenderSummary(w io.Writer, res *model.Result) {
	verdict := "NOT READY"
	switch {
	case res.CertificationReady && !res.HumanReviewRequired:
		verdict = "READY"
	case res.CertificationReady:
		verdict = "READY (human review)"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "  %s\n", filepath.Base(res.FilePath))
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Family:       %s", res.DocumentFamily)
	if res.DocumentSubtype != "" && res.DocumentSubtype != model.SubtypeUnknown {
		fmt.Fprintf(w, " / %s", res.DocumentSubtype)
	}
	fmt.Fprintln(w)
	if res.Family != nil {
		fmt.Fprintf(w, "  Confidence:   %.2f\n", res.Family.Confidence)
	}
	if o := res.Metadata.FamilyOverride; o != nil {
		fmt.Fprintf(w, "  Override:     %s -> %s (%s)\n", o.OriginalFamily, o.NewFamily, o.Reason)
	}
	fmt.Fprintf(w, "  Role:         %s\n", res.InferredRole)
	if res.ClaimStatement != "" {
		fmt.Fprintf(w, "  Claim:        %s\n", res.ClaimStatement)
	}
	fmt.Fprintf(w, "  Policy:       %s\n", res.CertificationPolicy)
	if res.CertificationProfile != "" {
		fmt.Fprintf(w, "  Profile:      %s\n", res.CertificationProfile)
	}
	fmt.Fprintf(w, "  Verdict:      %s\n", verdict)
	fmt.Fprintf(w, "  Risk:         %s\n", res.RiskLevel)
	if d := res.Metadata.Decision; d != nil {
		fmt.Fprintf(w, "  Reason:       %s (confidence %.4f)\n", d.Reason, d.Confidence)
		if len(d.MissingFields) > 0 {
			fmt.Fprintf(w, "  Missing:      %s\n", strings.Join(d.MissingFields, ", "))
		}
	}
	if h := res.Metadata.CanonicalHash; h != nil {
		fmt.Fprintf(w, "  Hash:         %s\n", *h)
	}
	if res.Metadata.Cached {
		fmt.Fprintln(w, "  Cached:       yes")
	}

	for _, e := range res.Validation.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	for _, warn := range res.Validation.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	fmt.Fprintln(w)
}
