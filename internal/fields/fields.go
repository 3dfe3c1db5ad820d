// Package fields reads typed field sets from structured documents:
// identity cards, driving licenses, invoices and diplomas.
package fields

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Davide-02/certifi-ai/internal/extract"
	"github.com/Davide-02/certifi-ai/internal/model"
)

// ErrUnsupportedType is returned for document types without a schema
var ErrUnsupportedType = errors.New("unsupported document type")

// Schema lists the fields of one document type
type Schema struct {
	Required []string
	Optional []string
}

// All returns required then optional field names
func (s Schema) All() []string {
	return append(append([]string(nil), s.Required...), s.Optional...)
}

var schemas = map[model.DocumentType]Schema{
	model.DocID: {
		Required: []string{"first_name", "last_name", "date_of_birth"},
		Optional: []string{"full_name", "place_of_birth", "tax_code", "document_number", "nationality", "address", "issue_date", "expiry_date"},
	},
	model.DocDrivingLicense: {
		Required: []string{"first_name", "last_name", "license_number", "expiry_date"},
		Optional: []string{"date_of_birth", "place_of_birth", "issue_date", "issuing_authority", "categories"},
	},
	model.DocInvoice: {
		Required: []string{"invoice_number", "total_amount", "invoice_date"},
		Optional: []string{"net_amount", "vat_amount", "vat_rate", "seller_name", "buyer_name", "seller_vat", "buyer_vat"},
	},
	model.DocDiploma: {
		Required: []string{"student_name", "university_name", "degree_type"},
		Optional: []string{"graduation_date", "final_grade", "cfu_total", "cfu_earned", "thesis_title"},
	},
}

// SchemaFor returns the schema of docType
func SchemaFor(docType model.DocumentType) (Schema, bool) {
	s, ok := schemas[docType]
	return s, ok
}

// Fallback fills fields that pattern matching could not find, typically
// by asking a language model.
type Fallback interface {
	ExtractFields(ctx context.Context, docType model.DocumentType, text string, fields []string) (map[string]string, error)
}

const fallbackFieldConfidence = 0.75

// Extractor runs the schema-specific extraction for a document type
type Extractor struct {
	fallback  Fallback
	minFields int
	logger    *slog.Logger
}

// NewExtractor creates an extractor. fallback may be nil; it is consulted
// when fewer than minFields fields were found.
func NewExtractor(fallback Fallback, minFields int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if minFields <= 0 {
		minFields = 3
	}
	return &Extractor{fallback: fallback, minFields: minFields, logger: logger}
}

// Extract reads the fields of docType from text
func (e *Extractor) Extract(ctx context.Context, text string, docType model.DocumentType) (*model.StructuredExtraction, error) {
	var ext *model.StructuredExtraction
	switch docType {
	case model.DocID:
		ext = extractIdentity(text)
	case model.DocDrivingLicense:
		ext = extractLicense(text)
	case model.DocInvoice:
		ext = extractInvoice(text)
	case model.DocDiploma:
		ext = extractDiploma(text)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, docType)
	}

	if e.fallback != nil && len(ext.Fields) < e.minFields {
		e.applyFallback(ctx, text, ext)
	}
	return ext, nil
}

func (e *Extractor) applyFallback(ctx context.Context, text string, ext *model.StructuredExtraction) {
	schema := schemas[ext.DocumentType]
	got, err := e.fallback.ExtractFields(ctx, ext.DocumentType, text, schema.All())
	if err != nil {
		e.logger.Warn("field fallback failed", "type", ext.DocumentType, "error", err)
		ext.Metadata["fallback_error"] = err.Error()
		return
	}

	added := 0
	for _, name := range schema.All() {
		if ext.Has(name) || strings.TrimSpace(got[name]) == "" {
			continue
		}
		ext.Set(name, strings.TrimSpace(got[name]), fallbackFieldConfidence)
		added++
	}
	if added == 0 {
		return
	}

	ext.TrustedSource = model.TrustedLLM
	ext.Metadata["fallback_fields"] = added
	ext.ComputeMissing(schema.Required)
	ext.Confidence = genericConfidence(ext, schema.Required)
}

// genericConfidence is the share of required fields present plus 0.05
// per extra field, at most 0.20 extra.
func genericConfidence(ext *model.StructuredExtraction, required []string) float64 {
	if len(ext.Fields) == 0 || len(required) == 0 {
		return 0
	}
	present := 0
	for _, name := range required {
		if ext.Has(name) {
			present++
		}
	}
	bonus := min(0.20, float64(len(ext.Fields)-present)*0.05)
	return model.ClampConfidence(float64(present)/float64(len(required)) + bonus)
}

// criticalConfidence is the lowest confidence among critical fields,
// counting a missing one as zero.
func criticalConfidence(ext *model.StructuredExtraction, critical []string) float64 {
	if len(ext.FieldConfidence) == 0 {
		return 0
	}
	lowest := 1.0
	for _, name := range critical {
		lowest = min(lowest, ext.FieldConfidence[name])
	}
	return lowest
}

const numericDate = `(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`

var europeanAmount = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d+)?$`)

// firstGroup returns the trimmed first capture group of re in text
func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// dateField finds a day-first date with re and returns it as YYYY-MM-DD
func dateField(re *regexp.Regexp, text string) string {
	if raw := firstGroup(re, text); raw != "" {
		if d, ok := extract.ParseDate(raw); ok {
			return d
		}
	}
	return ""
}

// parseEuro reads "1.000,00", "220,00" or "1000.00" into a float
func parseEuro(s string) (float64, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), ".,")
	switch {
	case europeanAmount.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func validISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
