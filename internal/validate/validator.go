// Package validate runs type-specific consistency checks on extracted
// fields. Errors block certification; warnings are reported only.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Davide-02/certifi-ai/internal/model"
)

const (
	minTextLength      = 10
	idMinConfidence    = 0.85
	lowFieldConfidence = 0.70
	taxCodeLength      = 16
	amountTolerance    = 0.01
	isoDate            = "2006-01-02"
)

// nowFunc is the clock used for expiry checks (injectable for tests)
var nowFunc = time.Now

// Validator checks extracted documents
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks ext against the rules for its document type. text is the
// source the fields were read from.
func (v *Validator) Validate(ext *model.StructuredExtraction, text string) model.Validation {
	res := model.Validation{Errors: []string{}, Warnings: []string{}}
	if len(strings.TrimSpace(text)) < minTextLength {
		res.Errors = append(res.Errors, "insufficient text extracted")
		return res
	}
	if ext == nil {
		res.Errors = append(res.Errors, "no extraction to validate")
		return res
	}

	switch ext.DocumentType {
	case model.DocInvoice:
		validateInvoice(ext, &res)
	case model.DocDiploma:
		validateDiploma(ext, &res)
	case model.DocID:
		validateID(ext, &res)
	case model.DocDrivingLicense:
		validateDrivingLicense(ext, &res)
	}
	return res
}

func validateInvoice(ext *model.StructuredExtraction, res *model.Validation) {
	if !ext.Has("invoice_number") {
		res.Warnings = append(res.Warnings, "missing invoice number")
	}
	total, ok := ext.Float("total_amount")
	if !ok {
		res.Errors = append(res.Errors, "missing total amount")
		return
	}
	if total <= 0 {
		res.Errors = append(res.Errors, "invalid total amount")
	}
	net, okNet := ext.Float("net_amount")
	vat, okVAT := ext.Float("vat_amount")
	if okNet && okVAT && math.Abs(total-(net+vat)) > amountTolerance {
		res.Warnings = append(res.Warnings, fmt.Sprintf("VAT calculation mismatch: %.2f + %.2f != %.2f", net, vat, total))
	}
}

func validateDiploma(ext *model.StructuredExtraction, res *model.Validation) {
	if !ext.Has("student_name") {
		res.Warnings = append(res.Warnings, "missing student name")
	}
	if !ext.Has("university_name") {
		res.Warnings = append(res.Warnings, "missing university name")
	}
	total, okTotal := atoi(ext.Get("cfu_total"))
	earned, okEarned := atoi(ext.Get("cfu_earned"))
	if okTotal && okEarned && earned > total {
		res.Errors = append(res.Errors, "CFU earned exceeds total")
	}
}

func validateID(ext *model.StructuredExtraction, res *model.Validation) {
	requireFields(ext, res, "first_name", "last_name", "date_of_birth")

	if code := ext.Get("tax_code"); code != "" {
		if len(code) != taxCodeLength {
			res.Errors = append(res.Errors, "invalid tax code format")
		} else if !alnum(code) {
			res.Errors = append(res.Errors, "tax code contains invalid characters")
		}
	}

	issue, okIssue := date(ext.Get("issue_date"))
	expiry, okExpiry := date(ext.Get("expiry_date"))
	if okIssue && okExpiry && expiry.Before(issue) {
		res.Errors = append(res.Errors, "expiry date before issue date")
	}

	if ext.Confidence < idMinConfidence {
		res.Warnings = append(res.Warnings, fmt.Sprintf("confidence %.2f below threshold %.2f for ID documents", ext.Confidence, idMinConfidence))
	}
	if len(ext.MissingFields) > 0 {
		res.Warnings = append(res.Warnings, "missing required fields: "+strings.Join(ext.MissingFields, ", "))
	}
	if ext.TrustedSource != model.TrustedMRZ {
		res.Warnings = append(res.Warnings, "no MRZ found, lower reliability")
	}
}

func validateDrivingLicense(ext *model.StructuredExtraction, res *model.Validation) {
	critical := []string{"first_name", "last_name", "license_number", "expiry_date"}
	requireFields(ext, res, critical...)

	if expiry, ok := date(ext.Get("expiry_date")); ok && expiry.Before(nowFunc()) {
		res.Warnings = append(res.Warnings, "license appears to be expired")
	}

	for _, f := range critical {
		if c, ok := ext.FieldConfidence[f]; ok && c < lowFieldConfidence {
			res.Warnings = append(res.Warnings, fmt.Sprintf("low confidence for %s: %.2f", f, c))
		}
	}
}

func requireFields(ext *model.StructuredExtraction, res *model.Validation, names ...string) {
	for _, f := range names {
		if !ext.Has(f) {
			res.Errors = append(res.Errors, fmt.Sprintf("missing %s (critical)", strings.ReplaceAll(f, "_", " ")))
		}
	}
}

func date(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, s)
	return t, err == nil
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func alnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
