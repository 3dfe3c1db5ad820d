package validate

import (
	"testing"
	"time"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "document text long enough to validate"

func init() {
	nowFunc = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
}

func extraction(docType model.DocumentType, source model.TrustedSource, fields map[string]string) *model.StructuredExtraction {
	ext := model.NewExtraction(docType, source)
	for k, v := range fields {
		ext.Set(k, v, 0.90)
	}
	ext.Confidence = 0.90
	return ext
}

func TestValidate_InsufficientText(t *testing.T) {
	res := NewValidator().Validate(extraction(model.DocInvoice, model.TrustedOCR, nil), "short")
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "insufficient text")
	assert.False(t, res.Valid())
}

func TestValidate_Invoice(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		errors   []string
		warnings int
	}{
		{
			name:   "consistent",
			fields: map[string]string{"invoice_number": "42", "total_amount": "1220.00", "net_amount": "1000.00", "vat_amount": "220.00"},
			errors: []string{},
		},
		{
			name:     "vat mismatch",
			fields:   map[string]string{"invoice_number": "42", "total_amount": "1300.00", "net_amount": "1000.00", "vat_amount": "220.00"},
			errors:   []string{},
			warnings: 1,
		},
		{
			name:     "missing total",
			fields:   map[string]string{"net_amount": "1000.00"},
			errors:   []string{"missing total amount"},
			warnings: 1,
		},
		{
			name:   "non-positive total",
			fields: map[string]string{"invoice_number": "42", "total_amount": "0.00"},
			errors: []string{"invalid total amount"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewValidator().Validate(extraction(model.DocInvoice, model.TrustedOCR, tt.fields), sampleText)
			assert.Equal(t, tt.errors, res.Errors)
			assert.Len(t, res.Warnings, tt.warnings)
		})
	}
}

func TestValidate_Diploma(t *testing.T) {
	ext := extraction(model.DocDiploma, model.TrustedOCR, map[string]string{
		"university_name": "Università degli Studi di Milano",
		"cfu_total":       "180",
		"cfu_earned":      "190",
	})

	res := NewValidator().Validate(ext, sampleText)
	assert.Equal(t, []string{"CFU earned exceeds total"}, res.Errors)
	assert.Equal(t, []string{"missing student name"}, res.Warnings)
}

func TestValidate_Identity(t *testing.T) {
	ext := extraction(model.DocID, model.TrustedMRZ, map[string]string{
		"first_name":    "ANNA",
		"last_name":     "ERIKSSON",
		"date_of_birth": "1974-08-12",
		"tax_code":      "RSSMRA80A01H501U",
		"issue_date":    "2020-01-01",
		"expiry_date":   "2030-01-01",
	})

	res := NewValidator().Validate(ext, sampleText)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_IdentityErrors(t *testing.T) {
	ext := extraction(model.DocID, model.TrustedOCR, map[string]string{
		"first_name":  "Mario",
		"tax_code":    "RSSMRA80A01H501",
		"issue_date":  "2020-01-01",
		"expiry_date": "2019-01-01",
	})
	ext.Confidence = 0.60
	ext.ComputeMissing([]string{"first_name", "last_name", "date_of_birth"})

	res := NewValidator().Validate(ext, sampleText)
	assert.Equal(t, []string{
		"missing last name (critical)",
		"missing date of birth (critical)",
		"invalid tax code format",
		"expiry date before issue date",
	}, res.Errors)
	assert.Len(t, res.Warnings, 3)
	assert.Contains(t, res.Warnings[2], "no MRZ")
}

func TestValidate_TaxCodeCharacters(t *testing.T) {
	ext := extraction(model.DocID, model.TrustedMRZ, map[string]string{
		"first_name": "Mario", "last_name": "Rossi", "date_of_birth": "1980-01-01",
		"tax_code": "RSSMRA80A01H50-U",
	})
	res := NewValidator().Validate(ext, sampleText)
	assert.Equal(t, []string{"tax code contains invalid characters"}, res.Errors)
}

func TestValidate_DrivingLicense(t *testing.T) {
	ext := extraction(model.DocDrivingLicense, model.TrustedLayoutRules, map[string]string{
		"first_name":     "Mario",
		"last_name":      "Rossi",
		"license_number": "U1X23Y456Z",
		"expiry_date":    "2025-03-01",
	})
	ext.FieldConfidence["license_number"] = 0.60

	res := NewValidator().Validate(ext, sampleText)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{
		"license appears to be expired",
		"low confidence for license_number: 0.60",
	}, res.Warnings)
}

func TestValidate_DrivingLicenseMissingCritical(t *testing.T) {
	ext := extraction(model.DocDrivingLicense, model.TrustedLayoutRules, map[string]string{"first_name": "Mario"})
	res := NewValidator().Validate(ext, sampleText)
	assert.Len(t, res.Errors, 3)
	assert.False(t, res.Valid())
}
