package model

import (
	"sort"
	"strconv"
)

// DocumentType selects a structured extraction schema
type DocumentType string

const (
	DocID             DocumentType = "id"
	DocDrivingLicense DocumentType = "driving_license"
	DocInvoice        DocumentType = "invoice"
	DocDiploma        DocumentType = "diploma"
)

// DocumentTypeForFamily maps a family to its extraction schema
func DocumentTypeForFamily(f Family) (DocumentType, bool) {
	switch f {
	case FamilyIdentity:
		return DocID, true
	case FamilyDrivingLicense:
		return DocDrivingLicense, true
	case FamilyCertificate:
		return DocDiploma, true
	case FamilyFinancial:
		return DocInvoice, true
	}
	return "", false
}

// StructuredExtraction is the typed field set read from a document
type StructuredExtraction struct {
	DocumentType    DocumentType       `json:"document_type"`
	Fields          map[string]string  `json:"fields"`
	FieldConfidence map[string]float64 `json:"field_confidence"`
	MissingFields   []string           `json:"missing_fields"`
	TrustedSource   TrustedSource      `json:"trusted_source"`
	Confidence      float64            `json:"confidence"`
	Metadata        map[string]any     `json:"metadata,omitempty"` // Excluded from the canonical hash
}

// NewExtraction returns an empty extraction for docType
func NewExtraction(docType DocumentType, source TrustedSource) *StructuredExtraction {
	return &StructuredExtraction{
		DocumentType:    docType,
		Fields:          make(map[string]string),
		FieldConfidence: make(map[string]float64),
		MissingFields:   []string{},
		TrustedSource:   source,
		Metadata:        make(map[string]any),
	}
}

// Set records a field with its confidence. Empty values are ignored.
func (e *StructuredExtraction) Set(name, value string, confidence float64) {
	if value == "" {
		return
	}
	e.Fields[name] = value
	e.FieldConfidence[name] = ClampConfidence(confidence)
}

// Has reports whether the field was extracted
func (e *StructuredExtraction) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Fields[name]
	return ok
}

// Get returns the field value or ""
func (e *StructuredExtraction) Get(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// Float parses a numeric field written with a '.' decimal separator
func (e *StructuredExtraction) Float(name string) (float64, bool) {
	v, ok := e.Fields[name]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ComputeMissing sets MissingFields to the required names not extracted
func (e *StructuredExtraction) ComputeMissing(required []string) {
	missing := []string{}
	for _, name := range required {
		if !e.Has(name) {
			missing = append(missing, name)
		}
	}
	e.MissingFields = missing
}

// FieldNames returns extracted field names in sorted order
func (e *StructuredExtraction) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
