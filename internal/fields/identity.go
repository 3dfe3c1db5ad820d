package fields

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

const (
	mrzFieldConfidence = 0.95
	minMRZConfidence   = 0.80
)

var (
	idFirstName = regexp.MustCompile(`(?i)(?:\bnome|\bfirst\s+name|\bgiven\s+names?)\s*:?[ \t]*([\p{L}'’-]+)`)
	idLastName  = regexp.MustCompile(`(?i)(?:\bcognome|\bsurname|\blast\s+name)\s*:?[ \t]*([\p{L}'’-]+)`)
	idBirthDate = regexp.MustCompile(`(?i)(?:data\s+di\s+nascita|date\s+of\s+birth)\s*:?\s*` + numericDate)
	idBirthLoc  = regexp.MustCompile(`(?i)(?:luogo\s+di\s+nascita|place\s+of\s+birth)\s*:?[ \t]*([\p{L}][^\n,]*)`)
	idTaxCode   = regexp.MustCompile(`(?i)codice\s+fiscale\s*:?\s*([A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z])`)
	idDocNumber = regexp.MustCompile(`(?i)(?:numero|n[°ºo]\.?)\s*(?:documento|carta)\s*:?\s*([A-Z0-9]+)`)
	idAddress   = regexp.MustCompile(`(?i)(?:indirizzo|residenza|address)\s*:?[ \t]*([^\n]+)`)
	idIssued    = regexp.MustCompile(`(?i)(?:data\s+di\s+(?:rilascio|emissione)|date\s+of\s+issue)\s*:?\s*` + numericDate)
	idExpiry    = regexp.MustCompile(`(?i)(?:scadenza|date\s+of\s+expiry|expiry\s+date)\s*:?\s*` + numericDate)
)

// extractIdentity reads an identity document. A readable MRZ is the
// source of truth; printed labels only fill what it lacks.
func extractIdentity(text string) *model.StructuredExtraction {
	ext := model.NewExtraction(model.DocID, model.TrustedOCR)

	mrz, found := ParseMRZ(text)
	if found {
		ext.Metadata["mrz_found"] = true
		ext.Metadata["mrz_format"] = mrz.Format
		ext.Metadata["mrz_confidence"] = mrz.Confidence
		ext.Metadata["mrz_checks_valid"] = mrz.ChecksValid
	}
	if found && mrz.Confidence > minMRZConfidence {
		ext.TrustedSource = model.TrustedMRZ
		ext.Set("last_name", mrz.Surname, mrzFieldConfidence)
		if given := strings.Fields(mrz.GivenNames); len(given) > 0 {
			ext.Set("first_name", given[0], mrzFieldConfidence)
			if len(given) > 1 {
				ext.Set("full_name", mrz.Surname+" "+mrz.GivenNames, mrzFieldConfidence)
			}
		}
		ext.Set("date_of_birth", mrz.BirthDate, mrzFieldConfidence)
		ext.Set("document_number", mrz.DocumentNumber, mrzFieldConfidence)
		ext.Set("nationality", mrz.Nationality, mrzFieldConfidence)
		ext.Set("expiry_date", mrz.ExpiryDate, mrzFieldConfidence)
	}

	setMissing(ext, "first_name", firstGroup(idFirstName, text), 0.60)
	setMissing(ext, "last_name", firstGroup(idLastName, text), 0.60)
	setMissing(ext, "date_of_birth", dateField(idBirthDate, text), 0.70)
	setMissing(ext, "document_number", firstGroup(idDocNumber, text), 0.60)
	setMissing(ext, "place_of_birth", firstGroup(idBirthLoc, text), 0.60)
	setMissing(ext, "address", firstGroup(idAddress, text), 0.50)
	setMissing(ext, "issue_date", dateField(idIssued, text), 0.70)
	setMissing(ext, "expiry_date", dateField(idExpiry, text), 0.70)
	ext.Set("tax_code", strings.ToUpper(firstGroup(idTaxCode, text)), 0.80)

	required := schemas[model.DocID].Required
	ext.ComputeMissing(required)

	conf := criticalConfidence(ext, required)
	if len(ext.Fields) > len(required) {
		conf += 0.10
	}
	ext.Confidence = model.ClampConfidence(conf)
	return ext
}

// setMissing records a field only when no stronger source set it
func setMissing(ext *model.StructuredExtraction, name, value string, confidence float64) {
	if !ext.Has(name) {
		ext.Set(name, value, confidence)
	}
}
