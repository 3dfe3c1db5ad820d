package model

// Family is the coarse document category produced by classification
type Family string

const (
	FamilyIdentity       Family = "identity"        // ID cards, passports
	FamilyDrivingLicense Family = "driving_license" // Driving licenses
	FamilyContract       Family = "contract"        // Contracts, engagement letters, SOWs
	FamilyCertificate    Family = "certificate"     // Diplomas, attestations
	FamilyFinancial      Family = "financial"       // Invoices, payslips, statements
	FamilyCorporate      Family = "corporate"       // Company registry documents
	FamilyUnknown        Family = "unknown"         // Nothing qualified
)

// Families lists the classifiable families in tie-break priority order
var Families = []Family{
	FamilyIdentity,
	FamilyDrivingLicense,
	FamilyContract,
	FamilyCertificate,
	FamilyFinancial,
	FamilyCorporate,
}

// IsStructured reports whether the family is certified from typed fields
// rather than from the relationship the text demonstrates.
func (f Family) IsStructured() bool {
	return f == FamilyIdentity || f == FamilyDrivingLicense
}

// IsSemantic reports whether the family is certified through claims
func (f Family) IsSemantic() bool {
	switch f {
	case FamilyContract, FamilyCertificate, FamilyFinancial, FamilyCorporate:
		return true
	}
	return false
}

// Subtype refines a family
type Subtype string

const (
	SubtypeEngagementLetter               Subtype = "engagement_letter"
	SubtypeStatementOfWork                Subtype = "statement_of_work"
	SubtypeIndependentContractorAgreement Subtype = "independent_contractor_agreement"
	SubtypeProfessionalServicesAgreement  Subtype = "professional_services_agreement"
	SubtypeServiceAgreement               Subtype = "service_agreement"
	SubtypeNDA                            Subtype = "nda"
	SubtypeContractGeneric                Subtype = "contract_generic"

	SubtypeDiploma                 Subtype = "diploma"
	SubtypeCertificateOfEngagement Subtype = "certificate_of_engagement"
	SubtypeCertificateGeneric      Subtype = "certificate_generic"

	SubtypeInvoice       Subtype = "invoice"
	SubtypePayslip       Subtype = "payslip"
	SubtypeBankStatement Subtype = "bank_statement"

	SubtypeIDCard   Subtype = "id_card"
	SubtypePassport Subtype = "passport"

	SubtypeUnknown Subtype = "unknown"
)

// ClassificationSource records which kind of evidence decided the family
type ClassificationSource string

const (
	SourceKeywords     ClassificationSource = "keywords"               // Keyword hits only
	SourceLayout       ClassificationSource = "layout"                 // At least one structural hit
	SourceCoOccurrence ClassificationSource = "semantic_co_occurrence" // Only co-occurrence rules fired
	SourceNone         ClassificationSource = "none"
)

// FamilyResult is the classifier output. Treat it as immutable: an override
// builds a new value via Override.
type FamilyResult struct {
	Family         Family               `json:"family"`
	Subtype        Subtype              `json:"subtype"`
	Confidence     float64              `json:"confidence"`
	Source         ClassificationSource `json:"source"`
	MatchedSignals []string             `json:"matched_signals,omitempty"` // Keywords and patterns that hit
	Boost          float64              `json:"co_occurrence_boost,omitempty"`
	Scores         map[Family]float64   `json:"scores,omitempty"` // Normalized score per qualifying family

	Overridden     bool          `json:"overridden,omitempty"`
	OverrideReason string        `json:"override_reason,omitempty"`
	Previous       *FamilyResult `json:"previous,omitempty"` // Classification before override
}

// UnknownFamily is the result for text nothing can be said about
func UnknownFamily() FamilyResult {
	return FamilyResult{
		Family:     FamilyUnknown,
		Subtype:    SubtypeUnknown,
		Confidence: 0,
		Source:     SourceNone,
	}
}

// Override returns a new result re-classified to family. The receiver is
// left untouched and kept as Previous.
func (r FamilyResult) Override(family Family, subtype Subtype, confidence float64, reason string) FamilyResult {
	prev := r
	prev.Previous = nil
	return FamilyResult{
		Family:         family,
		Subtype:        subtype,
		Confidence:     ClampConfidence(confidence),
		Source:         r.Source,
		MatchedSignals: append([]string(nil), r.MatchedSignals...),
		Overridden:     true,
		OverrideReason: reason,
		Previous:       &prev,
	}
}

// WithConfidence returns a copy carrying a different confidence
func (r FamilyResult) WithConfidence(confidence float64) FamilyResult {
	r.Confidence = ClampConfidence(confidence)
	r.MatchedSignals = append([]string(nil), r.MatchedSignals...)
	return r
}
