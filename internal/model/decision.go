package model

// RiskLevel grades a certification decision
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Profile names a set of requirements a decision is checked against
type Profile string

const (
	ProfileIdentityMinimal       Profile = "identity_minimal"
	ProfileIdentityStrict        Profile = "identity_strict"
	ProfileInvoiceMinimal        Profile = "invoice_minimal"
	ProfileInvoiceStrict         Profile = "invoice_strict"
	ProfileDiplomaMinimal        Profile = "diploma_minimal"
	ProfileDiplomaStrict         Profile = "diploma_strict"
	ProfileDrivingLicenseMinimal Profile = "driving_license_minimal"
	ProfileDrivingLicenseStrict  Profile = "driving_license_strict"
	ProfileClaimBased            Profile = "claim_based"
)

// Decision reason tokens
const (
	ReasonLowClassification   = "low_classification_confidence"
	ReasonMissingRequired     = "missing_required_fields"
	ReasonBelowThreshold      = "below_profile_threshold"
	ReasonLowFieldConfidence  = "low_field_confidence"
	ReasonClaimBased          = "claim_based_certification"
	ReasonClaimsInsufficient  = "claims_insufficient"
	ReasonLowFamilyConfidence = "low_family_confidence"
	ReasonUnknownFamily       = "unknown_family"
	ReasonInsufficientText    = "insufficient_text"
	ReasonClaimOverride       = "claim_based_override"
)

// Decision is the final certify / reject / review outcome
type Decision struct {
	CertificationReady  bool           `json:"certification_ready"`
	HumanReviewRequired bool           `json:"human_review_required"`
	Reason              string         `json:"reason"`
	RiskLevel           RiskLevel      `json:"risk_level"`
	Confidence          float64        `json:"confidence"`
	Profile             Profile        `json:"profile"`
	Details             map[string]any `json:"details,omitempty"` // Inputs and formula behind the decision
}

// Reject builds a non-ready decision
func Reject(profile Profile, reason string, risk RiskLevel, confidence float64, details map[string]any) Decision {
	return Decision{
		CertificationReady:  false,
		HumanReviewRequired: true,
		Reason:              reason,
		RiskLevel:           risk,
		Confidence:          ClampConfidence(confidence),
		Profile:             profile,
		Details:             details,
	}
}
