package model

// Policy names a certification policy
type Policy string

const (
	PolicyHashOnly              Policy = "hash_only"
	PolicyIdentityMinimal       Policy = "identity_minimal"
	PolicyIdentityStrict        Policy = "identity_strict"
	PolicyDrivingLicenseMinimal Policy = "driving_license_minimal"
	PolicyFinancialMinimal      Policy = "financial_minimal"
	PolicyCertificateMinimal    Policy = "certificate_minimal"
	PolicyCorporateMinimal      Policy = "corporate_minimal"
	PolicyUnknown               Policy = "unknown"
)

// TrustedSource is where extracted data came from
type TrustedSource string

const (
	TrustedMRZ           TrustedSource = "mrz"
	TrustedLayoutRules   TrustedSource = "layout_rules"
	TrustedOCR           TrustedSource = "ocr"
	TrustedLLM           TrustedSource = "llm"
	TrustedFileIntegrity TrustedSource = "file_integrity"
)

// CertificationMethod is how a certification decision was reached
type CertificationMethod string

const (
	MethodPolicy     CertificationMethod = "policy"
	MethodClaimBased CertificationMethod = "claim_based"
	MethodHashOnly   CertificationMethod = "hash_only"
)

// PolicyDecision is the resolved certification policy for a document
type PolicyDecision struct {
	Policy              Policy              `json:"policy"`
	Certifiable         bool                `json:"certifiable"`
	RequiresExtraction  bool                `json:"requires_extraction"`
	TrustedSources      []TrustedSource     `json:"trusted_sources"`
	MinConfidence       float64             `json:"min_confidence"`
	HumanReviewRequired bool                `json:"human_review_required"` // Provisional; the decision engine may override
	Reason              string              `json:"reason"`
	Method              CertificationMethod `json:"certification_method"`
	Details             map[string]any      `json:"details,omitempty"`
}
