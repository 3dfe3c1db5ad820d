package model

import "time"

// Result is the complete record produced for one document
type Result struct {
	ID       string `json:"id"`        // Run-unique identifier
	FilePath string `json:"file_path"` // Document that was processed

	DocumentFamily       Family    `json:"document_family"`
	DocumentSubtype      Subtype   `json:"document_subtype"`
	InferredRole         Role      `json:"inferred_role"`
	CertificationReady   bool      `json:"certification_ready"`
	HumanReviewRequired  bool      `json:"human_review_required"`
	RiskLevel            RiskLevel `json:"risk_level"`
	CertificationPolicy  Policy    `json:"certification_policy"`
	CertificationProfile Profile   `json:"certification_profile,omitempty"`

	Claim           *Claim                `json:"claim,omitempty"`
	ClaimStatement  string                `json:"claim_statement,omitempty"` // Human-readable claim
	ClaimEvaluation *ClaimEvaluation      `json:"claim_evaluation,omitempty"`
	Family          *FamilyResult         `json:"family,omitempty"`
	Role            *RoleResult           `json:"role,omitempty"`
	Policy          *PolicyDecision       `json:"policy,omitempty"`
	Data            *StructuredExtraction `json:"data,omitempty"` // Only when the policy requires extraction

	Validation Validation `json:"validation"`
	Metadata   Metadata   `json:"metadata"`
	Errors     []string   `json:"errors"`
	Success    bool       `json:"success"`
}

// Validation holds blocking errors and non-blocking warnings
type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether there are no validation errors
func (v Validation) Valid() bool {
	return len(v.Errors) == 0
}

// Metadata is the decision block plus hashes and bookkeeping
type Metadata struct {
	Decision            *DecisionMeta       `json:"decision,omitempty"`
	CanonicalHash       *string             `json:"canonical_hash"` // Null unless certification_ready
	FileHash            string              `json:"file_hash,omitempty"`
	ClaimHash           *string             `json:"claim_hash,omitempty"`
	TextHash            string              `json:"text_hash,omitempty"`
	CertificationMethod CertificationMethod `json:"certification_method,omitempty"`
	FamilyOverride      *FamilyOverride     `json:"family_override,omitempty"`
	AdaptiveBoost       float64             `json:"adaptive_boost,omitempty"`
	TextLength          int                 `json:"text_length"`
	TextPreview         string              `json:"text_preview,omitempty"`
	ProcessedAt         time.Time           `json:"processed_at"`
	DurationMS          int64               `json:"duration_ms"`
	Cached              bool                `json:"cached,omitempty"`
}

// DecisionMeta is the flattened decision exposed to callers
type DecisionMeta struct {
	CanCertify          bool                `json:"can_certify"`
	NeedsHuman          bool                `json:"needs_human"`
	Confidence          float64             `json:"confidence"`
	RiskLevel           RiskLevel           `json:"risk_level"`
	Reason              string              `json:"reason"`
	TrustedSource       TrustedSource       `json:"trusted_source,omitempty"`
	MissingFields       []string            `json:"missing_fields"`
	Details             map[string]any      `json:"details,omitempty"`
	CertificationMethod CertificationMethod `json:"certification_method,omitempty"`
}

// FamilyOverride records a claim-based re-classification
type FamilyOverride struct {
	OriginalFamily     Family  `json:"original_family"`
	OriginalConfidence float64 `json:"original_confidence"`
	NewFamily          Family  `json:"new_family"`
	NewConfidence      float64 `json:"new_confidence"`
	Reason             string  `json:"reason"`
	ClaimsConfidence   float64 `json:"claims_confidence"`
}

// NewResult returns a result in its initial rejected state
func NewResult(id, path string) *Result {
	return &Result{
		ID:                  id,
		FilePath:            path,
		DocumentFamily:      FamilyUnknown,
		DocumentSubtype:     SubtypeUnknown,
		InferredRole:        RoleUnknown,
		HumanReviewRequired: true,
		RiskLevel:           RiskHigh,
		CertificationPolicy: PolicyUnknown,
		Validation:          Validation{Errors: []string{}, Warnings: []string{}},
		Errors:              []string{},
	}
}

// AddError appends a pipeline error and marks the result unsuccessful
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Success = false
}
