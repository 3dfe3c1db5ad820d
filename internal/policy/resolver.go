// Package policy maps a document family to the certification policy that
// applies to it. Documents are certified under a policy, not on their own.
package policy

import (
	"fmt"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// reviewBelow is the family confidence under which a default policy asks
// for human review
const reviewBelow = 0.85

type familyPolicy struct {
	policy             model.Policy
	certifiable        bool
	requiresExtraction bool
	sources            []model.TrustedSource
	minConfidence      float64
}

var familyPolicies = map[model.Family]familyPolicy{
	model.FamilyIdentity: {
		policy:             model.PolicyIdentityMinimal,
		certifiable:        true,
		requiresExtraction: true,
		sources:            []model.TrustedSource{model.TrustedMRZ, model.TrustedLayoutRules},
		minConfidence:      0.50,
	},
	model.FamilyDrivingLicense: {
		policy:             model.PolicyDrivingLicenseMinimal,
		certifiable:        true,
		requiresExtraction: true,
		sources:            []model.TrustedSource{model.TrustedLayoutRules},
		minConfidence:      0.50,
	},
	model.FamilyContract: {
		policy:        model.PolicyHashOnly,
		certifiable:   true,
		sources:       []model.TrustedSource{model.TrustedFileIntegrity},
		minConfidence: 0.60,
	},
	model.FamilyCertificate: {
		policy:             model.PolicyCertificateMinimal,
		certifiable:        true,
		requiresExtraction: true,
		sources:            []model.TrustedSource{model.TrustedOCR, model.TrustedLayoutRules},
		minConfidence:      0.50,
	},
	model.FamilyFinancial: {
		policy:             model.PolicyFinancialMinimal,
		certifiable:        true,
		requiresExtraction: true,
		sources:            []model.TrustedSource{model.TrustedOCR},
		minConfidence:      0.50,
	},
	model.FamilyCorporate: {
		policy:             model.PolicyCorporateMinimal,
		certifiable:        true,
		requiresExtraction: true,
		sources:            []model.TrustedSource{model.TrustedOCR},
		minConfidence:      0.50,
	},
	model.FamilyUnknown: {
		policy:  model.PolicyUnknown,
		sources: []model.TrustedSource{},
	},
}

var requiredFields = map[model.Policy][]string{
	model.PolicyIdentityMinimal:       {"first_name", "last_name", "date_of_birth"},
	model.PolicyIdentityStrict:        {"first_name", "last_name", "date_of_birth", "place_of_birth", "tax_code"},
	model.PolicyDrivingLicenseMinimal: {"first_name", "last_name", "license_number", "expiry_date"},
	model.PolicyFinancialMinimal:      {"invoice_number", "total_amount", "invoice_date"},
	model.PolicyCertificateMinimal:    {"student_name", "university_name", "degree_type"},
}

// Request is the input to Resolve
type Request struct {
	Family           model.Family
	FamilyConfidence float64
	TrustedSource    model.TrustedSource // Empty when not yet known
	UseClaimBased    bool                // Skip the family-confidence gate
}

// Resolver picks the certification policy for a family
type Resolver struct{}

// NewResolver creates a policy resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the policy decision for req. It never fails: families
// without a policy resolve to a non-certifiable unknown policy.
func (r *Resolver) Resolve(req Request) model.PolicyDecision {
	cfg, ok := familyPolicies[req.Family]
	if !ok {
		cfg = familyPolicies[model.FamilyUnknown]
	}

	if req.Family.IsStructured() && req.FamilyConfidence < cfg.minConfidence {
		return model.PolicyDecision{
			Policy:              model.PolicyUnknown,
			Certifiable:         false,
			TrustedSources:      []model.TrustedSource{},
			HumanReviewRequired: true,
			Reason:              model.ReasonLowFamilyConfidence,
			Method:              model.MethodPolicy,
			Details: map[string]any{
				"family_confidence":   req.FamilyConfidence,
				"required_confidence": cfg.minConfidence,
				"document_type":       "structured",
			},
		}
	}

	decision := model.PolicyDecision{
		Policy:             cfg.policy,
		Certifiable:        cfg.certifiable,
		RequiresExtraction: cfg.requiresExtraction,
		TrustedSources:     append([]model.TrustedSource{}, cfg.sources...),
		MinConfidence:      cfg.minConfidence,
		Details: map[string]any{
			"family":            string(req.Family),
			"family_confidence": req.FamilyConfidence,
		},
	}

	if req.Family.IsSemantic() || req.UseClaimBased {
		// readiness and review are settled by the claim evaluation
		decision.Certifiable = true
		decision.Reason = fmt.Sprintf("%s_claim_based", req.Family)
		decision.Method = model.MethodClaimBased
		return decision
	}

	decision.HumanReviewRequired = req.FamilyConfidence < reviewBelow
	decision.Reason = fmt.Sprintf("%s_policy", req.Family)
	decision.Method = model.MethodPolicy
	if w := sourceWarning(req.TrustedSource, cfg.sources); w != "" {
		decision.Details["source_warning"] = w
	}
	return decision
}

func sourceWarning(source model.TrustedSource, preferred []model.TrustedSource) string {
	if source == "" || len(preferred) == 0 {
		return ""
	}
	for _, p := range preferred {
		if p == source {
			return ""
		}
	}
	return fmt.Sprintf("source %s not in preferred %v", source, preferred)
}

// RequiredFields lists the fields a policy needs extracted. Policies that
// certify by hash alone need none.
func RequiredFields(p model.Policy) []string {
	return append([]string{}, requiredFields[p]...)
}

// Sources returns the preferred trusted sources for a family
func Sources(f model.Family) []model.TrustedSource {
	cfg, ok := familyPolicies[f]
	if !ok {
		return []model.TrustedSource{}
	}
	return append([]model.TrustedSource{}, cfg.sources...)
}
