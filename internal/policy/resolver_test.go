package policy

import (
	"testing"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolve_StructuredBelowMinimum(t *testing.T) {
	got := NewResolver().Resolve(Request{Family: model.FamilyIdentity, FamilyConfidence: 0.40})

	assert.False(t, got.Certifiable)
	assert.Equal(t, model.PolicyUnknown, got.Policy)
	assert.Equal(t, model.ReasonLowFamilyConfidence, got.Reason)
	assert.True(t, got.HumanReviewRequired)
	assert.Equal(t, 0.50, got.Details["required_confidence"])
}

func TestResolve_StructuredDefault(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		review     bool
	}{
		{"confident", 0.90, false},
		{"uncertain", 0.60, true},
		{"boundary", 0.85, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver().Resolve(Request{Family: model.FamilyDrivingLicense, FamilyConfidence: tt.confidence})
			assert.True(t, got.Certifiable)
			assert.True(t, got.RequiresExtraction)
			assert.Equal(t, model.PolicyDrivingLicenseMinimal, got.Policy)
			assert.Equal(t, "driving_license_policy", got.Reason)
			assert.Equal(t, model.MethodPolicy, got.Method)
			assert.Equal(t, tt.review, got.HumanReviewRequired)
		})
	}
}

func TestResolve_SemanticIgnoresConfidenceGate(t *testing.T) {
	got := NewResolver().Resolve(Request{Family: model.FamilyContract, FamilyConfidence: 0.10})

	assert.True(t, got.Certifiable)
	assert.False(t, got.RequiresExtraction)
	assert.Equal(t, model.PolicyHashOnly, got.Policy)
	assert.Equal(t, "contract_claim_based", got.Reason)
	assert.Equal(t, model.MethodClaimBased, got.Method)
	assert.Equal(t, []model.TrustedSource{model.TrustedFileIntegrity}, got.TrustedSources)
}

func TestResolve_SemanticRequiringExtraction(t *testing.T) {
	got := NewResolver().Resolve(Request{Family: model.FamilyFinancial, FamilyConfidence: 0.75})
	assert.True(t, got.RequiresExtraction)
	assert.Equal(t, model.PolicyFinancialMinimal, got.Policy)
	assert.Equal(t, "financial_claim_based", got.Reason)
}

func TestResolve_ClaimBasedStructured(t *testing.T) {
	got := NewResolver().Resolve(Request{Family: model.FamilyIdentity, FamilyConfidence: 0.70, UseClaimBased: true})
	assert.True(t, got.Certifiable)
	assert.Equal(t, "identity_claim_based", got.Reason)
	assert.Equal(t, model.MethodClaimBased, got.Method)
}

func TestResolve_SourceWarning(t *testing.T) {
	r := NewResolver()

	got := r.Resolve(Request{Family: model.FamilyIdentity, FamilyConfidence: 0.90, TrustedSource: model.TrustedOCR})
	assert.Contains(t, got.Details["source_warning"], "source ocr not in preferred")
	assert.True(t, got.Certifiable)

	got = r.Resolve(Request{Family: model.FamilyIdentity, FamilyConfidence: 0.90, TrustedSource: model.TrustedMRZ})
	assert.NotContains(t, got.Details, "source_warning")
}

func TestResolve_Unknown(t *testing.T) {
	got := NewResolver().Resolve(Request{Family: model.FamilyUnknown, FamilyConfidence: 0.99})
	assert.False(t, got.Certifiable)
	assert.Equal(t, model.PolicyUnknown, got.Policy)
	assert.Equal(t, "unknown_policy", got.Reason)

	got = NewResolver().Resolve(Request{Family: model.Family("passport_scan"), FamilyConfidence: 0.99})
	assert.False(t, got.Certifiable)
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t, []string{"first_name", "last_name", "date_of_birth"}, RequiredFields(model.PolicyIdentityMinimal))
	assert.Empty(t, RequiredFields(model.PolicyHashOnly))
	assert.Empty(t, RequiredFields(model.PolicyCorporateMinimal))

	// callers cannot mutate the table
	f := RequiredFields(model.PolicyFinancialMinimal)
	f[0] = "changed"
	assert.Equal(t, "invoice_number", RequiredFields(model.PolicyFinancialMinimal)[0])
}
