package decision

import (
	"testing"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine {
	return NewEngine(model.DefaultConfig().Decision)
}

func identityInput() Input {
	return Input{
		DocumentType:             model.DocID,
		ClassificationConfidence: 0.98,
		ExtractionConfidence:     0.98,
		TrustedSource:            model.TrustedMRZ,
		FieldConfidence:          map[string]float64{"first_name": 0.95, "last_name": 0.95, "date_of_birth": 0.95},
		MissingFields:            []string{},
	}
}

func TestDecide_AcceptLowRisk(t *testing.T) {
	d := newEngine().Decide(identityInput())

	assert.True(t, d.CertificationReady)
	assert.False(t, d.HumanReviewRequired)
	assert.Equal(t, model.RiskLow, d.RiskLevel)
	assert.Equal(t, "identity_minimal_valid", d.Reason)
	assert.Equal(t, model.ProfileIdentityMinimal, d.Profile)
	assert.InDelta(t, 0.931, d.Confidence, 1e-9)
	assert.Equal(t, formula, d.Details["formula"])
}

func TestDecide_LowClassification(t *testing.T) {
	in := identityInput()
	in.ClassificationConfidence = 0.60

	d := newEngine().Decide(in)
	assert.False(t, d.CertificationReady)
	assert.True(t, d.HumanReviewRequired)
	assert.Equal(t, model.ReasonLowClassification, d.Reason)
	assert.Equal(t, model.RiskHigh, d.RiskLevel)
	assert.InDelta(t, 0.60, d.Confidence, 1e-9)
}

func TestDecide_MRZBoostsClassification(t *testing.T) {
	in := identityInput()
	in.ClassificationConfidence = 0.75

	d := newEngine().Decide(in)
	require.True(t, d.CertificationReady)
	assert.InDelta(t, 0.855, d.Confidence, 1e-9)
	assert.Equal(t, 0.90, d.Details["classification_confidence"])
	assert.Equal(t, model.RiskMedium, d.RiskLevel)
	assert.False(t, d.HumanReviewRequired)
}

func TestDecide_MissingRequired(t *testing.T) {
	in := identityInput()
	in.MissingFields = []string{"date_of_birth", "address"}

	d := newEngine().Decide(in)
	assert.False(t, d.CertificationReady)
	assert.Equal(t, model.ReasonMissingRequired, d.Reason)
	assert.Equal(t, model.RiskMedium, d.RiskLevel)
	assert.Equal(t, []string{"date_of_birth"}, d.Details["missing_required_fields"])
}

func TestDecide_BelowProfileThreshold(t *testing.T) {
	d := newEngine().Decide(Input{
		DocumentType:             model.DocInvoice,
		ClassificationConfidence: 0.90,
		ExtractionConfidence:     0.98,
		TrustedSource:            model.TrustedOCR,
		MissingFields:            []string{},
	})

	assert.False(t, d.CertificationReady)
	assert.Equal(t, model.ProfileInvoiceMinimal, d.Profile)
	assert.Equal(t, model.ReasonBelowThreshold, d.Reason)
	assert.InDelta(t, 0.675, d.Confidence, 1e-9)
}

func TestDecide_LowFieldConfidence(t *testing.T) {
	in := identityInput()
	in.FieldConfidence["first_name"] = 0.60

	d := newEngine().Decide(in)
	assert.False(t, d.CertificationReady)
	assert.Equal(t, model.ReasonLowFieldConfidence, d.Reason)
	assert.Equal(t, []string{"first_name"}, d.Details["low_confidence_fields"])
}

func TestDecide_NonPreferredSourceIsMedium(t *testing.T) {
	in := identityInput()
	in.TrustedSource = model.TrustedLayoutRules

	d := newEngine().Decide(in)
	require.True(t, d.CertificationReady)
	assert.InDelta(t, 0.882, d.Confidence, 1e-9)
	assert.Equal(t, model.RiskMedium, d.RiskLevel)
}

func TestDecide_AcceptedHighRiskNeedsReview(t *testing.T) {
	cfg := model.DefaultConfig().Decision
	cfg.RiskFactors["ocr"] = 0.85

	d := NewEngine(cfg).Decide(Input{
		DocumentType:             model.DocInvoice,
		ClassificationConfidence: 0.98,
		ExtractionConfidence:     0.98,
		TrustedSource:            model.TrustedOCR,
		MissingFields:            []string{"seller_name", "buyer_name"},
	})

	require.True(t, d.CertificationReady)
	assert.Equal(t, model.RiskHigh, d.RiskLevel)
	assert.True(t, d.HumanReviewRequired)
	assert.Equal(t, []string{"seller_name", "buyer_name"}, d.Details["missing_optional_fields"])
}

func TestDecide_ExplicitProfile(t *testing.T) {
	in := identityInput()
	in.Profile = model.ProfileIdentityStrict
	in.MissingFields = []string{"tax_code"}

	d := newEngine().Decide(in)
	assert.Equal(t, model.ProfileIdentityStrict, d.Profile)
	assert.Equal(t, model.ReasonMissingRequired, d.Reason)
}

func TestDecide_UnknownProfileFallsBack(t *testing.T) {
	in := identityInput()
	in.Profile = model.Profile("bogus")

	d := newEngine().Decide(in)
	assert.Equal(t, model.ProfileIdentityMinimal, d.Profile)
	assert.True(t, d.CertificationReady)
}

func TestDecide_NeverCertain(t *testing.T) {
	cfg := model.DefaultConfig().Decision
	cfg.RiskFactors["mrz"] = 1.5

	d := NewEngine(cfg).Decide(identityInput())
	assert.Equal(t, model.MaxConfidence, d.Confidence)
}

func TestInferProfile(t *testing.T) {
	assert.Equal(t, model.ProfileIdentityMinimal, InferProfile(model.DocID))
	assert.Equal(t, model.ProfileInvoiceMinimal, InferProfile(model.DocInvoice))
	assert.Equal(t, model.ProfileDiplomaMinimal, InferProfile(model.DocDiploma))
	assert.Equal(t, model.ProfileDrivingLicenseMinimal, InferProfile(model.DocDrivingLicense))
	assert.Equal(t, model.ProfileIdentityMinimal, InferProfile(""))
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("invoice_strict")
	require.NoError(t, err)
	assert.Equal(t, model.ProfileInvoiceStrict, p)

	p, err = ParseProfile("")
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = ParseProfile("passport_gold")
	assert.Error(t, err)
}

func TestFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		eval   model.ClaimEvaluation
		ready  bool
		review bool
		risk   model.RiskLevel
		reason string
	}{
		{"strong", model.ClaimEvaluation{Certifiable: true, ClaimsConfidence: 0.95}, true, false, model.RiskLow, model.ReasonClaimBased},
		{"adequate", model.ClaimEvaluation{Certifiable: true, ClaimsConfidence: 0.80}, true, true, model.RiskMedium, model.ReasonClaimBased},
		{"insufficient", model.ClaimEvaluation{ClaimsConfidence: 0.50}, false, true, model.RiskMedium, model.ReasonClaimsInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromClaims(tt.eval, "")
			assert.Equal(t, tt.ready, d.CertificationReady)
			assert.Equal(t, tt.review, d.HumanReviewRequired)
			assert.Equal(t, tt.risk, d.RiskLevel)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, model.ProfileClaimBased, d.Profile)
		})
	}
}
