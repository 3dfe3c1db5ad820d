// Package decision turns classification and extraction confidences into a
// certify, reject or review decision under a certification profile.
//
// The engine never reports full certainty: adjusted confidence is capped at
// model.MaxConfidence and discounted by how far the trusted source can be
// relied upon.
package decision

import (
	"fmt"

	"github.com/Davide-02/certifi-ai/internal/model"
)

const (
	// Classification confidence assumed when an MRZ was read
	mrzClassificationFloor = 0.80
	mrzClassificationBoost = 0.90

	highRiskBelow  = 0.85
	lowRiskAtLeast = 0.90
	maxMissingLow  = 2
	criticalFields = 3

	formula = "min(min(extraction, classification) * risk_factor, 0.98)"
)

// Input is everything the engine looks at
type Input struct {
	DocumentType             model.DocumentType
	ClassificationConfidence float64
	ExtractionConfidence     float64
	TrustedSource            model.TrustedSource
	FieldConfidence          map[string]float64
	MissingFields            []string
	Profile                  model.Profile // Empty to infer from DocumentType
}

// Engine makes certification decisions
type Engine struct {
	cfg model.DecisionConfig
}

// NewEngine creates a decision engine
func NewEngine(cfg model.DecisionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// RiskFactor returns the confidence discount for a trusted source
func (e *Engine) RiskFactor(source model.TrustedSource) float64 {
	if f, ok := e.cfg.RiskFactors[string(source)]; ok {
		return f
	}
	return e.cfg.DefaultRiskFactor
}

// Decide runs the decision steps in order. The first failing check
// short-circuits with certification_ready=false.
func (e *Engine) Decide(in Input) model.Decision {
	profile := in.Profile
	if profile == "" {
		profile = InferProfile(in.DocumentType)
	}
	spec, ok := profiles[profile]
	if !ok {
		profile = model.ProfileIdentityMinimal
		spec = profiles[profile]
	}

	classification := in.ClassificationConfidence
	if classification < e.cfg.MinClassificationConfidence {
		return model.Reject(profile, model.ReasonLowClassification, model.RiskHigh, classification, map[string]any{
			"classification_confidence": classification,
			"threshold":                 e.cfg.MinClassificationConfidence,
		})
	}

	if in.TrustedSource == model.TrustedMRZ && classification < mrzClassificationFloor {
		classification = mrzClassificationBoost
	}

	factor := e.RiskFactor(in.TrustedSource)
	adjusted := model.ClampConfidence(min(in.ExtractionConfidence, classification) * factor)

	missing := make(map[string]bool, len(in.MissingFields))
	for _, f := range in.MissingFields {
		missing[f] = true
	}

	var missingRequired []string
	for _, f := range spec.Required {
		if missing[f] {
			missingRequired = append(missingRequired, f)
		}
	}
	if len(missingRequired) > 0 {
		return model.Reject(profile, model.ReasonMissingRequired, model.RiskMedium, adjusted, map[string]any{
			"missing_required_fields": missingRequired,
			"profile":                 string(profile),
		})
	}

	if adjusted < spec.MinConfidence {
		return model.Reject(profile, model.ReasonBelowThreshold, model.RiskMedium, adjusted, map[string]any{
			"current_confidence":  model.Round4(adjusted),
			"required_confidence": spec.MinConfidence,
			"profile":             string(profile),
		})
	}

	lowFields := map[string]float64{}
	var lowNames []string
	for _, f := range spec.Required[:min(criticalFields, len(spec.Required))] {
		if c, ok := in.FieldConfidence[f]; ok && c < e.cfg.MinFieldConfidence {
			lowFields[f] = c
			lowNames = append(lowNames, f)
		}
	}
	if len(lowNames) > 0 {
		return model.Reject(profile, model.ReasonLowFieldConfidence, model.RiskMedium, adjusted, map[string]any{
			"low_confidence_fields": lowNames,
			"field_confidence":      lowFields,
		})
	}

	risk := riskLevel(adjusted, in.TrustedSource, len(in.MissingFields), spec)

	missingOptional := []string{}
	for _, f := range spec.Optional {
		if missing[f] {
			missingOptional = append(missingOptional, f)
		}
	}

	return model.Decision{
		CertificationReady:  true,
		HumanReviewRequired: risk == model.RiskHigh,
		Reason:              fmt.Sprintf("%s_valid", profile),
		RiskLevel:           risk,
		Confidence:          adjusted,
		Profile:             profile,
		Details: map[string]any{
			"classification_confidence": classification,
			"extraction_confidence":     in.ExtractionConfidence,
			"adjusted_confidence":       model.Round4(adjusted),
			"risk_factor":               factor,
			"trusted_source":            string(in.TrustedSource),
			"missing_optional_fields":   missingOptional,
			"formula":                   formula,
		},
	}
}

func riskLevel(adjusted float64, source model.TrustedSource, missing int, spec ProfileSpec) model.RiskLevel {
	switch {
	case adjusted < highRiskBelow:
		return model.RiskHigh
	case source != spec.PreferredSource:
		return model.RiskMedium
	case missing > maxMissingLow:
		return model.RiskMedium
	case adjusted >= lowRiskAtLeast:
		return model.RiskLow
	}
	return model.RiskMedium
}

// FromClaims builds the decision for a semantic document certified through
// its claim evaluation rather than typed fields.
func FromClaims(eval model.ClaimEvaluation, profile model.Profile) model.Decision {
	if profile == "" {
		profile = model.ProfileClaimBased
	}
	conf := model.ClampConfidence(eval.ClaimsConfidence)
	risk := model.RiskMedium
	if conf >= lowRiskAtLeast {
		risk = model.RiskLow
	}
	d := model.Decision{
		CertificationReady:  eval.Certifiable,
		HumanReviewRequired: conf < highRiskBelow,
		Reason:              model.ReasonClaimBased,
		RiskLevel:           risk,
		Confidence:          conf,
		Profile:             profile,
		Details: map[string]any{
			"claims_confidence":       conf,
			"critical_claims_present": eval.CriticalClaimsPresent,
			"supporting_claims_count": eval.SupportingClaimsCount,
		},
	}
	if !eval.Certifiable {
		d.Reason = model.ReasonClaimsInsufficient
		d.HumanReviewRequired = true
	}
	return d
}
