package extract

import (
	"context"
	"log/slog"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/textutil"
)

// Input is everything the extractor reads for one document
type Input struct {
	Text    string
	Role    model.Role
	Family  model.Family
	Subtype model.Subtype
	Table   *model.CompensationTable // Optional, overrides text amounts
}

// Extractor builds a Claim from document text. It holds only read-only
// state and is safe for concurrent use.
type Extractor struct {
	rules         AmountRules
	tableCurrency string
	ner           NER
	logger        *slog.Logger
}

// NewExtractor creates an extractor. A nil ner skips entity recognition.
func NewExtractor(cfg model.ClaimsConfig, ner NER, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	tc := cfg.TableCurrency
	if tc == "" {
		tc = model.DefaultConfig().Claims.TableCurrency
	}
	return &Extractor{
		rules:         AmountRulesFrom(cfg),
		tableCurrency: tc,
		ner:           ner,
		logger:        logger,
	}
}

// Extract returns the best-effort claim for in. Fields that cannot be
// found stay nil.
func (e *Extractor) Extract(ctx context.Context, in Input) model.Claim {
	claim := model.Claim{
		Role:             in.Role,
		EvidenceType:     model.EvidenceNone,
		ExtractionMethod: model.MethodRegex,
	}
	if claim.Role == "" {
		claim.Role = model.RoleUnknown
	}
	if textutil.IsBlank(in.Text, 1) {
		claim.Confidence = scoreClaim(&claim)
		return claim
	}

	switch {
	case in.Subtype == model.SubtypeProfessionalServicesAgreement:
		extractProfessionalServices(in.Text, &claim)
	case e.ner != nil:
		ents, err := e.ner.Entities(ctx, in.Text)
		if err != nil {
			e.logger.Warn("entity recognition failed", "error", err)
			break
		}
		if applyEntities(ents, &claim) {
			claim.ExtractionMethod = model.MethodNER
		}
	}

	e.extractGeneral(in.Text, &claim)

	if !in.Table.IsEmpty() {
		ApplyTable(&claim, in.Table, e.tableCurrency)
		e.logger.Debug("compensation table applied",
			"method", claim.ExtractionMethod, "amount", *claim.Amount)
	}

	claim.Confidence = scoreClaim(&claim)
	return claim
}

// extractGeneral fills whatever earlier passes left unset
func (e *Extractor) extractGeneral(text string, claim *model.Claim) {
	collapsed := textutil.CollapseSpaces(text)

	if claim.Subject == nil {
		claim.Subject = model.Str(findSubject(text, collapsed))
	}
	if claim.Entity == nil {
		claim.Entity = model.Str(findEntity(text))
	}
	if claim.StartDate == nil {
		if d, ok := findDate(text, startDatePatterns); ok {
			claim.StartDate = model.Str(d)
		}
	}
	if claim.EndDate == nil {
		if d, ok := findDate(text, endDatePatterns); ok {
			claim.EndDate = model.Str(d)
		}
	}

	e.rules.extractAmount(collapsed, claim)

	if claim.Services == nil {
		claim.Services = model.Str(findServices(text))
	}
}

// scoreClaim sets the evidence type and returns the component confidence
func scoreClaim(c *model.Claim) float64 {
	components := 0.0
	for _, p := range []*string{c.Subject, c.Entity, c.StartDate} {
		if p != nil {
			components++
		}
	}
	if c.Amount != nil {
		components += 0.5
	}

	switch {
	case c.Subject != nil && c.Entity != nil && c.StartDate != nil:
		c.EvidenceType = model.EvidenceHard
	case c.Subject != nil || c.Entity != nil:
		c.EvidenceType = model.EvidenceSoft
	default:
		c.EvidenceType = model.EvidenceNone
	}

	switch {
	case components >= 3:
		return 0.85
	case components >= 2:
		return 0.70
	case components >= 1:
		return 0.50
	default:
		return 0.30
	}
}
