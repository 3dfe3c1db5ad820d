// Package evaluate decides, independently of role inference and claim
// extraction, whether text demonstrates a certifiable contractor relationship.
package evaluate

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// Signal names
const (
	HasClient           = "has_client"
	HasContractor       = "has_contractor"
	ReferencesAgreement = "references_master_agreement"
	DefinesScope        = "defines_scope_of_work"
	HasEffectiveDate    = "has_effective_date"
	DefinesServices     = "defines_services"
)

var signalOrder = []string{
	HasClient, HasContractor, ReferencesAgreement, DefinesScope, HasEffectiveDate, DefinesServices,
}

var supporting = []string{ReferencesAgreement, DefinesScope, HasEffectiveDate}

var signalPatterns = map[string][]string{
	HasClient: {
		`client:\s*([A-Z][a-z]+)`,
		`client\s+name:\s*([A-Z][a-z]+)`,
		`for\s+client:\s*([A-Z][a-z]+)`,
		`services\s+requested\s+by\s+([A-Z][a-z]+)`,
		`dear\s+([A-Z][a-z]+)`,
		`\(["']?client["']?\)`,
		`client\s+is\s+([A-Z][a-z]+)`,
	},
	HasContractor: {
		`contractor:\s*([A-Z][a-z]+)`,
		`contractor\s+name:\s*([A-Z][a-z]+)`,
		`independent\s+contractor:\s*([A-Z][a-z]+)`,
		`engaged\s+as\s+an?\s+independent\s+contractor`,
		`is\s+engaged\s+as\s+an?\s+independent\s+contractor`,
		`contractor\s+details`,
		`this\s+letter\s+certifies\s+that\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`,
		`([A-Z][a-z]+\s+[A-Z][a-z]+)\s+is\s+engaged`,
		`contractor\s+is\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`,
	},
	ReferencesAgreement: {
		`reference\s+agreement`,
		`master\s+agreement`,
		`independent\s+contractor\s+agreement`,
		`consulting\s+agreement`,
		`dated\s+\d+`,
		`letter\s+of\s+engagement`,
		`engagement\s+letter`,
		`certificate\s+of\s+engagement`,
		`this\s+engagement\s+letter`,
		`this\s+letter\s+dated`,
	},
	DefinesScope: {
		`statement\s+of\s+work`,
		`scope\s+of\s+work`,
		`work\s+order`,
		`statement\s+of\s+work\s*\(sow\)`,
	},
	HasEffectiveDate: {
		`effective\s+date`,
		`effective\s+from`,
		`commencement\s+date`,
	},
	DefinesServices: {
		`services\s+to\s+be\s+provided`,
		`scope\s+of\s+services`,
		`work\s+to\s+be\s+performed`,
	},
}

var engagementWording = regexp.MustCompile(`(?i)engagement\s+letter|this\s+letter\s+certifies|dear\s+[A-Z]`)

// Thresholds and weights
const (
	bothPartiesBase        = 0.85
	onePartyAgreementBase  = 0.70
	onePartyBase           = 0.50
	engagementOnlyBase     = 0.65
	supportingLift         = 0.10
	agreementLift          = 0.20
	thresholdWithAgreement = 0.65
	threshold              = 0.70
)

// Evaluator scores relationship signals. Safe for concurrent use.
type Evaluator struct {
	patterns map[string][]*regexp.Regexp
}

// NewEvaluator compiles the signal tables
func NewEvaluator() *Evaluator {
	e := &Evaluator{patterns: make(map[string][]*regexp.Regexp, len(signalPatterns))}
	for name, ps := range signalPatterns {
		for _, p := range ps {
			e.patterns[name] = append(e.patterns[name], regexp.MustCompile(`(?i)`+p))
		}
	}
	return e
}

// Evaluate assesses text. The assessment does not depend on the family.
func (e *Evaluator) Evaluate(text string, _ model.Family) model.ClaimEvaluation {
	found := make(map[string]bool, len(signalOrder))
	scores := make(map[string]int, len(signalOrder))
	for _, name := range signalOrder {
		found[name] = false
		scores[name] = 0
	}

	out := model.ClaimEvaluation{ClaimsFound: found, ClaimScores: scores}
	if strings.TrimSpace(text) == "" {
		return out
	}

	for _, name := range signalOrder {
		for _, re := range e.patterns[name] {
			if re.MatchString(text) {
				scores[name]++
			}
		}
		found[name] = scores[name] > 0
	}

	client, contractor := found[HasClient], found[HasContractor]
	agreement := found[ReferencesAgreement]
	engagement := engagementWording.MatchString(text)

	var conf float64
	switch {
	case client && contractor:
		conf = bothPartiesBase
	case (client || contractor) && agreement:
		conf = onePartyAgreementBase
	case client || contractor:
		conf = onePartyBase
	case agreement && engagement:
		conf = engagementOnlyBase
	}

	support := 0
	for _, name := range supporting {
		if found[name] {
			support++
		}
	}
	if support > 0 {
		conf = model.ClampTo(conf+supportingLift*float64(support), model.MaxClaimConfidence)
	}

	relationship := (client && contractor) || (agreement && engagement)
	if agreement {
		relationship = true
		conf = model.ClampTo(conf+agreementLift, model.MaxClaimConfidence)
	}

	bar := threshold
	if agreement {
		bar = thresholdWithAgreement
	}

	out.IsContractorRelationship = relationship
	out.ClaimsConfidence = conf
	out.Certifiable = relationship && conf >= bar
	out.CriticalClaimsPresent = client && contractor
	out.SupportingClaimsCount = support
	return out
}
