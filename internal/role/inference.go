// Package role infers the relationship a document's subject holds from
// wording patterns rather than from document titles.
package role

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// Pattern weights
const (
	hardWeight = 3
	softWeight = 1
	familyLift = 0.10
)

var hardEvidence = map[model.Role][]string{
	model.RoleContractor: {
		`independent\s+contractor`,
		`is\s+not\s+an\s+employee`,
		`contractor\s+agreement`,
		`consulting\s+agreement`,
		`freelance\s+contract`,
		`service\s+agreement`,
		`contractor\s+shall`,
		`contractor\s+will`,
		`as\s+a\s+contractor`,
		`engagement\s+letter`,
		`letter\s+of\s+engagement`,
		`service\s+provider`,
		`engaged\s+as\s+an?\s+independent\s+contractor`,
		`this\s+engagement\s+letter`,
	},
	model.RoleEmployee: {
		`employment\s+agreement`,
		`employee\s+of`,
		`is\s+an\s+employee`,
		`employment\s+relationship`,
		`wage\s+earner`,
	},
	model.RoleStudent: {
		`student\s+at`,
		`enrolled\s+student`,
		`student\s+id`,
		`student\s+number`,
	},
	model.RoleSupplier: {
		`supplier\s+agreement`,
		`vendor\s+contract`,
		`supplies\s+to`,
	},
	model.RoleDirector: {
		`director\s+of`,
		`board\s+member`,
		`managing\s+director`,
	},
	model.RoleClient: {
		`client\s+agrees\s+to\s+pay`,
		`on\s+behalf\s+of\s+the\s+client`,
	},
	model.RolePartner: {
		`partnership\s+agreement`,
		`general\s+partner`,
	},
}

var softEvidence = map[model.Role][]string{
	model.RoleContractor: {
		`services\s+rendered`,
		`this\s+agreement`,
		`effective\s+date`,
		`client\s*/\s*contractor`,
		`contractor\s*/\s*client`,
		`statement\s+of\s+work`,
		`work\s+order`,
		`retainer\s+agreement`,
		`letter\s+of\s+engagement`,
		`engagement\s+letter`,
		`certificate\s+of\s+engagement`,
		`service\s+provider`,
		`services\s+provided`,
		`services\s+requested\s+by`,
		`this\s+letter\s+certifies`,
		`dear\s+[a-z]`,
		`fees\s+charged`,
	},
	model.RoleEmployee: {
		`payslip`,
		`salary`,
		`employment\s+letter`,
		`hr\s+letter`,
	},
}

// expectedRole is the role a family's documents normally evidence
var expectedRole = map[model.Family]model.Role{
	model.FamilyContract:    model.RoleContractor,
	model.FamilyCertificate: model.RoleContractor,
	model.FamilyFinancial:   model.RoleContractor,
}

type rolePatterns struct {
	role model.Role
	hard []*regexp.Regexp
	soft []*regexp.Regexp
	src  []string // hard then soft sources, index aligned
}

// Engine infers roles. Safe for concurrent use.
type Engine struct {
	roles []rolePatterns
}

// NewEngine compiles the role pattern tables
func NewEngine() *Engine {
	e := &Engine{}
	for _, r := range model.Roles {
		rp := rolePatterns{role: r}
		for _, p := range hardEvidence[r] {
			rp.hard = append(rp.hard, regexp.MustCompile(`(?i)`+p))
			rp.src = append(rp.src, p)
		}
		for _, p := range softEvidence[r] {
			rp.soft = append(rp.soft, regexp.MustCompile(`(?i)`+p))
			rp.src = append(rp.src, p)
		}
		e.roles = append(e.roles, rp)
	}
	return e
}

// Infer returns the best supported role for text within family
func (e *Engine) Infer(text string, family model.Family) model.RoleResult {
	if strings.TrimSpace(text) == "" {
		return model.UnknownRole()
	}

	var (
		best      model.RoleResult
		bestScore int
	)
	for _, rp := range e.roles {
		var signals []string
		hard, soft := 0, 0
		for i, re := range rp.hard {
			if re.MatchString(text) {
				hard++
				signals = append(signals, rp.src[i])
			}
		}
		for i, re := range rp.soft {
			if re.MatchString(text) {
				soft++
				signals = append(signals, rp.src[len(rp.hard)+i])
			}
		}
		score := hard*hardWeight + soft*softWeight
		if score > bestScore {
			bestScore = score
			best = model.RoleResult{
				Role:      rp.role,
				Signals:   signals,
				HardCount: hard,
				SoftCount: soft,
			}
		}
	}

	if bestScore == 0 {
		return model.UnknownRole()
	}

	best.Confidence, best.EvidenceType = Confidence(best.HardCount, best.SoftCount)
	if exp, ok := expectedRole[family]; ok && exp == best.Role {
		best.Confidence = model.ClampConfidence(best.Confidence + familyLift)
	}
	return best
}

// Confidence maps evidence counts to a confidence and evidence type.
// Any hard evidence dominates soft evidence.
func Confidence(hard, soft int) (float64, model.EvidenceType) {
	switch {
	case hard > 0:
		return model.ClampTo(0.70+0.10*float64(hard), 0.95), model.EvidenceHard
	case soft > 0:
		return model.ClampTo(0.50+0.05*float64(soft), 0.75), model.EvidenceSoft
	}
	return 0, model.EvidenceNone
}
