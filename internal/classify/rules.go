package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
	"gopkg.in/yaml.v3"
)

// FamilyRule is the pattern table for one family
type FamilyRule struct {
	Family           model.Family `yaml:"family"`
	Keywords         []string     `yaml:"keywords"`
	Structural       []string     `yaml:"structural"`
	MinMatches       int          `yaml:"min_matches"`
	StructuralWeight int          `yaml:"structural_weight"` // Points per structural hit
	Floor            float64      `yaml:"floor,omitempty"`   // Minimum confidence once qualified
}

// CoOccurrenceRule boosts a family when a multi-signal pattern matches and
// enough of its keywords are present.
type CoOccurrenceRule struct {
	Family   model.Family `yaml:"family"`
	Pattern  string       `yaml:"pattern"`
	Keywords []string     `yaml:"keywords"`
	Boost    float64      `yaml:"boost"`
}

// Rules is the full classifier configuration
type Rules struct {
	Mode         string             `yaml:"mode,omitempty"` // merge (default) or replace
	Families     []FamilyRule       `yaml:"families"`
	CoOccurrence []CoOccurrenceRule `yaml:"co_occurrence"`
}

// DefaultRules returns the compiled-in pattern tables
func DefaultRules() Rules {
	return Rules{
		Families: []FamilyRule{
			{
				Family: model.FamilyIdentity,
				Keywords: []string{
					"carta d'identità", "carta di identità", "passaporto", "passport",
					"documento identità", "codice fiscale", "data di nascita",
				},
				Structural: []string{
					`[A-Z0-9<]{25,}`,
					`nome\s*:?\s*[A-Z]`,
					`cognome\s*:?\s*[A-Z]`,
				},
				MinMatches:       2,
				StructuralWeight: 3,
			},
			{
				Family: model.FamilyDrivingLicense,
				Keywords: []string{
					"patente di guida", "patente", "repubblica italiana",
					"a1", "a2", "b", "c1", "c", "d1", "d",
				},
				Structural: []string{
					`\d+[a-z]?\.\s*`,
					`4a\.\s*`,
					`4b\.\s*`,
				},
				MinMatches:       2,
				StructuralWeight: 2,
			},
			{
				Family: model.FamilyContract,
				Keywords: []string{
					"contratto", "contract", "accordo", "agreement", "clausola", "clause",
					"parti contraenti", "soggetto", "firmato", "signed",
					"independent contractor", "consulting agreement", "freelance contract",
					"service agreement", "statement of work", "statement of work (sow)", "sow",
					"work order", "assignment letter", "retainer agreement",
					"letter of engagement", "engagement letter", "certificate of engagement",
					"statement of employment", "letter from hr",
					"client:", "contractor:", "client / contractor", "contractor / client",
					"dear", "this letter", "this engagement letter", "this agreement",
					"service provider", "services provided", "fees charged",
				},
				Structural: []string{
					`contratto\s+di\s+(\w+)`,
					`parti\s+contraenti`,
					`clausola\s+\d+`,
					`firmato\s+il`,
					`independent\s+contractor`,
					`contractor\s+agreement`,
					`statement\s+of\s+work`,
					`statement\s+of\s+work\s*\(sow\)`,
					`effective\s+date`,
					`client:\s*[A-Z]`,
					`contractor:\s*[A-Z]`,
					`reference\s+agreement`,
					`engagement\s+letter`,
					`this\s+engagement\s+letter`,
					`this\s+letter\s+certifies`,
					`dear\s+[A-Z][a-z]+`,
					`this\s+letter\s+dated`,
					`services\s+requested\s+by`,
					`services\.?\s+The\s+services\s+provided`,
					`fees\.?\s+The\s+fees\s+charged`,
					`service\s+provider`,
					`services\s+provided\s+under`,
				},
				MinMatches:       1,
				StructuralWeight: 3,
				Floor:            0.60,
			},
			{
				Family: model.FamilyCertificate,
				Keywords: []string{
					"certificato", "certificate", "diploma", "attestato", "attestation",
					"laurea", "università", "universita", "cfu", "crediti",
				},
				Structural: []string{
					`diploma\s+di\s+laurea`,
					`universit[àa]\s+degli?\s+studi`,
					`certificato\s+di`,
				},
				MinMatches:       2,
				StructuralWeight: 3,
			},
			{
				Family: model.FamilyFinancial,
				Keywords: []string{
					"fattura", "invoice", "busta paga", "payslip", "estratto conto",
					"iva", "totale", "importo", "pagamento",
				},
				Structural: []string{
					`fattura\s+n[°ºo]?\.?\s*:?\s*`,
					`iva\s*:?\s*`,
					`totale\s*:?\s*€`,
				},
				MinMatches:       2,
				StructuralWeight: 3,
			},
			{
				Family: model.FamilyCorporate,
				Keywords: []string{
					"visura", "statuto", "bilancio", "balance sheet", "camera di commercio",
					"partita iva", "codice fiscale", "società", "societa",
				},
				Structural: []string{
					`camera\s+di\s+commercio`,
					`visura\s+camerale`,
					`statuto\s+sociale`,
				},
				MinMatches:       2,
				StructuralWeight: 3,
			},
		},
		CoOccurrence: []CoOccurrenceRule{
			{
				Family:   model.FamilyContract,
				Pattern:  `engagement\s+letter.*?(?:service\s+provider|fees\s+charged|services\s+provided)`,
				Keywords: []string{"engagement letter", "service provider", "fees"},
				Boost:    0.25,
			},
			{
				Family:   model.FamilyContract,
				Pattern:  `statement\s+of\s+work.*?(?:client|contractor|services)`,
				Keywords: []string{"statement of work", "client", "contractor"},
				Boost:    0.20,
			},
			{
				Family:   model.FamilyContract,
				Pattern:  `independent\s+contractor.*?(?:client|effective\s+date|agreement)`,
				Keywords: []string{"independent contractor", "client", "effective date"},
				Boost:    0.20,
			},
			{
				Family:   model.FamilyFinancial,
				Pattern:  `invoice.*?(?:total|vat|iva|amount)`,
				Keywords: []string{"invoice", "total", "vat"},
				Boost:    0.20,
			},
			{
				Family:   model.FamilyCertificate,
				Pattern:  `diploma.*?(?:university|universit|cfu|credits)`,
				Keywords: []string{"diploma", "university", "cfu"},
				Boost:    0.20,
			},
		},
	}
}

// LoadRules reads a YAML rules file and applies it over the defaults.
// In replace mode families named in the file replace the default entry
// entirely; in merge mode their keywords and patterns are appended.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read rules: %w", err)
	}

	var custom Rules
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return rules, fmt.Errorf("parse rules %s: %w", path, err)
	}

	return rules.Merge(custom), nil
}

// Merge applies custom over r and returns the result
func (r Rules) Merge(custom Rules) Rules {
	replace := strings.EqualFold(custom.Mode, "replace")

	out := Rules{
		Families:     make([]FamilyRule, 0, len(r.Families)),
		CoOccurrence: append([]CoOccurrenceRule(nil), r.CoOccurrence...),
	}

	index := make(map[model.Family]int)
	for _, fr := range r.Families {
		index[fr.Family] = len(out.Families)
		out.Families = append(out.Families, cloneFamily(fr))
	}

	for _, fr := range custom.Families {
		i, ok := index[fr.Family]
		if !ok {
			if fr.StructuralWeight == 0 {
				fr.StructuralWeight = 3
			}
			if fr.MinMatches == 0 {
				fr.MinMatches = 1
			}
			index[fr.Family] = len(out.Families)
			out.Families = append(out.Families, cloneFamily(fr))
			continue
		}

		base := out.Families[i]
		if replace {
			base.Keywords = append([]string(nil), fr.Keywords...)
			base.Structural = append([]string(nil), fr.Structural...)
		} else {
			base.Keywords = append(base.Keywords, fr.Keywords...)
			base.Structural = append(base.Structural, fr.Structural...)
		}
		if fr.MinMatches > 0 {
			base.MinMatches = fr.MinMatches
		}
		if fr.StructuralWeight > 0 {
			base.StructuralWeight = fr.StructuralWeight
		}
		if fr.Floor > 0 {
			base.Floor = fr.Floor
		}
		out.Families[i] = base
	}

	if replace && len(custom.CoOccurrence) > 0 {
		out.CoOccurrence = nil
	}
	out.CoOccurrence = append(out.CoOccurrence, custom.CoOccurrence...)

	return out
}

func cloneFamily(fr FamilyRule) FamilyRule {
	fr.Keywords = append([]string(nil), fr.Keywords...)
	fr.Structural = append([]string(nil), fr.Structural...)
	return fr
}

// WriteYAML renders rules for editing
func (r Rules) WriteYAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// keywordPattern compiles a keyword into a case-insensitive matcher.
// Keywords of one or two characters must stand alone as words.
func keywordPattern(kw string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(strings.ToLower(kw))
	quoted = strings.ReplaceAll(quoted, "'", "['’]")
	quoted = strings.ReplaceAll(quoted, " ", `\s+`)
	if len([]rune(kw)) <= 2 {
		quoted = `\b` + quoted + `\b`
	}
	return regexp.Compile(`(?i)` + quoted)
}
