// Package classify assigns a document family and subtype from text.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

const minTextLength = 10

type compiledKeyword struct {
	text    string
	pattern *regexp.Regexp
}

type compiledFamily struct {
	rule       FamilyRule
	keywords   []compiledKeyword
	structural []*regexp.Regexp
	cooccur    []compiledCoOccurrence
	maxScore   float64
}

type compiledCoOccurrence struct {
	rule     CoOccurrenceRule
	pattern  *regexp.Regexp
	keywords []*regexp.Regexp
}

// Classifier scores text against per-family pattern tables. It holds only
// compiled, read-only tables and is safe for concurrent use.
type Classifier struct {
	families []compiledFamily
}

// New compiles rules into a Classifier
func New(rules Rules) (*Classifier, error) {
	c := &Classifier{}
	byFamily := make(map[model.Family]int)

	for _, fr := range rules.Families {
		cf := compiledFamily{rule: fr}
		for _, kw := range fr.Keywords {
			re, err := keywordPattern(kw)
			if err != nil {
				return nil, fmt.Errorf("family %s keyword %q: %w", fr.Family, kw, err)
			}
			cf.keywords = append(cf.keywords, compiledKeyword{text: kw, pattern: re})
		}
		for _, p := range fr.Structural {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("family %s pattern %q: %w", fr.Family, p, err)
			}
			cf.structural = append(cf.structural, re)
		}
		cf.maxScore = float64(len(fr.Keywords)*3 + len(fr.Structural)*3)
		byFamily[fr.Family] = len(c.families)
		c.families = append(c.families, cf)
	}

	for _, co := range rules.CoOccurrence {
		i, ok := byFamily[co.Family]
		if !ok {
			return nil, fmt.Errorf("co-occurrence rule for unknown family %s", co.Family)
		}
		re, err := regexp.Compile(`(?is)` + co.Pattern)
		if err != nil {
			return nil, fmt.Errorf("family %s co-occurrence %q: %w", co.Family, co.Pattern, err)
		}
		cc := compiledCoOccurrence{rule: co, pattern: re}
		for _, kw := range co.Keywords {
			kre, err := keywordPattern(kw)
			if err != nil {
				return nil, fmt.Errorf("family %s co-occurrence keyword %q: %w", co.Family, kw, err)
			}
			cc.keywords = append(cc.keywords, kre)
		}
		c.families[i].cooccur = append(c.families[i].cooccur, cc)
	}

	return c, nil
}

// NewDefault returns a Classifier over the compiled-in rules
func NewDefault() *Classifier {
	c, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default classifier rules: %v", err))
	}
	return c
}

type familyScore struct {
	family     model.Family
	index      int
	raw        float64
	normalized float64
	keywords   int
	structural int
	boost      float64
	matches    []string
}

// Classify returns the best qualifying family for text
func (c *Classifier) Classify(text string) model.FamilyResult {
	if len(strings.TrimSpace(text)) < minTextLength {
		return model.UnknownFamily()
	}

	var best *familyScore
	scores := make(map[model.Family]float64)

	for i := range c.families {
		s := c.scoreFamily(i, text)
		if s.keywords+s.structural < c.families[i].rule.MinMatches {
			continue
		}
		scores[s.family] = s.normalized
		if best == nil || better(s, best) {
			best = s
		}
	}

	if best == nil {
		return model.UnknownFamily()
	}

	source := model.SourceNone
	switch {
	case best.structural > 0:
		source = model.SourceLayout
	case best.keywords > 0:
		source = model.SourceKeywords
	case best.boost > 0:
		source = model.SourceCoOccurrence
	}

	return model.FamilyResult{
		Family:         best.family,
		Subtype:        Subtype(text, best.family),
		Confidence:     best.normalized,
		Source:         source,
		MatchedSignals: best.matches,
		Boost:          best.boost,
		Scores:         scores,
	}
}

func (c *Classifier) scoreFamily(i int, text string) *familyScore {
	cf := c.families[i]
	s := &familyScore{family: cf.rule.Family, index: i}

	for _, kw := range cf.keywords {
		if kw.pattern.MatchString(text) {
			s.keywords++
			s.matches = append(s.matches, "keyword:"+kw.text)
		}
	}
	s.raw = float64(s.keywords * 3)

	weight := cf.rule.StructuralWeight
	if weight <= 0 {
		weight = 3
	}
	for _, re := range cf.structural {
		if loc := re.FindStringIndex(text); loc != nil {
			s.structural++
			s.raw += float64(weight)
			s.matches = append(s.matches, "layout:"+strings.TrimSpace(text[loc[0]:loc[1]]))
		}
	}

	for _, co := range cf.cooccur {
		if !co.pattern.MatchString(text) {
			continue
		}
		found := 0
		for _, kre := range co.keywords {
			if kre.MatchString(text) {
				found++
			}
		}
		if float64(found) >= float64(len(co.keywords))*0.7 {
			s.boost += co.rule.Boost
			s.matches = append(s.matches, "co-occurrence:"+co.rule.Pattern)
		}
	}

	if cf.maxScore > 0 {
		s.normalized = model.ClampConfidence(s.raw / cf.maxScore)
	}
	s.normalized = model.ClampConfidence(s.normalized + s.boost)
	if cf.rule.Floor > 0 && s.keywords+s.structural >= cf.rule.MinMatches && s.normalized < cf.rule.Floor {
		s.normalized = cf.rule.Floor
	}
	return s
}

// better orders by normalized score, then raw score, then table order
func better(a, b *familyScore) bool {
	if a.normalized != b.normalized {
		return a.normalized > b.normalized
	}
	if a.raw != b.raw {
		return a.raw > b.raw
	}
	return a.index < b.index
}
