package extract

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/textutil"
)

const (
	// Capitalized word sequence on one line
	properName = `[A-Z][A-Za-z&.'-]*(?:[ \t]+(?:[A-Z&][A-Za-z&.'-]*|of|and|for|de|di))*`
	// Company name ending in a legal or group suffix
	companyName  = `[A-Z][A-Za-z&]*(?:[ \t]+[A-Z&][A-Za-z&]*)*[ \t]+(?:LLC|L\.L\.C\.|Inc|Ltd|Limited|Corp|Corporation|AG|GmbH|S\.A\.|S\.p\.A\.|S\.r\.l\.|DMCC|FZE|FZCO|Industries|Group|Company)\b`
	serviceNoun  = `(?:Services|Operations|Engineering|Consulting|Management|Drilling|Advisory)`
	clientMarker = `\((?i:["']?client["']?)\)`
)

// Service descriptions tried before party labels
var serviceSubjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)scope\s+of\s+services[:\s]+(.+?)(?:\.\s|\bcontract\b|\bperiod\b|$)`),
	regexp.MustCompile(`(?i)scope\s+of\s+work[:\s]+(.+?)(?:\.\s|\bcontract\b|\bperiod\b|$)`),
	regexp.MustCompile(`(?i:services?\s+(?:to\s+be\s+)?(?:provided|rendered|performed))[:\s]+([A-Z][A-Za-z ]+?` + serviceNoun + `)\b`),
	regexp.MustCompile(`(?i:providing|performing|rendering)\s+([A-Z][A-Za-z ]+?` + serviceNoun + `)\b`),
	regexp.MustCompile(`\b([A-Z][a-z]+\s+(?:Engineering|Operations|Consulting|Management|Advisory)\s+Services?)\b`),
	regexp.MustCompile(`(?i)agrees\s+to\s+provide\s+(?:the\s+following\s+)?services?\s+(?:to\s+the\s+client[:\s]+)?(.+?)(?:\.\s|$)`),
}

// Party labels naming the contractor
var labelSubjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:independent\s+contractor):[ \t]*(` + properName + `)`),
	regexp.MustCompile(`(?i:contractor\s+name):[ \t]*(` + properName + `)`),
	regexp.MustCompile(`(?i:contractor):[ \t]*(` + properName + `)`),
	regexp.MustCompile(`(?i:provided\s+by)\s+(` + properName + `)\s+\((?i:["']?service\s+provider["']?)\)`),
	regexp.MustCompile(`(?i:this\s+letter\s+certifies\s+that)\s+(` + properName + `)`),
}

var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:company\s+name)[:\s]+(` + companyName + `)`),
	regexp.MustCompile(`(?i:client|company|entity|party|contract\s+with)[:\s]+(` + companyName + `)`),
	regexp.MustCompile(`(` + companyName + `)`),
	regexp.MustCompile(`(?i:client):[ \t]*(` + properName + `)`),
	regexp.MustCompile(`(?i:company):[ \t]*(` + properName + `)`),
	regexp.MustCompile(`(?i:services\s+requested\s+by)\s+(` + properName + `)\s+` + clientMarker),
	regexp.MustCompile(`(` + properName + `)\s+` + clientMarker),
	regexp.MustCompile(`(?i:dear)\s+(?:(?:Mr|Mrs|Ms|Dr)\.?\s+)?([A-Z][A-Za-z]+)`),
	regexp.MustCompile(`(?i:services\s+requested\s+by)\s+([A-Z][A-Za-z]+)`),
}

var servicesPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)services\.?\s+The\s+services\s+provided\s+(?:under\s+this\s+letter|are)\s+(?:as\s+follows|:)\s*:?\s*(.+?)(?:\.|Fees|fees|$)`),
	regexp.MustCompile(`(?is)scope\s+of\s+work[:\s]+(.+?)(?:\.|Fees|fees|$)`),
	regexp.MustCompile(`(?is)services\s+to\s+be\s+provided[:\s]+(.+?)(?:\.|Fees|fees|$)`),
}

var (
	companyPattern        = regexp.MustCompile(companyName)
	serviceProviderMarker = regexp.MustCompile(`(?i)\(["']?service\s+provider["']?\)`)
	headerCompany         = regexp.MustCompile(`^(` + companyName + `|[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+)`)

	listMarkerLead  = regexp.MustCompile(`(?i)^(?:[a-z]\)|\d+[.)])\s*`)
	listMarkerTrail = regexp.MustCompile(`(?i)\s+(?:[a-z]\)|\d+[.)])\s*$`)
	listSplit       = regexp.MustCompile(`\s+[a-z]\)\s+|\s+\d+[.)]\s+|\.\s+[A-Z]|\n`)

	verbEdge     = regexp.MustCompile(`(?i)^(?:is|may|shall|will|can|must|should)\s|\s(?:is|may|shall|will|can|must|should|terminate|engage|provide)$`)
	articleEdge  = regexp.MustCompile(`(?i)^(?:the|a|an)\s|\s(?:the|a|an|this|that)$`)
	documentEdge = regexp.MustCompile(`(?i)^(?:agreement|contract|letter|document)\b|\b(?:agreement|contract|letter|document)$`)
	addressWord  = regexp.MustCompile(`(?i)\b(?:p\.o\.\s*box|road|street|avenue|boulevard|address|location|sheikh)\b`)
	actionWord   = regexp.MustCompile(`(?i)\b(?:is|may|shall|will|can|must|should|terminate|engage|engaged|provide)\b`)
)

var stopNames = map[string]bool{
	"service provider": true, "contractor": true, "client": true, "shall be": true,
	"the entire": true, "operations": true, "the following": true, "services": true,
	"fees": true, "engagement letter": true, "dear": true,
}

// cleanSubject strips list markers and keeps the first meaningful item
func cleanSubject(s string) string {
	s = listMarkerLead.ReplaceAllString(strings.TrimSpace(s), "")
	chosen := ""
	for _, part := range listSplit.Split(s, -1) {
		part = strings.TrimSpace(listMarkerTrail.ReplaceAllString(part, ""))
		if len(part) >= 15 {
			chosen = part
			break
		}
	}
	if chosen == "" {
		chosen = textutil.Head(s, 100)
	}
	chosen = strings.TrimSpace(textutil.Head(chosen, 150))
	return strings.TrimSpace(listMarkerTrail.ReplaceAllString(chosen, ""))
}

// findSubject returns who performs the services, or what they are
func findSubject(text, collapsed string) string {
	for _, re := range serviceSubjectPatterns {
		m := re.FindStringSubmatch(collapsed)
		if m == nil {
			continue
		}
		s := cleanSubject(m[1])
		if len(s) > 10 && !stopNames[strings.ToLower(s)] {
			return s
		}
	}

	for _, re := range labelSubjectPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		s := strings.TrimSpace(m[1])
		if len(s) >= 3 && !stopNames[strings.ToLower(s)] {
			return s
		}
	}

	if serviceProviderMarker.MatchString(text) {
		for _, line := range firstLines(text, 5) {
			if m := headerCompany.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				if s := strings.TrimSpace(m[1]); !stopNames[strings.ToLower(s)] {
					return s
				}
			}
		}
	}
	return ""
}

// validParty rejects sentence fragments, addresses and document words
func validParty(s string) bool {
	if len(s) < 3 || stopNames[strings.ToLower(s)] {
		return false
	}
	if !strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return false
	}
	return !verbEdge.MatchString(s) &&
		!articleEdge.MatchString(s) &&
		!documentEdge.MatchString(s) &&
		!addressWord.MatchString(s) &&
		!actionWord.MatchString(s)
}

// findEntity returns the counterparty the subject works for
func findEntity(text string) string {
	for _, re := range entityPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if s := strings.TrimSpace(m[1]); validParty(s) {
				return s
			}
		}
	}

	for _, line := range firstLines(text, 20) {
		m := companyPattern.FindString(line)
		if m == "" {
			continue
		}
		m = strings.TrimSpace(m)
		if len(m) >= 10 && len(strings.Fields(m)) >= 2 && validParty(m) {
			return m
		}
	}
	return ""
}

// findServices returns the services description, at most 200 characters
func findServices(text string) string {
	for _, re := range servicesPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		s := textutil.Head(textutil.CollapseSpaces(m[1]), 200)
		if len(s) > 5 {
			return s
		}
	}
	return ""
}

func firstLines(text string, n int) []string {
	lines := strings.SplitN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
