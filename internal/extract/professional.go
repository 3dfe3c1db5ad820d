package extract

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

var (
	totalValuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+(?:project\s+|contract\s+|agreement\s+)?value[:\s]+(?P<amt>\d[\d,]*(?:\.\d+)?)\s*(?P<cur>AED|USD|EUR|GBP)\b`),
		regexp.MustCompile(`(?i)total\s+(?:project\s+|contract\s+|agreement\s+)?value[:\s]+(?P<cur>AED|USD|EUR|GBP)\s*(?P<amt>\d[\d,]*(?:\.\d+)?)`),
	}
	multiCurrency = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*AED\s*\(\s*(\d[\d,]*(?:\.\d+)?)\s*USD(?:\s*/\s*\d[\d,]*(?:\.\d+)?\s*EUR)?\s*\)`)

	psaStartDates = []*regexp.Regexp{
		regexp.MustCompile(`(?i)effective\s+date[:\s]+` + writtenDate),
		regexp.MustCompile(`(?i)effective\s+date[:\s]+` + isoDate),
		regexp.MustCompile(`(?i)commencement\s+date[:\s]+` + writtenDate),
		regexp.MustCompile(`(?i)commencement\s+date[:\s]+` + isoDate),
	}
	psaEndDates = []*regexp.Regexp{
		regexp.MustCompile(`(?i)expiration\s+date[:\s]+` + writtenDate),
		regexp.MustCompile(`(?i)expiration\s+date[:\s]+` + isoDate),
		regexp.MustCompile(`(?i)expiry\s+date[:\s]+` + writtenDate),
		regexp.MustCompile(`(?i)expiry\s+date[:\s]+` + isoDate),
	}
	psaScope = []*regexp.Regexp{
		regexp.MustCompile(`(?is)scope\s+of\s+(?:professional\s+)?services[:\s]+(.+?)(?:\n\n|\s\d+\.\s|BACKGROUND|CONTRACT|$)`),
		regexp.MustCompile(`(?is)scope\s+of\s+work[:\s]+(.+?)(?:\n\n|\s\d+\.\s|BACKGROUND|CONTRACT|$)`),
		regexp.MustCompile(`(?is)background[:\s]+(.+?)(?:\n\n|\s\d+\.\s|SCOPE|CONTRACT|$)`),
	}
	psaParty = []*regexp.Regexp{
		regexp.MustCompile(`(?is)service\s+provider.*?company\s+name[:\s]+(` + companyName + `)`),
		regexp.MustCompile(`(?is)client.*?company\s+name[:\s]+(` + companyName + `)`),
		regexp.MustCompile(`(?is)contracting\s+party.*?company\s+name[:\s]+(` + companyName + `)`),
	}
)

// extractProfessionalServices fills what a professional services
// agreement states explicitly: total value, currency pairs, term and scope.
func extractProfessionalServices(text string, claim *model.Claim) {
	for _, re := range totalValuePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, _, ok := parseAmount(m[re.SubexpIndex("amt")])
		if ok && v > 1000 {
			claim.Amount = model.Float(v)
			claim.Currency = model.Str(currencyCode(m[re.SubexpIndex("cur")]))
			break
		}
	}

	if m := multiCurrency.FindStringSubmatch(text); m != nil {
		if aed, _, ok := parseAmount(m[1]); ok && claim.Amount == nil && aed > 1000 {
			claim.Amount = model.Float(aed)
			claim.Currency = model.Str("AED")
		}
		if usd, _, ok := parseAmount(m[2]); ok && usd > 1000 {
			claim.SecondaryAmount = model.Float(usd)
			claim.SecondaryCurrency = model.Str("USD")
		}
	}

	if d, ok := findDate(text, psaStartDates); ok {
		claim.StartDate = model.Str(d)
	}
	if d, ok := findDate(text, psaEndDates); ok {
		claim.EndDate = model.Str(d)
	}

	for _, re := range psaScope {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		scope := strings.Join(strings.Fields(m[1]), " ")
		if len(scope) > 200 {
			scope = scope[:200]
		}
		if len(scope) > 20 {
			claim.Subject = model.Str(scope)
			break
		}
	}

	for _, re := range psaParty {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if e := strings.TrimSpace(m[1]); len(e) > 5 && !stopNames[strings.ToLower(e)] {
			claim.Entity = model.Str(e)
			break
		}
	}
}
