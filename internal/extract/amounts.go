package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/textutil"
)

const number = `(?P<amt>\d{1,3}(?:\.\d{3})+,\d{2}|\d[\d,]*(?:\.\d+)?)`

// Amount priority buckets, lower is better
const (
	priorityAnnualTotal  = 0
	priorityAnnual       = 1
	priorityMonthlyTotal = 2
	priorityBaseFee      = 3
	priorityMonthly      = 4
	priorityOther        = 5
	prioritySmall        = 8
	priorityAllowance    = 10
)

const (
	priorityWindow  = 150
	currencyWindow  = 100
	secondaryWindow = 200
)

type amountPattern struct {
	re     *regexp.Regexp
	symbol string // currency implied by a symbol, if any
}

var amountPatterns = []amountPattern{
	{re: regexp.MustCompile(`(?i)\b(?P<cur>AED|USD|EUR|GBP)\s+` + number)},
	{re: regexp.MustCompile(`(?i)` + number + `\s*(?P<cur>AED)\s*\(\s*\d[\d,]*(?:\.\d+)?\s*USD\s*\)\s*(?:annual|yearly|per\s+year)`)},
	{re: regexp.MustCompile(`(?i)(?:annual|yearly|per\s+year)[:\s]+` + number + `\s*(?P<cur>AED|USD|EUR|GBP)\b`)},
	{re: regexp.MustCompile(`(?i)` + number + `\s*(?P<cur>AED)\s*\(\s*\d[\d,]*(?:\.\d+)?\s*USD\s*\)\s*(?:monthly|per\s+month)`)},
	{re: regexp.MustCompile(`(?i)(?:monthly|per\s+month)[:\s]+` + number + `\s*(?P<cur>AED|USD|EUR|GBP)\b`)},
	{re: regexp.MustCompile(`(?i)` + number + `\s*(?P<cur>AED|USD|EUR|GBP)\b`)},
	{re: regexp.MustCompile(`(?i)fees?\s+(?:charged|shall\s+be|are)\s+(?:by\s+the\s+)?(?:service\s+provider|contractor)?\s*(?:shall\s+be|are)?\s*\$?\s*` + number)},
	{re: regexp.MustCompile(`\$\s?` + number), symbol: "USD"},
	{re: regexp.MustCompile(`€\s?` + number), symbol: "EUR"},
	{re: regexp.MustCompile(`£\s?` + number), symbol: "GBP"},
	{re: regexp.MustCompile(`(?i)` + number + `\s*(?P<cur>us\s*dollars?|dollars?|euros?|pounds?|dirhams?)\b`)},
}

var (
	contextCurrency = regexp.MustCompile(`(?i)\b(AED|USD|EUR|GBP|dirhams?|dollars?|euros?|pounds?)\b`)
	usdEquivalent   = regexp.MustCompile(`(?i)\(\s*(\d[\d,]*(?:\.\d+)?)\s*USD\s*\)`)
	aedWithUSD      = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*AED\s*\(\s*(\d[\d,]*(?:\.\d+)?)\s*USD\s*\)`)
	europeanNumber  = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+,\d{2}$`)
)

var allowanceTerms = []string{
	"professional development", "development budget", "housing allowance",
	"transportation allowance", "travel allowance", "meal allowance",
	"allowance", "budget", "bonus", "incentive",
}

// candidate is one monetary amount found in text
type candidate struct {
	Amount   float64
	Currency string
	Pos      int
	Priority int
	Kind     string
}

// AmountRules are the tunable disambiguation constants
type AmountRules struct {
	DominanceRatio    float64
	PriorityRatio     float64
	PriorityCeiling   int
	PreferredCurrency string
	DefaultCurrency   string
}

// AmountRulesFrom reads rules from configuration
func AmountRulesFrom(cfg model.ClaimsConfig) AmountRules {
	r := AmountRules{
		DominanceRatio:    cfg.DominanceRatio,
		PriorityRatio:     cfg.PriorityRatio,
		PriorityCeiling:   cfg.PriorityCeiling,
		PreferredCurrency: cfg.PreferredCurrency,
		DefaultCurrency:   cfg.DefaultCurrency,
	}
	def := model.DefaultConfig().Claims
	if r.DominanceRatio <= 0 {
		r.DominanceRatio = def.DominanceRatio
	}
	if r.PriorityRatio <= 0 {
		r.PriorityRatio = def.PriorityRatio
	}
	if r.PriorityCeiling <= 0 {
		r.PriorityCeiling = def.PriorityCeiling
	}
	if r.DefaultCurrency == "" {
		r.DefaultCurrency = def.DefaultCurrency
	}
	return r
}

// parseAmount reads "678,000.50" or "1.000,00" style numbers. It also
// returns the number of fraction digits as written.
func parseAmount(s string) (float64, int, bool) {
	if europeanNumber.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	frac := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = len(s) - i - 1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, false
	}
	return v, frac, true
}

func currencyCode(s string) string {
	u := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	switch {
	case u == "AED" || strings.HasPrefix(u, "DIRHAM"):
		return "AED"
	case u == "USD" || strings.Contains(u, "DOLLAR"):
		return "USD"
	case u == "EUR" || strings.HasPrefix(u, "EURO"):
		return "EUR"
	case u == "GBP" || strings.HasPrefix(u, "POUND"):
		return "GBP"
	}
	return ""
}

// findCandidates scans collapsed text for monetary amounts, tagging each
// with a priority bucket derived from its surrounding words.
func (r AmountRules) findCandidates(text string) []candidate {
	seen := make(map[int]bool)
	var out []candidate

	for _, ap := range amountPatterns {
		amtIdx := ap.re.SubexpIndex("amt")
		curIdx := ap.re.SubexpIndex("cur")

		for _, m := range ap.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2*amtIdx], m[2*amtIdx+1]
			if start < 0 || seen[start] {
				continue
			}
			seen[start] = true

			value, frac, ok := parseAmount(text[start:end])
			if !ok || value <= 0 {
				continue
			}

			currency := ap.symbol
			if currency == "" && curIdx >= 0 && m[2*curIdx] >= 0 {
				currency = currencyCode(text[m[2*curIdx]:m[2*curIdx+1]])
			}
			if currency == "" {
				near := textutil.Window(text, m[0], m[1], currencyWindow)
				if cm := contextCurrency.FindStringSubmatch(near); cm != nil {
					currency = currencyCode(cm[1])
				}
			}
			if currency == "" {
				currency = r.DefaultCurrency
			}

			ctx := strings.ToLower(textutil.Window(text, m[0], m[1], priorityWindow))
			if isRate(value, frac, ctx) {
				continue
			}
			if value < 1000 && !(value >= 100 && currency == "AED") {
				continue
			}

			priority, kind := classifyAmount(value, ctx)
			out = append(out, candidate{
				Amount:   value,
				Currency: currency,
				Pos:      start,
				Priority: priority,
				Kind:     kind,
			})
		}
	}
	return out
}

// isRate reports whether an amount reads as an exchange rate. Context
// only disqualifies values below 10.
func isRate(value float64, frac int, ctx string) bool {
	if value < 1000 && frac >= 3 {
		return true
	}
	if value >= 10 {
		return false
	}
	return strings.Contains(ctx, "exchange rate") ||
		strings.Contains(ctx, "=") ||
		(strings.Contains(ctx, "rate") && (strings.Contains(ctx, "usd") || strings.Contains(ctx, "aed")))
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func classifyAmount(value float64, ctx string) (int, string) {
	switch {
	case containsAny(ctx, "annual", "yearly", "per year", "year"):
		if containsAny(ctx, "total", "compensation") || value > 50000 {
			return priorityAnnualTotal, "annual_total"
		}
		return priorityAnnual, "annual"
	case containsAny(ctx, "monthly", "per month", "month"):
		switch {
		case containsAny(ctx, "total", "compensation"):
			return priorityMonthlyTotal, "monthly_total"
		case strings.Contains(ctx, "base"):
			return priorityBaseFee, "base_fee"
		}
		return priorityMonthly, "monthly"
	case value < 20000 && containsAny(ctx, allowanceTerms...):
		return priorityAllowance, "allowance"
	case value > 100000:
		return priorityAnnualTotal, "annual_total"
	case value > 50000:
		return priorityAnnual, "annual"
	case value < 10000:
		return prioritySmall, "other"
	}
	return priorityOther, "other"
}

func sortCandidates(c []candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Priority != c[j].Priority {
			return c[i].Priority < c[j].Priority
		}
		return c[i].Amount > c[j].Amount
	})
}

// selectAmount picks the main compensation amount
func (r AmountRules) selectAmount(all []candidate) (candidate, bool) {
	var significant, fallback []candidate
	for _, c := range all {
		if c.Amount >= 1000 {
			significant = append(significant, c)
		} else {
			fallback = append(fallback, c)
		}
	}

	if len(significant) == 0 {
		if len(fallback) == 0 {
			return candidate{}, false
		}
		pool := r.preferred(fallback)
		sortCandidates(pool)
		return pool[0], true
	}

	pool := r.preferred(significant)
	sortCandidates(pool)
	best := pool[0]
	if len(pool) == 1 {
		return best, true
	}

	bySize := append([]candidate(nil), pool...)
	sort.SliceStable(bySize, func(i, j int) bool { return bySize[i].Amount > bySize[j].Amount })
	largest, second := bySize[0], bySize[1]

	switch {
	case largest.Amount >= r.DominanceRatio*second.Amount:
		return largest, true
	case largest.Amount > r.PriorityRatio*best.Amount && largest.Priority <= r.PriorityCeiling:
		return largest, true
	}
	return best, true
}

// preferred narrows to the preferred currency when any candidate uses it
func (r AmountRules) preferred(c []candidate) []candidate {
	if r.PreferredCurrency == "" {
		return append([]candidate(nil), c...)
	}
	var pref []candidate
	for _, x := range c {
		if x.Currency == r.PreferredCurrency {
			pref = append(pref, x)
		}
	}
	if len(pref) > 0 {
		return pref
	}
	return append([]candidate(nil), c...)
}

// findSecondary looks for a parenthesised USD equivalent near the chosen
// amount, then for an AED (USD) pair anywhere that corresponds to it.
func findSecondary(text string, best candidate) (float64, bool) {
	if best.Currency == "USD" {
		return 0, false
	}
	for _, radius := range []int{priorityWindow, secondaryWindow} {
		near := textutil.Window(text, best.Pos, best.Pos, radius)
		if m := usdEquivalent.FindStringSubmatch(near); m != nil {
			if v, _, ok := parseAmount(m[1]); ok {
				return v, true
			}
		}
	}
	if m := aedWithUSD.FindStringSubmatch(text); m != nil {
		aed, _, ok1 := parseAmount(m[1])
		usd, _, ok2 := parseAmount(m[2])
		if ok1 && ok2 && (math.Abs(aed-best.Amount) < 1000 || aed > 50000) {
			return usd, true
		}
	}
	return 0, false
}

// extractAmount fills amount, currency and the USD equivalent on claim
func (r AmountRules) extractAmount(collapsed string, claim *model.Claim) {
	if claim.Amount != nil {
		return
	}
	best, ok := r.selectAmount(r.findCandidates(collapsed))
	if !ok {
		return
	}
	claim.Amount = model.Float(best.Amount)
	claim.Currency = model.Str(best.Currency)

	if claim.SecondaryAmount == nil {
		if v, ok := findSecondary(collapsed, best); ok {
			claim.SecondaryAmount = model.Float(v)
			claim.SecondaryCurrency = model.Str("USD")
		}
	}
}
