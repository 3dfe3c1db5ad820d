package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	isoDate     = `(\d{4}[-/]\d{1,2}[-/]\d{1,2})`
	numericDate = `(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`
	writtenDate = `([A-Za-z]+\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}|\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+\.?,?\s+\d{4})`
)

var startLabels = []string{
	`effective\s+date[:\s]+`,
	`start\s+date[:\s]+`,
	`commencement\s+date[:\s]+`,
	`from\s+date[:\s]+`,
	`(?:this\s+(?:engagement\s+)?letter[,\s]+)?dated\s+`,
}

var endLabels = []string{
	`expiration\s+date[:\s]+`,
	`expiry\s+date[:\s]+`,
	`end\s+date[:\s]+`,
	`termination\s+date[:\s]+`,
	`(?:continue\s+)?until\s+(?:date[:\s]+)?`,
	`expires?\s+(?:on\s+)?`,
	`contract\s+end[:\s]+`,
	`ending\s+(?:on\s+)?`,
	`through\s+`,
}

var (
	startDatePatterns = datePatterns(startLabels, isoDate, writtenDate, numericDate)
	endDatePatterns   = datePatterns(endLabels, writtenDate, isoDate, numericDate)
)

// datePatterns crosses labels with formats, format-major
func datePatterns(labels []string, formats ...string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, f := range formats {
		for _, l := range labels {
			out = append(out, regexp.MustCompile(`(?i)\b`+l+f))
		}
	}
	return out
}

// findDate returns the first parseable date matched by patterns
func findDate(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := ParseDate(m[1]); ok {
				return d, true
			}
		}
	}
	return "", false
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January, "gennaio": time.January,
	"feb": time.February, "february": time.February, "febbraio": time.February,
	"mar": time.March, "march": time.March, "marzo": time.March,
	"apr": time.April, "april": time.April, "aprile": time.April,
	"may": time.May, "maggio": time.May,
	"jun": time.June, "june": time.June, "giugno": time.June,
	"jul": time.July, "july": time.July, "luglio": time.July,
	"aug": time.August, "august": time.August, "agosto": time.August,
	"sep": time.September, "sept": time.September, "september": time.September, "settembre": time.September,
	"oct": time.October, "october": time.October, "ottobre": time.October,
	"nov": time.November, "november": time.November, "novembre": time.November,
	"dec": time.December, "december": time.December, "dicembre": time.December,
}

var (
	isoParts     = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	numericParts = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})$`)
	monthFirst   = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
	dayFirst     = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)
)

// ParseDate normalizes ISO, day-first numeric and written dates to
// YYYY-MM-DD. Numeric dates are read day first; when the first part cannot
// be a day-of-month pairing (second part > 12) month first is tried.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if m := isoParts.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := numericParts.FindStringSubmatch(s); m != nil {
		year := expandYear(m[3])
		if d, ok := buildDate(year, atoi(m[2]), atoi(m[1])); ok {
			return d, true
		}
		return buildDate(year, atoi(m[1]), atoi(m[2]))
	}
	if m := monthFirst.FindStringSubmatch(s); m != nil {
		if mon, ok := months[strings.ToLower(m[1])]; ok {
			return buildDate(atoi(m[3]), int(mon), atoi(m[2]))
		}
	}
	if m := dayFirst.FindStringSubmatch(s); m != nil {
		if mon, ok := months[strings.ToLower(m[2])]; ok {
			return buildDate(atoi(m[3]), int(mon), atoi(m[1]))
		}
	}
	return "", false
}

func buildDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year > 2200 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// expandYear maps two-digit years with a pivot at 50
func expandYear(y string) int {
	n := atoi(y)
	if len(y) == 2 {
		if n < 50 {
			return 2000 + n
		}
		return 1900 + n
	}
	return n
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
