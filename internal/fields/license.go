package fields

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/extract"
	"github.com/Davide-02/certifi-ai/internal/model"
)

// Numbered fields of the EU driving license layout
var (
	dlSurname   = regexp.MustCompile(`(?m)^[ \t]*1\.[ \t]*(\p{L}[\p{L}' \t-]*)`)
	dlGiven     = regexp.MustCompile(`(?m)^[ \t]*2\.[ \t]*(\p{L}[\p{L}' \t-]*)`)
	dlBirth     = regexp.MustCompile(`(?m)^[ \t]*3\.[ \t]*(.+)$`)
	dlIssued    = regexp.MustCompile(`(?m)^[ \t]*4a\.[ \t]*(.+)$`)
	dlExpiry    = regexp.MustCompile(`(?m)^[ \t]*4b\.[ \t]*(.+)$`)
	dlAuthority = regexp.MustCompile(`(?m)^[ \t]*4c\.[ \t]*(.+)$`)
	dlNumber    = regexp.MustCompile(`(?m)^[ \t]*5\.[ \t]*([A-Za-z0-9]+)`)
	dlCatLine   = regexp.MustCompile(`(?im)^[ \t]*(?:9\.|categori[ae]\s*:?)[ \t]*(.+)$`)

	dlDate      = regexp.MustCompile(numericDate)
	dlPlace     = regexp.MustCompile(`\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}[ \t]+(.+)`)
	dlCategory  = regexp.MustCompile(`\b(C1E|D1E|A1|A2|AM|BE|CE|DE|C1|D1|A|B|C|D)\b`)
	dlFirstName = regexp.MustCompile(`(?i)\bnome\s*:?[ \t]*([\p{L}'’-]+)`)
	dlLastName  = regexp.MustCompile(`(?i)\bcognome\s*:?[ \t]*([\p{L}'’-]+)`)
	dlAltNumber = regexp.MustCompile(`(?i)(?:numero|n[°ºo]\.?)\s*(?:patente|licenza)\s*:?\s*([A-Z0-9]+)`)
)

// extractLicense reads a driving license from its numbered layout
func extractLicense(text string) *model.StructuredExtraction {
	ext := model.NewExtraction(model.DocDrivingLicense, model.TrustedLayoutRules)
	structural := 0

	if v := firstGroup(dlSurname, text); v != "" {
		ext.Set("last_name", v, 0.90)
		structural++
	}
	if v := firstGroup(dlGiven, text); v != "" {
		ext.Set("first_name", v, 0.90)
		structural++
	}
	if line := firstGroup(dlBirth, text); line != "" {
		structural++
		if d, ok := extract.ParseDate(dlDate.FindString(line)); ok {
			ext.Set("date_of_birth", d, 0.85)
		}
		ext.Set("place_of_birth", firstGroup(dlPlace, line), 0.80)
	}
	if line := firstGroup(dlIssued, text); line != "" {
		structural++
		if d, ok := extract.ParseDate(dlDate.FindString(line)); ok {
			ext.Set("issue_date", d, 0.85)
		}
	}
	if line := firstGroup(dlExpiry, text); line != "" {
		structural++
		if d, ok := extract.ParseDate(dlDate.FindString(line)); ok {
			ext.Set("expiry_date", d, 0.90)
		}
	}
	ext.Set("issuing_authority", firstGroup(dlAuthority, text), 0.80)
	if v := firstGroup(dlNumber, text); v != "" {
		ext.Set("license_number", strings.ToUpper(v), 0.90)
		structural++
	}

	ext.Set("categories", licenseCategories(text), 0.85)

	setMissing(ext, "first_name", firstGroup(dlFirstName, text), 0.60)
	setMissing(ext, "last_name", firstGroup(dlLastName, text), 0.60)
	setMissing(ext, "license_number", strings.ToUpper(firstGroup(dlAltNumber, text)), 0.70)

	required := schemas[model.DocDrivingLicense].Required
	ext.ComputeMissing(required)

	conf := criticalConfidence(ext, required)
	if len(ext.Fields) > len(required) {
		conf += 0.05
	}
	ext.Confidence = model.ClampTo(conf, model.MaxLicenseConfidence)
	ext.Metadata["extraction_method"] = string(model.TrustedLayoutRules)
	ext.Metadata["structured_patterns_found"] = structural > 0
	return ext
}

// licenseCategories reads the category line, falling back to the whole
// text. Categories match as whole words.
func licenseCategories(text string) string {
	scope := firstGroup(dlCatLine, text)
	if scope == "" {
		scope = text
	}

	seen := make(map[string]bool)
	var cats []string
	for _, c := range dlCategory.FindAllString(scope, -1) {
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return strings.Join(cats, ",")
}
