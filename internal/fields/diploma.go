package fields

import (
	"regexp"

	"github.com/Davide-02/certifi-ai/internal/model"
)

var (
	dipStudent    = regexp.MustCompile(`(?i:studente|studentessa|candidat[oa]|dottor(?:e|essa)?|dott\.(?:ssa)?)\s*:?[ \t]*(\p{Lu}\p{Ll}+(?:[ \t]+\p{Lu}\p{Ll}+)+)`)
	dipUniversity = regexp.MustCompile(`(?i)(universit(?:à|a'?)\s+(?:degli\s+|di\s+|del\s+)?(?:studi\s+di\s+)?\p{L}[^,\n]*)`)
	dipDegree     = regexp.MustCompile(`(?i)(laurea\s+(?:triennale|magistrale|specialistica)(?:\s+a\s+ciclo\s+unico)?|laurea|dottorato\s+di\s+ricerca|master\s+universitario)`)
	dipCFUTotal   = regexp.MustCompile(`(?i)\bcfu\s*(?:totali|richiesti)?\s*:?\s*(\d+)`)
	dipCFUEarned  = regexp.MustCompile(`(?i)\bcfu\s+(?:acquisiti|conseguiti|maturati)\s*:?\s*(\d+)`)
	dipGraduated  = regexp.MustCompile(`(?i)(?:data\s+di\s+laurea|conseguit[ao]\s+il|in\s+data)\s*:?\s*` + numericDate)
	dipGrade      = regexp.MustCompile(`(?i)(?:voto(?:\s+finale|\s+di\s+laurea)?|votazione)\s*:?\s*(\d{2,3}(?:\s*/\s*\d{2,3})?(?:\s+(?:e\s+)?lode)?)`)
	dipThesis     = regexp.MustCompile(`(?i)(?:titolo\s+della\s+tesi|tesi)\s*:?[ \t]*["“]?([^"”\n]{5,})`)
)

func extractDiploma(text string) *model.StructuredExtraction {
	ext := model.NewExtraction(model.DocDiploma, model.TrustedOCR)

	ext.Set("student_name", firstGroup(dipStudent, text), 0.75)
	ext.Set("university_name", firstGroup(dipUniversity, text), 0.80)
	ext.Set("degree_type", firstGroup(dipDegree, text), 0.80)
	ext.Set("cfu_total", firstGroup(dipCFUTotal, text), 0.75)
	ext.Set("cfu_earned", firstGroup(dipCFUEarned, text), 0.75)
	ext.Set("graduation_date", dateField(dipGraduated, text), 0.75)
	ext.Set("final_grade", firstGroup(dipGrade, text), 0.75)
	ext.Set("thesis_title", firstGroup(dipThesis, text), 0.60)

	required := schemas[model.DocDiploma].Required
	ext.ComputeMissing(required)
	ext.Confidence = genericConfidence(ext, required)
	return ext
}
