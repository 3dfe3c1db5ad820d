package classify

import (
	"regexp"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/textutil"
)

const titleChars = 500

var (
	titlePSA  = regexp.MustCompile(`PROFESSIONAL\s+SERVICES\s+AGREEMENT`)
	titleICA  = regexp.MustCompile(`INDEPENDENT\s+CONTRACTOR\s+AGREEMENT`)
	titleSOW  = regexp.MustCompile(`STATEMENT\s+OF\s+WORK`)
	titleEL   = regexp.MustCompile(`ENGAGEMENT\s+LETTER`)
	titleSA   = regexp.MustCompile(`SERVICE\s+AGREEMENT`)
	titleNDA  = regexp.MustCompile(`NON[-\s]?DISCLOSURE\s+AGREEMENT|\bNDA\b`)
	addressee = regexp.MustCompile(`(?i)service\s+provider|dear\s+[A-Z]`)

	paymentTerms = regexp.MustCompile(`(?i)payment\s+terms|\bfees?\b|\bcompensation\b|\bremuneration\b|\binvoic(?:e|ing)\b|(?:AED|USD|EUR|GBP|[$€£])\s*\d[\d,.]*|\bper\s+(?:month|hour|day|annum)\b`)
	deliverables = regexp.MustCompile(`(?i)\bdeliverables?\b|scope\s+of\s+(?:work|services)`)
	milestones   = regexp.MustCompile(`(?i)\bmilestones?\b`)

	kwIndependentContractor = regexp.MustCompile(`(?i)independent\s+contractor`)
	kwICA                   = regexp.MustCompile(`(?i)independent\s+contractor\s+agreement`)
	kwSOW                   = regexp.MustCompile(`(?i)statement\s+of\s+work`)
	kwProfessionalServices  = regexp.MustCompile(`(?i)professional\s+services`)
	kwServiceAgreement      = regexp.MustCompile(`(?i)service\s+agreement`)
	kwEngagementLetter      = regexp.MustCompile(`(?i)engagement\s+letter`)

	kwDiploma                 = regexp.MustCompile(`(?i)diploma|laurea`)
	kwCertificateOfEngagement = regexp.MustCompile(`(?i)certificate\s+of\s+engagement`)
	kwInvoice                 = regexp.MustCompile(`(?i)invoice|fattura`)
	kwPayslip                 = regexp.MustCompile(`(?i)payslip|busta\s+paga`)
	kwBankStatement           = regexp.MustCompile(`(?i)bank\s+statement|estratto\s+conto`)
	kwIDCard                  = regexp.MustCompile(`(?i)carta\s+d['’]?\s*identit|id\s+card`)
	kwPassport                = regexp.MustCompile(`(?i)passport|passaporto`)
)

// Subtype refines family using title, structure and keyword cues
func Subtype(text string, family model.Family) model.Subtype {
	switch family {
	case model.FamilyContract:
		return contractSubtype(text)
	case model.FamilyCertificate:
		switch {
		case kwDiploma.MatchString(text):
			return model.SubtypeDiploma
		case kwCertificateOfEngagement.MatchString(text):
			return model.SubtypeCertificateOfEngagement
		}
		return model.SubtypeCertificateGeneric
	case model.FamilyFinancial:
		switch {
		case kwInvoice.MatchString(text):
			return model.SubtypeInvoice
		case kwPayslip.MatchString(text):
			return model.SubtypePayslip
		case kwBankStatement.MatchString(text):
			return model.SubtypeBankStatement
		}
	case model.FamilyIdentity:
		switch {
		case kwIDCard.MatchString(text):
			return model.SubtypeIDCard
		case kwPassport.MatchString(text):
			return model.SubtypePassport
		}
	}
	return model.SubtypeUnknown
}

// contractSubtype runs three stages: title, structure, keywords
func contractSubtype(text string) model.Subtype {
	title := textutil.CollapseSpaces(strings.ToUpper(textutil.Head(text, titleChars)))
	hasPayment := paymentTerms.MatchString(text)

	switch {
	case titlePSA.MatchString(title):
		return model.SubtypeProfessionalServicesAgreement
	case titleICA.MatchString(title):
		return model.SubtypeIndependentContractorAgreement
	case titleSOW.MatchString(title):
		return model.SubtypeStatementOfWork
	case titleEL.MatchString(title) && addressee.MatchString(text):
		return model.SubtypeEngagementLetter
	case titleSA.MatchString(title):
		return model.SubtypeServiceAgreement
	case titleNDA.MatchString(title) && !hasPayment:
		return model.SubtypeNDA
	}

	// Commercial structure rules out an NDA
	if hasPayment || deliverables.MatchString(text) || milestones.MatchString(text) {
		switch {
		case kwIndependentContractor.MatchString(text):
			return model.SubtypeIndependentContractorAgreement
		case kwSOW.MatchString(text):
			return model.SubtypeStatementOfWork
		case kwProfessionalServices.MatchString(text):
			return model.SubtypeProfessionalServicesAgreement
		}
		return model.SubtypeServiceAgreement
	}

	switch {
	case titleNDA.MatchString(title):
		return model.SubtypeNDA
	case kwEngagementLetter.MatchString(text) && addressee.MatchString(text):
		return model.SubtypeEngagementLetter
	case kwSOW.MatchString(text):
		return model.SubtypeStatementOfWork
	case kwICA.MatchString(text):
		return model.SubtypeIndependentContractorAgreement
	case kwServiceAgreement.MatchString(text):
		return model.SubtypeServiceAgreement
	}
	return model.SubtypeContractGeneric
}
