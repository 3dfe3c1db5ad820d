package decision

import (
	"fmt"
	"sort"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// ProfileSpec is the requirement set a decision is checked against
type ProfileSpec struct {
	Required        []string            `json:"required_fields" yaml:"required_fields"`
	Optional        []string            `json:"optional_fields" yaml:"optional_fields"`
	MinConfidence   float64             `json:"min_confidence" yaml:"min_confidence"`
	PreferredSource model.TrustedSource `json:"preferred_source" yaml:"preferred_source"`
}

var profiles = map[model.Profile]ProfileSpec{
	model.ProfileIdentityMinimal: {
		Required:        []string{"first_name", "last_name", "date_of_birth"},
		Optional:        []string{"place_of_birth", "tax_code", "address"},
		MinConfidence:   0.85,
		PreferredSource: model.TrustedMRZ,
	},
	model.ProfileIdentityStrict: {
		Required:        []string{"first_name", "last_name", "date_of_birth", "place_of_birth", "tax_code"},
		Optional:        []string{"address", "city", "postal_code"},
		MinConfidence:   0.90,
		PreferredSource: model.TrustedMRZ,
	},
	model.ProfileInvoiceMinimal: {
		Required:        []string{"invoice_number", "total_amount", "invoice_date"},
		Optional:        []string{"vat_amount", "seller_name", "buyer_name"},
		MinConfidence:   0.80,
		PreferredSource: model.TrustedOCR,
	},
	model.ProfileInvoiceStrict: {
		Required:        []string{"invoice_number", "total_amount", "invoice_date", "vat_amount", "seller_name"},
		Optional:        []string{"buyer_name", "seller_vat", "buyer_vat"},
		MinConfidence:   0.85,
		PreferredSource: model.TrustedOCR,
	},
	model.ProfileDiplomaMinimal: {
		Required:        []string{"student_name", "university_name", "degree_type"},
		Optional:        []string{"graduation_date", "final_grade", "cfu_total"},
		MinConfidence:   0.80,
		PreferredSource: model.TrustedOCR,
	},
	model.ProfileDiplomaStrict: {
		Required:        []string{"student_name", "university_name", "degree_type", "graduation_date", "final_grade"},
		Optional:        []string{"cfu_total", "thesis_title"},
		MinConfidence:   0.85,
		PreferredSource: model.TrustedOCR,
	},
	model.ProfileDrivingLicenseMinimal: {
		Required:        []string{"first_name", "last_name", "license_number", "expiry_date"},
		Optional:        []string{"date_of_birth", "place_of_birth", "issue_date", "categories"},
		MinConfidence:   0.85,
		PreferredSource: model.TrustedLayoutRules,
	},
	model.ProfileDrivingLicenseStrict: {
		Required:        []string{"first_name", "last_name", "license_number", "expiry_date", "date_of_birth", "issue_date"},
		Optional:        []string{"place_of_birth", "categories", "address"},
		MinConfidence:   0.90,
		PreferredSource: model.TrustedLayoutRules,
	},
}

// InferProfile picks the minimal profile for a document type
func InferProfile(docType model.DocumentType) model.Profile {
	switch docType {
	case model.DocInvoice:
		return model.ProfileInvoiceMinimal
	case model.DocDiploma:
		return model.ProfileDiplomaMinimal
	case model.DocDrivingLicense:
		return model.ProfileDrivingLicenseMinimal
	}
	return model.ProfileIdentityMinimal
}

// Lookup returns the spec for p
func Lookup(p model.Profile) (ProfileSpec, bool) {
	spec, ok := profiles[p]
	return spec, ok
}

// ParseProfile validates a profile name given on the command line
func ParseProfile(name string) (model.Profile, error) {
	if name == "" {
		return "", nil
	}
	p := model.Profile(name)
	if _, ok := profiles[p]; !ok {
		return "", fmt.Errorf("unknown profile %q (known: %v)", name, Profiles())
	}
	return p, nil
}

// Profiles lists the known profiles in sorted order
func Profiles() []model.Profile {
	out := make([]model.Profile, 0, len(profiles))
	for p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
