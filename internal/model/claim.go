package model

// ExtractionMethod records how a claim's amount (or the claim) was obtained
type ExtractionMethod string

const (
	MethodRegex             ExtractionMethod = "regex"
	MethodNER               ExtractionMethod = "ner"
	MethodTableAnnualTotal  ExtractionMethod = "table_annual_total"
	MethodTableMonthlyTotal ExtractionMethod = "table_monthly_total"
	MethodTableBaseFee      ExtractionMethod = "table_base_fee"
)

// Claim is the structured assertion a document makes: who holds what role
// for whom, over which period, for how much.
type Claim struct {
	Subject           *string          `json:"subject"`            // Contractor / holder
	Role              Role             `json:"role"`               // Inferred role
	Entity            *string          `json:"entity"`             // Counterparty
	StartDate         *string          `json:"start_date"`         // YYYY-MM-DD
	EndDate           *string          `json:"end_date"`           // YYYY-MM-DD
	Amount            *float64         `json:"amount"`             // Chosen compensation amount
	Currency          *string          `json:"currency"`           // ISO code
	SecondaryAmount   *float64         `json:"secondary_amount"`   // Equivalent in another currency
	SecondaryCurrency *string          `json:"secondary_currency"` // ISO code of the equivalent
	Services          *string          `json:"services"`           // Services description
	EvidenceType      EvidenceType     `json:"evidence_type"`
	Confidence        float64          `json:"confidence"`
	ExtractionMethod  ExtractionMethod `json:"extraction_method"`
}

// CompensationTable carries monetary hints read from tabular data
type CompensationTable struct {
	AnnualTotal  *float64 `json:"annual_total,omitempty" yaml:"annual_total,omitempty"`
	MonthlyTotal *float64 `json:"monthly_total,omitempty" yaml:"monthly_total,omitempty"`
	BaseFee      *float64 `json:"base_fee,omitempty" yaml:"base_fee,omitempty"`
	Currency     string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	AnnualUSD    *float64 `json:"annual_total_usd,omitempty" yaml:"annual_total_usd,omitempty"`
	MonthlyUSD   *float64 `json:"monthly_total_usd,omitempty" yaml:"monthly_total_usd,omitempty"`
	Secondary    string   `json:"secondary_currency,omitempty" yaml:"secondary_currency,omitempty"` // Defaults to USD
}

// IsEmpty reports whether the table carries no usable amount
func (t *CompensationTable) IsEmpty() bool {
	return t == nil || (t.AnnualTotal == nil && t.MonthlyTotal == nil && t.BaseFee == nil)
}

// Entities are named entities found by an NER collaborator
type Entities struct {
	Persons       []string `json:"persons,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
	Dates         []string `json:"dates,omitempty"` // YYYY-MM-DD
	Money         []Money  `json:"money,omitempty"`
}

// Money is an amount with its currency
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ClaimEvaluation is the independent assessment of whether the text
// demonstrates a certifiable relationship.
type ClaimEvaluation struct {
	IsContractorRelationship bool            `json:"is_contractor_relationship"`
	ClaimsConfidence         float64         `json:"claims_confidence"`
	ClaimsFound              map[string]bool `json:"claims_found"`
	ClaimScores              map[string]int  `json:"claim_scores"` // Match count per signal
	Certifiable              bool            `json:"certifiable"`
	CriticalClaimsPresent    bool            `json:"critical_claims_present"`
	SupportingClaimsCount    int             `json:"supporting_claims_count"`
}

// Str returns a pointer to s, or nil for an empty string
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to f
func Float(f float64) *float64 {
	return &f
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
