package extract

import "github.com/Davide-02/certifi-ai/internal/model"

// ApplyTable overrides the claim's amount with tabular compensation data.
// Annual totals win over monthly totals, which win over the base fee;
// the latter two are annualised.
func ApplyTable(claim *model.Claim, t *model.CompensationTable, defaultCurrency string) {
	if t.IsEmpty() {
		return
	}

	currency := t.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	switch {
	case t.AnnualTotal != nil:
		claim.Amount = model.Float(*t.AnnualTotal)
		claim.ExtractionMethod = model.MethodTableAnnualTotal
	case t.MonthlyTotal != nil:
		claim.Amount = model.Float(*t.MonthlyTotal * 12)
		claim.ExtractionMethod = model.MethodTableMonthlyTotal
	default:
		claim.Amount = model.Float(*t.BaseFee * 12)
		claim.ExtractionMethod = model.MethodTableBaseFee
	}
	claim.Currency = model.Str(currency)

	secondary := t.Secondary
	if secondary == "" {
		secondary = "USD"
	}
	switch {
	case t.AnnualUSD != nil:
		claim.SecondaryAmount = model.Float(*t.AnnualUSD)
		claim.SecondaryCurrency = model.Str(secondary)
	case t.MonthlyUSD != nil:
		claim.SecondaryAmount = model.Float(*t.MonthlyUSD * 12)
		claim.SecondaryCurrency = model.Str(secondary)
	}
}
