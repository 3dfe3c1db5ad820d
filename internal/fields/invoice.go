package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
)

var (
	invNumber = regexp.MustCompile(`(?i)fattura\s+n(?:[°ºo]|umero)?\.?\s*:?\s*([A-Z0-9/-]*\d[A-Z0-9/-]*)`)
	invDate   = regexp.MustCompile(`(?i)\bdata\s*(?:fattura|emissione)?\s*:?\s*` + numericDate)
	invTotal  = regexp.MustCompile(`(?i)\btotale\s*(?:fattura|documento|da\s+pagare)?\s*:?\s*€?\s*(\d[\d.,]*)`)
	invNet    = regexp.MustCompile(`(?i)\bimponibile\s*:?\s*€?\s*(\d[\d.,]*)`)
	invVAT    = regexp.MustCompile(`(?i)\biva(?:\s*\(?\s*\d+(?:[.,]\d+)?\s*%\s*\)?)?\s*:?\s*€?\s*(\d[\d.,]*)(\s*%)?`)
	invRate   = regexp.MustCompile(`(?i)\biva\s*\(?\s*:?\s*(\d+(?:[.,]\d+)?)\s*%`)
	invSeller = regexp.MustCompile(`(?i)(?:venditore|fornitore|emittente)\s*:?[ \t]*(\p{L}[^,\n]+)`)
	invBuyer  = regexp.MustCompile(`(?i)(?:cliente|acquirente|destinatario)\s*:?[ \t]*(\p{L}[^,\n]+)`)
	invVATNum = regexp.MustCompile(`(?i)(?:p\.?\s*iva|partita\s+iva)\s*:?\s*((?:IT)?\d{11})`)
	vatLabel  = regexp.MustCompile(`(?i)(?:\bp\.?|partita)\s*$`)
)

// extractInvoice reads an Italian-style invoice. Amounts are stored with
// a '.' decimal separator and two decimals.
func extractInvoice(text string) *model.StructuredExtraction {
	ext := model.NewExtraction(model.DocInvoice, model.TrustedOCR)

	ext.Set("invoice_number", firstGroup(invNumber, text), 0.80)
	ext.Set("invoice_date", dateField(invDate, text), 0.75)
	ext.Set("total_amount", amountField(invTotal, text), 0.80)
	ext.Set("net_amount", amountField(invNet, text), 0.75)
	ext.Set("vat_amount", vatAmount(text), 0.75)
	if raw := firstGroup(invRate, text); raw != "" {
		if v, ok := parseEuro(raw); ok {
			ext.Set("vat_rate", strconv.FormatFloat(v, 'f', -1, 64), 0.75)
		}
	}
	ext.Set("seller_name", firstGroup(invSeller, text), 0.65)
	ext.Set("buyer_name", firstGroup(invBuyer, text), 0.65)

	vatNumbers := invVATNum.FindAllStringSubmatch(text, 2)
	if len(vatNumbers) > 0 {
		ext.Set("seller_vat", strings.ToUpper(vatNumbers[0][1]), 0.80)
	}
	if len(vatNumbers) > 1 {
		ext.Set("buyer_vat", strings.ToUpper(vatNumbers[1][1]), 0.80)
	}

	required := schemas[model.DocInvoice].Required
	ext.ComputeMissing(required)
	ext.Confidence = genericConfidence(ext, required)
	return ext
}

func amountField(re *regexp.Regexp, text string) string {
	if raw := firstGroup(re, text); raw != "" {
		if v, ok := parseEuro(raw); ok {
			return formatAmount(v)
		}
	}
	return ""
}

// vatAmount returns the first IVA figure that is neither a rate nor part
// of a VAT number label.
func vatAmount(text string) string {
	for _, m := range invVAT.FindAllStringSubmatchIndex(text, -1) {
		if m[4] >= 0 {
			continue
		}
		if vatLabel.MatchString(text[max(0, m[0]-10):m[0]]) {
			continue
		}
		if v, ok := parseEuro(text[m[2]:m[3]]); ok {
			return formatAmount(v)
		}
	}
	return ""
}
