package fields

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davide-02/certifi-ai/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract_IdentityMRZWinsOverOCR(t *testing.T) {
	text := "REPUBBLICA ITALIANA\nCARTA DI IDENTITA\nCognome: Bianchi\nNome: Luca\n" +
		td1Line1 + "\n" + td1Line2 + "\n" + td1Line3 + "\n"

	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), text, model.DocID)
	require.NoError(t, err)

	assert.Equal(t, model.TrustedMRZ, ext.TrustedSource)
	assert.Equal(t, "ERIKSSON", ext.Get("last_name"))
	assert.Equal(t, 0.95, ext.FieldConfidence["last_name"])
	assert.Equal(t, "ANNA", ext.Get("first_name"))
	assert.Equal(t, "ERIKSSON ANNA MARIA", ext.Get("full_name"))
	assert.Equal(t, "1974-08-12", ext.Get("date_of_birth"))
	assert.Empty(t, ext.MissingFields)
	assert.Equal(t, model.MaxConfidence, ext.Confidence)
	assert.Equal(t, FormatTD1, ext.Metadata["mrz_format"])
}

func TestExtract_IdentityOCR(t *testing.T) {
	text := "Cognome: Rossi\nNome: Mario\nData di nascita: 15/03/1985\nCodice Fiscale: RSSMRA85C15H501Z\n"

	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), text, model.DocID)
	require.NoError(t, err)

	assert.Equal(t, model.TrustedOCR, ext.TrustedSource)
	assert.Equal(t, "Mario", ext.Get("first_name"))
	assert.Equal(t, "Rossi", ext.Get("last_name"))
	assert.Equal(t, "1985-03-15", ext.Get("date_of_birth"))
	assert.Equal(t, "RSSMRA85C15H501Z", ext.Get("tax_code"))
	assert.Equal(t, 0.60, ext.FieldConfidence["first_name"])
	assert.InDelta(t, 0.70, ext.Confidence, 1e-9)
}

func TestExtract_IdentityMissingFields(t *testing.T) {
	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), "Nome: Mario", model.DocID)
	require.NoError(t, err)

	assert.Equal(t, []string{"last_name", "date_of_birth"}, ext.MissingFields)
	assert.Equal(t, 0.0, ext.Confidence)
}

const licenseText = `PATENTE DI GUIDA
REPUBBLICA ITALIANA
1. ROSSI
2. MARIO
3. 01/02/1980 ROMA (RM)
4a. 15/03/2020
4b. 15/03/2030
4c. MIT-UCO
5. U1A2B3C4D5
9. AM B
`

func TestExtract_DrivingLicenseLayout(t *testing.T) {
	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), licenseText, model.DocDrivingLicense)
	require.NoError(t, err)

	assert.Equal(t, model.TrustedLayoutRules, ext.TrustedSource)
	assert.Equal(t, "ROSSI", ext.Get("last_name"))
	assert.Equal(t, "MARIO", ext.Get("first_name"))
	assert.Equal(t, "1980-02-01", ext.Get("date_of_birth"))
	assert.Equal(t, "ROMA (RM)", ext.Get("place_of_birth"))
	assert.Equal(t, "2020-03-15", ext.Get("issue_date"))
	assert.Equal(t, "2030-03-15", ext.Get("expiry_date"))
	assert.Equal(t, "U1A2B3C4D5", ext.Get("license_number"))
	assert.Equal(t, "AM,B", ext.Get("categories"))
	assert.Empty(t, ext.MissingFields)
	assert.Equal(t, model.MaxLicenseConfidence, ext.Confidence)
}

func TestLicenseCategories_WholeWords(t *testing.T) {
	assert.Equal(t, "B,C1", licenseCategories("Categorie: B C1 B"))
	assert.Equal(t, "", licenseCategories("4a. 01/01/2020\nABC DEF"))
}

func TestExtract_Invoice(t *testing.T) {
	text := "FATTURA N. 123/2024\nData: 15/01/2024\nFornitore: Alfa Srl\nCliente: Beta Spa\n" +
		"Imponibile: € 1.000,00\nIVA 22%: € 220,00\nTotale: € 1.220,00\n"

	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), text, model.DocInvoice)
	require.NoError(t, err)

	assert.Equal(t, "123/2024", ext.Get("invoice_number"))
	assert.Equal(t, "2024-01-15", ext.Get("invoice_date"))
	assert.Equal(t, "1220.00", ext.Get("total_amount"))
	assert.Equal(t, "1000.00", ext.Get("net_amount"))
	assert.Equal(t, "220.00", ext.Get("vat_amount"))
	assert.Equal(t, "22", ext.Get("vat_rate"))
	assert.Equal(t, "Alfa Srl", ext.Get("seller_name"))
	assert.Equal(t, "Beta Spa", ext.Get("buyer_name"))
	assert.Equal(t, model.TrustedOCR, ext.TrustedSource)
	assert.Equal(t, model.MaxConfidence, ext.Confidence)
}

func TestExtract_InvoiceVATNumberIsNotAnAmount(t *testing.T) {
	text := "Fattura n° 7\nP.IVA: 01234567890\nTotale: 500,00\n"

	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), text, model.DocInvoice)
	require.NoError(t, err)

	assert.Equal(t, "7", ext.Get("invoice_number"))
	assert.Equal(t, "500.00", ext.Get("total_amount"))
	assert.Equal(t, "01234567890", ext.Get("seller_vat"))
	assert.False(t, ext.Has("vat_amount"))
	assert.Equal(t, []string{"invoice_date"}, ext.MissingFields)
}

func TestExtract_Diploma(t *testing.T) {
	text := "Università degli Studi di Milano\nSi certifica che il candidato Mario Rossi\n" +
		"ha conseguito la Laurea Magistrale in Informatica\nData di laurea: 20/07/2023\n" +
		"Voto finale: 110/110 e lode\nCFU: 120\n"

	ext, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), text, model.DocDiploma)
	require.NoError(t, err)

	assert.Equal(t, "Mario Rossi", ext.Get("student_name"))
	assert.Equal(t, "Università degli Studi di Milano", ext.Get("university_name"))
	assert.Equal(t, "Laurea Magistrale", ext.Get("degree_type"))
	assert.Equal(t, "2023-07-20", ext.Get("graduation_date"))
	assert.Equal(t, "110/110 e lode", ext.Get("final_grade"))
	assert.Equal(t, "120", ext.Get("cfu_total"))
	assert.Empty(t, ext.MissingFields)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := NewExtractor(nil, 3, testLogger()).Extract(context.Background(), "text", model.DocumentType("passport_photo"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

type stubFallback struct {
	fields map[string]string
	err    error
	calls  int
}

func (s *stubFallback) ExtractFields(context.Context, model.DocumentType, string, []string) (map[string]string, error) {
	s.calls++
	return s.fields, s.err
}

func TestExtract_FallbackFillsSparseResults(t *testing.T) {
	fb := &stubFallback{fields: map[string]string{
		"invoice_number": "IGNORED",
		"total_amount":   "99.00",
		"invoice_date":   "2024-02-01",
		"unknown_field":  "x",
	}}
	text := "Fattura n. 42\n"

	ext, err := NewExtractor(fb, 3, testLogger()).Extract(context.Background(), text, model.DocInvoice)
	require.NoError(t, err)

	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, "42", ext.Get("invoice_number"))
	assert.Equal(t, "99.00", ext.Get("total_amount"))
	assert.Equal(t, fallbackFieldConfidence, ext.FieldConfidence["total_amount"])
	assert.False(t, ext.Has("unknown_field"))
	assert.Equal(t, model.TrustedLLM, ext.TrustedSource)
	assert.Empty(t, ext.MissingFields)
}

func TestExtract_FallbackErrorKeepsPatternResult(t *testing.T) {
	fb := &stubFallback{err: errors.New("quota exceeded")}

	ext, err := NewExtractor(fb, 3, testLogger()).Extract(context.Background(), "Fattura n. 42\n", model.DocInvoice)
	require.NoError(t, err)

	assert.Equal(t, model.TrustedOCR, ext.TrustedSource)
	assert.Equal(t, "quota exceeded", ext.Metadata["fallback_error"])
}

func TestExtract_FallbackSkippedWhenEnoughFields(t *testing.T) {
	fb := &stubFallback{}

	_, err := NewExtractor(fb, 3, testLogger()).Extract(context.Background(), licenseText, model.DocDrivingLicense)
	require.NoError(t, err)
	assert.Zero(t, fb.calls)
}

func TestParseEuro(t *testing.T) {
	tests := map[string]float64{
		"1.000,00":  1000,
		"220,00":    220,
		"1000.50":   1000.5,
		"12,345.67": 12345.67,
		"1.220,00.": 1220,
	}
	for in, want := range tests {
		got, ok := parseEuro(in)
		assert.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
}
