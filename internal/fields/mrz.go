package fields

import (
	"regexp"
	"strings"
)

// MRZ layouts
const (
	FormatTD3     = "TD3"     // Passport, 2 lines of 44
	FormatTD1     = "TD1"     // ID card, 3 lines of 30
	FormatCustom  = "CUSTOM"  // MRZ-like lines without a standard layout
	FormatUnknown = "UNKNOWN" // Detected but unreadable
)

// MRZ is the machine readable zone of an identity document
type MRZ struct {
	Format         string
	DocumentCode   string
	Country        string
	Surname        string
	GivenNames     string
	DocumentNumber string
	Nationality    string
	BirthDate      string // YYYY-MM-DD
	ExpiryDate     string // YYYY-MM-DD
	Sex            string
	Optional       string
	ChecksValid    bool
	Confidence     float64
	Raw            string
}

var (
	mrzLine      = regexp.MustCompile(`^[A-Z0-9<]{25,}$`)
	mrzSixDigits = regexp.MustCompile(`\d{6}`)
	mrzDocNumber = regexp.MustCompile(`[A-Z0-9]{6,15}`)
)

// ParseMRZ finds and decodes an MRZ in text. It returns false when no
// block of at least two MRZ-like lines is present.
func ParseMRZ(text string) (*MRZ, bool) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); mrzLine.MatchString(l) {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil, false
	}
	raw := strings.Join(lines, "\n")

	if m := parseTD3(lines); m.hasName() {
		m.Raw = raw
		return m, true
	}
	if len(lines) >= 3 {
		if m := parseTD1(lines); m.hasName() {
			m.Raw = raw
			return m, true
		}
	}

	m := parseCustom(lines)
	m.Raw = raw
	return m, true
}

func (m *MRZ) hasName() bool {
	return m.Surname != "" || m.GivenNames != ""
}

func parseTD3(lines []string) *MRZ {
	l1, l2 := lines[0], lines[1]
	m := &MRZ{Format: FormatTD3, Confidence: 0.95}
	if len(l1) < 44 || len(l2) < 44 {
		return m
	}

	m.DocumentCode = strings.TrimRight(l1[0:2], "<")
	m.Country = l1[2:5]
	m.Surname, m.GivenNames = splitName(l1[5:44])

	m.DocumentNumber = strings.ReplaceAll(l2[0:9], "<", "")
	m.Nationality = l2[10:13]
	m.BirthDate, _ = mrzDate(l2[13:19])
	m.Sex = mrzSex(l2[20])
	m.ExpiryDate, _ = mrzDate(l2[21:27])
	m.Optional = strings.ReplaceAll(l2[28:42], "<", "")

	m.ChecksValid = checkDigit(l2[0:9]) == l2[9] &&
		checkDigit(l2[13:19]) == l2[19] &&
		checkDigit(l2[21:27]) == l2[27]
	return m
}

func parseTD1(lines []string) *MRZ {
	l1, l2, l3 := lines[0], lines[1], lines[2]
	m := &MRZ{Format: FormatTD1, Confidence: 0.95}
	if len(l1) < 30 || len(l2) < 30 || len(l3) < 30 {
		return m
	}

	m.DocumentCode = strings.TrimRight(l1[0:2], "<")
	m.Country = l1[2:5]
	m.DocumentNumber = strings.ReplaceAll(l1[5:14], "<", "")

	m.BirthDate, _ = mrzDate(l2[0:6])
	m.Sex = mrzSex(l2[7])
	m.ExpiryDate, _ = mrzDate(l2[8:14])
	m.Nationality = l2[15:18]

	m.Surname, m.GivenNames = splitName(l3[0:30])

	m.ChecksValid = checkDigit(l1[5:14]) == l1[14] &&
		checkDigit(l2[0:6]) == l2[6] &&
		checkDigit(l2[8:14]) == l2[14]
	return m
}

// parseCustom reads names, a birth date and a document number from
// MRZ-like lines that follow no standard layout.
func parseCustom(lines []string) *MRZ {
	m := &MRZ{Format: FormatCustom, Confidence: 0.80}

	for _, l := range lines {
		if !strings.Contains(l, "<<") {
			continue
		}
		if s, g := splitName(l); s != "" && g != "" {
			m.Surname, m.GivenNames = s, g
			break
		}
	}

	for _, l := range lines {
		if m.BirthDate == "" {
			if d := mrzSixDigits.FindString(l); d != "" {
				m.BirthDate, _ = mrzDate(d)
			}
		}
		if m.DocumentNumber == "" {
			if n := mrzDocNumber.FindString(l); n != "" && !allDigits(n) {
				m.DocumentNumber = n
			}
		}
	}

	if !m.hasName() && m.BirthDate == "" && m.DocumentNumber == "" {
		return &MRZ{Format: FormatUnknown, Confidence: 0.50}
	}
	return m
}

// splitName reads SURNAME<<GIVEN<NAMES
func splitName(s string) (surname, given string) {
	var parts []string
	for _, p := range strings.Split(s, "<<") {
		if p = strings.TrimSpace(strings.ReplaceAll(p, "<", " ")); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// mrzDate converts YYMMDD, treating years below 50 as 20xx
func mrzDate(s string) (string, bool) {
	if len(s) != 6 || !allDigits(s) {
		return "", false
	}
	yy := "19"
	if s[0:2] < "50" {
		yy = "20"
	}
	date := yy + s[0:2] + "-" + s[2:4] + "-" + s[4:6]
	if !validISODate(date) {
		return "", false
	}
	return date, true
}

func mrzSex(c byte) string {
	if c == 'M' || c == 'F' {
		return string(c)
	}
	return ""
}

// checkDigit computes the ICAO 9303 7-3-1 check digit as an ASCII digit
func checkDigit(s string) byte {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(s); i++ {
		var v int
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		}
		sum += v * weights[i%3]
	}
	return byte('0' + sum%10)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
