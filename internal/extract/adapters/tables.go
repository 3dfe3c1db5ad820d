package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// SidecarSuffix is appended to a document path to find its compensation table
const SidecarSuffix = ".compensation.yaml"

// TableSource supplies monetary hints read from tabular data. A nil table
// with a nil error means the document has none.
type TableSource interface {
	Compensation(ctx context.Context, path string, data []byte) (*model.CompensationTable, error)
}

// NoopTables never finds a table
type NoopTables struct{}

// Compensation returns nil
func (NoopTables) Compensation(ctx context.Context, path string, data []byte) (*model.CompensationTable, error) {
	return nil, nil
}

// SidecarTables reads a YAML (or JSON) file stored next to the document
type SidecarTables struct{}

// Compensation loads <path>.compensation.yaml when it exists
func (SidecarTables) Compensation(ctx context.Context, path string, data []byte) (*model.CompensationTable, error) {
	raw, err := os.ReadFile(path + SidecarSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read compensation sidecar: %w", err)
	}

	var t model.CompensationTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse compensation sidecar %s: %w", path+SidecarSuffix, err)
	}
	if t.IsEmpty() {
		return nil, nil
	}
	return &t, nil
}

var (
	tableAmount   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	tableCurrency = regexp.MustCompile(`\b(AED|USD|EUR|GBP|SAR|QAR|CHF)\b`)
)

// HTMLTables reads label/value rows from <table> elements in HTML documents
type HTMLTables struct {
	BaseAdapter
}

// Compensation scans table rows whose first cell names a compensation line
func (t *HTMLTables) Compensation(ctx context.Context, path string, data []byte) (*model.CompensationTable, error) {
	if !hasExt(path, ".html", ".htm", ".xhtml") {
		return nil, nil
	}
	doc, err := NewHTMLAdapter().parse(data)
	if err != nil || doc == nil {
		return nil, err
	}

	table := &model.CompensationTable{}
	for _, row := range t.FindAll(doc, isElement("tr")) {
		cells := t.FindAll(row, func(n *html.Node) bool {
			return n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th")
		})
		if len(cells) < 2 {
			continue
		}
		label := strings.ToLower(t.ExtractText(cells[0]))
		value := t.ExtractText(cells[len(cells)-1])
		applyRow(table, label, value)
	}

	if table.IsEmpty() {
		return nil, nil
	}
	return table, nil
}

func applyRow(t *model.CompensationTable, label, value string) {
	if strings.Contains(label, "currency") {
		if m := tableCurrency.FindString(strings.ToUpper(value)); m != "" {
			t.Currency = m
		}
		return
	}

	amount, ok := parseTableAmount(value)
	if !ok {
		return
	}
	usd := strings.Contains(label, "usd")
	if !usd && t.Currency == "" {
		t.Currency = tableCurrency.FindString(value)
	}

	switch {
	case strings.Contains(label, "annual") && usd:
		t.AnnualUSD = &amount
	case strings.Contains(label, "monthly total") && usd:
		t.MonthlyUSD = &amount
	case strings.Contains(label, "annual"):
		t.AnnualTotal = &amount
	case strings.Contains(label, "monthly total"), strings.Contains(label, "total monthly"):
		t.MonthlyTotal = &amount
	case strings.Contains(label, "base fee"), strings.Contains(label, "monthly fee"):
		t.BaseFee = &amount
	}
}

func parseTableAmount(s string) (float64, bool) {
	m := tableAmount.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ChainTables returns the first table any source finds
type ChainTables []TableSource

// Compensation tries each source in order
func (c ChainTables) Compensation(ctx context.Context, path string, data []byte) (*model.CompensationTable, error) {
	for _, src := range c {
		t, err := src.Compensation(ctx, path, data)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return nil, nil
}

// DefaultTables reads a sidecar first, then tables inside HTML documents
func DefaultTables() TableSource {
	return ChainTables{SidecarTables{}, &HTMLTables{}}
}
