package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davide-02/certifi-ai/internal/extract/adapters"
)

func TestLoad_TextAndHash(t *testing.T) {
	path := writeDoc(t, "agreement.txt", contractorText)

	doc, err := NewLoader(nil, nil, 0, testLogger()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, fileSum(contractorText), doc.FileHash)
	assert.Equal(t, []byte(contractorText), doc.Data)
	assert.Equal(t, "plain", doc.Adapter)
	assert.Contains(t, doc.Text, "INDEPENDENT CONTRACTOR AGREEMENT")
	assert.Nil(t, doc.Table)
}

func TestLoad_HTMLVisibleText(t *testing.T) {
	page := `<html><head><title>x</title><script>var secret = 1;</script></head>
<body><main><h1>Engagement Letter</h1><p>Client: Acme Corp</p></main></body></html>`
	path := writeDoc(t, "letter.html", page)

	doc, err := NewLoader(nil, nil, 0, testLogger()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "html", doc.Adapter)
	assert.Contains(t, doc.Text, "Engagement Letter")
	assert.Contains(t, doc.Text, "Client: Acme Corp")
	assert.NotContains(t, doc.Text, "secret")
}

func TestLoad_SidecarTable(t *testing.T) {
	path := writeDoc(t, "agreement.txt", contractorText)
	sidecar := "annual_total: 240000\ncurrency: AED\n"
	require.NoError(t, os.WriteFile(path+adapters.SidecarSuffix, []byte(sidecar), 0o644))

	doc, err := NewLoader(nil, adapters.DefaultTables(), 0, testLogger()).Load(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, doc.Table)
	require.NotNil(t, doc.Table.AnnualTotal)
	assert.Equal(t, 240000.0, *doc.Table.AnnualTotal)
	assert.Equal(t, "AED", doc.Table.Currency)
}

func TestLoad_BrokenSidecarIsIgnored(t *testing.T) {
	path := writeDoc(t, "agreement.txt", contractorText)
	require.NoError(t, os.WriteFile(path+adapters.SidecarSuffix, []byte("annual_total: [unclosed"), 0o644))

	doc, err := NewLoader(nil, adapters.DefaultTables(), 0, testLogger()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, doc.Table)
	assert.NotEmpty(t, doc.Text)
}

func TestLoad_SizeLimit(t *testing.T) {
	path := writeDoc(t, "big.txt", strings.Repeat("a", 64))

	_, err := NewLoader(nil, nil, 32, testLogger()).Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	doc, err := NewLoader(nil, nil, 64, testLogger()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, doc.Data, 64)
}

func TestLoad_Errors(t *testing.T) {
	l := NewLoader(nil, nil, 0, testLogger())

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestLoad_BinaryYieldsNoText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x25, 0x50, 0x00, 0xff, 0x00, 0x01}, 0o644))

	doc, err := NewLoader(nil, nil, 0, testLogger()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.Len(t, doc.FileHash, 64)
}
