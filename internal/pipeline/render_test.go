package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davide-02/certifi-ai/internal/model"
)

func readyResult() *model.Result {
	res := model.NewResult("run-1", "/docs/agreement.txt")
	res.DocumentFamily = model.FamilyContract
	res.DocumentSubtype = model.SubtypeEngagementLetter
	res.InferredRole = model.RoleContractor
	res.CertificationReady = true
	res.HumanReviewRequired = false
	res.RiskLevel = model.RiskLow
	res.CertificationPolicy = model.PolicyHashOnly
	res.ClaimStatement = "Jane Doe is a contractor for Acme Corp"
	hash := strings.Repeat("ab", 32)
	res.Metadata.CanonicalHash = &hash
	res.Metadata.Decision = &model.DecisionMeta{
		CanCertify:    true,
		Confidence:    0.95,
		RiskLevel:     model.RiskLow,
		Reason:        model.ReasonClaimBased,
		MissingFields: []string{},
	}
	res.Success = true
	return res
}

func TestRenderSummary_Ready(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, readyResult())
	out := buf.String()

	assert.Contains(t, out, "agreement.txt")
	assert.Contains(t, out, "Family:       contract / engagement_letter")
	assert.Contains(t, out, "Verdict:      READY\n")
	assert.Contains(t, out, "Claim:        Jane Doe is a contractor for Acme Corp")
	assert.Contains(t, out, "Reason:       claim_based_certification (confidence 0.9500)")
	assert.Contains(t, out, "Hash:         "+strings.Repeat("ab", 32))
	assert.NotContains(t, out, "Missing:")
}

func TestRenderSummary_NotReady(t *testing.T) {
	res := model.NewResult("run-2", "scan.txt")
	res.AddError(ErrTextTooShort.Error())

	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "Verdict:      NOT READY")
	assert.Contains(t, out, "✗ "+ErrTextTooShort.Error())
	assert.NotContains(t, out, "Hash:")
	assert.NotContains(t, out, "/ unknown")
}

func TestWriteJSON_NullHashWhenNotReady(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteJSON(&buf, model.NewResult("run-3", "x.txt")))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	meta := decoded["metadata"].(map[string]any)
	v, ok := meta["canonical_hash"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, []any{}, decoded["errors"])
}

func TestRenderJSON_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "result.json")
	require.NoError(t, NewRenderer(true).RenderJSON(readyResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got model.Result
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.ID)
	assert.True(t, got.CertificationReady)
	require.NotNil(t, got.Metadata.CanonicalHash)
	assert.True(t, bytes.Contains(data, []byte("\n  \"id\"")))
}
