package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davide-02/certifi-ai/internal/model"
)

func TestKey(t *testing.T) {
	fp := Fingerprint(model.DefaultConfig(), nil)
	k1 := Key("abc", model.DocInvoice, "", fp)
	k2 := Key("abc", model.DocInvoice, model.ProfileInvoiceStrict, fp)

	assert.True(t, strings.HasPrefix(k1, "certifi:v1:"))
	assert.Equal(t, k1, Key("abc", model.DocInvoice, "", fp))
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, Key("abd", model.DocInvoice, "", fp))
}

func TestFingerprint(t *testing.T) {
	a := model.DefaultConfig()
	b := model.DefaultConfig()
	rules := []byte("families: []\n")
	assert.Equal(t, Fingerprint(a, rules), Fingerprint(b, rules))

	// output settings do not change results
	b.Output.Verbose = true
	b.Cache.MemoryTTL = time.Minute
	assert.Equal(t, Fingerprint(a, rules), Fingerprint(b, rules))

	// neither does where the rules live
	b.Classifier.RulesFile = "/elsewhere/rules.yaml"
	assert.Equal(t, Fingerprint(a, rules), Fingerprint(b, rules))

	b.Claims.DominanceRatio = 20
	assert.NotEqual(t, Fingerprint(a, rules), Fingerprint(b, rules))
}

func TestFingerprint_RulesContent(t *testing.T) {
	cfg := model.DefaultConfig()
	before := Fingerprint(cfg, []byte("families: []\n"))
	after := Fingerprint(cfg, []byte("families:\n- family: contract\n  keywords: [zorblax]\n"))
	assert.NotEqual(t, before, after)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	value := []byte("hello")
	require.NoError(t, c.Set("k", value, 0))

	value[0] = 'j'
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("abc", model.DocID, "", "fp")

	require.NoError(t, c.Set(key, []byte("payload"), 0))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))

	require.NoError(t, c.Set(key, []byte("payload"), -time.Second))
	got, ok = c.Get(key)
	require.True(t, ok, "negative ttl never expires")
	assert.Equal(t, "payload", string(got))

	require.NoError(t, c.Set(key, []byte("old"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get(key)
	assert.False(t, ok)

	assert.NoError(t, c.Delete(key), "deleting a missing entry")
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	require.NoError(t, disk.Set("k", []byte("v"), 0))

	c := NewLayeredCache(memory, disk)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	got, ok = memory.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	require.NoError(t, c.Clear())
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestResults(t *testing.T) {
	r := NewResults(New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute, DiskDir: t.TempDir()}), time.Hour)

	res := model.NewResult("id-1", "doc.txt")
	res.DocumentFamily = model.FamilyContract
	require.NoError(t, r.Put("k", res))

	got, ok := r.Get("k")
	require.True(t, ok)
	assert.Equal(t, model.FamilyContract, got.DocumentFamily)
	assert.True(t, got.Metadata.Cached)
	assert.False(t, res.Metadata.Cached)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
