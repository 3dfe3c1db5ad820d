// Package cache stores certification results keyed by document content and
// the configuration that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Davide-02/certifi-ai/internal/model"
)

// keyPrefix versions the key space; bump it when Result changes shape
const keyPrefix = "certifi:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds the cache key for a document. fileHash is the hex sha256 of
// the raw bytes; fingerprint identifies the configuration.
func Key(fileHash string, docType model.DocumentType, profile model.Profile, fingerprint string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", fileHash, docType, profile, fingerprint)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the parts of cfg that change results, together with
// the effective classifier rules. rules is their encoded form, so editing a
// rules file in place yields a new fingerprint. Output and cache settings
// are left out.
func Fingerprint(cfg *model.Config, rules []byte) string {
	rulesSum := sha256.Sum256(rules)
	relevant := struct {
		Rules     string
		Claims    model.ClaimsConfig
		Decision  model.DecisionConfig
		Pipeline  model.PipelineConfig
		Provider  string
		Model     string
		MinFields int
	}{hex.EncodeToString(rulesSum[:]), cfg.Claims, cfg.Decision, cfg.Pipeline, cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.MinFields}

	// yaml.v3 sorts map keys, so equal configs encode identically
	data, err := yaml.Marshal(relevant)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Results stores *model.Result values as JSON on top of a byte cache
type Results struct {
	store Cache
	ttl   time.Duration
}

// NewResults wraps store
func NewResults(store Cache, ttl time.Duration) *Results {
	return &Results{store: store, ttl: ttl}
}

// Get returns a cached result marked as cached
func (r *Results) Get(key string) (*model.Result, bool) {
	data, ok := r.store.Get(key)
	if !ok {
		return nil, false
	}
	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil {
		_ = r.store.Delete(key)
		return nil, false
	}
	res.Metadata.Cached = true
	return &res, true
}

// Put stores res under key
func (r *Results) Put(key string, res *model.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return r.store.Set(key, data, r.ttl)
}

// New builds the configured cache: memory only, or memory over disk when a
// directory is set.
func New(cfg model.CacheConfig) Cache {
	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	if cfg.DiskDir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.DiskDir, cfg.DiskTTL))
}
