package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Classifier   ClassifierConfig   `yaml:"classifier" mapstructure:"classifier"`
	Claims       ClaimsConfig       `yaml:"claims" mapstructure:"claims"`
	Decision     DecisionConfig     `yaml:"decision" mapstructure:"decision"`
	Pipeline     PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ClassifierConfig controls the pattern tables
type ClassifierConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"` // Optional YAML rules merged over the defaults
}

// ClaimsConfig controls amount disambiguation in claim extraction
type ClaimsConfig struct {
	DominanceRatio    float64 `yaml:"dominance_ratio" mapstructure:"dominance_ratio"`       // Largest wins when >= ratio x second largest
	PriorityRatio     float64 `yaml:"priority_ratio" mapstructure:"priority_ratio"`         // Largest overrides best when > ratio x best
	PriorityCeiling   int     `yaml:"priority_ceiling" mapstructure:"priority_ceiling"`     // ...and its priority bucket is <= this
	PreferredCurrency string  `yaml:"preferred_currency" mapstructure:"preferred_currency"` // Candidate pool preference
	DefaultCurrency   string  `yaml:"default_currency" mapstructure:"default_currency"`     // When no currency is found
	TableCurrency     string  `yaml:"table_currency" mapstructure:"table_currency"`         // When a table carries none
}

// DecisionConfig controls the decision engine
type DecisionConfig struct {
	MinClassificationConfidence float64            `yaml:"min_classification_confidence" mapstructure:"min_classification_confidence"`
	MinFieldConfidence          float64            `yaml:"min_field_confidence" mapstructure:"min_field_confidence"`
	RiskFactors                 map[string]float64 `yaml:"risk_factors" mapstructure:"risk_factors"` // Per trusted source
	DefaultRiskFactor           float64            `yaml:"default_risk_factor" mapstructure:"default_risk_factor"`
}

// PipelineConfig controls orchestration
type PipelineConfig struct {
	MinTextLength    int   `yaml:"min_text_length" mapstructure:"min_text_length"`
	MaxFileBytes     int64 `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	AdaptiveBoost    bool  `yaml:"adaptive_boost" mapstructure:"adaptive_boost"` // Raise family confidence from claims
	ClaimOverride    bool  `yaml:"claim_override" mapstructure:"claim_override"` // Allow re-classification to contract
	TextPreviewChars int   `yaml:"text_preview_chars" mapstructure:"text_preview_chars"`
}

// CacheConfig controls result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"` // Empty disables the disk layer
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles batch processing and LLM calls
type RateLimitingConfig struct {
	DocumentsPerSecond float64 `yaml:"documents_per_second" mapstructure:"documents_per_second"` // 0 disables
	BurstSize          int     `yaml:"burst_size" mapstructure:"burst_size"`
	LLMPerSecond       float64 `yaml:"llm_per_second" mapstructure:"llm_per_second"`
}

// LLMConfig configures the optional field-extraction fallback
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, or empty
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MinFields  int    `yaml:"min_fields" mapstructure:"min_fields"` // Fallback runs below this many regex fields
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls reports
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Pretty  bool `yaml:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Claims: ClaimsConfig{
			DominanceRatio:    10,
			PriorityRatio:     5,
			PriorityCeiling:   3,
			PreferredCurrency: "AED",
			DefaultCurrency:   "USD",
			TableCurrency:     "AED",
		},
		Decision: DecisionConfig{
			MinClassificationConfidence: 0.70,
			MinFieldConfidence:          0.70,
			RiskFactors: map[string]float64{
				string(TrustedMRZ):         0.95,
				string(TrustedLayoutRules): 0.90,
				string(TrustedOCR):         0.75,
				string(TrustedLLM):         0.80,
			},
			DefaultRiskFactor: 0.75,
		},
		Pipeline: PipelineConfig{
			MinTextLength:    10,
			MaxFileBytes:     50 << 20,
			AdaptiveBoost:    true,
			ClaimOverride:    true,
			TextPreviewChars: 500,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			DocumentsPerSecond: 0,
			BurstSize:          4,
			LLMPerSecond:       1,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 800,
			MinFields: 3,
		},
		Output: OutputConfig{
			Pretty: true,
		},
	}
}
