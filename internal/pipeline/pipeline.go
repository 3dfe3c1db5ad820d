// Package pipeline runs the certification cascade for one document and
// assembles its Result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Davide-02/certifi-ai/internal/cache"
	"github.com/Davide-02/certifi-ai/internal/classify"
	"github.com/Davide-02/certifi-ai/internal/decision"
	"github.com/Davide-02/certifi-ai/internal/evaluate"
	"github.com/Davide-02/certifi-ai/internal/extract"
	"github.com/Davide-02/certifi-ai/internal/extract/adapters"
	"github.com/Davide-02/certifi-ai/internal/fields"
	"github.com/Davide-02/certifi-ai/internal/llm"
	"github.com/Davide-02/certifi-ai/internal/metrics"
	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/policy"
	"github.com/Davide-02/certifi-ai/internal/role"
	"github.com/Davide-02/certifi-ai/internal/textutil"
	"github.com/Davide-02/certifi-ai/internal/validate"
)

// Terminal conditions reported in Result.Errors
var (
	ErrTextTooShort       = errors.New("failed to extract text or text too short")
	ErrUnclassified       = errors.New("could not classify document family")
	ErrClaimsInsufficient = errors.New("claims evaluation failed: insufficient evidence of contractor relationship")
)

const (
	// Claims confidence needed for the adaptive boost and the override
	claimsThreshold  = 0.70
	maxAdaptiveBoost = 0.15
	boostSlope       = 0.3

	reasonNoExtraction = "extraction_unavailable"
)

// Request names one document to certify
type Request struct {
	Path         string
	DocumentType model.DocumentType // Known type: selects the schema and profile
	Profile      model.Profile      // Empty to infer from the document type
	NoCache      bool
}

type options struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	ner      extract.NER
	registry *adapters.Registry
	tables   adapters.TableSource
	fallback fields.Fallback
	throttle llm.Throttle
	store    cache.Cache
}

// Option customizes an Orchestrator
type Option func(*options)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithMetrics records stage timings and outcomes on m
func WithMetrics(m *metrics.Metrics) Option { return func(o *options) { o.metrics = m } }

// WithNER plugs in an entity recognizer for claim extraction
func WithNER(n extract.NER) Option { return func(o *options) { o.ner = n } }

// WithAdapters replaces the text adapter registry
func WithAdapters(r *adapters.Registry) Option { return func(o *options) { o.registry = r } }

// WithTables replaces the compensation table source
func WithTables(t adapters.TableSource) Option { return func(o *options) { o.tables = t } }

// WithFallback sets the structured-field fallback, replacing the one
// built from the LLM configuration.
func WithFallback(f fields.Fallback) Option { return func(o *options) { o.fallback = f } }

// WithThrottle rate-limits LLM fallback calls
func WithThrottle(t llm.Throttle) Option { return func(o *options) { o.throttle = t } }

// WithCache sets the result cache store
func WithCache(c cache.Cache) Option { return func(o *options) { o.store = c } }

// Orchestrator sequences the cascade. Its stages hold read-only state, so
// one Orchestrator may process documents concurrently.
type Orchestrator struct {
	cfg         *model.Config
	fingerprint string

	loader     *Loader
	classifier *classify.Classifier
	evaluator  *evaluate.Evaluator
	roles      *role.Engine
	claims     *extract.Extractor
	resolver   *policy.Resolver
	fields     *fields.Extractor
	engine     *decision.Engine
	validator  *validate.Validator

	results *cache.Results // nil when caching is off
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewOrchestrator builds every stage from cfg. A nil cfg uses the defaults.
func NewOrchestrator(cfg *model.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	o := options{tables: adapters.DefaultTables()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	rules, err := classify.LoadRules(cfg.Classifier.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	classifier, err := classify.New(rules)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	encodedRules, err := rules.WriteYAML()
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}

	fallback := o.fallback
	if fallback == nil {
		fallback, err = llmFallback(cfg, o.throttle, o.logger)
		if err != nil {
			return nil, err
		}
	}

	var results *cache.Results
	if cfg.Cache.Enabled {
		store := o.store
		if store == nil {
			store = cache.New(cfg.Cache)
		}
		results = cache.NewResults(store, 0)
	}

	return &Orchestrator{
		cfg:         cfg,
		fingerprint: cache.Fingerprint(cfg, encodedRules),
		loader:      NewLoader(o.registry, o.tables, cfg.Pipeline.MaxFileBytes, o.logger),
		classifier:  classifier,
		evaluator:   evaluate.NewEvaluator(),
		roles:       role.NewEngine(),
		claims:      extract.NewExtractor(cfg.Claims, o.ner, o.logger),
		resolver:    policy.NewResolver(),
		fields:      fields.NewExtractor(fallback, cfg.LLM.MinFields, o.logger),
		engine:      decision.NewEngine(cfg.Decision),
		validator:   validate.NewValidator(),
		results:     results,
		metrics:     o.metrics,
		logger:      o.logger,
	}, nil
}

// llmFallback returns nil when no provider is configured
func llmFallback(cfg *model.Config, throttle llm.Throttle, logger *slog.Logger) (fields.Fallback, error) {
	provider, err := llm.NewProvider(llm.WithEnvKey(llm.ConfigFromModel(cfg.LLM)))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	if throttle == nil && cfg.RateLimiting.LLMPerSecond > 0 {
		throttle = rate.NewLimiter(rate.Limit(cfg.RateLimiting.LLMPerSecond), 1)
	}
	logger.Debug("llm field fallback enabled", "provider", provider.Name(), "model", cfg.LLM.Model)
	return llm.NewFieldExtractor(provider, throttle, logger), nil
}

// Process certifies the document at req.Path. It never fails: every
// condition, including a panic in a stage, is reported in the Result.
func (o *Orchestrator) Process(ctx context.Context, req Request) (res *model.Result) {
	start := time.Now()
	res = model.NewResult(uuid.NewString(), req.Path)
	res.Metadata.ProcessedAt = start.UTC()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panic", "path", req.Path, "panic", r)
			res.AddError(fmt.Sprintf("pipeline error: %v", r))
			res.CertificationReady = false
			res.HumanReviewRequired = true
			res.Metadata.CanonicalHash = nil
		}
		res.Metadata.DurationMS = time.Since(start).Milliseconds()
		o.metrics.Since(metrics.StageTotal, start)
		o.metrics.ObserveDocument(string(res.DocumentFamily), Outcome(res), decisionReason(res))
	}()

	stage := time.Now()
	doc, err := o.loader.Load(ctx, req.Path)
	o.metrics.Since(metrics.StageLoad, stage)
	if err != nil {
		res.AddError(fmt.Sprintf("load %s: %v", req.Path, err))
		setDecision(res, model.Reject("", model.ReasonInsufficientText, model.RiskHigh, 0, nil), "", nil, "")
		return res
	}
	res.Metadata.FileHash = doc.FileHash

	var key string
	if o.results != nil && !req.NoCache {
		key = cache.Key(doc.FileHash, req.DocumentType, req.Profile, o.fingerprint)
		if cached, ok := o.results.Get(key); ok {
			o.metrics.ObserveCache(true)
			cached.ID = res.ID
			cached.FilePath = req.Path
			return cached
		}
		o.metrics.ObserveCache(false)
	}

	o.certify(ctx, req, doc, res)

	if key != "" && ctx.Err() == nil {
		if err := o.results.Put(key, res); err != nil {
			o.logger.Warn("cache write failed", "path", req.Path, "error", err)
		}
	}
	return res
}

func (o *Orchestrator) certify(ctx context.Context, req Request, doc *Document, res *model.Result) {
	text := doc.Text
	res.Metadata.TextLength = utf8.RuneCountInString(text)
	res.Metadata.TextPreview = preview(text, o.cfg.Pipeline.TextPreviewChars)

	if textutil.IsBlank(text, o.cfg.Pipeline.MinTextLength) {
		res.AddError(ErrTextTooShort.Error())
		setDecision(res, model.Reject("", model.ReasonInsufficientText, model.RiskHigh, 0, nil), "", nil, "")
		return
	}

	stage := time.Now()
	fam := o.classifier.Classify(text)
	setFamily(res, fam)
	if fam.Family == model.FamilyUnknown {
		o.metrics.Since(metrics.StageClassify, stage)
		res.AddError(ErrUnclassified.Error())
		setDecision(res, model.Reject("", model.ReasonUnknownFamily, model.RiskHigh, 0, nil), "", nil, "")
		return
	}

	eval := o.evaluator.Evaluate(text, fam.Family)
	res.ClaimEvaluation = &eval
	fam = o.adjustFamily(text, fam, eval, res)
	setFamily(res, fam)
	o.metrics.Since(metrics.StageClassify, stage)

	semantic := fam.Family.IsSemantic()
	pd := o.resolver.Resolve(policy.Request{
		Family:           fam.Family,
		FamilyConfidence: fam.Confidence,
		UseClaimBased:    semantic && eval.IsContractorRelationship,
	})
	res.Policy = &pd
	res.CertificationPolicy = pd.Policy
	res.Metadata.CertificationMethod = pd.Method

	var claimDecision *model.Decision
	switch {
	case semantic:
		d := decision.FromClaims(eval, model.ProfileClaimBased)
		if !eval.Certifiable {
			res.AddError(ErrClaimsInsufficient.Error())
			setDecision(res, d, "", nil, pd.Method)
			return
		}
		claimDecision = &d
	case !pd.Certifiable:
		res.AddError(fmt.Sprintf("document family %s not certifiable: %s", fam.Family, pd.Reason))
		setDecision(res, model.Reject("", pd.Reason, model.RiskHigh, fam.Confidence, pd.Details), "", nil, pd.Method)
		return
	}

	stage = time.Now()
	inferred := o.roles.Infer(text, fam.Family)
	res.Role = &inferred
	res.InferredRole = inferred.Role

	claim := o.claims.Extract(ctx, extract.Input{
		Text:    text,
		Role:    inferred.Role,
		Family:  fam.Family,
		Subtype: fam.Subtype,
		Table:   doc.Table,
	})
	res.Claim = &claim
	res.ClaimStatement = extract.Statement(claim)
	o.metrics.Since(metrics.StageClaims, stage)

	var ext *model.StructuredExtraction
	if docType, ok := documentType(req, fam.Family); ok && pd.RequiresExtraction {
		stage = time.Now()
		extracted, err := o.fields.Extract(ctx, text, docType)
		o.metrics.Since(metrics.StageExtract, stage)
		if err != nil {
			res.AddError(fmt.Sprintf("extract fields: %v", err))
		} else {
			ext = extracted
			res.Data = ext
		}
	}

	stage = time.Now()
	source := model.TrustedFileIntegrity
	var d model.Decision
	switch {
	case ext != nil:
		source = ext.TrustedSource
		d = o.engine.Decide(decision.Input{
			DocumentType:             ext.DocumentType,
			ClassificationConfidence: fam.Confidence,
			ExtractionConfidence:     ext.Confidence,
			TrustedSource:            ext.TrustedSource,
			FieldConfidence:          ext.FieldConfidence,
			MissingFields:            ext.MissingFields,
			Profile:                  req.Profile,
		})
		res.Validation = o.validator.Validate(ext, text)
	case claimDecision != nil:
		d = *claimDecision
	default:
		d = model.Reject(req.Profile, reasonNoExtraction, model.RiskHigh, 0, nil)
	}
	o.metrics.Since(metrics.StageDecide, stage)

	var missing []string
	if ext != nil {
		missing = ext.MissingFields
	}
	setDecision(res, d, source, missing, pd.Method)
	o.finalizeHash(res, pd, doc, ext)

	if ext != nil {
		res.Success = res.Validation.Valid()
	} else {
		res.Success = len(res.Errors) == 0
	}
}

// adjustFamily applies the adaptive boost and the claim-based override
func (o *Orchestrator) adjustFamily(text string, fam model.FamilyResult, eval model.ClaimEvaluation, res *model.Result) model.FamilyResult {
	cc := eval.ClaimsConfidence
	if o.cfg.Pipeline.AdaptiveBoost && cc >= claimsThreshold {
		if boost := math.Min(maxAdaptiveBoost, (cc-claimsThreshold)*boostSlope); boost > 0 {
			fam = fam.WithConfidence(fam.Confidence + boost)
			res.Metadata.AdaptiveBoost = model.Round4(boost)
		}
	}

	if !o.cfg.Pipeline.ClaimOverride || !eval.IsContractorRelationship || cc < claimsThreshold {
		return fam
	}

	switch {
	case fam.Family != model.FamilyContract && fam.Family != model.FamilyUnknown:
		next := fam.Override(model.FamilyContract, classify.Subtype(text, model.FamilyContract),
			math.Max(fam.Confidence, claimsThreshold), model.ReasonClaimOverride)
		res.Metadata.FamilyOverride = &model.FamilyOverride{
			OriginalFamily:     fam.Family,
			OriginalConfidence: fam.Confidence,
			NewFamily:          next.Family,
			NewConfidence:      next.Confidence,
			Reason:             model.ReasonClaimOverride,
			ClaimsConfidence:   cc,
		}
		o.metrics.IncOverride()
		o.logger.Info("family overridden by claims", "from", fam.Family, "to", next.Family, "claims_confidence", cc)
		return next
	case fam.Family == model.FamilyContract && fam.Confidence < claimsThreshold:
		return fam.WithConfidence(claimsThreshold)
	}
	return fam
}

// finalizeHash sets canonical_hash for ready results. File-integrity
// hashes are the raw file digest; extraction hashes fold in the claim.
func (o *Orchestrator) finalizeHash(res *model.Result, pd model.PolicyDecision, doc *Document, ext *model.StructuredExtraction) {
	var claimHash string
	if res.Claim != nil {
		h, err := ClaimHash(res.Claim)
		if err != nil {
			o.logger.Warn("claim hash failed", "path", res.FilePath, "error", err)
		} else {
			claimHash = h
			res.Metadata.ClaimHash = &claimHash
		}
	}

	if !res.CertificationReady {
		res.Metadata.CanonicalHash = nil
		return
	}

	var canonical string
	switch {
	case pd.Policy == model.PolicyHashOnly || pd.Method == model.MethodClaimBased:
		canonical = doc.FileHash
	case ext != nil:
		res.Metadata.TextHash = TextHash(doc.Text)
		h, err := ExtractionHash(ext)
		if err != nil {
			res.AddError(fmt.Sprintf("canonical hash: %v", err))
			return
		}
		canonical = h
		if claimHash != "" {
			canonical = combineHashes(canonical, claimHash)
		}
	default:
		res.Metadata.TextHash = TextHash(doc.Text)
		canonical = res.Metadata.TextHash
		if claimHash != "" {
			canonical = combineHashes(canonical, claimHash)
		}
	}
	res.Metadata.CanonicalHash = &canonical
}

func documentType(req Request, family model.Family) (model.DocumentType, bool) {
	if req.DocumentType != "" {
		return req.DocumentType, true
	}
	return model.DocumentTypeForFamily(family)
}

func setFamily(res *model.Result, fam model.FamilyResult) {
	res.Family = &fam
	res.DocumentFamily = fam.Family
	res.DocumentSubtype = fam.Subtype
}

func setDecision(res *model.Result, d model.Decision, source model.TrustedSource, missing []string, method model.CertificationMethod) {
	res.CertificationReady = d.CertificationReady
	res.HumanReviewRequired = d.HumanReviewRequired
	res.RiskLevel = d.RiskLevel
	res.CertificationProfile = d.Profile

	if missing == nil {
		missing = []string{}
	}
	res.Metadata.Decision = &model.DecisionMeta{
		CanCertify:          d.CertificationReady,
		NeedsHuman:          d.HumanReviewRequired,
		Confidence:          model.Round4(d.Confidence),
		RiskLevel:           d.RiskLevel,
		Reason:              d.Reason,
		TrustedSource:       source,
		MissingFields:       missing,
		Details:             d.Details,
		CertificationMethod: method,
	}
}

func preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	head := textutil.Head(text, n)
	if len(head) < len(text) {
		return head + "..."
	}
	return head
}

// Outcome buckets a result as ready, review or failed
func Outcome(res *model.Result) string {
	switch {
	case res.CertificationReady && !res.HumanReviewRequired:
		return "ready"
	case res.CertificationReady:
		return "review"
	default:
		return "failed"
	}
}

func decisionReason(res *model.Result) string {
	if res.Metadata.Decision == nil {
		return ""
	}
	return res.Metadata.Decision.Reason
}
