package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/pipeline"
)

// Certifier runs the certification cascade on one document
type Certifier interface {
	Process(ctx context.Context, req pipeline.Request) *model.Result
}

// CertifyJob certifies one document
type CertifyJob struct {
	Index     int
	Request   pipeline.Request
	Certifier Certifier
	Limiter   *Limiter // Optional
}

// Execute waits for the documents lane, then runs the cascade
func (j *CertifyJob) Execute(ctx context.Context) Result {
	out := &CertifyResult{Index: j.Index, Path: j.Request.Path}
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, LaneDocuments); err != nil {
			out.Error = fmt.Errorf("rate limit: %w", err)
			return out
		}
	}
	out.Result = j.Certifier.Process(ctx, j.Request)
	return out
}

// CertifyResult is the outcome of one batch job
type CertifyResult struct {
	Index  int
	Path   string
	Result *model.Result
	Error  error // Set when the job never ran the cascade
}

// GetError returns the error from the job
func (r *CertifyResult) GetError() error {
	return r.Error
}

// Summary counts batch outcomes
type Summary struct {
	Total       int
	Ready       int
	NeedsReview int
	Failed      int
}

// Summarize tallies results
func Summarize(results []*CertifyResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Error != nil || r.Result == nil || !r.Result.Success:
			s.Failed++
		case r.Result.CertificationReady && !r.Result.HumanReviewRequired:
			s.Ready++
		default:
			s.NeedsReview++
		}
	}
	return s
}

// BatchProcessor certifies many documents concurrently
type BatchProcessor struct {
	certifier   Certifier
	concurrency int
	limiter     *Limiter
	logger      *slog.Logger
}

// NewBatchProcessor creates a batch processor. A non-positive rate leaves
// documents unthrottled.
func NewBatchProcessor(certifier Certifier, concurrency int, rate float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		certifier:   certifier,
		concurrency: concurrency,
		limiter:     NewLimiter(rate, burst),
		logger:      slog.Default(),
	}
}

// WithLimiter shares l with other consumers, such as the LLM lane
func (b *BatchProcessor) WithLimiter(l *Limiter) *BatchProcessor {
	if l != nil {
		b.limiter = l
	}
	return b
}

// WithLogger sets the logger used for per-document progress
func (b *BatchProcessor) WithLogger(logger *slog.Logger) *BatchProcessor {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// ProcessPaths certifies every path with the template request and returns
// results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string, template pipeline.Request) []*CertifyResult {
	if len(paths) == 0 {
		return []*CertifyResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, path := range paths {
			req := template
			req.Path = path
			job := &CertifyJob{Index: i, Request: req, Certifier: b.certifier, Limiter: b.limiter}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	ordered := make([]*CertifyResult, len(paths))
	for res := range pool.Results() {
		cr, ok := res.(*CertifyResult)
		if !ok {
			b.logger.Error("batch job failed", "error", res.GetError())
			continue
		}
		ordered[cr.Index] = cr
		b.logDone(cr)
	}

	// jobs never run (cancelled or panicked) still get an entry
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("job did not complete")
			}
			ordered[i] = &CertifyResult{Index: i, Path: paths[i], Error: err}
		}
	}
	return ordered
}

func (b *BatchProcessor) logDone(r *CertifyResult) {
	if r.Error != nil {
		b.logger.Warn("document skipped", "path", r.Path, "error", r.Error)
		return
	}
	b.logger.Debug("document processed",
		"path", r.Path,
		"family", r.Result.DocumentFamily,
		"ready", r.Result.CertificationReady,
		"review", r.Result.HumanReviewRequired)
}

// ProcessInput certifies the documents named by input: a directory or a
// list file with one path per line
func (b *BatchProcessor) ProcessInput(ctx context.Context, input string, template pipeline.Request) ([]*CertifyResult, error) {
	paths, err := ResolveInput(input)
	if err != nil {
		return nil, err
	}
	return b.ProcessPaths(ctx, paths, template), nil
}

// ResolveInput expands a directory to its regular files or reads a list file
func ResolveInput(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return ListDirectory(input)
	}
	return ReadPathsFromFile(input)
}

// ListDirectory returns the regular files directly inside dir, sorted.
// Hidden files and compensation sidecars are skipped.
func ListDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".compensation.yaml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Relative paths resolve against the list file's directory.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
