package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Davide-02/certifi-ai/internal/metrics"
	"github.com/Davide-02/certifi-ai/internal/pipeline"
	"github.com/Davide-02/certifi-ai/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	docRate      float64
	docBurst     int
	metricsOut   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file|dir>",
	Short: "Certify many documents in parallel",
	Long: `Batch certifies documents concurrently:
- Read paths from a list file (one per line, # comments) or a directory
- Process documents on a worker pool, optionally rate limited
- Write one JSON result per document to the output directory
- Optionally export Prometheus metrics to a textfile

Example:
  certifi batch docs/
  certifi batch paths.txt --concurrency 8 --output-dir ./results
  certifi batch docs/ --rate 2 --burst 4 --metrics-out certifi.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./certifi-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&docRate, "rate", 0, "documents per second (0 = config value)")
	batchCmd.Flags().IntVar(&docBurst, "burst", 0, "rate limiter burst (0 = config value)")
	batchCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus metrics to this textfile")

	batchCmd.Flags().StringVar(&docType, "type", "", "known document type for every document")
	batchCmd.Flags().StringVar(&profileName, "profile", "", "certification profile for every document")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	batchCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML classifier rules merged over the defaults")
	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	template, err := buildRequest("")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if docRate > 0 {
		cfg.RateLimiting.DocumentsPerSecond = docRate
	}
	if docBurst > 0 {
		cfg.RateLimiting.BurstSize = docBurst
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	if err := checkLLM(ctx, cfg); err != nil {
		return err
	}

	runID := uuid.NewString()
	fmt.Fprintf(os.Stderr, "\n%s\n  CertiFi Batch Processing\n%s\n\n", banner, banner)
	fmt.Fprintf(os.Stderr, "  Run:          %s\n", runID)
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", input)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintln(os.Stderr)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// one limiter: the documents lane paces jobs, the llm lane paces fallback calls
	limiter := worker.NewLimiter(cfg.RateLimiting.DocumentsPerSecond, cfg.RateLimiting.BurstSize)
	limiter.SetLaneRate(worker.LaneLLM, cfg.RateLimiting.LLMPerSecond, 1)

	m := metrics.New()
	orch, err := pipeline.NewOrchestrator(cfg,
		pipeline.WithLogger(logger.With("run", runID)),
		pipeline.WithMetrics(m),
		pipeline.WithThrottle(limiter.Lane(worker.LaneLLM)),
	)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(orch, cfg.Concurrency.Workers, cfg.RateLimiting.DocumentsPerSecond, cfg.RateLimiting.BurstSize).
		WithLimiter(limiter).
		WithLogger(logger)

	start := time.Now()
	results, err := processor.ProcessInput(ctx, input, template)
	if err != nil {
		return fmt.Errorf("process input: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	names := make(map[string]int)
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}

		jsonPath := filepath.Join(outputDir, resultName(r.Path, names)+".json")
		if err := renderer.RenderJSON(r.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", r.Path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s %s (%s, %s)\n", mark(pipeline.Outcome(r.Result)), r.Path, r.Result.DocumentFamily, pipeline.Outcome(r.Result))
	}

	s := worker.Summarize(results)
	fmt.Fprintf(os.Stderr, "\n%s\n  Batch Complete\n%s\n\n", banner, banner)
	fmt.Fprintf(os.Stderr, "  Total:        %d documents\n", s.Total)
	fmt.Fprintf(os.Stderr, "  Ready:        %d\n", s.Ready)
	fmt.Fprintf(os.Stderr, "  Review:       %d\n", s.NeedsReview)
	fmt.Fprintf(os.Stderr, "  Failed:       %d\n", s.Failed)
	fmt.Fprintf(os.Stderr, "  Duration:     %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", outputDir)

	if metricsOut != "" {
		if err := m.WriteTextfile(metricsOut); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		fmt.Fprintf(os.Stderr, "  Metrics:      %s\n", metricsOut)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func mark(outcome string) string {
	switch outcome {
	case "ready":
		return "✓"
	case "review":
		return "?"
	}
	return "✗"
}

// resultName turns a document path into a unique, safe file stem. A
// generated suffix never reuses a stem already handed out.
func resultName(path string, seen map[string]int) string {
	name := sanitizeFilename(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	candidate := name
	for n := 2; seen[candidate] > 0; n++ {
		candidate = fmt.Sprintf("%s-%d", name, n)
	}
	seen[candidate]++
	return candidate
}

// sanitizeFilename replaces characters that are unsafe in file names
func sanitizeFilename(s string) string {
	s = strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	).Replace(s)
	if s == "" || s == "." || s == ".." {
		s = "document"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
