package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Davide-02/certifi-ai/internal/decision"
	"github.com/Davide-02/certifi-ai/internal/llm"
	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/pipeline"
)

const banner = "═══════════════════════════════════════════════════════════"

const llmCheckTimeout = 10 * time.Second

var (
	docType     string
	profileName string
	outJSON     string
	timeout     time.Duration
	noCache     bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
	rulesFile   string
)

// certifyCmd represents the certify command
var certifyCmd = &cobra.Command{
	Use:   "certify <file>",
	Short: "Decide whether one document is ready for certification",
	Long: `Certify runs the full cascade on a single document:
- Classify the document family and subtype
- Evaluate the relationship claims the text makes
- Infer the holder's role and extract the claim
- Resolve the certification policy
- Extract structured fields when the policy needs them
- Decide readiness and compute the canonical hash

Example:
  certifi certify agreement.txt
  certifi certify invoice.txt --type invoice --profile invoice_strict
  certifi certify id.txt --json result.json --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runCertify,
}

func init() {
	rootCmd.AddCommand(certifyCmd)

	certifyCmd.Flags().StringVar(&docType, "type", "", "known document type (id, driving_license, invoice, diploma)")
	certifyCmd.Flags().StringVar(&profileName, "profile", "", "certification profile (default: inferred from the type)")
	certifyCmd.Flags().StringVar(&outJSON, "json", "", "write the JSON result to this path (\"-\" for stdout)")
	certifyCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	certifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	certifyCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML classifier rules merged over the defaults")
	addLLMFlags(certifyCmd)
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the LLM field-extraction fallback")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")
}

// buildConfig loads the configuration and applies command flags
func buildConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if rulesFile != "" {
		cfg.Classifier.RulesFile = rulesFile
	}
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		if err := requireAPIKey(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func requireAPIKey(cfg *model.Config) error {
	if cfg.LLM.APIKey != "" {
		return nil
	}
	switch cfg.LLM.Provider {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	}
	return nil
}

// checkLLM fails fast when the configured provider cannot be reached
func checkLLM(ctx context.Context, cfg *model.Config) error {
	provider, err := llm.NewProvider(llm.WithEnvKey(llm.ConfigFromModel(cfg.LLM)))
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	if provider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	if !provider.IsAvailable(ctx) {
		return fmt.Errorf("llm provider %s is not available (check the API key or base URL)", provider.Name())
	}
	return nil
}

// buildRequest validates --type and --profile
func buildRequest(path string) (pipeline.Request, error) {
	req := pipeline.Request{Path: path, NoCache: noCache}
	switch t := model.DocumentType(docType); t {
	case "":
	case model.DocID, model.DocDrivingLicense, model.DocInvoice, model.DocDiploma:
		req.DocumentType = t
	default:
		return req, fmt.Errorf("unknown document type %q (known: id, driving_license, invoice, diploma)", docType)
	}

	p, err := decision.ParseProfile(profileName)
	if err != nil {
		return req, err
	}
	req.Profile = p
	return req, nil
}

func runCertify(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	req, err := buildRequest(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := checkLLM(ctx, cfg); err != nil {
		return err
	}

	orch, err := pipeline.NewOrchestrator(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	logger.Debug("certifying", "path", req.Path, "type", req.DocumentType, "profile", req.Profile, "cache", cfg.Cache.Enabled)
	res := orch.Process(ctx, req)

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	renderer.RenderSummary(os.Stderr, res)

	switch outJSON {
	case "":
	case "-":
		if err := renderer.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	default:
		if err := renderer.RenderJSON(res, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Result written to %s\n", outJSON)
	}

	if !res.Success && len(res.Errors) > 0 {
		return fmt.Errorf("certification incomplete: %s", res.Errors[0])
	}
	return nil
}
