package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Davide-02/certifi-ai/internal/classify"
	"github.com/Davide-02/certifi-ai/internal/evaluate"
	"github.com/Davide-02/certifi-ai/internal/extract/adapters"
	"github.com/Davide-02/certifi-ai/internal/pipeline"
	"github.com/Davide-02/certifi-ai/internal/role"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Show family, role and claim signals without deciding",
	Long: `Classify runs only the reading stages of the cascade: family
classification, role inference and claim evaluation. Nothing is certified
and no hash is produced.

Example:
  certifi classify agreement.txt
  certifi classify letter.html --rules my-rules.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML classifier rules merged over the defaults")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	rules, err := classify.LoadRules(cfg.Classifier.RulesFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	classifier, err := classify.New(rules)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	loader := pipeline.NewLoader(nil, adapters.NoopTables{}, cfg.Pipeline.MaxFileBytes, logger)
	doc, err := loader.Load(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	fam := classifier.Classify(doc.Text)
	inferred := role.NewEngine().Infer(doc.Text, fam.Family)
	eval := evaluate.NewEvaluator().Evaluate(doc.Text, fam.Family)

	w := os.Stdout
	fmt.Fprintf(w, "Family:       %s / %s (%.2f, %s)\n", fam.Family, fam.Subtype, fam.Confidence, fam.Source)
	if len(fam.MatchedSignals) > 0 {
		fmt.Fprintf(w, "Signals:      %s\n", strings.Join(fam.MatchedSignals, ", "))
	}
	fmt.Fprintf(w, "Role:         %s (%.2f, %s evidence)\n", inferred.Role, inferred.Confidence, inferred.EvidenceType)
	fmt.Fprintf(w, "Relationship: %t (claims confidence %.2f, certifiable %t)\n",
		eval.IsContractorRelationship, eval.ClaimsConfidence, eval.Certifiable)

	names := make([]string, 0, len(eval.ClaimsFound))
	for name := range eval.ClaimsFound {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := "-"
		if eval.ClaimsFound[name] {
			state = "✓"
		}
		fmt.Fprintf(w, "  %s %s\n", state, name)
	}
	return nil
}
