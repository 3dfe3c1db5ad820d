package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Davide-02/certifi-ai/internal/classify"
)

var rulesOut string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect classifier rules",
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the effective classifier rules as YAML",
	Long: `Dump writes the built-in pattern tables, merged with --rules when given,
as a YAML file that can be edited and passed back with --rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := classify.LoadRules(rulesFile)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		data, err := rules.WriteYAML()
		if err != nil {
			return fmt.Errorf("encode rules: %w", err)
		}

		if rulesOut == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(rulesOut, data, 0o644); err != nil {
			return fmt.Errorf("write rules: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Rules written to %s\n", rulesOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesDumpCmd)
	rulesDumpCmd.Flags().StringVarP(&rulesOut, "output", "o", "", "output file (default: stdout)")
	rulesDumpCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules merged over the defaults before dumping")
}
