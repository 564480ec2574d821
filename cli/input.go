package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/config"
)

// sourceFlags select the policy and phrase list files for offline commands.
type sourceFlags struct {
	policy  string
	lexicon string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.policy, "policy", os.Getenv(config.EnvPolicyFile), "YAML policy file overriding the default thresholds")
	cmd.Flags().StringVar(&f.lexicon, "lexicon", os.Getenv(config.EnvLexiconFile), "YAML phrase list file replacing the embedded one")
}

func (f *sourceFlags) evaluator() (*analyzer.Evaluator, error) {
	cfg := config.Default()
	cfg.PolicyFile = f.policy
	cfg.LexiconFile = f.lexicon
	return cfg.Evaluator()
}

// readContent reads path, or stdin when path is "-".
func readContent(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return string(data), nil
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
