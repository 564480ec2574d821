package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/remediate"
	"github.com/seo-optimizer/contentgate/report"
)

func newFixCmd() *cobra.Command {
	var (
		lim      remediate.KeywordLimit
		maxWords int
		write    bool
		sources  sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "fix FILE",
		Short: "Split long paragraphs and cap keyword repetitions",
		Long: "Split paragraphs longer than --max-words and replace keyword occurrences beyond --max with alternatives. " +
			"The fixed text goes to stdout unless --write is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && args[0] == "-" {
				return fmt.Errorf("--write needs a file, not stdin")
			}
			if maxWords < 0 || lim.Max < 0 {
				return fmt.Errorf("--max and --max-words must not be negative")
			}
			content, err := readContent(cmd, args[0])
			if err != nil {
				return err
			}
			eval, err := sources.evaluator()
			if err != nil {
				return err
			}
			policy := eval.Policy()

			if maxWords == 0 {
				maxWords = policy.Readability.MaxParagraphWords
			}
			fixed := remediate.SplitLongParagraphs(content, maxWords)

			summary := cmd.ErrOrStderr()
			if write {
				summary = cmd.OutOrStdout()
			}

			if lim.Keyword != "" {
				if !cmd.Flags().Changed("max") {
					lim.Max = eval.KeywordCap(fixed)
				}
				enf := remediate.EnforceKeywordLimit(fixed, lim)
				fixed = enf.Content
				fmt.Fprint(summary, report.RenderEnforcement(enf, lim.Keyword, lim.Max))
			}

			res := eval.Evaluate(analyzer.Input{Content: fixed, Keyword: lim.Keyword})
			fmt.Fprintf(summary, "  score after fixes: %.1f\n", res.Score)

			if !write {
				_, err := io.WriteString(cmd.OutOrStdout(), fixed)
				return err
			}
			if fixed == content {
				return nil
			}
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("writing content: %w", err)
			}
			if err := os.WriteFile(args[0], []byte(fixed), info.Mode().Perm()); err != nil {
				return fmt.Errorf("writing content: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lim.Keyword, "keyword", "k", "", "Keyword to cap (no keyword pass when empty)")
	cmd.Flags().IntVar(&lim.Max, "max", 0, "Maximum keyword occurrences (defaults to the hard cap for the text length)")
	cmd.Flags().StringSliceVar(&lim.Alternatives, "alternatives", nil, "Replacement phrases, used in rotation")
	cmd.Flags().IntVar(&lim.StartIndex, "start-index", 0, "Rotation index of the first replacement")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "Maximum words per paragraph (defaults to the policy value)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite FILE in place")
	sources.register(cmd)

	return cmd
}
