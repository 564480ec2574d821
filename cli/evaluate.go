package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentgate/analyzer"
	"github.com/seo-optimizer/contentgate/report"
)

type evaluation struct {
	analyzer.Result
	ReadyForTranslation bool `json:"readyForTranslation"`
	PassedHumanization  bool `json:"passedHumanization"`
}

func newEvaluateCmd() *cobra.Command {
	var (
		in         analyzer.Input
		jsonOutput bool
		minScore   float64
		sources    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "evaluate FILE",
		Short: "Score an article",
		Long:  "Score a Markdown or HTML article (\"-\" reads stdin). Fails when a critical issue remains or the score is below --min-score.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args[0])
			if err != nil {
				return err
			}
			eval, err := sources.evaluator()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-score") {
				minScore = eval.Policy().TranslationMinScore
			}

			in.Content = content
			res := eval.Evaluate(in)

			if jsonOutput {
				if err := renderJSON(cmd, evaluation{
					Result:              res,
					ReadyForTranslation: res.ReadyForTranslation(minScore),
					PassedHumanization:  res.PassedHumanization(),
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), report.RenderResult(res, minScore))
			}

			switch {
			case !res.CanProceed:
				return fmt.Errorf("%d critical issue(s) block this content", len(res.IssuesBySeverity(analyzer.SeverityCritical)))
			case res.Score < minScore:
				return fmt.Errorf("score %.1f is below minimum %.0f", res.Score, minScore)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Keyword, "keyword", "k", "", "Main keyword")
	cmd.Flags().StringVar(&in.Title, "title", "", "SEO title")
	cmd.Flags().StringVar(&in.MetaDescription, "meta", "", "Meta description")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum score (defaults to the policy's translation threshold)")
	sources.register(cmd)

	return cmd
}
