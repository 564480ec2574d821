package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentgate/config"
	"github.com/seo-optimizer/contentgate/report"
)

func newLexiconCmd() *cobra.Command {
	var (
		jsonOutput bool
		file       string
	)

	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "List the banned phrase categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := config.LoadLexicon(file)
			if err != nil {
				return err
			}
			if jsonOutput {
				return renderJSON(cmd, lex)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.RenderLexicon(lex))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full phrase lists as JSON")
	cmd.Flags().StringVar(&file, "lexicon", os.Getenv(config.EnvLexiconFile), "YAML phrase list file replacing the embedded one")

	return cmd
}
