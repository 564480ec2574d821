// Package cli wires the contentgate commands.
package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "contentgate",
		Short:         "Score articles before they go to translation",
		Long:          "contentgate scores an article's SEO quality and naturalness, blocks critical problems and fixes keyword stuffing and long paragraphs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvaluateCmd())
	cmd.AddCommand(newFixCmd())
	cmd.AddCommand(newLexiconCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("contentgate %s (%s)\n", version, commit)
		},
	}
}
