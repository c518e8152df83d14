// Package command wires the spark CLI.
package command

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const AppName = "spark"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Spark - terminal chat client for your matches",
		Long:          "Spark is a terminal chat client: optimistic sends, typing indicators,\nread receipts and voice notes over the match channel.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("verbose", false, "log engine activity to stderr")

	cmd.AddCommand(
		NewChatCmd(),
		NewProfileCmd(),
	)
	return cmd
}

// newLogger builds the CLI logger: silent unless --verbose.
func newLogger(cmd *cobra.Command) (*zap.SugaredLogger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop().Sugar(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
