package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "pushover",
		Short:         "Send push notifications from the command line",
		Long:          "pushover sends notifications through the Pushover API, including emergency notifications that re-alert until acknowledged.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newSendCmd(&verbose))
	cmd.AddCommand(newEmergencyCmd(&verbose))
	cmd.AddCommand(newSoundsCmd(&verbose))
	cmd.AddCommand(newValidateCmd(&verbose))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pushover version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pushover %s (%s)\n", version, commit)
			return nil
		},
	}
}
