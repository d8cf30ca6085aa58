package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newSoundsCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the notification sounds the application may use",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := buildRecipient(*verbose)
			if err != nil {
				return err
			}

			sounds, err := app.Sounds(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sounds: %w", err)
			}

			if sounds == nil {
				return fmt.Errorf("application token was rejected")
			}

			ids := make([]string, 0, len(sounds))
			for id := range sounds {
				ids = append(ids, id)
			}
			slices.Sort(ids)

			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", id, sounds[id])
			}

			return nil
		},
	}
}
