package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newValidateCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configured application and user tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, user, err := buildRecipient(*verbose)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			appOK, err := app.Authenticated(ctx)
			if err != nil {
				return fmt.Errorf("validating application token: %w", err)
			}
			if !appOK {
				return fmt.Errorf("application token was rejected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "application token is valid")

			userOK, err := user.Authenticated(ctx)
			if err != nil {
				return fmt.Errorf("validating user token: %w", err)
			}
			if !userOK {
				return fmt.Errorf("user token was rejected")
			}

			devices, err := user.Devices(ctx)
			if err != nil {
				return fmt.Errorf("listing devices: %w", err)
			}

			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "user token is valid but has no active devices")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user token is valid, devices: %s\n", strings.Join(devices, ", "))
			}

			return nil
		},
	}
}
