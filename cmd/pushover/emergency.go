package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pushover "github.com/lhoward/pushover-go-client"
)

func newEmergencyCmd(verbose *bool) *cobra.Command {
	var (
		title     string
		link      string
		linkTitle string
		html      bool
		device    string
		sound     string
		timestamp string
		retry     time.Duration
		expire    time.Duration
		callback  string
		wait      bool
		pollEvery time.Duration
	)

	cmd := &cobra.Command{
		Use:   "emergency <message>",
		Short: "Send an emergency notification that re-alerts until acknowledged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, user, err := buildRecipient(*verbose)
			if err != nil {
				return err
			}

			n, err := pushover.NewEmergencyNotification(user, args[0], retry, expire)
			if err != nil {
				return err
			}

			if err := applyCommonFlags(cmd.Context(), &n.Notification, title, link, linkTitle, html, device, sound, timestamp); err != nil {
				return err
			}

			if err := n.SetCallbackURL(callback); err != nil {
				return err
			}

			if err := deliver(cmd, n); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "receipt %s\n", n.ReceiptID())

			if !wait {
				return nil
			}

			return waitForReceipt(cmd, n, pollEvery)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "notification title")
	cmd.Flags().StringVar(&link, "url", "", "supplementary URL")
	cmd.Flags().StringVar(&linkTitle, "url-title", "", "display title for the supplementary URL")
	cmd.Flags().BoolVar(&html, "html", false, "treat the message body as HTML")
	cmd.Flags().StringVarP(&device, "device", "d", "", "deliver to a single named device")
	cmd.Flags().StringVarP(&sound, "sound", "s", "", "notification sound")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "message time as RFC3339 instead of the send time")
	cmd.Flags().DurationVar(&retry, "retry", 60*time.Second, "re-alert interval, at least 30s")
	cmd.Flags().DurationVar(&expire, "expire", time.Hour, "how long to keep re-alerting, at most 24h")
	cmd.Flags().StringVar(&callback, "callback", "", "URL to call when the notification is acknowledged")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "poll the receipt until acknowledged or expired")
	cmd.Flags().DurationVar(&pollEvery, "poll-every", 30*time.Second, "receipt polling interval with --wait")

	return cmd
}

func waitForReceipt(cmd *cobra.Command, n *pushover.EmergencyNotification, pollEvery time.Duration) error {
	ctx := cmd.Context()

	for {
		pending, err := n.Poll(ctx)
		if err != nil {
			if errors.Is(err, pushover.ErrNoReceipt) {
				return fmt.Errorf("notification produced no receipt: %w", n.LastError())
			}

			return fmt.Errorf("polling receipt: %w", err)
		}

		if !pending {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollEvery):
		}
	}

	switch {
	case n.IsAcknowledged():
		by := ""
		if n.AcknowledgedBy() != nil {
			by = " by " + n.AcknowledgedBy().Token()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "acknowledged%s at %s\n", by, n.AcknowledgedAt().Format(time.RFC3339))
	case n.IsExpired():
		fmt.Fprintf(cmd.OutOrStdout(), "expired at %s without acknowledgement\n", n.ExpiresAt().Format(time.RFC3339))
	}

	return nil
}
