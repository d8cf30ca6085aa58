package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pushover "github.com/lhoward/pushover-go-client"
)

func newSendCmd(verbose *bool) *cobra.Command {
	var (
		title     string
		link      string
		linkTitle string
		html      bool
		device    string
		sound     string
		priority  int
		timestamp string
	)

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, user, err := buildRecipient(*verbose)
			if err != nil {
				return err
			}

			n, err := pushover.NewNotification(user, args[0])
			if err != nil {
				return err
			}

			if err := applyCommonFlags(cmd.Context(), n, title, link, linkTitle, html, device, sound, timestamp); err != nil {
				return err
			}

			if err := n.SetPriority(pushover.Priority(priority)); err != nil {
				return err
			}

			return deliver(cmd, n)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "notification title")
	cmd.Flags().StringVar(&link, "url", "", "supplementary URL")
	cmd.Flags().StringVar(&linkTitle, "url-title", "", "display title for the supplementary URL")
	cmd.Flags().BoolVar(&html, "html", false, "treat the message body as HTML")
	cmd.Flags().StringVarP(&device, "device", "d", "", "deliver to a single named device")
	cmd.Flags().StringVarP(&sound, "sound", "s", "", "notification sound")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "priority from -2 (lowest) to 1 (high)")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "message time as RFC3339 instead of the send time")

	return cmd
}

func applyCommonFlags(ctx context.Context, n *pushover.Notification, title, link, linkTitle string, html bool, device, sound, timestamp string) error {
	if err := n.SetTitle(title); err != nil {
		return err
	}

	if err := n.SetURL(link); err != nil {
		return err
	}

	if err := n.SetURLTitle(linkTitle); err != nil {
		return err
	}

	n.SetHTML(html)

	if err := n.SetDevice(ctx, device); err != nil {
		return err
	}

	if err := n.SetSound(ctx, sound); err != nil {
		return err
	}

	if timestamp != "" {
		t, err := time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return fmt.Errorf("parsing timestamp: %w", err)
		}
		n.SetTimestamp(t)
	}

	return nil
}

type sender interface {
	Send(ctx context.Context) (bool, error)
	SendID() string
	LastError() *pushover.APIError
}

func deliver(cmd *cobra.Command, n sender) error {
	sent, err := n.Send(cmd.Context())
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	if !sent {
		return fmt.Errorf("notification rejected: %w", n.LastError())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", n.SendID())

	return nil
}
