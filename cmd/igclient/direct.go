package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	directRecipients []string
	directText       string
)

// directCmd represents the direct command
var directCmd = &cobra.Command{
	Use:   "direct",
	Short: "Send direct messages and media shares",
}

// directSendCmd represents the direct send command
var directSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a text message to one or more recipients",
	Example: `  # Message two users by their numeric ids
  igclient direct send --to 123456 --to 789012 --text "hello"`,
	RunE: runDirectSend,
}

// directShareCmd represents the direct share command
var directShareCmd = &cobra.Command{
	Use:   "share <media-id>",
	Short: "Share an existing post to one or more recipients",
	Example: `  # Share a post with an optional note
  igclient direct share 1234567890123456789_123456 --to 789012 --text "look at this"`,
	Args: cobra.ExactArgs(1),
	RunE: runDirectShare,
}

func init() {
	rootCmd.AddCommand(directCmd)
	directCmd.AddCommand(directSendCmd)
	directCmd.AddCommand(directShareCmd)

	directCmd.PersistentFlags().StringSliceVar(&directRecipients, "to", nil, "recipient user id (repeatable)")
	directCmd.PersistentFlags().StringVar(&directText, "text", "", "message text")
}

func runDirectSend(cmd *cobra.Command, args []string) error {
	if directText == "" {
		return fmt.Errorf("--text is required")
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	res, err := client.DirectMessage(cmd.Context(), directRecipients, directText)
	if err != nil {
		return err
	}
	return reportResult(res, "message sent")
}

func runDirectShare(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	res, err := client.DirectShare(cmd.Context(), args[0], directRecipients, directText)
	if err != nil {
		return err
	}
	return reportResult(res, "media shared")
}
