package main

import (
	"bufio"
	"os"
	"shop-relay/domain"
	"shop-relay/domain/event"
	"strings"

	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	var to, adminID string
	cmd := &cobra.Command{
		Use:   "chat <userId>",
		Short: "Join a chat room and send every stdin line as a private message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			userID := args[0]
			if err := c.Send(event.Join, event.JoinPayload{UserID: userID, AdminID: adminID}); err != nil {
				return err
			}

			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				for scanner.Scan() {
					text := strings.TrimSpace(scanner.Text())
					if text == "" {
						continue
					}
					message := domain.ChatMessage{Sender: userID, Receiver: to, Message: text}
					if err := c.Send(event.PrivateMessage, message); err != nil {
						stop()
						return
					}
				}
			}()
			return printFrames(ctx, c, nil)
		},
	}
	cmd.Flags().StringVar(&to, "to", domain.AdminIdentity, "receiver of the messages")
	cmd.Flags().StringVar(&adminID, "admin-id", "", "customer history to replay when joining as admin")
	return cmd
}
