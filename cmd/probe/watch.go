package main

import (
	"shop-relay/domain/event"
	"time"

	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var likes int
	cmd := &cobra.Command{
		Use:   "watch [username]",
		Short: "Join the livestream as a viewer and print what it receives",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			username := ""
			if len(args) == 1 {
				username = args[0]
			}
			if err := c.Send(event.JoinLivestream, event.JoinLivestreamPayload{Username: username}); err != nil {
				return err
			}
			if err := c.Send(event.ClientReady, nil); err != nil {
				return err
			}
			for range likes {
				if err := c.Send(event.SendLike, nil); err != nil {
					return err
				}
				time.Sleep(100 * time.Millisecond)
			}
			return printFrames(ctx, c, nil)
		},
	}
	cmd.Flags().IntVar(&likes, "likes", 0, "likes to send once joined")
	return cmd
}
