package main

import (
	"context"
	"encoding/json"
	"shop-relay/domain/event"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

func broadcastCmd() *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Start a livestream as the admin and print the viewers' signaling",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			c, err := connect(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if err := c.Send(event.AdminJoin, nil); err != nil {
				return err
			}
			if err := c.Send(event.AdminStartStream, nil); err != nil {
				return err
			}
			if product != "" {
				if !json.Valid([]byte(product)) {
					product = `"` + product + `"`
				}
				if err := c.Send(event.HighlightProduct, event.HighlightPayload{Product: json.RawMessage(product)}); err != nil {
					return err
				}
			}

			err = printFrames(ctx, c, func(frame event.Inbound) {
				if frame.Name != event.ClientReady {
					return
				}
				var ref event.ClientRef
				if json.Unmarshal(frame.Data, &ref) != nil {
					return
				}
				// No media is produced, the offer only checks the relay path.
				offer := json.RawMessage(`{"type":"offer","sdp":"probe"}`)
				_ = c.Send(event.Signal, event.SignalPayload{Offer: offer, ClientID: ref.ClientID})
			})

			if stopErr := c.Send(event.AdminStopStream, nil); stopErr == nil {
				_ = c.WaitFor(context.WithoutCancel(ctx), event.StreamStopped, nil)
				color.Yellow.Println("stream stopped")
			}
			return err
		},
	}
	cmd.Flags().StringVar(&product, "highlight", "", "product to highlight once started (JSON or plain name)")
	return cmd
}
