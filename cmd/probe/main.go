package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"shop-relay/client"
	"shop-relay/domain/event"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// Config is read from the environment, flags take precedence.
type Config struct {
	URL     string `envconfig:"PROBE_URL" default:"ws://localhost:8080/ws"`
	Token   string `envconfig:"PROBE_TOKEN"`
	Secret  string `envconfig:"JWT_SECRET"`
	Colours bool   `envconfig:"PROBE_COLOURS" default:"true"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:          "probe",
	Short:        "Exercise a shop-relay server by hand",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		color.Enable = config.Colours
		return nil
	},
}

func main() {
	if err := envconfig.Process("", &config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	rootCmd.PersistentFlags().StringVar(&config.URL, "url", config.URL, "relay websocket url")
	rootCmd.PersistentFlags().StringVar(&config.Token, "token", config.Token, "JWT presented when connecting")
	rootCmd.AddCommand(watchCmd(), chatCmd(), broadcastCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*client.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	c, err := client.Dial(dialCtx, config.URL, config.Token)
	if err != nil {
		return nil, err
	}
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("  ====== connected to %s ======", config.URL)))
	return c, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// printFrames prints every received frame until ctx ends or the connection closes.
// onFrame, when set, sees each frame after it is printed.
func printFrames(ctx context.Context, c *client.Client, onFrame func(event.Inbound)) error {
	for {
		frame, err := c.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printFrame(frame)
		if onFrame != nil {
			onFrame(frame)
		}
	}
}

func printFrame(frame event.Inbound) {
	at := time.Now().Format("15:04:05.000")
	name := color.Cyan.Render(frame.Name)
	if frame.Name == event.Error {
		name = color.Red.Render(frame.Name)
	}
	data := "-"
	if len(frame.Data) > 0 {
		var pretty any
		if err := json.Unmarshal(frame.Data, &pretty); err == nil {
			if b, err := json.Marshal(pretty); err == nil {
				data = string(b)
			}
		}
	}
	fmt.Printf("%s %s %s\n", color.Gray.Render(at), name, data)
}
