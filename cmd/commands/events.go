package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	wsclient "github.com/bioclaw/bioclaw/clients/ws"
)

// NewEventsCommand returns the events subcommand.
func NewEventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Follow the gateway event stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "gateway",
				Usage: "Gateway WebSocket URL",
				Value: "ws://127.0.0.1:18640/api/ws",
			},
		},
		Action: runEvents,
	}
}

func runEvents(ctx context.Context, cmd *cli.Command) error {
	client, err := wsclient.Dial(ctx, cmd.String("gateway"))
	if err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer client.Close()

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if frame.Event == "" {
			continue
		}

		line := frame.Event
		if frame.RunID != "" {
			line += " run=" + frame.RunID
		}
		if len(frame.Payload) > 0 {
			line += " " + string(frame.Payload)
		}
		fmt.Println(line)
	}
}
