package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/hupe1980/turnstream"
	"github.com/hupe1980/turnstream/display"
	"github.com/hupe1980/turnstream/engine"
)

const askLongDesc string = `Run a single turn and print the answer.

The turn is persisted like a chat turn. Use --session to continue a stored
conversation. With --render the final answer is rendered as markdown
instead of being streamed.

Examples:
  turnstream ask "What is 2+2?"
  turnstream ask --web --render "Summarize today's Go release notes"`

const askShortDesc string = "Run one prompt"

func newAskCmd(a *app) *cobra.Command {
	flags := &featureFlags{}
	var render bool

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a.settings)

			var optFns []func(o *turnstream.Options)
			if render {
				optFns = append(optFns, func(o *turnstream.Options) { o.Output = display.Discard{} })
			}
			client, err := a.client(optFns...)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if flags.sessionID != "" {
				if err := client.Engine().LoadSession(flags.sessionID); err != nil {
					return fmt.Errorf("loading session: %w", err)
				}
			}

			stop := cancelOnInterrupt(client, false)
			defer stop()

			answer, err := client.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil && !errors.Is(err, engine.ErrCancelled) {
				return err
			}

			if render {
				out, rerr := glamour.Render(answer, "auto")
				if rerr != nil {
					return fmt.Errorf("rendering answer: %w", rerr)
				}
				fmt.Print(out)
			}
			fmt.Printf("\n%s\n", dimStyle.Render("session "+client.Engine().Session().ID))
			return err
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&render, "render", false, "Render the final answer as markdown")

	return cmd
}
