package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hupe1980/turnstream"
	"github.com/hupe1980/turnstream/engine"
)

var (
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const chatLongDesc string = `Start an interactive chat session.

Every line you enter runs one turn. Press Ctrl+C while an answer streams to
cancel the turn; the partial answer is kept and marked as aborted. Press
Ctrl+C at the prompt, enter /exit or hit Ctrl+D to quit.

Commands inside the chat:
  /new     start a new session
  /exit    quit

Examples:
  turnstream chat
  turnstream chat --web
  turnstream chat --session 2f1c...`

const chatShortDesc string = "Interactive chat with streamed answers"

func newChatCmd(a *app) *cobra.Command {
	flags := &featureFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.apply(cmd, a.settings)
			return runChat(cmd.Context(), a, flags)
		},
	}
	flags.bind(cmd)

	return cmd
}

func runChat(ctx context.Context, a *app, flags *featureFlags) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	eng := client.Engine()
	if flags.sessionID != "" {
		if err := eng.LoadSession(flags.sessionID); err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
	}

	stop := cancelOnInterrupt(client, true)
	defer stop()

	sess := eng.Session()
	fmt.Printf("\n  %s %s %s\n", keyStyle.Render("Session:"), sess.ID, dimStyle.Render(fmt.Sprintf("(%d turns)", sess.Len())))
	fmt.Printf("  %s\n\n", dimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			return nil
		case "/new":
			sess, err := eng.NewSession()
			if err != nil {
				return err
			}
			fmt.Printf("  %s %s\n\n", keyStyle.Render("Session:"), sess.ID)
			continue
		}

		if _, err := eng.Execute(ctx, input); err != nil && !errors.Is(err, engine.ErrCancelled) {
			fmt.Fprintf(os.Stderr, "\n  %s %v\n", failStyle.Render("✗"), err)
		}
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// cancelOnInterrupt maps Ctrl+C to cancelling the in-flight turn. When no
// turn runs and exitIdle is set, the process exits.
func cancelOnInterrupt(client *turnstream.Client, exitIdle bool) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				if !client.Cancel() && exitIdle {
					_ = client.Close()
					fmt.Println()
					os.Exit(130)
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
