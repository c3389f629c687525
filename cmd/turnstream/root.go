package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hupe1980/turnstream"
	"github.com/hupe1980/turnstream/config"
	"github.com/hupe1980/turnstream/display"
	"github.com/hupe1980/turnstream/logging"
)

const rootLongDesc string = `Turnstream streams prompts through the OpenAI Responses API.

Each prompt becomes a persisted turn. Turns chain to the previous response,
can search a vector store of uploaded files and the web, and can be
cancelled with Ctrl+C while streaming.

Settings are read from config.toml in the config directory and can be
overridden with TURNSTREAM_* environment variables (e.g.
TURNSTREAM_MODEL_SEARCH). A .env file in the working directory is loaded
first.`

const rootShortDesc string = "Turnstream - streaming prompt execution"

// app carries state shared by all subcommands.
type app struct {
	configDir string
	debug     bool

	settings *config.Settings
	logger   logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "turnstream",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", ".turnstream", "Directory holding config.toml")
	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddCommand(newChatCmd(a))
	cmd.AddCommand(newAskCmd(a))
	cmd.AddCommand(newFileCmd(a))
	cmd.AddCommand(newStoreCmd(a))
	cmd.AddCommand(newAttachCmd(a))
	cmd.AddCommand(newDetachCmd(a))
	cmd.AddCommand(newSessionsCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	s, err := config.Load(a.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.settings = s

	level := logging.ParseLevel(s.Log.Level)
	if a.debug {
		level = logging.LogLevelDebug
	}
	if s.Log.Format == "pretty" {
		a.logger = logging.NewPrettyLogger(level, os.Stderr)
	} else {
		a.logger = logging.NewSlogLogger(level, s.Log.Format, a.debug)
	}
	return nil
}

// client builds a turnstream client writing answers to stdout.
func (a *app) client(optFns ...func(o *turnstream.Options)) (*turnstream.Client, error) {
	return turnstream.New(append([]func(o *turnstream.Options){
		func(o *turnstream.Options) {
			o.Settings = a.settings
			o.Logger = a.logger
			o.Output = display.NewTerminal(os.Stdout)
		},
	}, optFns...)...)
}

// featureFlags binds the per-invocation feature flags shared by chat and ask.
type featureFlags struct {
	web         bool
	reasoning   bool
	noFiles     bool
	sessionID   string
	instruction string
}

func (f *featureFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.web, "web", "w", false, "Attach the web search tool")
	cmd.Flags().BoolVarP(&f.reasoning, "reasoning", "r", false, "Use the reasoning model (no tools)")
	cmd.Flags().BoolVar(&f.noFiles, "no-file-search", false, "Do not attach the file search tool")
	cmd.Flags().StringVarP(&f.sessionID, "session", "s", "", "Resume a stored session")
	cmd.Flags().StringVarP(&f.instruction, "instructions", "i", "", "Override the instruction template")
}

// apply overrides settings with flags the user actually set.
func (f *featureFlags) apply(cmd *cobra.Command, s *config.Settings) {
	if cmd.Flags().Changed("web") {
		s.Features.WebSearch = f.web
	}
	if cmd.Flags().Changed("reasoning") {
		s.Features.Reasoning = f.reasoning
	}
	if cmd.Flags().Changed("no-file-search") {
		s.Features.DisableFileSearch = f.noFiles
	}
	if cmd.Flags().Changed("instructions") {
		s.Instructions.Text = f.instruction
	}
}
