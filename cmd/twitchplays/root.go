package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/twitchplays/internal/app"
	"github.com/dshills/twitchplays/internal/config"
	"github.com/dshills/twitchplays/internal/hotkey/system"
	"github.com/dshills/twitchplays/internal/logging"
)

// configEnv names the variable consulted when no config file is given.
const configEnv = "TWITCHPLAYS_CONFIG"

// Exit codes returned when the config file is missing.
const (
	exitNoConfig      = 1
	exitConfigCreated = 2
)

// rootFlags are the flags shared by every command.
type rootFlags struct {
	debug bool
}

// newRootCommand creates the twitchplays command tree.
func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "twitchplays [config_file]",
		Short: "Turn Twitch chat messages into key presses",
		Long: `twitchplays joins a Twitch channel and presses a key on this machine for
every chat message that matches a configured command. A global hotkey turns
chat control on and off.

The config file defaults to config.toml in the working directory (or
$TWITCHPLAYS_CONFIG). When it does not exist you are offered a template.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, configPath(args), flags)
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newTokenCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// configPath picks the config file from the arguments, then the
// environment, then the default name.
func configPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	return config.DefaultFileName
}

func runBot(cmd *cobra.Command, path string, flags *rootFlags) error {
	if !config.Exists(path) {
		return offerTemplate(cmd.InOrStdin(), cmd.OutOrStdout(), path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, flags, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if err := cfg.ResolveToken(newStore()); err != nil {
		return err
	}
	if cfg.Anonymous() {
		logger.Info("no twitch.username set; joining chat anonymously, bot replies are disabled")
	}

	application, err := app.New(app.Options{
		Config:         cfg,
		Logger:         logger,
		RegisterHotkey: system.Register,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func newLogger(cfg *config.Config, flags *rootFlags, out io.Writer) (*slog.Logger, error) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.Output = out
	if flags.debug {
		lc.Level = "debug"
		lc.AddSource = true
	}
	return logging.New(lc)
}

// offerTemplate asks whether to create path from the example config. Either
// way the bot does not start: declining exits 1, creating the file exits 2
// so the user can fill it in first.
func offerTemplate(in io.Reader, out io.Writer, path string) error {
	fmt.Fprintf(out, "Config file %s not found.\n", path)
	fmt.Fprint(out, "Create a template config file? [Y/n]: ")

	answer, err := readLine(in)
	if err != nil && !errors.Is(err, io.EOF) {
		return &exitError{code: exitNoConfig, err: err}
	}
	if !confirmed(answer, true) {
		return &exitError{code: exitNoConfig, err: fmt.Errorf("%w: %s", config.ErrFileNotFound, path)}
	}

	if err := config.WriteTemplate(path); err != nil {
		return &exitError{code: exitNoConfig, err: err}
	}
	fmt.Fprintf(out, "Created %s. Set twitch.channel_to_join and your keys, then run twitchplays again.\n", path)
	return &exitError{code: exitConfigCreated}
}

// confirmed interprets a yes/no answer. An empty answer is def.
func confirmed(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readLine reads one line from r without the line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
