package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/twitchplays/internal/app"
	"github.com/dshills/twitchplays/internal/command"
	"github.com/dshills/twitchplays/internal/config"
	"github.com/dshills/twitchplays/internal/hotkey/system"
)

// newInitCommand creates the init subcommand.
func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example config file",
		Long: `Write the example config to path (default config.toml). A .yaml or .yml
extension writes the YAML template. An existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}

// newCheckCommand creates the check subcommand.
func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [config_file]",
		Short: "Validate a config file without connecting to chat",
		Long: `Load the config, then check that the commandset builds, every key name is
one the emulator can press, the toggle hotkey parses and the emulator backend
exists. Nothing is pressed and no connection is made.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(args)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := app.Check(cfg); err != nil {
				return err
			}

			table, err := command.NewTable(cfg.Keys, cfg.Bot.CaseInsensitive)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", path)
			fmt.Fprintf(out, "  channel:  %s\n", orNone(cfg.Twitch.ChannelToJoin))
			fmt.Fprintf(out, "  commands: %d (%s)\n", table.Len(), strings.Join(table.Commands(), ", "))
			fmt.Fprintf(out, "  workers:  %d\n", cfg.Bot.InputThreads)
			hk := cfg.Hotkeys.ToggleAllowTwitchplaysCommands
			if !system.Available {
				hk += " (not grabbed by this build)"
			}
			fmt.Fprintf(out, "  hotkey:   %s\n", hk)
			return nil
		},
	}
}

// newVersionCommand creates the version subcommand.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "twitchplays %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
