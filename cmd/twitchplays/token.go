package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/twitchplays/internal/credential"
)

// newStore is replaced in tests.
var newStore = func() credential.Store {
	return credential.NewKeyringStore()
}

// newTokenCommand creates the token command group.
func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the Twitch OAuth token in the system keyring",
		Long: `Store the bot account's OAuth token in the system keyring (Keychain on macOS,
Credential Manager on Windows, Secret Service on Linux) so it does not have to
live in the config file. The token is used when twitch.token is empty.`,
	}

	cmd.AddCommand(newTokenSetCommand())
	cmd.AddCommand(newTokenDeleteCommand())
	return cmd
}

func newTokenSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <username>",
		Short: "Store a token for username",
		Long: `Store a token for username. On a terminal the token is read without echo;
otherwise it is read from the first line of stdin:

  printf '%s' "$TWITCH_TOKEN" | twitchplays token set mybot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			token, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			if err := newStore().Set(username, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored for %s\n", username)
			return nil
		},
	}
}

func newTokenDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove the stored token for username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if err := newStore().Delete(username); err != nil {
				if errors.Is(err, credential.ErrNotFound) {
					return fmt.Errorf("no token stored for %s", username)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token deleted for %s\n", username)
			return nil
		},
	}
}

// readToken prompts on a terminal and reads a hidden line; any other input
// is read as a plain line.
func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "OAuth token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := readLine(in)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
