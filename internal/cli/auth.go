// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package cli

import (
	"bufio"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/canvio/canvio/internal/platform/sec"
	"github.com/canvio/canvio/internal/session"
)

// newLoginCommand authenticates with email/password or the Google flow.
func newLoginCommand() *cobra.Command {
	var useGoogle bool

	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in to Canvio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			if useGoogle {
				fmt.Fprintln(cmd.OutOrStdout(), "Opening browser for Google sign-in...")
				if err := a.store.LoginWithGoogle(cmd.Context()); err != nil {
					return fmt.Errorf("%s", a.store.Snapshot().Err)
				}
				return printSession(cmd, a.store.Snapshot())
			}

			email := ""
			if len(args) == 1 {
				email = args[0]
			} else {
				email, err = promptLine(cmd, "Email: ")
				if err != nil {
					return err
				}
			}

			password, err := promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			if err := a.store.Login(cmd.Context(), email, password); err != nil {
				// The state carries the user-facing message for every failure.
				return fmt.Errorf("%s", a.store.Snapshot().Err)
			}

			return printSession(cmd, a.store.Snapshot())
		},
	}

	cmd.Flags().BoolVar(&useGoogle, "google", false, "sign in with a Google account")
	return cmd
}

// newSignupCommand creates a fresh account.
func newSignupCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create a Canvio account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			password, err := promptPassword(cmd, "Choose a password: ")
			if err != nil {
				return err
			}

			if err := a.store.Signup(cmd.Context(), name, args[0], password); err != nil {
				return fmt.Errorf("%s", a.store.Snapshot().Err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Account created.")
			return printSession(cmd, a.store.Snapshot())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the email local-part)")
	return cmd
}

// newLogoutCommand clears the persisted session.
func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			a.store.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

// newWhoamiCommand renders the current session, including the token claims
// decoded locally (the token stays opaque for trust purposes).
func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			state := a.store.Snapshot()
			if !state.SignedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}

			if err := printSession(cmd, state); err != nil {
				return err
			}

			if claims, err := sec.DecodeUnverified(state.Token); err == nil && claims.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Session expires: %s\n", claims.ExpiresAt.Time.Local())
			}
			return nil
		},
	}
}

// newResetPasswordCommand triggers the out-of-band reset flow.
func newResetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Send a password reset to the given email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			if err := a.store.ResetPassword(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", a.store.Snapshot().Err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password reset sent to %s.\n", args[0])
			return nil
		},
	}
}

// newUpdateCommand patches the local profile fields.
func newUpdateCommand() *cobra.Command {
	var name, avatar string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			patch := session.UserPatch{}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("avatar") {
				patch.AvatarURL = &avatar
			}
			if patch.Name == nil && patch.AvatarURL == nil {
				return fmt.Errorf("nothing to update (use --name or --avatar)")
			}

			a.store.UpdateUser(patch)
			return printSession(cmd, a.store.Snapshot())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	return cmd
}

// printSession renders the signed-in account line.
func printSession(cmd *cobra.Command, state session.State) error {
	if state.User == nil {
		return fmt.Errorf("no active session")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s> (%s)\n",
		state.User.Name, state.User.Email, state.User.Role)
	return nil
}

// promptLine reads one line from the command's input.
func promptLine(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("cannot read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing when attached to a TTY.
func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("cannot read password: %w", err)
		}
		return string(raw), nil
	}

	// Non-interactive input (tests, pipes) falls back to a plain line read.
	return promptLine(cmd, "")
}
