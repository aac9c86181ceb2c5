// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package cli implements the Canvio command line view layer.
//
// # Architecture
//
// Commands here own no business logic: every action delegates to the
// session store, the canvas client, or the workspace, and renders the
// resulting state. Navigation of the web client ("go to dashboard",
// "back to login") becomes plain command output.
package cli

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/canvio/canvio/internal/canvas"
	"github.com/canvio/canvio/internal/identity"
	"github.com/canvio/canvio/internal/platform/config"
	"github.com/canvio/canvio/internal/platform/constants"
	"github.com/canvio/canvio/internal/platform/snapshot"
	"github.com/canvio/canvio/internal/profile"
	"github.com/canvio/canvio/internal/session"
)

// workspaceKey is the filename holding the local node-editor state.
const workspaceKey = "workspace.json"

// app bundles the wired components every command reaches for.
type app struct {
	cfg        *config.Client
	store      *session.Store
	canvases   *canvas.RESTClient
	workspaces snapshot.Store
}

// buildApp wires the full client dependency graph once per invocation.
func buildApp() (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))

	httpClient := &http.Client{}

	provider := identity.NewRESTProvider(cfg.APIBaseURL, httpClient)
	federated := identity.NewOIDCProvider(identity.OIDCConfig{
		Issuer:         cfg.OIDCIssuer,
		ClientID:       cfg.GoogleClientID,
		ClientSecret:   cfg.GoogleClientSecret,
		CallbackPort:   cfg.OAuthCallbackPort,
		BackendBaseURL: cfg.APIBaseURL,
	}, httpClient)

	// The syncer authenticates with the session token; the store is built
	// after it, so the token is read lazily through the closure.
	var store *session.Store
	syncer := profile.NewRESTSyncer(cfg.APIBaseURL, func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	}, httpClient)

	store = session.NewStore(session.Config{
		Provider:  provider,
		Federated: federated,
		Syncer:    syncer,
		Snapshots: snapshot.NewFileStore(cfg.StateDir, constants.SnapshotKey),
		Logger:    logger,
	})

	return &app{
		cfg:        cfg,
		store:      store,
		canvases:   canvas.NewRESTClient(cfg.APIBaseURL, store.Token, httpClient),
		workspaces: snapshot.NewFileStore(cfg.StateDir, workspaceKey),
	}, nil
}

// requireSession fails fast for commands that only make sense signed in.
func (a *app) requireSession() error {
	if !a.store.Snapshot().SignedIn() {
		return fmt.Errorf("not signed in (run 'canvio login' first)")
	}
	return nil
}

// NewRootCommand assembles the full command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "canvio",
		Short:         "Canvio collaborative canvas client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				log.Println("Error loading .env file, skipping")
			}
		},
	}

	root.AddCommand(
		newLoginCommand(),
		newSignupCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newResetPasswordCommand(),
		newUpdateCommand(),
		newCanvasCommand(),
		newWorkspaceCommand(),
	)

	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
