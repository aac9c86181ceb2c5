// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canvio/canvio/pkg/pagination"
)

// newCanvasCommand groups the dashboard operations.
func newCanvasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canvas",
		Short: "Manage canvases on the dashboard",
	}

	cmd.AddCommand(
		newCanvasListCommand(),
		newCanvasCreateCommand(),
		newCanvasRenameCommand(),
		newCanvasLockCommand(),
		newCanvasUnlockCommand(),
		newCanvasDeleteCommand(),
	)
	return cmd
}

func newCanvasListCommand() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your canvases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			canvases, meta, err := a.canvases.List(cmd.Context(), pagination.Params{
				Page:  page,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			if len(canvases) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No canvases yet. Create one with 'canvio canvas create'.")
				return nil
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tTEMPLATE\tLOCKED\tUPDATED")
			for _, c := range canvases {
				locked := "-"
				if c.Locked {
					locked = "by " + c.LockedBy
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					c.ID, c.Name, c.Template, locked, c.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			if err := writer.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d total)\n",
				meta.Page, meta.TotalPages, meta.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "results per page")
	return cmd
}

func newCanvasCreateCommand() *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			created, err := a.canvases.Create(cmd.Context(), args[0], template)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&template, "template", "blank", "starting template (blank, kanban, retro)")
	return cmd
}

func newCanvasRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a canvas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.canvases.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Renamed.")
			return nil
		},
	}
}

func newCanvasLockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lock <id>",
		Short: "Lock a canvas against edits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.canvases.Lock(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Locked.")
			return nil
		},
	}
}

func newCanvasUnlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <id>",
		Short: "Release a canvas lock you hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.canvases.Unlock(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Unlocked.")
			return nil
		},
	}
}

func newCanvasDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a canvas you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			if !force {
				answer, err := promptLine(cmd, fmt.Sprintf("Delete canvas %s? [y/N] ", args[0]))
				if err != nil {
					return err
				}
				if answer != "y" && answer != "Y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := a.canvases.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	return cmd
}
