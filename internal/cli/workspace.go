// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canvio/canvio/internal/canvas"
	"github.com/canvio/canvio/internal/platform/snapshot"
)

// newWorkspaceCommand groups the local node editor operations. The workspace
// lives entirely on disk next to the session snapshot; nothing here talks to
// the backend.
func newWorkspaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Edit the local canvas workspace",
	}

	cmd.AddCommand(
		newWorkspaceListCommand(),
		newWorkspaceAddCommand(),
		newWorkspaceEditCommand(),
		newWorkspaceRemoveCommand(),
	)
	return cmd
}

// loadWorkspace restores the saved node set, or starts empty when no
// workspace has been saved yet.
func (a *app) loadWorkspace() (*canvas.Workspace, error) {
	var nodes []canvas.Node
	err := a.workspaces.Load(&nodes)
	if errors.Is(err, snapshot.ErrNotFound) {
		return canvas.NewWorkspace(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load workspace: %w", err)
	}
	return canvas.RestoreWorkspace(nodes), nil
}

// saveWorkspace persists the current node set.
func (a *app) saveWorkspace(workspace *canvas.Workspace) error {
	if err := a.workspaces.Save(workspace.Nodes()); err != nil {
		return fmt.Errorf("cannot save workspace: %w", err)
	}
	return nil
}

func newWorkspaceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspace nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			workspace, err := a.loadWorkspace()
			if err != nil {
				return err
			}

			nodes := workspace.Nodes()
			if len(nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Workspace is empty.")
				return nil
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tTYPE\tPOSITION\tCONTENT")
			for _, node := range nodes {
				fmt.Fprintf(writer, "%s\t%s\t(%.0f, %.0f)\t%s\n",
					node.ID, node.Type, node.X, node.Y, node.Content)
			}
			return writer.Flush()
		},
	}
}

func newWorkspaceAddCommand() *cobra.Command {
	var nodeType string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a node to the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			kind := canvas.NodeType(nodeType)
			switch kind {
			case canvas.NodeTask, canvas.NodeNote, canvas.NodeFile:
			default:
				return fmt.Errorf("unknown node type %q (want task, note, or file)", nodeType)
			}

			workspace, err := a.loadWorkspace()
			if err != nil {
				return err
			}

			node := workspace.AddNode(kind, args[0])
			if err := a.saveWorkspace(workspace); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s at (%.0f, %.0f)\n", node.ID, node.X, node.Y)
			return nil
		},
	}

	cmd.Flags().StringVar(&nodeType, "type", "note", "node type (task, note, file)")
	return cmd
}

func newWorkspaceEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <node-id> <content>",
		Short: "Replace a node's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			workspace, err := a.loadWorkspace()
			if err != nil {
				return err
			}

			if !workspace.SetNodeContent(args[0], args[1]) {
				return fmt.Errorf("no node %q in the workspace", args[0])
			}
			if err := a.saveWorkspace(workspace); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Updated.")
			return nil
		},
	}
}

func newWorkspaceRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <node-id>",
		Short: "Remove a node from the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			workspace, err := a.loadWorkspace()
			if err != nil {
				return err
			}

			if !workspace.RemoveNode(args[0]) {
				return fmt.Errorf("no node %q in the workspace", args[0])
			}
			if err := a.saveWorkspace(workspace); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}
