// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvio/canvio/internal/canvas"
	"github.com/canvio/canvio/internal/platform/snapshot"
)

/*
TestWorkspacePersistenceRoundTrip verifies the node editor state survives a
save/load cycle through the on-disk store: a missing file yields an empty
workspace, saved nodes come back verbatim, and the ID counter resumes past
the restored nodes.
*/
func TestWorkspacePersistenceRoundTrip(t *testing.T) {
	a := &app{workspaces: snapshot.NewFileStore(t.TempDir(), workspaceKey)}

	// ── 1. Nothing saved yet ──
	workspace, err := a.loadWorkspace()
	require.NoError(t, err)
	require.Empty(t, workspace.Nodes())

	// ── 2. Save and restore ──
	added := workspace.AddNode(canvas.NodeNote, "sketch the header")
	require.NoError(t, a.saveWorkspace(workspace))

	restored, err := a.loadWorkspace()
	require.NoError(t, err)
	nodes := restored.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, added, nodes[0])

	// ── 3. The counter keeps moving forward ──
	next := restored.AddNode(canvas.NodeTask, "wire the footer")
	assert.Equal(t, "node-2", next.ID)
}
