// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package canvas

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// NodeType classifies what a workspace node holds.
type NodeType string

const (
	NodeTask NodeType = "task"
	NodeNote NodeType = "note"
	NodeFile NodeType = "file"
)

// Placement bounds for freshly added nodes.
const (
	placementWidth  = 500
	placementHeight = 300
)

// Node is a single item placed on the workspace.
type Node struct {
	// ID is sequential per workspace ("node-1", "node-2", ...).
	ID string `json:"id"`

	Type    NodeType `json:"type"`
	Content string   `json:"content"`

	// X and Y are the placement coordinates in canvas units.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Workspace is the in-memory node editor backing a single canvas view.
//
// # Concurrency
//
// Safe for concurrent use; every accessor returns copies.
type Workspace struct {
	mu     sync.Mutex
	nodes  []Node
	nextID int
	rand   func() float64
}

// NewWorkspace creates an empty workspace with random node placement.
func NewWorkspace() *Workspace {
	return &Workspace{rand: rand.Float64}
}

// RestoreWorkspace rebuilds a workspace from previously saved nodes. The ID
// counter resumes past the highest restored ID so removed IDs stay retired.
func RestoreWorkspace(nodes []Node) *Workspace {
	w := NewWorkspace()
	w.nodes = make([]Node, len(nodes))
	copy(w.nodes, nodes)

	for _, node := range nodes {
		var n int
		if _, err := fmt.Sscanf(node.ID, "node-%d", &n); err == nil && n > w.nextID {
			w.nextID = n
		}
	}
	return w
}

// AddNode places a new node of the given type and returns it.
//
// Placement is random within the visible top-left region so consecutive
// nodes do not stack exactly on top of each other.
func (w *Workspace) AddNode(nodeType NodeType, content string) Node {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	node := Node{
		ID:      fmt.Sprintf("node-%d", w.nextID),
		Type:    nodeType,
		Content: content,
		X:       w.rand() * placementWidth,
		Y:       w.rand() * placementHeight,
	}
	w.nodes = append(w.nodes, node)
	return node
}

// SetNodeContent replaces the content of the node with the given ID.
// It reports whether the node exists.
func (w *Workspace) SetNodeContent(id, content string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.nodes {
		if w.nodes[i].ID == id {
			w.nodes[i].Content = content
			return true
		}
	}
	return false
}

// RemoveNode deletes the node with the given ID, preserving the order of
// the remaining nodes. It reports whether the node existed.
//
// Removed IDs are never reissued; the counter only moves forward.
func (w *Workspace) RemoveNode(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.nodes {
		if w.nodes[i].ID == id {
			w.nodes = append(w.nodes[:i], w.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Nodes returns a copy of all nodes in insertion order.
func (w *Workspace) Nodes() []Node {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Node, len(w.nodes))
	copy(out, w.nodes)
	return out
}
