// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package canvas holds the dashboard-side canvas model and the node
// workspace the editor operates on.
package canvas

import (
	"time"
)

// Canvas is a board on the user's dashboard.
type Canvas struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	OwnerID string `json:"owner_id"`

	// Members lists the account IDs invited to this canvas, owner included.
	Members []string `json:"members,omitempty"`

	// Locked prevents edits; LockedBy records who flipped the lock and is
	// empty while unlocked. Only the locker is offered the unlock action.
	Locked   bool   `json:"locked"`
	LockedBy string `json:"locked_by,omitempty"`

	// Template names the starting layout ("blank", "kanban", "retro", ...).
	Template string `json:"template,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// CanUnlock reports whether the given account is offered the unlock action.
func (c Canvas) CanUnlock(accountID string) bool {
	return c.Locked && c.LockedBy == accountID
}
