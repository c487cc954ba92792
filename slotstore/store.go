// Package slotstore owns slot state. Every status change goes through
// TryTransition, a compare-and-swap on the slot's current status; all
// higher-level booking rules reduce to that single primitive.
package slotstore

import (
	"context"
	"errors"

	"slotboard/models"
)

var (
	// ErrPanelExists: CreateSlots called twice without an intervening clear.
	ErrPanelExists = errors.New("panel already exists")

	// ErrSlotNotFound: the referenced slot does not exist.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrStoreUnavailable: the backing store failed or timed out. Distinct
	// from a lost CAS race — callers may retry this one with backoff.
	ErrStoreUnavailable = errors.New("slot store unavailable")
)

// Store is the durable slot table. TryTransition is the only write path
// for slot status; two concurrent callers can never both observe success
// for the same expected status.
type Store interface {
	// CreateSlots registers the panel and initializes one open slot per
	// number. Fails with ErrPanelExists if the panel already has slots.
	CreateSlots(ctx context.Context, panel models.Panel, numbers []int) ([]string, error)

	// Panel returns the panel record, or ErrSlotNotFound if unknown.
	Panel(ctx context.Context, panelID string) (*models.Panel, error)

	// Panels lists every known panel, for the reconciliation tick.
	Panels(ctx context.Context) ([]models.Panel, error)

	// Slot returns a single slot by id, or ErrSlotNotFound.
	Slot(ctx context.Context, slotID string) (*models.Slot, error)

	// Snapshot returns a consistent read of all slots for a panel, ordered
	// by slot number ascending.
	Snapshot(ctx context.Context, panelID string) ([]models.Slot, error)

	// TryTransition atomically moves the slot from `from` to `to`. Returns
	// (false, nil) when the slot's current status is not `from` — the
	// caller lost the race. Moving to pending records the given occupant;
	// moving to open clears the occupant; moving to approved leaves it in
	// place. actor, when non-empty, is recorded as decision metadata.
	TryTransition(ctx context.Context, slotID string, from, to models.Status, occupant *models.Occupant, actor string) (bool, error)

	// SetDisplayHandle persists the published panel message handle so a
	// restarted process can keep refreshing the same rendering.
	SetDisplayHandle(ctx context.Context, panelID, channelID, messageID string) error

	// ClearPanel deletes the panel and all its slots. Idempotent.
	ClearPanel(ctx context.Context, panelID string) error
}
