// Package booking implements the slot booking state machine:
// open → pending → approved, with reject returning a slot to open.
// Correctness under concurrent submissions and decisions is delegated
// entirely to the store's conditional transition.
package booking

import (
	"context"
	"errors"
	"log"

	"slotboard/models"
	"slotboard/slotstore"
)

var (
	// ErrSlotUnavailable: the booking lost a race or the slot was already
	// taken. A definitive outcome — do not retry on the same slot.
	ErrSlotUnavailable = errors.New("slot no longer available")

	// ErrStaleDecision: the slot left pending before this decision landed,
	// either through a racing staff member or a cleared panel.
	ErrStaleDecision = errors.New("decision no longer applies")

	// ErrNotAuthorized: caller lacks the staff capability.
	ErrNotAuthorized = errors.New("not authorized")
)

// Notifier delivers best-effort notifications. Implementations must never
// return an error that could fail the triggering transition.
type Notifier interface {
	StaffRequest(ctx context.Context, panel models.Panel, slot models.Slot)
	Outcome(ctx context.Context, userID string, panel models.Panel, slot models.Slot, approved bool)
}

// Refresher is asked to re-push a panel's rendering after a transition.
type Refresher interface {
	OnTransition(panelID string)
}

// Ack reports a successful operation back to the front-end.
type Ack struct {
	SlotID string        `json:"slotid"`
	Number int           `json:"number"`
	Status models.Status `json:"status"`
}

type Workflow struct {
	store   slotstore.Store
	notify  Notifier
	refresh Refresher
}

func NewWorkflow(store slotstore.Store, notify Notifier, refresh Refresher) *Workflow {
	return &Workflow{store: store, notify: notify, refresh: refresh}
}

// SubmitBooking is the sole mutation surface for end users. Exactly one of
// N concurrent submissions for the same open slot wins; the rest get
// ErrSlotUnavailable.
func (wf *Workflow) SubmitBooking(ctx context.Context, req models.BookingRequest) (*Ack, error) {
	slot, err := wf.store.Slot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	occupant := &models.Occupant{
		UserID:      req.UserID,
		VTCName:     req.VTCName,
		VTCRole:     req.VTCRole,
		VTCLink:     req.VTCLink,
		DriverCount: req.DriverCount,
	}
	ok, err := wf.store.TryTransition(ctx, req.SlotID, models.StatusOpen, models.StatusPending, occupant, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSlotUnavailable
	}

	wf.afterTransition(ctx, slot.PanelID, func(panel models.Panel) {
		booked := *slot
		booked.Status = models.StatusPending
		booked.Occupant = occupant
		wf.notify.StaffRequest(ctx, panel, booked)
	})

	return &Ack{SlotID: slot.SlotID, Number: slot.Number, Status: models.StatusPending}, nil
}

// Decide applies a staff approve or reject. The loser of a racing pair is
// told explicitly via ErrStaleDecision; a decision is never applied twice.
func (wf *Workflow) Decide(ctx context.Context, dec models.Decision, staff bool) (*Ack, error) {
	if !staff {
		return nil, ErrNotAuthorized
	}

	slot, err := wf.store.Slot(ctx, dec.SlotID)
	if err != nil {
		if errors.Is(err, slotstore.ErrSlotNotFound) {
			return nil, ErrStaleDecision
		}
		return nil, err
	}

	var to models.Status
	switch dec.Outcome {
	case models.OutcomeApprove:
		to = models.StatusApproved
	case models.OutcomeReject:
		to = models.StatusOpen
	default:
		return nil, ErrStaleDecision
	}

	ok, err := wf.store.TryTransition(ctx, dec.SlotID, models.StatusPending, to, nil, dec.StaffID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleDecision
	}

	// Occupant read from the pre-decision snapshot: reject clears it on the
	// stored slot, but the requester still gets told the outcome.
	if slot.Occupant != nil {
		userID := slot.Occupant.UserID
		wf.afterTransition(ctx, slot.PanelID, func(panel models.Panel) {
			decided := *slot
			decided.Status = to
			wf.notify.Outcome(ctx, userID, panel, decided, to == models.StatusApproved)
		})
	} else {
		wf.afterTransition(ctx, slot.PanelID, nil)
	}

	return &Ack{SlotID: slot.SlotID, Number: slot.Number, Status: to}, nil
}

// ResetSlot forces a slot back to open from either pending or approved.
// Staff-only; goes through the same conditional transition as everything
// else rather than a bypass write.
func (wf *Workflow) ResetSlot(ctx context.Context, staffID, slotID string, staff bool) (*Ack, error) {
	if !staff {
		return nil, ErrNotAuthorized
	}

	slot, err := wf.store.Slot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	ok, err := wf.store.TryTransition(ctx, slotID, models.StatusPending, models.StatusOpen, nil, staffID)
	if err != nil {
		return nil, err
	}
	if !ok {
		ok, err = wf.store.TryTransition(ctx, slotID, models.StatusApproved, models.StatusOpen, nil, staffID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		// Already open; treat as done.
		return &Ack{SlotID: slot.SlotID, Number: slot.Number, Status: models.StatusOpen}, nil
	}

	wf.afterTransition(ctx, slot.PanelID, nil)
	return &Ack{SlotID: slot.SlotID, Number: slot.Number, Status: models.StatusOpen}, nil
}

// CreatePanel registers a panel and its slot numbers, all starting open.
func (wf *Workflow) CreatePanel(ctx context.Context, panel models.Panel, numbers []int) ([]string, error) {
	ids, err := wf.store.CreateSlots(ctx, panel, numbers)
	if err != nil {
		return nil, err
	}
	wf.refresh.OnTransition(panel.PanelID)
	return ids, nil
}

// ClearPanel removes a panel and every slot in it. Idempotent.
func (wf *Workflow) ClearPanel(ctx context.Context, panelID string, staff bool) error {
	if !staff {
		return ErrNotAuthorized
	}
	return wf.store.ClearPanel(ctx, panelID)
}

// afterTransition runs the fire-and-forget side effects of a successful
// transition: notification (when given) and the panel refresh. Neither may
// fail the transition itself.
func (wf *Workflow) afterTransition(ctx context.Context, panelID string, notifyFn func(models.Panel)) {
	if notifyFn != nil {
		panel, err := wf.store.Panel(ctx, panelID)
		if err != nil {
			log.Println("notification skipped, panel lookup failed:", err)
		} else {
			notifyFn(*panel)
		}
	}
	wf.refresh.OnTransition(panelID)
}
