package panel

import (
	"context"
	"log"
	"time"

	"slotboard/models"
	"slotboard/slotstore"
)

// Surface is an external display the rendered panel is pushed to: the
// websocket hub, a Discord message, anything that can show a ViewModel.
type Surface interface {
	Push(ctx context.Context, panel models.Panel, view models.ViewModel) error
}

// Synchronizer re-renders panels after transitions and on a periodic tick.
// The tick is the safety net: a refresh lost to a flaky surface self-heals
// within one interval.
type Synchronizer struct {
	store    slotstore.Store
	surfaces []Surface
	interval time.Duration
}

func NewSynchronizer(store slotstore.Store, interval time.Duration, surfaces ...Surface) *Synchronizer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Synchronizer{store: store, surfaces: surfaces, interval: interval}
}

// OnTransition refreshes one panel in the background. Callers are mid
// transition; nothing here may block or fail them.
func (s *Synchronizer) OnTransition(panelID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.refresh(ctx, panelID)
	}()
}

// Run drives the reconciliation tick until ctx is cancelled.
func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			panels, err := s.store.Panels(ctx)
			if err != nil {
				log.Println("panel sync tick, listing panels failed:", err)
				continue
			}
			for _, p := range panels {
				s.refresh(ctx, p.PanelID)
			}
		}
	}
}

func (s *Synchronizer) refresh(ctx context.Context, panelID string) {
	panel, err := s.store.Panel(ctx, panelID)
	if err != nil {
		log.Println("panel refresh, panel lookup failed:", err)
		return
	}
	slots, err := s.store.Snapshot(ctx, panelID)
	if err != nil {
		log.Println("panel refresh, snapshot failed:", err)
		return
	}

	view := Render(*panel, slots)
	for _, surface := range s.surfaces {
		if err := surface.Push(ctx, *panel, view); err != nil {
			log.Printf("panel push failed for %s: %v", panelID, err)
		}
	}
}
