package slotstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"slotboard/models"
	"slotboard/utils"
)

// MemoryStore keeps slots in process memory behind a single mutex, which
// serializes the check-and-set the same way the Mongo document update
// does. Used in tests and standalone runs without a database.
type MemoryStore struct {
	mu     sync.Mutex
	panels map[string]models.Panel
	slots  map[string]*models.Slot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		panels: make(map[string]models.Panel),
		slots:  make(map[string]*models.Slot),
	}
}

func (s *MemoryStore) CreateSlots(ctx context.Context, panel models.Panel, numbers []int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range s.slots {
		if slot.PanelID == panel.PanelID {
			return nil, ErrPanelExists
		}
	}

	panel.CreatedAt = time.Now().UTC()
	s.panels[panel.PanelID] = panel

	ids := make([]string, 0, len(numbers))
	for _, n := range numbers {
		id := utils.GenerateRandomDigitString(14)
		ids = append(ids, id)
		s.slots[id] = &models.Slot{
			SlotID:  id,
			PanelID: panel.PanelID,
			Number:  n,
			Status:  models.StatusOpen,
		}
	}
	return ids, nil
}

func (s *MemoryStore) Panel(ctx context.Context, panelID string) (*models.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	panel, ok := s.panels[panelID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &panel, nil
}

func (s *MemoryStore) Panels(ctx context.Context) ([]models.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Panel, 0, len(s.panels))
	for _, p := range s.panels {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) Slot(ctx context.Context, slotID string) (*models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (s *MemoryStore) Snapshot(ctx context.Context, panelID string) ([]models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Slot
	for _, slot := range s.slots {
		if slot.PanelID == panelID {
			out = append(out, *slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *MemoryStore) TryTransition(ctx context.Context, slotID string, from, to models.Status, occupant *models.Occupant, actor string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return false, nil
	}
	if slot.Status != from {
		return false, nil
	}

	slot.Status = to
	now := time.Now().UTC()
	switch to {
	case models.StatusPending:
		slot.Occupant = occupant
		slot.BookedAt = now
	case models.StatusOpen:
		slot.Occupant = nil
	}
	if actor != "" {
		slot.DecidedBy = actor
		slot.DecidedAt = now
	}
	return true, nil
}

func (s *MemoryStore) SetDisplayHandle(ctx context.Context, panelID, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	panel, ok := s.panels[panelID]
	if !ok {
		return ErrSlotNotFound
	}
	panel.ChannelID = channelID
	panel.MessageID = messageID
	s.panels[panelID] = panel
	return nil
}

func (s *MemoryStore) ClearPanel(ctx context.Context, panelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, slot := range s.slots {
		if slot.PanelID == panelID {
			delete(s.slots, id)
		}
	}
	delete(s.panels, panelID)
	return nil
}
