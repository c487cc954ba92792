// Package panel derives display models from slot state and keeps
// published panels in sync with the store.
package panel

import (
	"fmt"
	"sort"

	"slotboard/models"
)

// Render derives the display model for a panel. Pure: no I/O, and
// identical input always produces identical output. Rendered text is a
// lossy projection — nothing is ever parsed back out of it.
func Render(p models.Panel, slots []models.Slot) models.ViewModel {
	ordered := make([]models.Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	views := make([]models.SlotView, 0, len(ordered))
	for _, s := range ordered {
		views = append(views, models.SlotView{
			Number:  s.Number,
			Label:   slotLabel(s),
			Enabled: s.Status == models.StatusOpen,
		})
	}

	return models.ViewModel{
		PanelID: p.PanelID,
		Title:   p.Title,
		Image:   p.Image,
		Slots:   views,
	}
}

func slotLabel(s models.Slot) string {
	occupant := ""
	if s.Occupant != nil && s.Occupant.VTCName != "" {
		occupant = " — " + s.Occupant.VTCName
	}
	switch s.Status {
	case models.StatusPending:
		return fmt.Sprintf("Slot %d: Pending%s", s.Number, occupant)
	case models.StatusApproved:
		return fmt.Sprintf("Slot %d: Booked%s", s.Number, occupant)
	default:
		return fmt.Sprintf("Slot %d: Available", s.Number)
	}
}
