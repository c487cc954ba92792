package panel

import (
	"encoding/json"
	"reflect"
	"testing"

	"slotboard/models"
)

func samplePanel() (models.Panel, []models.Slot) {
	p := models.Panel{PanelID: "p1", Title: "Friday Convoy", Image: "https://img.example/banner.png"}
	slots := []models.Slot{
		{SlotID: "s3", PanelID: "p1", Number: 3, Status: models.StatusApproved,
			Occupant: &models.Occupant{UserID: "u2", VTCName: "VTC-Bravo"}},
		{SlotID: "s1", PanelID: "p1", Number: 1, Status: models.StatusOpen},
		{SlotID: "s2", PanelID: "p1", Number: 2, Status: models.StatusPending,
			Occupant: &models.Occupant{UserID: "u1", VTCName: "VTC-Alpha"}},
	}
	return p, slots
}

func TestRenderIsPure(t *testing.T) {
	p, slots := samplePanel()

	first := Render(p, slots)
	second := Render(p, slots)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("render of identical input differs")
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatal("render output not byte-identical")
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	p, slots := samplePanel()
	before := make([]models.Slot, len(slots))
	copy(before, slots)

	Render(p, slots)

	if !reflect.DeepEqual(before, slots) {
		t.Fatal("render reordered or mutated its input")
	}
}

func TestRenderStatusMapping(t *testing.T) {
	p, slots := samplePanel()
	view := Render(p, slots)

	if len(view.Slots) != 3 {
		t.Fatalf("expected 3 slot views, got %d", len(view.Slots))
	}

	// Ordered by slot number regardless of input order.
	for i, want := range []int{1, 2, 3} {
		if view.Slots[i].Number != want {
			t.Fatalf("slot order: got %d at %d, want %d", view.Slots[i].Number, i, want)
		}
	}

	open, pending, approved := view.Slots[0], view.Slots[1], view.Slots[2]
	if !open.Enabled {
		t.Error("open slot must be enabled")
	}
	if open.Label != "Slot 1: Available" {
		t.Errorf("open label = %q", open.Label)
	}
	if pending.Enabled || approved.Enabled {
		t.Error("pending and approved slots must be disabled")
	}
	if pending.Label != "Slot 2: Pending — VTC-Alpha" {
		t.Errorf("pending label = %q", pending.Label)
	}
	if approved.Label != "Slot 3: Booked — VTC-Bravo" {
		t.Errorf("approved label = %q", approved.Label)
	}
}

func TestRenderPendingWithoutVTCName(t *testing.T) {
	p := models.Panel{PanelID: "p1"}
	slots := []models.Slot{
		{Number: 1, Status: models.StatusPending, Occupant: &models.Occupant{UserID: "u1"}},
	}

	view := Render(p, slots)
	if view.Slots[0].Label != "Slot 1: Pending" {
		t.Errorf("label without VTC name = %q", view.Slots[0].Label)
	}
}
