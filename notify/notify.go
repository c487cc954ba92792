// Package notify delivers best-effort notifications for booking
// transitions. Delivery failures are logged and swallowed; a notification
// is never allowed to fail the transition that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"slotboard/discord"
	"slotboard/models"
	"slotboard/rdx"
)

// Channel is the Redis pub/sub channel front-ends subscribe to.
const Channel = "booking-notifications"

// Payload is the wire shape published on the bus.
type Payload struct {
	Kind    string `json:"kind"` // "staff_request" | "outcome"
	Target  string `json:"target"`
	PanelID string `json:"panelid"`
	Slot    int    `json:"slot"`
	Text    string `json:"text"`
}

type Dispatcher struct {
	disc *discord.Client
}

func NewDispatcher(disc *discord.Client) *Dispatcher {
	return &Dispatcher{disc: disc}
}

// StaffRequest tells the staff review surface about a new pending booking,
// with enough submitted detail to decide without extra lookups.
func (d *Dispatcher) StaffRequest(ctx context.Context, panel models.Panel, slot models.Slot) {
	occ := slot.Occupant
	if occ == nil {
		return
	}

	text := fmt.Sprintf("Slot %d booking request: %s (%s), %d drivers, %s",
		slot.Number, occ.VTCName, occ.VTCRole, occ.DriverCount, occ.VTCLink)
	d.publish(Payload{
		Kind:    "staff_request",
		Target:  panel.StaffChan,
		PanelID: panel.PanelID,
		Slot:    slot.Number,
		Text:    text,
	})

	if d.disc != nil && panel.StaffChan != "" {
		embed := discord.Embed{
			Title:       fmt.Sprintf("Slot %d Booking Request", slot.Number),
			Description: text,
			Color:       0xe67e22,
		}
		if _, err := d.disc.SendEmbed(ctx, panel.StaffChan, embed); err != nil {
			log.Println("staff notification failed:", err)
		}
	}
}

// Outcome tells the requester whether their booking was approved.
func (d *Dispatcher) Outcome(ctx context.Context, userID string, panel models.Panel, slot models.Slot, approved bool) {
	text := fmt.Sprintf("Your booking for slot %d was rejected. The slot is open again.", slot.Number)
	title := "Slot Rejected"
	color := 0xe74c3c
	if approved {
		text = fmt.Sprintf("Your booking for slot %d has been approved.", slot.Number)
		title = "Slot Approved"
		color = 0x2ecc71
	}

	d.publish(Payload{
		Kind:    "outcome",
		Target:  userID,
		PanelID: panel.PanelID,
		Slot:    slot.Number,
		Text:    text,
	})

	if d.disc != nil {
		embed := discord.Embed{Title: title, Description: text, Color: color}
		if err := d.disc.SendDM(ctx, userID, embed); err != nil {
			log.Println("requester notification failed:", err)
		}
	}
}

func (d *Dispatcher) publish(p Payload) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Println("notification marshal failed:", err)
		return
	}
	rdx.Publish(context.Background(), Channel, data)
}
