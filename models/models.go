package models

import "time"

// Slot status values. A slot starts open, moves to pending when a booking
// is submitted, and either becomes approved or returns to open on reject.
type Status string

const (
	StatusOpen     Status = "open"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Panel is a named group of slots tied to one external event.
type Panel struct {
	PanelID   string    `json:"panelid" bson:"panelid"`
	EventID   string    `json:"eventid" bson:"eventid"`
	Title     string    `json:"title" bson:"title"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	ChannelID string    `json:"channelId,omitempty" bson:"channelId,omitempty"`
	MessageID string    `json:"messageId,omitempty" bson:"messageId,omitempty"`
	StaffChan string    `json:"staffChannel,omitempty" bson:"staffChannel,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Occupant identifies who holds a slot plus the details they submitted.
type Occupant struct {
	UserID      string `json:"userId" bson:"userId"`
	VTCName     string `json:"vtcName,omitempty" bson:"vtcName,omitempty"`
	VTCRole     string `json:"vtcRole,omitempty" bson:"vtcRole,omitempty"`
	VTCLink     string `json:"vtcLink,omitempty" bson:"vtcLink,omitempty"`
	DriverCount int    `json:"driverCount,omitempty" bson:"driverCount,omitempty"`
}

// Slot is a single bookable unit within a panel. Occupant is non-nil iff
// Status is pending or approved.
type Slot struct {
	SlotID    string    `json:"slotid" bson:"slotid"`
	PanelID   string    `json:"panelid" bson:"panelid"`
	Number    int       `json:"number" bson:"number"`
	Status    Status    `json:"status" bson:"status"`
	Occupant  *Occupant `json:"occupant,omitempty" bson:"occupant,omitempty"`
	BookedAt  time.Time `json:"bookedAt,omitempty" bson:"bookedAt,omitempty"`
	DecidedBy string    `json:"decidedBy,omitempty" bson:"decidedBy,omitempty"`
	DecidedAt time.Time `json:"decidedAt,omitempty" bson:"decidedAt,omitempty"`
}

// BookingRequest is the ephemeral input for a booking submission. It is
// consumed once; its data is copied onto the slot when the booking wins.
type BookingRequest struct {
	SlotID      string `json:"slotid"`
	UserID      string `json:"userId"`
	VTCName     string `json:"vtcName"`
	VTCRole     string `json:"vtcRole"`
	VTCLink     string `json:"vtcLink"`
	DriverCount int    `json:"driverCount"`
}

// Decision outcome values.
const (
	OutcomeApprove = "approve"
	OutcomeReject  = "reject"
)

// Decision is the ephemeral input for a staff approve/reject.
type Decision struct {
	SlotID  string `json:"slotid"`
	StaffID string `json:"staffId"`
	Outcome string `json:"outcome"`
}

// SlotView is one row of a rendered panel.
type SlotView struct {
	Number  int    `json:"number"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// ViewModel is the display model the front-end renders as interactive
// controls. Derived from store state only, never parsed back.
type ViewModel struct {
	PanelID string     `json:"panelid"`
	Title   string     `json:"title"`
	Image   string     `json:"image,omitempty"`
	Slots   []SlotView `json:"slots"`
}
