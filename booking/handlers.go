package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"

	"slotboard/events"
	"slotboard/middleware"
	"slotboard/models"
	"slotboard/panel"
	"slotboard/slotstore"
	"slotboard/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// Handlers is the HTTP façade over the workflow. Authorization decisions
// are made from the token roles the middleware put in the request context.
type Handlers struct {
	wf     *Workflow
	store  slotstore.Store
	events *events.Client
}

func NewHandlers(wf *Workflow, store slotstore.Store, ev *events.Client) *Handlers {
	return &Handlers{wf: wf, store: store, events: ev}
}

// writeError maps the error taxonomy onto HTTP statuses. Race outcomes get
// messages that say the state changed, so users understand contention —
// not a bug — happened.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, slotstore.ErrSlotNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Slot not found")
	case errors.Is(err, slotstore.ErrPanelExists):
		utils.RespondWithError(w, http.StatusConflict, "Panel already exists; clear it first")
	case errors.Is(err, ErrSlotUnavailable):
		utils.RespondWithError(w, http.StatusConflict, "That slot was just taken — the panel has changed, pick another")
	case errors.Is(err, ErrStaleDecision):
		utils.RespondWithError(w, http.StatusConflict, "This request was already decided or the slot is no longer pending")
	case errors.Is(err, ErrNotAuthorized):
		utils.RespondWithError(w, http.StatusForbidden, "Staff only")
	case errors.Is(err, slotstore.ErrStoreUnavailable):
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Storage unavailable, try again shortly")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}

func isStaff(r *http.Request) bool {
	return slices.Contains(utils.GetRolesFromRequest(r), middleware.StaffRole)
}

// POST /api/panels
func (h *Handlers) CreatePanel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		EventRef     string `json:"eventRef"`
		Title        string `json:"title"`
		Image        string `json:"image"`
		Numbers      []int  `json:"numbers"`
		ChannelID    string `json:"channelId"`
		StaffChannel string `json:"staffChannel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if len(req.Numbers) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "At least one slot number required")
		return
	}

	p := models.Panel{
		PanelID:   uuid.NewString(),
		EventID:   req.EventRef,
		Title:     req.Title,
		Image:     req.Image,
		ChannelID: req.ChannelID,
		StaffChan: req.StaffChannel,
	}

	// Event metadata is cosmetic; a fetch failure falls back to the
	// operator-supplied title.
	if id := events.ExtractEventID(req.EventRef); id != "" && h.events != nil {
		if meta, err := h.events.Fetch(r.Context(), id); err == nil {
			p.EventID = id
			if p.Title == "" {
				p.Title = meta.Name
			}
			if p.Image == "" {
				p.Image = meta.Banner
			}
		} else {
			log.Println("event metadata fetch failed:", err)
		}
	}

	ids, err := h.wf.CreatePanel(r.Context(), p, req.Numbers)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"panelid": p.PanelID,
		"slotids": ids,
	})
}

// GET /api/panels/:panelid
func (h *Handlers) GetPanel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	panelID := ps.ByName("panelid")

	p, err := h.store.Panel(r.Context(), panelID)
	if err != nil {
		writeError(w, err)
		return
	}
	slots, err := h.store.Snapshot(r.Context(), panelID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, panel.Render(*p, slots))
}

// DELETE /api/panels/:panelid
func (h *Handlers) ClearPanel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.wf.ClearPanel(r.Context(), ps.ByName("panelid"), isStaff(r)); err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"cleared": true})
}

// POST /api/bookings
func (h *Handlers) SubmitBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	// Requester identity comes from the token, never the body.
	req.UserID = utils.GetUserIDFromRequest(r)
	if req.UserID == "" || req.SlotID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing slot or requester")
		return
	}

	ack, err := h.wf.SubmitBooking(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}

// POST /api/decisions
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var dec models.Decision
	if err := json.NewDecoder(r.Body).Decode(&dec); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	dec.StaffID = utils.GetUserIDFromRequest(r)

	ack, err := h.wf.Decide(r.Context(), dec, isStaff(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}

// POST /api/slots/:slotid/reset
func (h *Handlers) ResetSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staffID := utils.GetUserIDFromRequest(r)
	ack, err := h.wf.ResetSlot(r.Context(), staffID, ps.ByName("slotid"), isStaff(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}
