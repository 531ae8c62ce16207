package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"guildhub/core"
	"guildhub/services"
	"guildhub/usecases/eventsync"
)

type EventsHandler struct {
	eventSyncUseCase     *eventsync.EventSyncUseCase
	eventsService        services.EventsService
	organizationsService services.OrganizationsService
}

func NewEventsHandler(
	eventSyncUseCase *eventsync.EventSyncUseCase,
	eventsService services.EventsService,
	organizationsService services.OrganizationsService,
) *EventsHandler {
	return &EventsHandler{
		eventSyncUseCase:     eventSyncUseCase,
		eventsService:        eventsService,
		organizationsService: organizationsService,
	}
}

// HandleSyncEvent pushes a local event to its organization's linked guild.
// The remote call may still be retrying when this returns, so the response
// is an accepted rather than a completion.
func (h *EventsHandler) HandleSyncEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]
	log.Printf("📨 Event sync requested for event %s", eventID)

	if err := h.eventSyncUseCase.SyncEventToDiscord(r.Context(), eventID); err != nil {
		if core.IsNotFoundError(err) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to sync event %s: %v", eventID, err)
		http.Error(w, "failed to sync event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleAnnounceEvent posts an announcement embed for an event to a channel
// in the organization's linked guild
func (h *EventsHandler) HandleAnnounceEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["id"]
	log.Printf("📨 Event announcement requested for event %s", eventID)

	var payload struct {
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ChannelID == "" {
		http.Error(w, "channel_id is required", http.StatusBadRequest)
		return
	}

	maybeEvent, err := h.eventsService.GetEventByID(r.Context(), eventID)
	if err != nil {
		log.Printf("❌ Failed to get event %s: %v", eventID, err)
		http.Error(w, "failed to get event", http.StatusInternalServerError)
		return
	}
	if !maybeEvent.IsPresent() {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	event := maybeEvent.MustGet()

	maybeOrganization, err := h.organizationsService.GetOrganizationByID(r.Context(), event.OrganizationID)
	if err != nil || !maybeOrganization.IsPresent() {
		log.Printf("❌ Failed to get organization %s: %v", event.OrganizationID, err)
		http.Error(w, "failed to get organization", http.StatusInternalServerError)
		return
	}

	if err := h.eventSyncUseCase.AnnounceEvent(r.Context(), payload.ChannelID, event, maybeOrganization.MustGet()); err != nil {
		if core.IsNotFoundError(err) {
			http.Error(w, "organization has no linked guild", http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to announce event %s: %v", eventID, err)
		http.Error(w, "failed to announce event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
