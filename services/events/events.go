package events

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"guildhub/core"
	"guildhub/models"
)

// EventsRepository defines the interface for event repository operations
type EventsRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (mo.Option[*models.Event], error)
	GetEventsByOrganizationID(ctx context.Context, organizationID string) ([]*models.Event, error)
	UpdateEventRemoteEventID(ctx context.Context, eventID string, remoteEventID *string) (bool, error)
}

type EventsService struct {
	eventsRepo EventsRepository
}

func NewEventsService(repo EventsRepository) *EventsService {
	return &EventsService{eventsRepo: repo}
}

func (s *EventsService) CreateEvent(ctx context.Context, event *models.Event) error {
	log.Printf("📋 Starting to create event: %s", event.Title)
	if event.ID == "" {
		event.ID = core.NewID("evt")
	}
	if !core.IsValidULID(event.ID) {
		return fmt.Errorf("event ID must be a valid ULID")
	}
	if !core.IsValidULID(event.OrganizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if event.Title == "" {
		return fmt.Errorf("event title cannot be empty")
	}
	if event.EndsAt.Before(event.StartsAt) {
		return fmt.Errorf("event cannot end before it starts")
	}

	if err := s.eventsRepo.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to create event in database: %w", err)
	}

	log.Printf("📋 Completed successfully - created event %s (%s)", event.Title, event.ID)
	return nil
}

func (s *EventsService) GetEventByID(ctx context.Context, id string) (mo.Option[*models.Event], error) {
	log.Printf("📋 Starting to get event by ID: %s", id)
	if !core.IsValidULID(id) {
		return mo.None[*models.Event](), fmt.Errorf("event ID must be a valid ULID")
	}

	maybeEvent, err := s.eventsRepo.GetEventByID(ctx, id)
	if err != nil {
		log.Printf("❌ Failed to get event by ID: %v", err)
		return mo.None[*models.Event](), fmt.Errorf("failed to get event by ID: %w", err)
	}

	if !maybeEvent.IsPresent() {
		log.Printf("📋 Completed successfully - event not found")
		return mo.None[*models.Event](), nil
	}

	event := maybeEvent.MustGet()
	log.Printf("📋 Completed successfully - found event: %s", event.Title)
	return mo.Some(event), nil
}

func (s *EventsService) GetEventsByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Event, error) {
	log.Printf("📋 Starting to get events for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}

	events, err := s.eventsRepo.GetEventsByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for organization: %w", err)
	}

	log.Printf("📋 Completed successfully - found %d events for organization: %s", len(events), organizationID)
	return events, nil
}

func (s *EventsService) SetRemoteEventID(ctx context.Context, eventID string, remoteEventID *string) error {
	log.Printf("📋 Starting to set remote event ID for event: %s", eventID)
	if !core.IsValidULID(eventID) {
		return fmt.Errorf("event ID must be a valid ULID")
	}

	updated, err := s.eventsRepo.UpdateEventRemoteEventID(ctx, eventID, remoteEventID)
	if err != nil {
		return fmt.Errorf("failed to set remote event ID: %w", err)
	}
	if !updated {
		return core.ErrNotFound
	}

	log.Printf("📋 Completed successfully - set remote event ID for event: %s", eventID)
	return nil
}
