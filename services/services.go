package services

import (
	"context"

	"github.com/samber/mo"

	"guildhub/models"
)

// GuildLinksService defines the interface for guild link operations.
// Replacing a link on reconnect is a delete-then-create sequence driven by
// the caller; it is not atomic, and a crash between the two steps leaves the
// guild unlinked until the next connect.
type GuildLinksService interface {
	CreateGuildLink(ctx context.Context, link *models.GuildLink) error
	GetGuildLinkByGuildID(ctx context.Context, guildID string) (mo.Option[*models.GuildLink], error)
	GetGuildLinkByOrganizationID(ctx context.Context, organizationID string) (mo.Option[*models.GuildLink], error)
	DeleteGuildLinkByGuildID(ctx context.Context, guildID string) (bool, error)
}

// OrganizationsService defines the interface for organization-related operations
type OrganizationsService interface {
	CreateOrganization(ctx context.Context, organization *models.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (mo.Option[*models.Organization], error)
	GetOrganizationByHandle(ctx context.Context, handle string) (mo.Option[*models.Organization], error)
	// CanUserManageOrganization reports whether the Discord user is recorded
	// as the owner or a manager of the organization
	CanUserManageOrganization(ctx context.Context, discordUserID, organizationID string) (bool, error)
}

// EventsService defines the interface for event-related operations
type EventsService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (mo.Option[*models.Event], error)
	GetEventsByOrganizationID(ctx context.Context, organizationID string) ([]*models.Event, error)
	SetRemoteEventID(ctx context.Context, eventID string, remoteEventID *string) error
}
