package eventsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"guildhub/clients"
	"guildhub/core"
	"guildhub/models"
	"guildhub/services"
	"guildhub/services/retryscheduler"
	"guildhub/utils"
)

// defaultEventDescription is used when a local event has no description
const defaultEventDescription = "Organized on GuildHub."

// SyncResult is the terminal outcome of a retry-wrapped bridge call. The
// channel carrying it is fulfilled exactly once, by the first successful
// attempt, by a non-retryable failure, or by retry exhaustion; intermediate
// rate-limit retries are invisible to the caller.
type SyncResult struct {
	RemoteEventID string
	Err           error
}

// EventSyncUseCase keeps a Discord scheduled event consistent with a local
// event whenever the organization's guild link has auto-sync enabled
type EventSyncUseCase struct {
	discordClient     clients.DiscordClient
	guildLinksService services.GuildLinksService
	eventsService     services.EventsService
	retryScheduler    *retryscheduler.RetryScheduler
}

func NewEventSyncUseCase(
	discordClient clients.DiscordClient,
	guildLinksService services.GuildLinksService,
	eventsService services.EventsService,
	retryScheduler *retryscheduler.RetryScheduler,
) *EventSyncUseCase {
	return &EventSyncUseCase{
		discordClient:     discordClient,
		guildLinksService: guildLinksService,
		eventsService:     eventsService,
		retryScheduler:    retryScheduler,
	}
}

// checkBotPermissions confirms the permission bitmask recorded on the guild
// link covers everything event mirroring needs. A missing capability is a
// permission failure routed straight to the caller - it must never be
// retried, because permission errors are not rate limits.
func (u *EventSyncUseCase) checkBotPermissions(ctx context.Context, guildID string) error {
	maybeLink, err := u.guildLinksService.GetGuildLinkByGuildID(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild link: %w", err)
	}
	if !maybeLink.IsPresent() {
		return fmt.Errorf("guild %s is not linked to an organization: %w", guildID, core.ErrNotFound)
	}

	link := maybeLink.MustGet()
	if link.BotPermissions&clients.RequiredBotPermissions != clients.RequiredBotPermissions {
		return fmt.Errorf(
			"bot is missing required permissions in guild %s: %w",
			guildID,
			core.ErrPermissionDenied,
		)
	}

	return nil
}

// CreateEvent creates a scheduled event in the guild mirroring the local
// event and returns the remote event ID
func (u *EventSyncUseCase) CreateEvent(ctx context.Context, event *models.Event, guildID string) (string, error) {
	log.Printf("📋 Starting to create remote event for event %s in guild %s", event.ID, guildID)
	if err := u.checkBotPermissions(ctx, guildID); err != nil {
		return "", err
	}

	remoteEvent, err := u.discordClient.CreateScheduledEvent(guildID, buildScheduledEventParams(event))
	if err != nil {
		return "", fmt.Errorf("failed to create remote event: %w", err)
	}

	log.Printf("📋 Completed successfully - created remote event %s for event %s", remoteEvent.ID, event.ID)
	return remoteEvent.ID, nil
}

// UpdateEvent updates the scheduled event mirroring the local event in place
func (u *EventSyncUseCase) UpdateEvent(ctx context.Context, remoteEventID string, event *models.Event, guildID string) error {
	log.Printf("📋 Starting to update remote event %s for event %s in guild %s", remoteEventID, event.ID, guildID)
	if err := u.checkBotPermissions(ctx, guildID); err != nil {
		return err
	}

	if _, err := u.discordClient.UpdateScheduledEvent(guildID, remoteEventID, buildScheduledEventParams(event)); err != nil {
		return fmt.Errorf("failed to update remote event: %w", err)
	}

	log.Printf("📋 Completed successfully - updated remote event %s", remoteEventID)
	return nil
}

// DeleteEvent removes the scheduled event mirroring the local event
func (u *EventSyncUseCase) DeleteEvent(ctx context.Context, remoteEventID string, guildID string) error {
	log.Printf("📋 Starting to delete remote event %s in guild %s", remoteEventID, guildID)
	if err := u.checkBotPermissions(ctx, guildID); err != nil {
		return err
	}

	if err := u.discordClient.DeleteScheduledEvent(guildID, remoteEventID); err != nil {
		return fmt.Errorf("failed to delete remote event: %w", err)
	}

	log.Printf("📋 Completed successfully - deleted remote event %s", remoteEventID)
	return nil
}

// CreateEventWithRetry behaves like CreateEvent but absorbs rate limiting
// through the retry scheduler. The returned one-shot channel resolves when
// the call eventually succeeds or fails non-retryably.
func (u *EventSyncUseCase) CreateEventWithRetry(
	ctx context.Context,
	event *models.Event,
	guildID string,
) <-chan SyncResult {
	result := make(chan SyncResult, 1)

	remoteEventID, err := u.CreateEvent(ctx, event, guildID)
	if err == nil {
		result <- SyncResult{RemoteEventID: remoteEventID}
		return result
	}

	info := retryscheduler.ExtractRateLimitInfo(err)
	if info == nil {
		result <- SyncResult{Err: err}
		return result
	}

	taskID := fmt.Sprintf("event-create-%s-%d", event.ID, time.Now().UnixNano())
	u.retryScheduler.ScheduleRetry(taskID, func() error {
		remoteEventID, opErr := u.CreateEvent(context.Background(), event, guildID)
		if opErr == nil {
			result <- SyncResult{RemoteEventID: remoteEventID}
			return nil
		}
		if retryscheduler.ExtractRateLimitInfo(opErr) != nil {
			return opErr
		}
		result <- SyncResult{Err: opErr}
		return opErr
	}, info, retryscheduler.DefaultMaxRetries, func(err error) {
		result <- SyncResult{Err: fmt.Errorf("retry budget exhausted: %w", err)}
	})

	return result
}

// UpdateEventWithRetry behaves like UpdateEvent but absorbs rate limiting
// through the retry scheduler
func (u *EventSyncUseCase) UpdateEventWithRetry(
	ctx context.Context,
	remoteEventID string,
	event *models.Event,
	guildID string,
) <-chan SyncResult {
	result := make(chan SyncResult, 1)

	err := u.UpdateEvent(ctx, remoteEventID, event, guildID)
	if err == nil {
		result <- SyncResult{RemoteEventID: remoteEventID}
		return result
	}

	info := retryscheduler.ExtractRateLimitInfo(err)
	if info == nil {
		result <- SyncResult{Err: err}
		return result
	}

	taskID := fmt.Sprintf("event-update-%s-%d", event.ID, time.Now().UnixNano())
	u.retryScheduler.ScheduleRetry(taskID, func() error {
		opErr := u.UpdateEvent(context.Background(), remoteEventID, event, guildID)
		if opErr == nil {
			result <- SyncResult{RemoteEventID: remoteEventID}
			return nil
		}
		if retryscheduler.ExtractRateLimitInfo(opErr) != nil {
			return opErr
		}
		result <- SyncResult{Err: opErr}
		return opErr
	}, info, retryscheduler.DefaultMaxRetries, func(err error) {
		result <- SyncResult{Err: fmt.Errorf("retry budget exhausted: %w", err)}
	})

	return result
}

// SyncEventToDiscord mirrors a local event into its organization's linked
// guild, creating the remote event on first sync and updating it in place
// afterwards. Guilds without a link or with auto-sync disabled are skipped.
func (u *EventSyncUseCase) SyncEventToDiscord(ctx context.Context, eventID string) error {
	log.Printf("📋 Starting to sync event to Discord: %s", eventID)

	maybeEvent, err := u.eventsService.GetEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if !maybeEvent.IsPresent() {
		return fmt.Errorf("event %s: %w", eventID, core.ErrNotFound)
	}
	event := maybeEvent.MustGet()

	maybeLink, err := u.guildLinksService.GetGuildLinkByOrganizationID(ctx, event.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to get guild link: %w", err)
	}
	if !maybeLink.IsPresent() {
		log.Printf("📋 Completed successfully - organization %s has no linked guild, skipping sync", event.OrganizationID)
		return nil
	}
	link := maybeLink.MustGet()
	if !link.AutoSync {
		log.Printf("📋 Completed successfully - auto-sync disabled for guild %s, skipping sync", link.DiscordGuildID)
		return nil
	}

	remoteEventID := event.RemoteEventID
	if remoteEventID != nil {
		if _, err := u.discordClient.GetScheduledEvent(link.DiscordGuildID, *remoteEventID); err != nil {
			if !isRemoteEventGone(err) {
				return fmt.Errorf("failed to fetch remote event: %w", err)
			}
			log.Printf("⚠️ Remote event %s for event %s no longer exists - recreating", *remoteEventID, event.ID)
			remoteEventID = nil
		}
	}

	if remoteEventID == nil {
		resultCh := u.CreateEventWithRetry(ctx, event, link.DiscordGuildID)
		go func() {
			result := <-resultCh
			if result.Err != nil {
				log.Printf("❌ Failed to create remote event for event %s: %v", event.ID, result.Err)
				return
			}
			if err := u.eventsService.SetRemoteEventID(context.Background(), event.ID, &result.RemoteEventID); err != nil {
				log.Printf("❌ Failed to record remote event ID for event %s: %v", event.ID, err)
			}
		}()
		log.Printf("📋 Completed successfully - remote event creation in flight for event %s", event.ID)
		return nil
	}

	resultCh := u.UpdateEventWithRetry(ctx, *remoteEventID, event, link.DiscordGuildID)
	go func() {
		result := <-resultCh
		if result.Err != nil {
			log.Printf("❌ Failed to update remote event for event %s: %v", event.ID, result.Err)
		}
	}()
	log.Printf("📋 Completed successfully - remote event update in flight for event %s", event.ID)
	return nil
}

// RemoveEventFromDiscord deletes the remote mirror of a local event, if any,
// and clears the recorded remote event ID
func (u *EventSyncUseCase) RemoveEventFromDiscord(ctx context.Context, eventID string) error {
	log.Printf("📋 Starting to remove event from Discord: %s", eventID)

	maybeEvent, err := u.eventsService.GetEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if !maybeEvent.IsPresent() {
		return fmt.Errorf("event %s: %w", eventID, core.ErrNotFound)
	}
	event := maybeEvent.MustGet()
	if event.RemoteEventID == nil {
		log.Printf("📋 Completed successfully - event %s has no remote mirror", eventID)
		return nil
	}

	maybeLink, err := u.guildLinksService.GetGuildLinkByOrganizationID(ctx, event.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to get guild link: %w", err)
	}
	if !maybeLink.IsPresent() {
		log.Printf("📋 Completed successfully - organization %s has no linked guild", event.OrganizationID)
		return nil
	}
	link := maybeLink.MustGet()

	if err := u.DeleteEvent(ctx, *event.RemoteEventID, link.DiscordGuildID); err != nil {
		return err
	}

	if err := u.eventsService.SetRemoteEventID(ctx, event.ID, nil); err != nil {
		return fmt.Errorf("failed to clear remote event ID: %w", err)
	}

	log.Printf("📋 Completed successfully - removed remote event for event %s", eventID)
	return nil
}

// AnnounceEvent posts an announcement embed for the event to a guild channel
func (u *EventSyncUseCase) AnnounceEvent(
	ctx context.Context,
	channelID string,
	event *models.Event,
	organization *models.Organization,
) error {
	log.Printf("📋 Starting to announce event %s in channel %s", event.ID, channelID)
	maybeLink, err := u.guildLinksService.GetGuildLinkByOrganizationID(ctx, organization.ID)
	if err != nil {
		return fmt.Errorf("failed to get guild link: %w", err)
	}
	if !maybeLink.IsPresent() {
		return fmt.Errorf("organization %s has no linked guild: %w", organization.ID, core.ErrNotFound)
	}

	if err := u.discordClient.SendChannelEmbed(channelID, BuildEventAnnouncement(event, organization)); err != nil {
		return fmt.Errorf("failed to send event announcement: %w", err)
	}

	log.Printf("📋 Completed successfully - announced event %s", event.ID)
	return nil
}

// isRemoteEventGone reports whether an error means the scheduled event was
// deleted on the Discord side, e.g. by a guild moderator
func isRemoteEventGone(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func buildScheduledEventParams(event *models.Event) *clients.ScheduledEventParams {
	description := defaultEventDescription
	if event.Description != nil && *event.Description != "" {
		description = *event.Description
	}

	location := ""
	if event.Location != nil {
		location = *event.Location
	}

	return &clients.ScheduledEventParams{
		Name:        event.Title,
		Description: description,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Location:    location,
	}
}

// BuildEventAnnouncement builds the notification embed for an event. Field
// order is fixed: title, description, start, end, organization, then
// location and participant cap only when present.
func BuildEventAnnouncement(event *models.Event, organization *models.Organization) *clients.MessageEmbed {
	description := defaultEventDescription
	if event.Description != nil && *event.Description != "" {
		description = *event.Description
	}

	fields := []clients.EmbedField{
		{Name: "Starts", Value: utils.FormatDiscordTimestamp(event.StartsAt, "F")},
		{Name: "Ends", Value: utils.FormatDiscordTimestamp(event.EndsAt, "F")},
		{Name: "Organization", Value: organization.Name},
	}
	if event.Location != nil && *event.Location != "" {
		fields = append(fields, clients.EmbedField{Name: "Location", Value: *event.Location})
	}
	if event.ParticipantCap != nil {
		fields = append(fields, clients.EmbedField{
			Name:  "Participant cap",
			Value: fmt.Sprintf("%d", *event.ParticipantCap),
		})
	}

	return &clients.MessageEmbed{
		Title:       event.Title,
		Description: description,
		Fields:      fields,
	}
}
