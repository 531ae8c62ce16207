package eventsync

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guildhub/clients"
	discordclient "guildhub/clients/discord"
	"guildhub/core"
	"guildhub/models"
	"guildhub/services/events"
	"guildhub/services/guildlinks"
	"guildhub/services/retryscheduler"
)

// virtualClock advances virtual time on Sleep so scheduler-driven retries
// complete in microseconds of real time
type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRateLimitError(retryAfter time.Duration) error {
	return &discordgo.RateLimitError{
		RateLimit: &discordgo.RateLimit{
			TooManyRequests: &discordgo.TooManyRequests{
				Bucket:     "bkt",
				Message:    "You are being rate limited.",
				RetryAfter: retryAfter,
			},
			URL: "https://discord.com/api/v9/guilds/999/scheduled-events",
		},
	}
}

func newRESTError(statusCode int, body string) error {
	return &discordgo.RESTError{
		Response: &http.Response{
			StatusCode: statusCode,
			Header:     http.Header{},
		},
		ResponseBody: []byte(body),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type testFixture struct {
	discordClient *discordclient.MockDiscordClient
	guildLinks    *guildlinks.MockGuildLinksService
	events        *events.MockEventsService
	useCase       *EventSyncUseCase
}

func setupEventSyncTest() *testFixture {
	discordClient := new(discordclient.MockDiscordClient)
	guildLinksService := new(guildlinks.MockGuildLinksService)
	eventsService := new(events.MockEventsService)
	scheduler := retryscheduler.NewRetryScheduler(&virtualClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})

	return &testFixture{
		discordClient: discordClient,
		guildLinks:    guildLinksService,
		events:        eventsService,
		useCase:       NewEventSyncUseCase(discordClient, guildLinksService, eventsService, scheduler),
	}
}

func testEvent() *models.Event {
	return &models.Event{
		ID:             "evt_01J0000000000000000000TEST",
		OrganizationID: "org_01J0000000000000000000TEST",
		Title:          "Spring Scrim Night",
		Description:    strPtr("Bring your A game."),
		StartsAt:       time.Date(2025, 7, 1, 19, 0, 0, 0, time.UTC),
		EndsAt:         time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC),
	}
}

func testGuildLink(permissions int64) *models.GuildLink {
	return &models.GuildLink{
		ID:               "gl_01J0000000000000000000TEST",
		DiscordGuildID:   "guild-123",
		OrganizationID:   "org_01J0000000000000000000TEST",
		DiscordGuildName: "Test Guild",
		BotPermissions:   permissions,
		AutoSync:         true,
	}
}

func TestEventSyncUseCase_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("creates remote event when bot permissions suffice", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		f.guildLinks.On("GetGuildLinkByGuildID", ctx, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(&clients.DiscordScheduledEvent{ID: "remote-1", GuildID: "guild-123"}, nil)

		remoteEventID, err := f.useCase.CreateEvent(ctx, event, "guild-123")
		require.NoError(t, err)
		assert.Equal(t, "remote-1", remoteEventID)
	})

	t.Run("denies when bot permissions are missing and never calls Discord", func(t *testing.T) {
		f := setupEventSyncTest()
		missingEvents := clients.RequiredBotPermissions &^ discordgo.PermissionManageEvents
		f.guildLinks.On("GetGuildLinkByGuildID", ctx, "guild-123").
			Return(mo.Some(testGuildLink(missingEvents)), nil)

		_, err := f.useCase.CreateEvent(ctx, testEvent(), "guild-123")
		require.Error(t, err)
		assert.True(t, core.IsPermissionDeniedError(err))
		f.discordClient.AssertNotCalled(t, "CreateScheduledEvent", mock.Anything, mock.Anything)
	})

	t.Run("fails when guild is not linked", func(t *testing.T) {
		f := setupEventSyncTest()
		f.guildLinks.On("GetGuildLinkByGuildID", ctx, "guild-123").
			Return(mo.None[*models.GuildLink](), nil)

		_, err := f.useCase.CreateEvent(ctx, testEvent(), "guild-123")
		require.Error(t, err)
		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestEventSyncUseCase_CreateEventWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves after rate limit then success", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(nil, newRateLimitError(2*time.Second)).Once()
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(&clients.DiscordScheduledEvent{ID: "remote-1", GuildID: "guild-123"}, nil).Once()

		resultCh := f.useCase.CreateEventWithRetry(ctx, event, "guild-123")

		select {
		case result := <-resultCh:
			require.NoError(t, result.Err)
			assert.Equal(t, "remote-1", result.RemoteEventID)
		case <-time.After(2 * time.Second):
			t.Fatal("retry-wrapped create never resolved")
		}
		f.discordClient.AssertNumberOfCalls(t, "CreateScheduledEvent", 2)
	})

	t.Run("resolves immediately with non-retryable failure", func(t *testing.T) {
		f := setupEventSyncTest()
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(nil, errors.New("guild not found"))

		resultCh := f.useCase.CreateEventWithRetry(ctx, testEvent(), "guild-123")

		select {
		case result := <-resultCh:
			require.Error(t, result.Err)
		case <-time.After(time.Second):
			t.Fatal("retry-wrapped create never resolved")
		}
		f.discordClient.AssertNumberOfCalls(t, "CreateScheduledEvent", 1)
	})

	t.Run("resolves with terminal error when every retry is rate limited", func(t *testing.T) {
		f := setupEventSyncTest()
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(nil, newRateLimitError(time.Second))

		resultCh := f.useCase.CreateEventWithRetry(ctx, testEvent(), "guild-123")

		select {
		case result := <-resultCh:
			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), "retry budget exhausted")
			var rateLimitErr *discordgo.RateLimitError
			assert.ErrorAs(t, result.Err, &rateLimitErr)
		case <-time.After(2 * time.Second):
			t.Fatal("retry-wrapped create never resolved after exhausting retries")
		}
		// Initial attempt plus the scheduler's full retry budget
		f.discordClient.AssertNumberOfCalls(t, "CreateScheduledEvent", 1+retryscheduler.DefaultMaxRetries)
	})

	t.Run("permission failure resolves without entering the retry queue", func(t *testing.T) {
		f := setupEventSyncTest()
		missingEvents := clients.RequiredBotPermissions &^ discordgo.PermissionManageEvents
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(missingEvents)), nil)

		resultCh := f.useCase.CreateEventWithRetry(ctx, testEvent(), "guild-123")

		select {
		case result := <-resultCh:
			require.Error(t, result.Err)
			assert.True(t, core.IsPermissionDeniedError(result.Err))
		case <-time.After(time.Second):
			t.Fatal("retry-wrapped create never resolved")
		}
		f.discordClient.AssertNotCalled(t, "CreateScheduledEvent", mock.Anything, mock.Anything)
	})
}

func TestEventSyncUseCase_SyncEventToDiscord(t *testing.T) {
	ctx := context.Background()

	t.Run("creates remote event and records its ID on first sync", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(&clients.DiscordScheduledEvent{ID: "remote-1", GuildID: "guild-123"}, nil)
		recorded := make(chan *string, 1)
		f.events.On("SetRemoteEventID", mock.Anything, event.ID, mock.Anything).
			Run(func(args mock.Arguments) { recorded <- args.Get(2).(*string) }).
			Return(nil)

		require.NoError(t, f.useCase.SyncEventToDiscord(ctx, event.ID))

		select {
		case remoteEventID := <-recorded:
			require.NotNil(t, remoteEventID)
			assert.Equal(t, "remote-1", *remoteEventID)
		case <-time.After(time.Second):
			t.Fatal("remote event ID was never recorded")
		}
	})

	t.Run("updates remote event in place when one exists", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		event.RemoteEventID = strPtr("remote-1")
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("GetScheduledEvent", "guild-123", "remote-1").
			Return(&clients.DiscordScheduledEvent{ID: "remote-1", GuildID: "guild-123"}, nil)
		updated := make(chan struct{}, 1)
		f.discordClient.On("UpdateScheduledEvent", "guild-123", "remote-1", mock.Anything).
			Run(func(mock.Arguments) { updated <- struct{}{} }).
			Return(&clients.DiscordScheduledEvent{ID: "remote-1", GuildID: "guild-123"}, nil)

		require.NoError(t, f.useCase.SyncEventToDiscord(ctx, event.ID))

		select {
		case <-updated:
		case <-time.After(time.Second):
			t.Fatal("remote event was never updated")
		}
		f.discordClient.AssertNotCalled(t, "CreateScheduledEvent", mock.Anything, mock.Anything)
	})

	t.Run("recreates remote event when the mirror was deleted on the Discord side", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		event.RemoteEventID = strPtr("remote-gone")
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.guildLinks.On("GetGuildLinkByGuildID", mock.Anything, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("GetScheduledEvent", "guild-123", "remote-gone").
			Return(nil, newRESTError(404, `{"message":"Unknown Guild Scheduled Event","code":180000}`))
		f.discordClient.On("CreateScheduledEvent", "guild-123", mock.Anything).
			Return(&clients.DiscordScheduledEvent{ID: "remote-2", GuildID: "guild-123"}, nil)
		recorded := make(chan *string, 1)
		f.events.On("SetRemoteEventID", mock.Anything, event.ID, mock.Anything).
			Run(func(args mock.Arguments) { recorded <- args.Get(2).(*string) }).
			Return(nil)

		require.NoError(t, f.useCase.SyncEventToDiscord(ctx, event.ID))

		select {
		case remoteEventID := <-recorded:
			require.NotNil(t, remoteEventID)
			assert.Equal(t, "remote-2", *remoteEventID)
		case <-time.After(time.Second):
			t.Fatal("replacement remote event ID was never recorded")
		}
		f.discordClient.AssertNotCalled(t, "UpdateScheduledEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("surfaces non-404 failures when checking the remote mirror", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		event.RemoteEventID = strPtr("remote-1")
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("GetScheduledEvent", "guild-123", "remote-1").
			Return(nil, newRESTError(500, `{"message":"Internal Server Error"}`))

		require.Error(t, f.useCase.SyncEventToDiscord(ctx, event.ID))
		f.discordClient.AssertNotCalled(t, "CreateScheduledEvent", mock.Anything, mock.Anything)
		f.discordClient.AssertNotCalled(t, "UpdateScheduledEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips guilds with auto-sync disabled", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		link := testGuildLink(clients.RequiredBotPermissions)
		link.AutoSync = false
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.Some(link), nil)

		require.NoError(t, f.useCase.SyncEventToDiscord(ctx, event.ID))
		f.discordClient.AssertNotCalled(t, "CreateScheduledEvent", mock.Anything, mock.Anything)
		f.discordClient.AssertNotCalled(t, "UpdateScheduledEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips organizations without a linked guild", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.None[*models.GuildLink](), nil)

		require.NoError(t, f.useCase.SyncEventToDiscord(ctx, event.ID))
		f.discordClient.AssertNotCalled(t, "CreateScheduledEvent", mock.Anything, mock.Anything)
	})

	t.Run("fails for unknown event", func(t *testing.T) {
		f := setupEventSyncTest()
		f.events.On("GetEventByID", ctx, "evt_01J0000000000000000000MISS").
			Return(mo.None[*models.Event](), nil)

		err := f.useCase.SyncEventToDiscord(ctx, "evt_01J0000000000000000000MISS")
		require.Error(t, err)
		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestEventSyncUseCase_RemoveEventFromDiscord(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes remote event and clears recorded ID", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		event.RemoteEventID = strPtr("remote-1")
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)
		f.guildLinks.On("GetGuildLinkByOrganizationID", ctx, event.OrganizationID).
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.guildLinks.On("GetGuildLinkByGuildID", ctx, "guild-123").
			Return(mo.Some(testGuildLink(clients.RequiredBotPermissions)), nil)
		f.discordClient.On("DeleteScheduledEvent", "guild-123", "remote-1").Return(nil)
		f.events.On("SetRemoteEventID", ctx, event.ID, (*string)(nil)).Return(nil)

		require.NoError(t, f.useCase.RemoveEventFromDiscord(ctx, event.ID))
		f.discordClient.AssertCalled(t, "DeleteScheduledEvent", "guild-123", "remote-1")
	})

	t.Run("no-op for events without a remote mirror", func(t *testing.T) {
		f := setupEventSyncTest()
		event := testEvent()
		f.events.On("GetEventByID", ctx, event.ID).Return(mo.Some(event), nil)

		require.NoError(t, f.useCase.RemoveEventFromDiscord(ctx, event.ID))
		f.discordClient.AssertNotCalled(t, "DeleteScheduledEvent", mock.Anything, mock.Anything)
	})
}

func TestBuildEventAnnouncement(t *testing.T) {
	organization := &models.Organization{
		ID:   "org_01J0000000000000000000TEST",
		Name: "Night Owls",
	}

	t.Run("emits fields in fixed order with all optionals present", func(t *testing.T) {
		event := testEvent()
		event.Location = strPtr("Berlin")
		event.ParticipantCap = intPtr(32)

		embed := BuildEventAnnouncement(event, organization)

		assert.Equal(t, "Spring Scrim Night", embed.Title)
		assert.Equal(t, "Bring your A game.", embed.Description)
		require.Len(t, embed.Fields, 5)
		assert.Equal(t, "Starts", embed.Fields[0].Name)
		assert.Equal(t, "Ends", embed.Fields[1].Name)
		assert.Equal(t, "Organization", embed.Fields[2].Name)
		assert.Equal(t, "Night Owls", embed.Fields[2].Value)
		assert.Equal(t, "Location", embed.Fields[3].Name)
		assert.Equal(t, "Berlin", embed.Fields[3].Value)
		assert.Equal(t, "Participant cap", embed.Fields[4].Name)
		assert.Equal(t, "32", embed.Fields[4].Value)
	})

	t.Run("omits absent optional fields instead of emitting them empty", func(t *testing.T) {
		event := testEvent()
		event.Description = nil

		embed := BuildEventAnnouncement(event, organization)

		assert.Equal(t, "Organized on GuildHub.", embed.Description)
		require.Len(t, embed.Fields, 3)
		assert.Equal(t, "Starts", embed.Fields[0].Name)
		assert.Equal(t, "Ends", embed.Fields[1].Name)
		assert.Equal(t, "Organization", embed.Fields[2].Name)
	})
}
