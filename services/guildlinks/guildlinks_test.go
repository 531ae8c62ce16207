package guildlinks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildhub/db"
	"guildhub/models"
	"guildhub/testutils"
)

func setupTestService(t *testing.T) (*GuildLinksService, *models.Organization, func()) {
	cfg, err := testutils.LoadTestConfig()
	require.NoError(t, err)

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	guildLinksRepo := db.NewPostgresGuildLinksRepository(dbConn, cfg.DatabaseSchema)
	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)

	testOrganization := testutils.CreateTestOrganization(t, organizationsRepo)
	service := NewGuildLinksService(guildLinksRepo)

	cleanup := func() {
		_, _ = organizationsRepo.DeleteOrganizationByID(context.Background(), testOrganization.ID)
		dbConn.Close()
	}

	return service, testOrganization, cleanup
}

func TestGuildLinksService(t *testing.T) {
	service, testOrganization, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("CreateGuildLink", func(t *testing.T) {
		t.Run("creates a link with a generated ID and persists it", func(t *testing.T) {
			guildID := "test-guild-" + uuid.New().String()
			link := &models.GuildLink{
				DiscordGuildID:   guildID,
				OrganizationID:   testOrganization.ID,
				DiscordGuildName: "Test Guild",
				AutoSync:         true,
			}
			defer func() { _, _ = service.DeleteGuildLinkByGuildID(ctx, guildID) }()

			err := service.CreateGuildLink(ctx, link)
			require.NoError(t, err)
			assert.NotEmpty(t, link.ID)
			assert.False(t, link.CreatedAt.IsZero())

			maybeLink, err := service.GetGuildLinkByGuildID(ctx, guildID)
			require.NoError(t, err)
			require.True(t, maybeLink.IsPresent())
			found := maybeLink.MustGet()
			assert.Equal(t, link.ID, found.ID)
			assert.Equal(t, testOrganization.ID, found.OrganizationID)
			assert.True(t, found.AutoSync)
		})

		t.Run("rejects a link without a guild ID", func(t *testing.T) {
			link := &models.GuildLink{OrganizationID: testOrganization.ID}
			err := service.CreateGuildLink(ctx, link)
			assert.Error(t, err)
		})

		t.Run("rejects a link without a valid organization ID", func(t *testing.T) {
			link := &models.GuildLink{DiscordGuildID: "test-guild-" + uuid.New().String()}
			err := service.CreateGuildLink(ctx, link)
			assert.Error(t, err)
		})
	})

	t.Run("GetGuildLinkByGuildID", func(t *testing.T) {
		t.Run("returns none for an unlinked guild", func(t *testing.T) {
			maybeLink, err := service.GetGuildLinkByGuildID(ctx, "test-guild-"+uuid.New().String())
			require.NoError(t, err)
			assert.False(t, maybeLink.IsPresent())
		})

		t.Run("rejects an empty guild ID", func(t *testing.T) {
			_, err := service.GetGuildLinkByGuildID(ctx, "")
			assert.Error(t, err)
		})
	})

	t.Run("GetGuildLinkByOrganizationID", func(t *testing.T) {
		t.Run("finds the link through the organization", func(t *testing.T) {
			guildID := "test-guild-" + uuid.New().String()
			link := &models.GuildLink{
				DiscordGuildID:   guildID,
				OrganizationID:   testOrganization.ID,
				DiscordGuildName: "Test Guild",
			}
			require.NoError(t, service.CreateGuildLink(ctx, link))
			defer func() { _, _ = service.DeleteGuildLinkByGuildID(ctx, guildID) }()

			maybeLink, err := service.GetGuildLinkByOrganizationID(ctx, testOrganization.ID)
			require.NoError(t, err)
			require.True(t, maybeLink.IsPresent())
			assert.Equal(t, guildID, maybeLink.MustGet().DiscordGuildID)
		})
	})

	t.Run("DeleteGuildLinkByGuildID", func(t *testing.T) {
		t.Run("reports whether a link existed", func(t *testing.T) {
			guildID := "test-guild-" + uuid.New().String()
			link := &models.GuildLink{
				DiscordGuildID:   guildID,
				OrganizationID:   testOrganization.ID,
				DiscordGuildName: "Test Guild",
			}
			require.NoError(t, service.CreateGuildLink(ctx, link))

			deleted, err := service.DeleteGuildLinkByGuildID(ctx, guildID)
			require.NoError(t, err)
			assert.True(t, deleted)

			deleted, err = service.DeleteGuildLinkByGuildID(ctx, guildID)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	})
}
