package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"guildhub/config"
	"guildhub/core"
	"guildhub/db"
	"guildhub/models"
)

// LoadTestConfig loads configuration for tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From services/ directory
	_ = godotenv.Load(".env.test")    // From root directory
	_ = godotenv.Load()               // Default .env file

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// CreateTestOrganization creates an organization with a unique handle to
// avoid constraint violations across test runs
func CreateTestOrganization(t *testing.T, organizationsRepo *db.PostgresOrganizationsRepository) *models.Organization {
	organization := &models.Organization{
		ID:     core.NewID("org"),
		Handle: "test-org-" + uuid.New().String(),
		Name:   "Test Organization",
	}
	err := organizationsRepo.CreateOrganization(context.Background(), organization)
	require.NoError(t, err, "Failed to create test organization")
	return organization
}

// CreateTestGuildLink creates a guild link pointing at the given organization
func CreateTestGuildLink(t *testing.T, guildLinksRepo *db.PostgresGuildLinksRepository, organizationID string) *models.GuildLink {
	link := &models.GuildLink{
		ID:               core.NewID("gl"),
		DiscordGuildID:   "test-guild-" + uuid.New().String(),
		OrganizationID:   organizationID,
		DiscordGuildName: "Test Guild",
		AutoSync:         true,
	}
	err := guildLinksRepo.CreateGuildLink(context.Background(), link)
	require.NoError(t, err, "Failed to create test guild link")
	return link
}

// CreateTestEvent creates an event for the given organization
func CreateTestEvent(t *testing.T, eventsRepo *db.PostgresEventsRepository, organizationID string) *models.Event {
	event := &models.Event{
		ID:             core.NewID("evt"),
		OrganizationID: organizationID,
		Title:          "Test Event " + uuid.New().String(),
		StartsAt:       time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second),
		EndsAt:         time.Now().Add(26 * time.Hour).UTC().Truncate(time.Second),
	}
	err := eventsRepo.CreateEvent(context.Background(), event)
	require.NoError(t, err, "Failed to create test event")
	return event
}
