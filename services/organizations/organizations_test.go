package organizations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildhub/core"
	"guildhub/db"
	"guildhub/models"
	"guildhub/testutils"
)

func setupTestService(t *testing.T) (*OrganizationsService, *db.PostgresOrganizationsRepository, func()) {
	cfg, err := testutils.LoadTestConfig()
	require.NoError(t, err)

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)
	service := NewOrganizationsService(organizationsRepo)

	cleanup := func() {
		dbConn.Close()
	}

	return service, organizationsRepo, cleanup
}

func TestOrganizationsService(t *testing.T) {
	service, organizationsRepo, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := "owner-" + uuid.New().String()
	managerID := "manager-" + uuid.New().String()
	organization := &models.Organization{
		Handle:                "test-org-" + uuid.New().String(),
		Name:                  "Test Organization",
		OwnerDiscordUserID:    &ownerID,
		ManagerDiscordUserIDs: pq.StringArray{managerID},
	}
	require.NoError(t, service.CreateOrganization(ctx, organization))
	defer func() { _, _ = organizationsRepo.DeleteOrganizationByID(ctx, organization.ID) }()

	t.Run("CreateOrganization", func(t *testing.T) {
		t.Run("assigns a prefixed ULID", func(t *testing.T) {
			assert.True(t, core.IsValidULID(organization.ID))
		})

		t.Run("rejects an empty handle", func(t *testing.T) {
			err := service.CreateOrganization(ctx, &models.Organization{Name: "No Handle"})
			assert.Error(t, err)
		})
	})

	t.Run("GetOrganizationByHandle", func(t *testing.T) {
		t.Run("resolves an existing handle", func(t *testing.T) {
			maybeOrg, err := service.GetOrganizationByHandle(ctx, organization.Handle)
			require.NoError(t, err)
			require.True(t, maybeOrg.IsPresent())
			assert.Equal(t, organization.ID, maybeOrg.MustGet().ID)
		})

		t.Run("returns none for an unknown handle", func(t *testing.T) {
			maybeOrg, err := service.GetOrganizationByHandle(ctx, "test-org-"+uuid.New().String())
			require.NoError(t, err)
			assert.False(t, maybeOrg.IsPresent())
		})
	})

	t.Run("CanUserManageOrganization", func(t *testing.T) {
		t.Run("the owner manages the organization", func(t *testing.T) {
			canManage, err := service.CanUserManageOrganization(ctx, ownerID, organization.ID)
			require.NoError(t, err)
			assert.True(t, canManage)
		})

		t.Run("a listed manager manages the organization", func(t *testing.T) {
			canManage, err := service.CanUserManageOrganization(ctx, managerID, organization.ID)
			require.NoError(t, err)
			assert.True(t, canManage)
		})

		t.Run("an unrelated user does not", func(t *testing.T) {
			canManage, err := service.CanUserManageOrganization(ctx, "stranger-"+uuid.New().String(), organization.ID)
			require.NoError(t, err)
			assert.False(t, canManage)
		})

		t.Run("an unknown organization is a not-found error", func(t *testing.T) {
			_, err := service.CanUserManageOrganization(ctx, ownerID, core.NewID("org"))
			require.Error(t, err)
			assert.True(t, core.IsNotFoundError(err))
		})
	})
}
