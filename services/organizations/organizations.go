package organizations

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/samber/mo"

	"guildhub/core"
	"guildhub/models"
)

// OrganizationsRepository defines the interface for organization repository operations
type OrganizationsRepository interface {
	CreateOrganization(ctx context.Context, organization *models.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (mo.Option[*models.Organization], error)
	GetOrganizationByHandle(ctx context.Context, handle string) (mo.Option[*models.Organization], error)
}

type OrganizationsService struct {
	organizationsRepo OrganizationsRepository
}

func NewOrganizationsService(repo OrganizationsRepository) *OrganizationsService {
	return &OrganizationsService{organizationsRepo: repo}
}

func (s *OrganizationsService) CreateOrganization(ctx context.Context, organization *models.Organization) error {
	log.Printf("📋 Starting to create organization: %s", organization.Handle)
	if organization.ID == "" {
		organization.ID = core.NewID("org")
	}
	if !core.IsValidULID(organization.ID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if organization.Handle == "" {
		return fmt.Errorf("organization handle cannot be empty")
	}

	if err := s.organizationsRepo.CreateOrganization(ctx, organization); err != nil {
		return fmt.Errorf("failed to create organization in database: %w", err)
	}

	log.Printf("📋 Completed successfully - created organization %s (%s)", organization.Name, organization.ID)
	return nil
}

func (s *OrganizationsService) GetOrganizationByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Organization], error) {
	log.Printf("📋 Starting to get organization by ID: %s", id)
	if !core.IsValidULID(id) {
		return mo.None[*models.Organization](), fmt.Errorf("organization ID must be a valid ULID")
	}

	maybeOrg, err := s.organizationsRepo.GetOrganizationByID(ctx, id)
	if err != nil {
		log.Printf("❌ Failed to get organization by ID: %v", err)
		return mo.None[*models.Organization](), fmt.Errorf("failed to get organization by ID: %w", err)
	}

	if !maybeOrg.IsPresent() {
		log.Printf("📋 Completed successfully - organization not found")
		return mo.None[*models.Organization](), nil
	}

	organization := maybeOrg.MustGet()
	log.Printf("📋 Completed successfully - found organization: %s", organization.Name)
	return mo.Some(organization), nil
}

func (s *OrganizationsService) GetOrganizationByHandle(
	ctx context.Context,
	handle string,
) (mo.Option[*models.Organization], error) {
	log.Printf("📋 Starting to get organization by handle: %s", handle)
	if handle == "" {
		return mo.None[*models.Organization](), fmt.Errorf("organization handle cannot be empty")
	}

	maybeOrg, err := s.organizationsRepo.GetOrganizationByHandle(ctx, handle)
	if err != nil {
		log.Printf("❌ Failed to get organization by handle: %v", err)
		return mo.None[*models.Organization](), fmt.Errorf("failed to get organization by handle: %w", err)
	}

	if !maybeOrg.IsPresent() {
		log.Printf("📋 Completed successfully - organization not found")
		return mo.None[*models.Organization](), nil
	}

	organization := maybeOrg.MustGet()
	log.Printf("📋 Completed successfully - found organization: %s", organization.Name)
	return mo.Some(organization), nil
}

func (s *OrganizationsService) CanUserManageOrganization(
	ctx context.Context,
	discordUserID, organizationID string,
) (bool, error) {
	log.Printf("📋 Starting to check if user %s manages organization: %s", discordUserID, organizationID)
	if discordUserID == "" {
		return false, fmt.Errorf("discord user ID cannot be empty")
	}

	maybeOrg, err := s.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return false, err
	}
	if !maybeOrg.IsPresent() {
		return false, core.ErrNotFound
	}

	organization := maybeOrg.MustGet()
	if organization.OwnerDiscordUserID != nil && *organization.OwnerDiscordUserID == discordUserID {
		log.Printf("📋 Completed successfully - user %s owns organization %s", discordUserID, organizationID)
		return true, nil
	}

	isManager := slices.Contains(organization.ManagerDiscordUserIDs, discordUserID)
	log.Printf("📋 Completed successfully - user %s manages organization %s: %t", discordUserID, organizationID, isManager)
	return isManager, nil
}
