package guildlinks

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"guildhub/core"
	"guildhub/models"
)

// GuildLinksRepository defines the interface for guild link repository operations
type GuildLinksRepository interface {
	CreateGuildLink(ctx context.Context, link *models.GuildLink) error
	GetGuildLinkByGuildID(ctx context.Context, guildID string) (mo.Option[*models.GuildLink], error)
	GetGuildLinkByOrganizationID(ctx context.Context, organizationID string) (mo.Option[*models.GuildLink], error)
	DeleteGuildLinkByGuildID(ctx context.Context, guildID string) (bool, error)
}

type GuildLinksService struct {
	guildLinksRepo GuildLinksRepository
}

func NewGuildLinksService(repo GuildLinksRepository) *GuildLinksService {
	return &GuildLinksService{guildLinksRepo: repo}
}

func (s *GuildLinksService) CreateGuildLink(ctx context.Context, link *models.GuildLink) error {
	log.Printf("📋 Starting to create guild link for guild: %s", link.DiscordGuildID)
	if link.ID == "" {
		link.ID = core.NewID("gl")
	}
	if !core.IsValidULID(link.ID) {
		return fmt.Errorf("guild link ID must be a valid ULID")
	}
	if link.DiscordGuildID == "" {
		return fmt.Errorf("discord guild ID cannot be empty")
	}
	if !core.IsValidULID(link.OrganizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}

	if err := s.guildLinksRepo.CreateGuildLink(ctx, link); err != nil {
		return fmt.Errorf("failed to create guild link in database: %w", err)
	}

	log.Printf("📋 Completed successfully - created guild link %s for guild: %s", link.ID, link.DiscordGuildName)
	return nil
}

func (s *GuildLinksService) GetGuildLinkByGuildID(
	ctx context.Context,
	guildID string,
) (mo.Option[*models.GuildLink], error) {
	log.Printf("📋 Starting to get guild link by guild ID: %s", guildID)
	if guildID == "" {
		return mo.None[*models.GuildLink](), fmt.Errorf("guild ID cannot be empty")
	}

	maybeLink, err := s.guildLinksRepo.GetGuildLinkByGuildID(ctx, guildID)
	if err != nil {
		log.Printf("❌ Failed to get guild link by guild ID: %v", err)
		return mo.None[*models.GuildLink](), fmt.Errorf("failed to get guild link by guild ID: %w", err)
	}

	if !maybeLink.IsPresent() {
		log.Printf("📋 Completed successfully - guild link not found")
		return mo.None[*models.GuildLink](), nil
	}

	link := maybeLink.MustGet()
	log.Printf("📋 Completed successfully - found guild link for guild: %s", link.DiscordGuildName)
	return mo.Some(link), nil
}

func (s *GuildLinksService) GetGuildLinkByOrganizationID(
	ctx context.Context,
	organizationID string,
) (mo.Option[*models.GuildLink], error) {
	log.Printf("📋 Starting to get guild link by organization ID: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return mo.None[*models.GuildLink](), fmt.Errorf("organization ID must be a valid ULID")
	}

	maybeLink, err := s.guildLinksRepo.GetGuildLinkByOrganizationID(ctx, organizationID)
	if err != nil {
		log.Printf("❌ Failed to get guild link by organization ID: %v", err)
		return mo.None[*models.GuildLink](), fmt.Errorf("failed to get guild link by organization ID: %w", err)
	}

	if !maybeLink.IsPresent() {
		log.Printf("📋 Completed successfully - guild link not found")
		return mo.None[*models.GuildLink](), nil
	}

	link := maybeLink.MustGet()
	log.Printf("📋 Completed successfully - found guild link for guild: %s", link.DiscordGuildID)
	return mo.Some(link), nil
}

func (s *GuildLinksService) DeleteGuildLinkByGuildID(ctx context.Context, guildID string) (bool, error) {
	log.Printf("📋 Starting to delete guild link for guild: %s", guildID)
	if guildID == "" {
		return false, fmt.Errorf("guild ID cannot be empty")
	}

	deleted, err := s.guildLinksRepo.DeleteGuildLinkByGuildID(ctx, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete guild link: %w", err)
	}

	log.Printf("📋 Completed successfully - deleted guild link for guild: %s (existed: %t)", guildID, deleted)
	return deleted, nil
}
