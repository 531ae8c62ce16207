package discord

import (
	"context"
	"fmt"
	"log"

	"guildhub/clients"
	"guildhub/models"
	"guildhub/services"
	"guildhub/utils"
)

// DiscordUseCase routes parsed slash-command interactions to their handlers.
// Every branch of every handler produces exactly one reply; failures and
// panics at the dispatch boundary collapse into a generic ephemeral error so
// no interaction is ever left unanswered.
type DiscordUseCase struct {
	discordClient        clients.DiscordClient
	guildLinksService    services.GuildLinksService
	organizationsService services.OrganizationsService
}

func NewDiscordUseCase(
	discordClient clients.DiscordClient,
	guildLinksService services.GuildLinksService,
	organizationsService services.OrganizationsService,
) *DiscordUseCase {
	return &DiscordUseCase{
		discordClient:        discordClient,
		guildLinksService:    guildLinksService,
		organizationsService: organizationsService,
	}
}

// ProcessInteraction is the single dispatch boundary for inbound
// interactions. It always returns a reply, never an error.
func (u *DiscordUseCase) ProcessInteraction(ctx context.Context, interaction *models.Interaction) (reply *models.InteractionReply) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Panic while handling %s interaction %s: %v", interaction.Command.CommandName(), interaction.ID, r)
			reply = ephemeralReply(genericErrorMessage)
		}
	}()

	log.Printf("📋 Starting to process %s interaction %s from guild %s", interaction.Command.CommandName(), interaction.ID, interaction.GuildID)

	var err error
	switch command := interaction.Command.(type) {
	case models.ConnectCommand:
		reply, err = u.handleConnect(ctx, interaction, command)
	case models.StatusCommand:
		reply, err = u.handleStatus(ctx, interaction)
	case models.DisconnectCommand:
		reply, err = u.handleDisconnect(ctx, interaction)
	case models.HelpCommand:
		reply = ephemeralReply(helpText(command.Unknown))
	default:
		reply = ephemeralReply(helpText(interaction.Command.CommandName()))
	}
	if err != nil {
		log.Printf("❌ Failed to handle %s interaction %s: %v", interaction.Command.CommandName(), interaction.ID, err)
		return ephemeralReply(genericErrorMessage)
	}

	log.Printf("📋 Completed successfully - processed %s interaction %s", interaction.Command.CommandName(), interaction.ID)
	return reply
}

// handleConnect links the invoking guild to an organization. Reconnecting
// replaces the existing link: the old link is deleted before the new one is
// created, a two-step sequence that is not atomic.
func (u *DiscordUseCase) handleConnect(
	ctx context.Context,
	interaction *models.Interaction,
	command models.ConnectCommand,
) (*models.InteractionReply, error) {
	hasAccess, err := u.discordClient.UserHasGuildManagementAccess(interaction.GuildID, interaction.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check guild management access: %w", err)
	}
	if !hasAccess {
		return ephemeralReply("You need to be the server owner or have the Administrator or Manage Server permission to connect this server."), nil
	}

	deleted, err := u.guildLinksService.DeleteGuildLinkByGuildID(ctx, interaction.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete existing guild link: %w", err)
	}
	if deleted {
		log.Printf("📋 Replaced existing guild link for guild %s", interaction.GuildID)
	}

	botPermissions, err := u.discordClient.GetBotGuildPermissions(interaction.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot permissions: %w", err)
	}
	if botPermissions&clients.RequiredBotPermissions != clients.RequiredBotPermissions {
		return ephemeralReply("The bot is missing permissions in this server. It needs Manage Events, Send Messages, Embed Links, Read Message History, and View Channels."), nil
	}

	if command.OrgHandle == "" {
		return ephemeralReply("Connecting a server to a personal account is not yet supported. Pass an organization handle instead."), nil
	}

	maybeOrganization, err := u.organizationsService.GetOrganizationByHandle(ctx, command.OrgHandle)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if !maybeOrganization.IsPresent() {
		return ephemeralReply(fmt.Sprintf("No organization found with handle `%s`.", command.OrgHandle)), nil
	}
	organization := maybeOrganization.MustGet()

	canManage, err := u.organizationsService.CanUserManageOrganization(ctx, interaction.UserID, organization.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization management access: %w", err)
	}
	if !canManage {
		return ephemeralReply(fmt.Sprintf("You are not an owner or manager of **%s**.", organization.Name)), nil
	}

	guild, err := u.discordClient.GetGuildByID(interaction.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}

	var iconURL *string
	if guild.IconURL != "" {
		iconURL = &guild.IconURL
	}
	link := &models.GuildLink{
		DiscordGuildID:      interaction.GuildID,
		OrganizationID:      organization.ID,
		DiscordGuildName:    guild.Name,
		DiscordGuildIconURL: iconURL,
		BotPermissions:      botPermissions,
		AutoSync:            true,
	}
	if err := u.guildLinksService.CreateGuildLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create guild link: %w", err)
	}

	return publicReply(fmt.Sprintf("✅ This server is now connected to **%s**. New events will be synced automatically.", organization.Name)), nil
}

func (u *DiscordUseCase) handleStatus(ctx context.Context, interaction *models.Interaction) (*models.InteractionReply, error) {
	maybeLink, err := u.guildLinksService.GetGuildLinkByGuildID(ctx, interaction.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild link: %w", err)
	}
	if !maybeLink.IsPresent() {
		return ephemeralReply("This server is not connected to an organization. Use `/guildhub connect` to set it up."), nil
	}
	link := maybeLink.MustGet()

	organizationName := link.OrganizationID
	maybeOrganization, err := u.organizationsService.GetOrganizationByID(ctx, link.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if maybeOrganization.IsPresent() {
		organizationName = maybeOrganization.MustGet().Name
	}

	botHealth := "🟢 healthy"
	if _, err := u.discordClient.GetGuildByID(interaction.GuildID); err != nil {
		log.Printf("⚠️ Bot health check failed for guild %s: %v", interaction.GuildID, err)
		botHealth = "🔴 unreachable"
	}

	autoSync := "enabled"
	if !link.AutoSync {
		autoSync = "disabled"
	}

	return publicReply(fmt.Sprintf(
		"**Connection status**\nOrganization: **%s** (`%s`)\nBot: %s\nAuto-sync: %s\nConnected since: %s",
		organizationName,
		link.OrganizationID,
		botHealth,
		autoSync,
		utils.FormatDiscordTimestamp(link.CreatedAt, "D"),
	)), nil
}

func (u *DiscordUseCase) handleDisconnect(ctx context.Context, interaction *models.Interaction) (*models.InteractionReply, error) {
	hasAccess, err := u.discordClient.UserHasGuildManagementAccess(interaction.GuildID, interaction.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check guild management access: %w", err)
	}
	if !hasAccess {
		return ephemeralReply("You need to be the server owner or have the Administrator or Manage Server permission to disconnect this server."), nil
	}

	deleted, err := u.guildLinksService.DeleteGuildLinkByGuildID(ctx, interaction.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete guild link: %w", err)
	}
	if !deleted {
		return ephemeralReply("This server is not connected to an organization."), nil
	}

	return publicReply("✅ This server has been disconnected. Events will no longer be synced."), nil
}
