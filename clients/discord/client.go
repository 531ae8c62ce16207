package discord

import (
	"fmt"
	"log"
	"net/http"

	"guildhub/clients"

	"github.com/bwmarrin/discordgo"
)

// fallbackLocation is used for the scheduled event location when the local
// event has none recorded. Discord requires a location on external events.
const fallbackLocation = "TBA"

// DiscordClient implements the clients.DiscordClient interface
type DiscordClient struct {
	session *discordgo.Session
	// appID is the Discord application ID used for slash command registration
	appID string
}

// NewDiscordClient creates a new Discord client using the bot token.
// Automatic rate limit handling in discordgo is disabled so that 429
// responses surface to the caller, where the retry scheduler owns backoff.
func NewDiscordClient(httpClient *http.Client, botToken, appID string) (clients.DiscordClient, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Client = httpClient
	session.ShouldRetryOnRateLimit = false

	return &DiscordClient{
		session: session,
		appID:   appID,
	}, nil
}

// GetGuildByID fetches guild metadata using the bot token
func (c *DiscordClient) GetGuildByID(guildID string) (*clients.DiscordGuild, error) {
	guild, err := c.session.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild: %w", err)
	}
	if guild == nil {
		return nil, fmt.Errorf("guild not found")
	}

	iconURL := ""
	if guild.Icon != "" {
		iconURL = guild.IconURL("256")
	}

	return &clients.DiscordGuild{
		ID:      guild.ID,
		Name:    guild.Name,
		IconURL: iconURL,
	}, nil
}

// UserHasGuildManagementAccess checks whether the user owns the guild or
// holds the Administrator or Manage Server permission through their roles
func (c *DiscordClient) UserHasGuildManagementAccess(guildID, userID string) (bool, error) {
	guild, err := c.session.Guild(guildID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild: %w", err)
	}

	if guild.OwnerID == userID {
		return true, nil
	}

	member, err := c.session.GuildMember(guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild member: %w", err)
	}

	perms := aggregateRolePermissions(guild, member)
	return perms&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0, nil
}

// GetBotGuildPermissions returns the permission bitmask the bot holds in the
// guild, aggregated across its roles
func (c *DiscordClient) GetBotGuildPermissions(guildID string) (int64, error) {
	botUser, err := c.session.User("@me")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bot user: %w", err)
	}

	guild, err := c.session.Guild(guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch guild: %w", err)
	}

	member, err := c.session.GuildMember(guildID, botUser.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bot guild member: %w", err)
	}

	return aggregateRolePermissions(guild, member), nil
}

// aggregateRolePermissions ORs together the permissions of the @everyone role
// and every role the member holds
func aggregateRolePermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	var perms int64
	for _, role := range guild.Roles {
		// The @everyone role shares its ID with the guild
		if role.ID == guild.ID {
			perms |= role.Permissions
			continue
		}
		for _, memberRoleID := range member.Roles {
			if role.ID == memberRoleID {
				perms |= role.Permissions
				break
			}
		}
	}
	return perms
}

func (c *DiscordClient) CreateScheduledEvent(
	guildID string,
	params *clients.ScheduledEventParams,
) (*clients.DiscordScheduledEvent, error) {
	event, err := c.session.GuildScheduledEventCreate(guildID, toScheduledEventParams(params))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduled event: %w", err)
	}

	return toDiscordScheduledEvent(event), nil
}

func (c *DiscordClient) UpdateScheduledEvent(
	guildID, remoteEventID string,
	params *clients.ScheduledEventParams,
) (*clients.DiscordScheduledEvent, error) {
	event, err := c.session.GuildScheduledEventEdit(guildID, remoteEventID, toScheduledEventParams(params))
	if err != nil {
		return nil, fmt.Errorf("failed to update scheduled event: %w", err)
	}

	return toDiscordScheduledEvent(event), nil
}

func (c *DiscordClient) DeleteScheduledEvent(guildID, remoteEventID string) error {
	if err := c.session.GuildScheduledEventDelete(guildID, remoteEventID); err != nil {
		return fmt.Errorf("failed to delete scheduled event: %w", err)
	}
	return nil
}

func (c *DiscordClient) GetScheduledEvent(guildID, remoteEventID string) (*clients.DiscordScheduledEvent, error) {
	event, err := c.session.GuildScheduledEvent(guildID, remoteEventID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduled event: %w", err)
	}

	return toDiscordScheduledEvent(event), nil
}

func (c *DiscordClient) SendChannelEmbed(channelID string, embed *clients.MessageEmbed) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
	for _, field := range embed.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  field.Name,
			Value: field.Value,
		})
	}

	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       embed.Title,
			Description: embed.Description,
			Fields:      fields,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to send channel embed: %w", err)
	}

	return nil
}

// RegisterSlashCommands registers the bridge's command tree globally.
// Failures are isolated per command so one failure does not abort the rest.
func (c *DiscordClient) RegisterSlashCommands() error {
	commands := slashCommands()

	failed := 0
	for _, command := range commands {
		if _, err := c.session.ApplicationCommandCreate(c.appID, "", command); err != nil {
			log.Printf("❌ Failed to register slash command %s: %v", command.Name, err)
			failed++
			continue
		}
		log.Printf("✅ Registered slash command: /%s", command.Name)
	}

	if failed > 0 {
		return fmt.Errorf("failed to register %d of %d slash commands", failed, len(commands))
	}
	return nil
}

func toScheduledEventParams(params *clients.ScheduledEventParams) *discordgo.GuildScheduledEventParams {
	location := params.Location
	if location == "" {
		location = fallbackLocation
	}

	startsAt := params.StartsAt
	endsAt := params.EndsAt

	return &discordgo.GuildScheduledEventParams{
		Name:               params.Name,
		Description:        params.Description,
		ScheduledStartTime: &startsAt,
		ScheduledEndTime:   &endsAt,
		PrivacyLevel:       discordgo.GuildScheduledEventPrivacyLevelGuildOnly,
		EntityType:         discordgo.GuildScheduledEventEntityTypeExternal,
		EntityMetadata: &discordgo.GuildScheduledEventEntityMetadata{
			Location: location,
		},
	}
}

func toDiscordScheduledEvent(event *discordgo.GuildScheduledEvent) *clients.DiscordScheduledEvent {
	return &clients.DiscordScheduledEvent{
		ID:       event.ID,
		GuildID:  event.GuildID,
		Name:     event.Name,
		StartsAt: event.ScheduledStartTime,
	}
}

func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "guildhub",
			Description: "Link this server to a GuildHub organization",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "connect",
					Description: "Connect this server to an organization",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "organization",
							Description: "Organization handle on GuildHub",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show the connection status of this server",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "disconnect",
					Description: "Disconnect this server from its organization",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "help",
					Description: "Show usage for all guildhub commands",
				},
			},
		},
	}
}
