package clients

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// RequiredBotPermissions is the permission set the bot needs in a guild for
// event mirroring: scheduled-event management, message sending, link
// embedding, history reading and channel viewing
const RequiredBotPermissions int64 = discordgo.PermissionManageEvents |
	discordgo.PermissionSendMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionViewChannel

// DiscordGuild represents guild metadata fetched from the Discord API
type DiscordGuild struct {
	ID      string
	Name    string
	IconURL string
}

// DiscordScheduledEvent represents a scheduled event resource inside a guild,
// the remote mirror of a local Event
type DiscordScheduledEvent struct {
	ID       string
	GuildID  string
	Name     string
	StartsAt time.Time
}

// ScheduledEventParams carries the fields for creating or updating a
// scheduled event in a guild
type ScheduledEventParams struct {
	Name        string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Location    string
}

// EmbedField is a single name/value pair inside a message embed
type EmbedField struct {
	Name  string
	Value string
}

// MessageEmbed is a rich announcement message posted to a guild channel
type MessageEmbed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

// DiscordClient defines the interface for all remote Discord API operations
type DiscordClient interface {
	GetGuildByID(guildID string) (*DiscordGuild, error)
	// UserHasGuildManagementAccess reports whether the user is the guild
	// owner or holds the Administrator or Manage Server permission
	UserHasGuildManagementAccess(guildID, userID string) (bool, error)
	// GetBotGuildPermissions returns the permission bitmask the bot itself
	// holds in the guild
	GetBotGuildPermissions(guildID string) (int64, error)
	CreateScheduledEvent(guildID string, params *ScheduledEventParams) (*DiscordScheduledEvent, error)
	UpdateScheduledEvent(guildID, remoteEventID string, params *ScheduledEventParams) (*DiscordScheduledEvent, error)
	DeleteScheduledEvent(guildID, remoteEventID string) error
	GetScheduledEvent(guildID, remoteEventID string) (*DiscordScheduledEvent, error)
	SendChannelEmbed(channelID string, embed *MessageEmbed) error
	// RegisterSlashCommands registers the bridge's slash command tree with
	// Discord. Per-command failures are isolated so one failure does not
	// abort the remaining registrations.
	RegisterSlashCommands() error
}
