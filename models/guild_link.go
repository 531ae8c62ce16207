package models

import (
	"time"
)

// GuildLink is the one-to-one association between a Discord guild and an
// organization. At most one link exists per guild; reconnecting a guild
// replaces its link rather than merging into it.
type GuildLink struct {
	ID                  string  `db:"id"                     json:"id"`
	DiscordGuildID      string  `db:"discord_guild_id"       json:"discord_guild_id"`
	OrganizationID      string  `db:"organization_id"        json:"organization_id"`
	DiscordGuildName    string  `db:"discord_guild_name"     json:"discord_guild_name"`
	DiscordGuildIconURL *string `db:"discord_guild_icon_url" json:"discord_guild_icon_url"`
	// BotPermissions is the permission bitmask the bot held in the guild at
	// connect time, tested via bitwise AND before any mutating Discord call
	BotPermissions int64     `db:"bot_permissions" json:"bot_permissions"`
	AutoSync       bool      `db:"auto_sync"       json:"auto_sync"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}
