package models

import (
	"time"

	"github.com/lib/pq"
)

type Organization struct {
	ID                    string         `db:"id"                       json:"id"`
	Handle                string         `db:"handle"                   json:"handle"`
	Name                  string         `db:"name"                     json:"name"`
	OwnerDiscordUserID    *string        `db:"owner_discord_user_id"    json:"owner_discord_user_id"`
	ManagerDiscordUserIDs pq.StringArray `db:"manager_discord_user_ids" json:"manager_discord_user_ids"`
	CreatedAt             time.Time      `db:"created_at"               json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"               json:"updated_at"`
}
