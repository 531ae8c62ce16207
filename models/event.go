package models

import (
	"time"
)

type Event struct {
	ID             string    `db:"id"               json:"id"`
	OrganizationID string    `db:"organization_id"  json:"organization_id"`
	Title          string    `db:"title"            json:"title"`
	Description    *string   `db:"description"      json:"description"`
	StartsAt       time.Time `db:"starts_at"        json:"starts_at"`
	EndsAt         time.Time `db:"ends_at"          json:"ends_at"`
	Location       *string   `db:"location"         json:"location"`
	ParticipantCap *int      `db:"participant_cap"  json:"participant_cap"`
	// RemoteEventID is the ID of the Discord scheduled event mirroring this
	// event, if one has been created in the linked guild
	RemoteEventID *string   `db:"remote_event_id" json:"remote_event_id"`
	CreatedAt     time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"      json:"updated_at"`
}
