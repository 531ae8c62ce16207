package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"guildhub/models"
)

type PostgresEventsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for events table
var eventsColumns = []string{
	"id",
	"organization_id",
	"title",
	"description",
	"starts_at",
	"ends_at",
	"location",
	"participant_cap",
	"remote_event_id",
	"created_at",
	"updated_at",
}

func NewPostgresEventsRepository(db *sqlx.DB, schema string) *PostgresEventsRepository {
	return &PostgresEventsRepository{db: db, schema: schema}
}

func (r *PostgresEventsRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	insertColumns := []string{
		"id",
		"organization_id",
		"title",
		"description",
		"starts_at",
		"ends_at",
		"location",
		"participant_cap",
		"created_at",
		"updated_at",
	}
	columnsStr := strings.Join(insertColumns, ", ")
	returningStr := strings.Join(eventsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.events (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		event.ID,
		event.OrganizationID,
		event.Title,
		event.Description,
		event.StartsAt,
		event.EndsAt,
		event.Location,
		event.ParticipantCap,
	).StructScan(event)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *PostgresEventsRepository) GetEventByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Event], error) {
	columnsStr := strings.Join(eventsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.events
		WHERE id = $1`, columnsStr, r.schema)

	var event models.Event
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Event](), nil
		}
		return mo.None[*models.Event](), fmt.Errorf("failed to get event by ID: %w", err)
	}

	return mo.Some(&event), nil
}

func (r *PostgresEventsRepository) GetEventsByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Event, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("organization ID cannot be empty")
	}

	columnsStr := strings.Join(eventsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.events
		WHERE organization_id = $1
		ORDER BY starts_at ASC`, columnsStr, r.schema)

	var events []*models.Event
	err := r.db.SelectContext(ctx, &events, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by organization ID: %w", err)
	}

	return events, nil
}

func (r *PostgresEventsRepository) UpdateEventRemoteEventID(
	ctx context.Context,
	eventID string,
	remoteEventID *string,
) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s.events
		SET remote_event_id = $2, updated_at = NOW()
		WHERE id = $1`, r.schema)

	result, err := r.db.ExecContext(ctx, query, eventID, remoteEventID)
	if err != nil {
		return false, fmt.Errorf("failed to update event remote event ID: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}
