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

type PostgresOrganizationsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for organizations table
var organizationsColumns = []string{
	"id",
	"handle",
	"name",
	"owner_discord_user_id",
	"manager_discord_user_ids",
	"created_at",
	"updated_at",
}

func NewPostgresOrganizationsRepository(db *sqlx.DB, schema string) *PostgresOrganizationsRepository {
	return &PostgresOrganizationsRepository{db: db, schema: schema}
}

func (r *PostgresOrganizationsRepository) CreateOrganization(
	ctx context.Context,
	organization *models.Organization,
) error {
	insertColumns := []string{
		"id",
		"handle",
		"name",
		"owner_discord_user_id",
		"manager_discord_user_ids",
		"created_at",
		"updated_at",
	}
	columnsStr := strings.Join(insertColumns, ", ")
	returningStr := strings.Join(organizationsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.organizations (%s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		organization.ID,
		organization.Handle,
		organization.Name,
		organization.OwnerDiscordUserID,
		organization.ManagerDiscordUserIDs,
	).StructScan(organization)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

func (r *PostgresOrganizationsRepository) GetOrganizationByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Organization], error) {
	columnsStr := strings.Join(organizationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.organizations
		WHERE id = $1`, columnsStr, r.schema)

	var organization models.Organization
	err := r.db.GetContext(ctx, &organization, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Organization](), nil
		}
		return mo.None[*models.Organization](), fmt.Errorf("failed to get organization by ID: %w", err)
	}

	return mo.Some(&organization), nil
}

func (r *PostgresOrganizationsRepository) DeleteOrganizationByID(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s.organizations
		WHERE id = $1`, r.schema)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete organization: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *PostgresOrganizationsRepository) GetOrganizationByHandle(
	ctx context.Context,
	handle string,
) (mo.Option[*models.Organization], error) {
	if handle == "" {
		return mo.None[*models.Organization](), fmt.Errorf("handle cannot be empty")
	}

	columnsStr := strings.Join(organizationsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.organizations
		WHERE handle = $1`, columnsStr, r.schema)

	var organization models.Organization
	err := r.db.GetContext(ctx, &organization, query, handle)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.Organization](), nil
		}
		return mo.None[*models.Organization](), fmt.Errorf("failed to get organization by handle: %w", err)
	}

	return mo.Some(&organization), nil
}
