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

type PostgresGuildLinksRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for guild_links table
var guildLinksColumns = []string{
	"id",
	"discord_guild_id",
	"organization_id",
	"discord_guild_name",
	"discord_guild_icon_url",
	"bot_permissions",
	"auto_sync",
	"created_at",
	"updated_at",
}

func NewPostgresGuildLinksRepository(db *sqlx.DB, schema string) *PostgresGuildLinksRepository {
	return &PostgresGuildLinksRepository{db: db, schema: schema}
}

func (r *PostgresGuildLinksRepository) CreateGuildLink(ctx context.Context, link *models.GuildLink) error {
	insertColumns := []string{
		"id",
		"discord_guild_id",
		"organization_id",
		"discord_guild_name",
		"discord_guild_icon_url",
		"bot_permissions",
		"auto_sync",
		"created_at",
		"updated_at",
	}
	columnsStr := strings.Join(insertColumns, ", ")
	returningStr := strings.Join(guildLinksColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.guild_links (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		link.ID,
		link.DiscordGuildID,
		link.OrganizationID,
		link.DiscordGuildName,
		link.DiscordGuildIconURL,
		link.BotPermissions,
		link.AutoSync,
	).StructScan(link)
	if err != nil {
		return fmt.Errorf("failed to create guild link: %w", err)
	}

	return nil
}

func (r *PostgresGuildLinksRepository) GetGuildLinkByGuildID(
	ctx context.Context,
	guildID string,
) (mo.Option[*models.GuildLink], error) {
	if guildID == "" {
		return mo.None[*models.GuildLink](), fmt.Errorf("guild ID cannot be empty")
	}

	columnsStr := strings.Join(guildLinksColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.guild_links
		WHERE discord_guild_id = $1`, columnsStr, r.schema)

	var link models.GuildLink
	err := r.db.GetContext(ctx, &link, query, guildID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.GuildLink](), nil
		}
		return mo.None[*models.GuildLink](), fmt.Errorf("failed to get guild link by guild ID: %w", err)
	}

	return mo.Some(&link), nil
}

func (r *PostgresGuildLinksRepository) GetGuildLinkByOrganizationID(
	ctx context.Context,
	organizationID string,
) (mo.Option[*models.GuildLink], error) {
	if organizationID == "" {
		return mo.None[*models.GuildLink](), fmt.Errorf("organization ID cannot be empty")
	}

	columnsStr := strings.Join(guildLinksColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.guild_links
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, columnsStr, r.schema)

	var link models.GuildLink
	err := r.db.GetContext(ctx, &link, query, organizationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*models.GuildLink](), nil
		}
		return mo.None[*models.GuildLink](), fmt.Errorf("failed to get guild link by organization ID: %w", err)
	}

	return mo.Some(&link), nil
}

func (r *PostgresGuildLinksRepository) DeleteGuildLinkByGuildID(
	ctx context.Context,
	guildID string,
) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s.guild_links WHERE discord_guild_id = $1`, r.schema)

	result, err := r.db.ExecContext(ctx, query, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete guild link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected > 0, nil
}
