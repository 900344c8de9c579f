package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"serwer-obrazow/internal/images"
	"serwer-obrazow/internal/models"
)

// GetTierForUser resolves the single tier bound to a user via user_tiers.
// Returns (nil, nil) when the user has no tier bound.
func (q *Queries) GetTierForUser(ctx context.Context, userID int64) (*models.AccountTier, error) {
	query := `
		SELECT t.id, t.name, t.thumbnail_sizes, t.include_original, t.allow_expiring_links
		FROM account_tiers t
		JOIN user_tiers ut ON t.id = ut.tier_id
		WHERE ut.user_id = $1
	`
	tier, err := scanTier(q.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tier, nil
}

func (q *Queries) ListTiers(ctx context.Context) ([]models.AccountTier, error) {
	query := `
		SELECT id, name, thumbnail_sizes, include_original, allow_expiring_links
		FROM account_tiers
		ORDER BY id
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []models.AccountTier
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, *tier)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if tiers == nil {
		return []models.AccountTier{}, nil
	}

	return tiers, nil
}

func (q *Queries) CreateTier(ctx context.Context, arg images.CreateTierParams) (*models.AccountTier, error) {
	sizesJSON, err := json.Marshal(arg.ThumbnailSizes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal thumbnail sizes: %w", err)
	}

	query := `
		INSERT INTO account_tiers (name, thumbnail_sizes, include_original, allow_expiring_links)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, thumbnail_sizes, include_original, allow_expiring_links
	`
	tier, err := scanTier(q.db.QueryRow(ctx, query, arg.Name, sizesJSON, arg.IncludeOriginal, arg.AllowExpiringLinks))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, images.ErrDuplicateTierName
		}
		return nil, err
	}

	return tier, nil
}

// SetUserTier binds a user to exactly one tier, replacing any previous binding.
func (q *Queries) SetUserTier(ctx context.Context, userID, tierID int64) error {
	query := `
		INSERT INTO user_tiers (user_id, tier_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET tier_id = EXCLUDED.tier_id
	`
	_, err := q.db.Exec(ctx, query, userID, tierID)
	return err
}

func scanTier(row pgx.Row) (*models.AccountTier, error) {
	var tier models.AccountTier
	var sizesJSON []byte

	err := row.Scan(
		&tier.ID,
		&tier.Name,
		&sizesJSON,
		&tier.IncludeOriginal,
		&tier.AllowExpiringLinks,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(sizesJSON, &tier.ThumbnailSizes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thumbnail sizes: %w", err)
	}

	return &tier, nil
}
