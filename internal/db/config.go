package db

import (
	"context"
	"fmt"

	"github.com/repairops/backend/internal/models"
)

// Config keys the quota reset scheduler honors at runtime.
const (
	ConfigQuotaResetDay  = "quota_reset_day"
	ConfigQuotaResetHour = "quota_reset_hour"
)

func (s *Store) ListSystemConfig(ctx context.Context) ([]models.ConfigEntry, error) {
	rows, err := s.db.Query(ctx, `SELECT key, value, updated_at FROM system_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list system config: %w", err)
	}
	defer rows.Close()

	var out []models.ConfigEntry
	for rows.Next() {
		var e models.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan config entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertSystemConfig writes one key, creating it on first use.
func (s *Store) UpsertSystemConfig(ctx context.Context, key, value string) (models.ConfigEntry, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO system_config (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`, key, value)

	var e models.ConfigEntry
	if err := row.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
		return models.ConfigEntry{}, fmt.Errorf("upsert system config %s: %w", key, err)
	}
	return e, nil
}
