package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.Repository {
	return &settingsRepository{db: db}
}

// Get implements settings.Repository.
func (s *settingsRepository) Get(ctx context.Context, key string) (settings.Mutation, error) {
	q := GetQuerier(ctx, s.db)

	var m settings.Mutation
	err := q.QueryRowContext(ctx, `
		SELECT key, value, updated_at, is_synced FROM setting_mutations WHERE key = ?
	`, key).Scan(&m.Key, &m.Value, &m.UpdatedAt, &m.IsSynced)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return settings.Mutation{}, settings.ErrSettingNotFound
		}
		return settings.Mutation{}, fmt.Errorf("failed to get setting: %w", err)
	}

	return m, nil
}

// Set implements settings.Repository.
func (s *settingsRepository) Set(ctx context.Context, key, value string, updatedAt time.Time) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO setting_mutations (key, value, updated_at, is_synced)
		VALUES (?, ?, ?, 0)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			is_synced = 0
	`

	if _, err := q.ExecContext(ctx, query, key, value, updatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}

	return nil
}

// ListUnsynced implements settings.Repository.
func (s *settingsRepository) ListUnsynced(ctx context.Context) ([]settings.Mutation, error) {
	q := GetQuerier(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT key, value, updated_at, is_synced
		FROM setting_mutations
		WHERE is_synced = 0
		ORDER BY updated_at ASC, key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced settings: %w", err)
	}
	defer rows.Close()

	var mutations []settings.Mutation
	for rows.Next() {
		var m settings.Mutation
		if err := rows.Scan(&m.Key, &m.Value, &m.UpdatedAt, &m.IsSynced); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		mutations = append(mutations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return mutations, nil
}

// MarkSynced implements settings.Repository. The updated_at guard keeps a
// setting that was written again while its old value was in flight.
func (s *settingsRepository) MarkSynced(ctx context.Context, key string, ifUpdatedAt time.Time) error {
	q := GetQuerier(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		UPDATE setting_mutations SET is_synced = 1 WHERE key = ? AND updated_at <= ?
	`, key, ifUpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to mark setting synced: %w", err)
	}

	return nil
}

// DeleteAll implements settings.Repository. The device pin is cleared with
// the rest of the store on logout.
func (s *settingsRepository) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, s.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM setting_mutations`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM device_pin`); err != nil {
		return fmt.Errorf("failed to clear device pin: %w", err)
	}

	return nil
}

// GetPinHash implements settings.Repository.
func (s *settingsRepository) GetPinHash(ctx context.Context) (string, error) {
	q := GetQuerier(ctx, s.db)

	var hash string
	err := q.QueryRowContext(ctx, `SELECT pin_hash FROM device_pin WHERE id = 1`).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", settings.ErrPinNotSet
		}
		return "", fmt.Errorf("failed to get device pin: %w", err)
	}

	return hash, nil
}

// SetPinHash implements settings.Repository.
func (s *settingsRepository) SetPinHash(ctx context.Context, hash string) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO device_pin (id, pin_hash, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			pin_hash = excluded.pin_hash,
			updated_at = excluded.updated_at
	`

	if _, err := q.ExecContext(ctx, query, hash, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set device pin: %w", err)
	}

	return nil
}
