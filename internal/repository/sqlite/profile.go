package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
)

type profileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) profile.Repository {
	return &profileRepository{db: db}
}

// Get implements profile.Repository.
func (p *profileRepository) Get(ctx context.Context) (profile.Profile, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT email, first_name, last_name, date_of_birth, employment_type,
		       designation, profile_photo_url, last_updated_at, last_synced_at
		FROM profile_view
		LIMIT 1
	`

	var prof profile.Profile
	err := q.QueryRowContext(ctx, query).Scan(
		&prof.Email, &prof.FirstName, &prof.LastName, &prof.DateOfBirth,
		&prof.EmploymentType, &prof.Designation, &prof.ProfilePhotoURL,
		&prof.LastUpdatedAt, &prof.LastSyncedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, profile.ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	return prof, nil
}

// Save implements profile.Repository.
func (p *profileRepository) Save(ctx context.Context, prof profile.Profile) error {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO profile_view (
			email, first_name, last_name, date_of_birth, employment_type,
			designation, profile_photo_url, last_updated_at, last_synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			date_of_birth = excluded.date_of_birth,
			employment_type = excluded.employment_type,
			designation = excluded.designation,
			profile_photo_url = excluded.profile_photo_url,
			last_updated_at = excluded.last_updated_at,
			last_synced_at = excluded.last_synced_at
	`

	_, err := q.ExecContext(ctx, query,
		prof.Email, prof.FirstName, prof.LastName, prof.DateOfBirth,
		prof.EmploymentType, prof.Designation, prof.ProfilePhotoURL,
		prof.LastUpdatedAt.UTC(), prof.LastSyncedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// QueueMutation implements profile.Repository. The upsert keeps at most one
// row per property; the newest write wins locally.
func (p *profileRepository) QueueMutation(ctx context.Context, m profile.FieldMutation) error {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO profile_mutations (property, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (property) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := q.ExecContext(ctx, query, m.Property, m.Value, m.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to queue profile mutation: %w", err)
	}

	return nil
}

// ListUnsynced implements profile.Repository.
func (p *profileRepository) ListUnsynced(ctx context.Context) ([]profile.FieldMutation, error) {
	q := GetQuerier(ctx, p.db)

	rows, err := q.QueryContext(ctx, `
		SELECT property, value, updated_at
		FROM profile_mutations
		ORDER BY updated_at ASC, property ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile mutations: %w", err)
	}
	defer rows.Close()

	var mutations []profile.FieldMutation
	for rows.Next() {
		var m profile.FieldMutation
		if err := rows.Scan(&m.Property, &m.Value, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile mutation: %w", err)
		}
		mutations = append(mutations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile mutations: %w", err)
	}

	return mutations, nil
}

// DeleteMutation implements profile.Repository. The updated_at guard keeps a
// field that was edited again while its old value was in flight.
func (p *profileRepository) DeleteMutation(ctx context.Context, property string, ifUpdatedAt time.Time) error {
	q := GetQuerier(ctx, p.db)

	_, err := q.ExecContext(ctx, `
		DELETE FROM profile_mutations WHERE property = ? AND updated_at <= ?
	`, property, ifUpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to dequeue profile mutation: %w", err)
	}

	return nil
}

// DeleteAll implements profile.Repository.
func (p *profileRepository) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, p.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM profile_mutations`); err != nil {
		return fmt.Errorf("failed to clear profile mutations: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM profile_view`); err != nil {
		return fmt.Errorf("failed to clear profile view: %w", err)
	}

	return nil
}
