package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, timestamp, punch_direction, punch_type, attendance_status,
	   is_synced, created_on, date_of_punch, latitude, longitude, address, requires_approval`

func scanRecord(row interface{ Scan(...interface{}) error }) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.Timestamp, &rec.PunchDirection, &rec.PunchType, &rec.AttendanceStatus,
		&rec.IsSynced, &rec.CreatedOn, &rec.DateOfPunch,
		&rec.Latitude, &rec.Longitude, &rec.Address, &rec.RequiresApproval,
	)
	return rec, err
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, timestamp, punch_direction, punch_type, attendance_status,
			is_synced, created_on, date_of_punch, latitude, longitude, address, requires_approval
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		rec.ID,
		rec.Timestamp.UTC(),
		rec.PunchDirection,
		rec.PunchType,
		rec.AttendanceStatus,
		rec.IsSynced,
		rec.CreatedOn.UTC(),
		rec.DateOfPunch,
		rec.Latitude,
		rec.Longitude,
		rec.Address,
		rec.RequiresApproval,
	)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = ?`

	rec, err := scanRecord(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return rec, nil
}

// Last implements attendance.Repository.
func (a *attendanceRepository) Last(ctx context.Context) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		ORDER BY timestamp DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last attendance record: %w", err)
	}

	return &rec, nil
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`

	rows, err := q.QueryContext(ctx, query, limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, total, nil
}

// ListUnsynced implements attendance.Repository.
func (a *attendanceRepository) ListUnsynced(ctx context.Context) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE is_synced = 0
		ORDER BY timestamp ASC
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, nil
}

// MarkSynced implements attendance.Repository. The is_synced guard makes a
// duplicate ack a no-op.
func (a *attendanceRepository) MarkSynced(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	_, err := q.ExecContext(ctx, `
		UPDATE attendance_records SET is_synced = 1 WHERE id = ? AND is_synced = 0
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark attendance record synced: %w", err)
	}

	return nil
}

// DeleteAll implements attendance.Repository.
func (a *attendanceRepository) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, a.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
		return fmt.Errorf("failed to clear attendance records: %w", err)
	}

	return nil
}
