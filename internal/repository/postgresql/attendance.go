package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/attendance"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	a.id, a.user_id, a.date,
	a.check_in, a.check_in_location_id, a.check_in_method,
	a.check_in_latitude, a.check_in_longitude, a.check_in_distance_meters, a.gps_verified,
	a.check_out, a.check_out_location_id, a.check_out_method,
	a.check_out_latitude, a.check_out_longitude, a.check_out_distance_meters,
	a.work_hours, a.off_premises, a.auto_checkout, a.emergency_checkout, a.emergency_reason,
	a.late_reason, a.early_checkout_reason, a.notes,
	a.created_at, a.updated_at`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.UserID, &r.Date,
		&r.CheckIn, &r.CheckInLocationID, &r.CheckInMethod,
		&r.CheckInLatitude, &r.CheckInLongitude, &r.CheckInDistanceMeters, &r.GPSVerified,
		&r.CheckOut, &r.CheckOutLocationID, &r.CheckOutMethod,
		&r.CheckOutLatitude, &r.CheckOutLongitude, &r.CheckOutDistanceMeters,
		&r.WorkHours, &r.OffPremises, &r.AutoCheckout, &r.EmergencyCheckout, &r.EmergencyReason,
		&r.LateReason, &r.EarlyCheckoutReason, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			user_id, date,
			check_in, check_in_location_id, check_in_method,
			check_in_latitude, check_in_longitude, check_in_distance_meters, gps_verified,
			check_out, check_out_location_id, check_out_method, work_hours,
			off_premises, auto_checkout, emergency_checkout, emergency_reason,
			late_reason, early_checkout_reason, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.UserID,
		record.Date,
		record.CheckIn,
		record.CheckInLocationID,
		record.CheckInMethod,
		record.CheckInLatitude,
		record.CheckInLongitude,
		record.CheckInDistanceMeters,
		record.GPSVerified,
		record.CheckOut,
		record.CheckOutLocationID,
		record.CheckOutMethod,
		record.WorkHours,
		record.OffPremises,
		record.AutoCheckout,
		record.EmergencyCheckout,
		record.EmergencyReason,
		record.LateReason,
		record.EarlyCheckoutReason,
		record.Notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a WHERE a.id = $1`

	record, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return record, nil
}

// GetByUserAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1 AND a.date = $2
		LIMIT 1`

	record, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &record, nil
}

// GetOpenSession implements attendance.Repository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, userID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.check_out IS NULL
		ORDER BY a.check_in DESC
		LIMIT 1`

	record, err := scanAttendance(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return &record, nil
}

// CloseSession implements attendance.Repository. The WHERE clause keeps
// the update conditional on the session still being open, so two
// concurrent checkouts resolve to exactly one winner.
func (a *attendanceRepository) CloseSession(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_out = $1,
			check_out_location_id = $2,
			check_out_method = $3,
			check_out_latitude = $4,
			check_out_longitude = $5,
			check_out_distance_meters = $6,
			work_hours = $7,
			auto_checkout = $8,
			emergency_checkout = $9,
			emergency_reason = $10,
			early_checkout_reason = $11,
			updated_at = NOW()
		WHERE id = $12
		  AND check_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		record.CheckOut,
		record.CheckOutLocationID,
		record.CheckOutMethod,
		record.CheckOutLatitude,
		record.CheckOutLongitude,
		record.CheckOutDistanceMeters,
		record.WorkHours,
		record.AutoCheckout,
		record.EmergencyCheckout,
		record.EmergencyReason,
		record.EarlyCheckoutReason,
		record.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to close session: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListOpenBefore implements attendance.Repository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, day time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.check_out IS NULL
		  AND a.date < $1
		ORDER BY a.date ASC`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func buildRecordFilter(filter attendance.RecordFilter, args []interface{}) (string, []interface{}) {
	where := "1=1"
	argIdx := len(args) + 1

	if filter.UserID != nil && *filter.UserID != "" {
		where += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		where += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		where += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		where += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.LocationID != nil && *filter.LocationID != "" {
		where += fmt.Sprintf(" AND (a.check_in_location_id = $%d OR a.check_out_location_id = $%d)", argIdx, argIdx)
		args = append(args, *filter.LocationID)
		argIdx++
	}

	return where, args
}

func orderClause(filter attendance.RecordFilter) string {
	field := "a.date"
	switch filter.SortBy {
	case "user_name":
		field = "u.full_name"
	case "check_in_time":
		field = "a.check_in"
	case "check_out_time":
		field = "a.check_out"
	case "work_hours":
		field = "a.work_hours"
	}

	order := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		order = "ASC"
	}

	return fmt.Sprintf("ORDER BY %s %s, a.check_in DESC", field, order)
}

func (a *attendanceRepository) list(ctx context.Context, where string, args []interface{}, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(`
		SELECT %s,
			u.full_name AS user_name,
			lin.name AS check_in_location_name,
			lout.name AS check_out_location_name
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN geofence_locations lin ON lin.id = a.check_in_location_id
		LEFT JOIN geofence_locations lout ON lout.id = a.check_out_location_id
		WHERE %s
		%s
		LIMIT %d OFFSET %d
	`, attendanceColumns, where, orderClause(filter), limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var r attendance.Record
		err := rows.Scan(
			&r.ID, &r.UserID, &r.Date,
			&r.CheckIn, &r.CheckInLocationID, &r.CheckInMethod,
			&r.CheckInLatitude, &r.CheckInLongitude, &r.CheckInDistanceMeters, &r.GPSVerified,
			&r.CheckOut, &r.CheckOutLocationID, &r.CheckOutMethod,
			&r.CheckOutLatitude, &r.CheckOutLongitude, &r.CheckOutDistanceMeters,
			&r.WorkHours, &r.OffPremises, &r.AutoCheckout, &r.EmergencyCheckout, &r.EmergencyReason,
			&r.LateReason, &r.EarlyCheckoutReason, &r.Notes,
			&r.CreatedAt, &r.UpdatedAt,
			&r.UserName, &r.CheckInLocationName, &r.CheckOutLocationName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, r)
	}

	return records, total, rows.Err()
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	where, args := buildRecordFilter(filter, nil)
	return a.list(ctx, where, args, filter)
}

// ListByUser implements attendance.Repository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	args := []interface{}{userID}
	where, args := buildRecordFilter(filter, args)
	where = "a.user_id = $1 AND " + where
	return a.list(ctx, where, args, filter)
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}
