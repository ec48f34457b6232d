package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type profileRepository struct {
	db *database.DB
}

const profileColumns = `
	u.id, u.email, u.full_name, u.role, u.department_id,
	d.code AS department_code, d.name AS department_name,
	u.manager_id, u.created_at, u.updated_at`

func scanProfile(row pgx.Row) (user.Profile, error) {
	var p user.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.Role, &p.DepartmentID,
		&p.DepartmentCode, &p.DepartmentName,
		&p.ManagerID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *profileRepository) fillLocationIDs(ctx context.Context, profiles []user.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}

	rows, err := q.Query(ctx, `SELECT user_id, location_id FROM user_locations WHERE user_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load location assignments: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string][]string)
	for rows.Next() {
		var userID, locationID string
		if err := rows.Scan(&userID, &locationID); err != nil {
			return fmt.Errorf("failed to scan location assignment: %w", err)
		}
		byUser[userID] = append(byUser[userID], locationID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range profiles {
		profiles[i].LocationIDs = byUser[profiles[i].ID]
	}
	return nil
}

// GetByID implements user.ProfileRepository.
func (r *profileRepository) GetByID(ctx context.Context, id string) (user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.id = $1`

	profile, err := scanProfile(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Profile{}, user.ErrUserNotFound
		}
		return user.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	profiles := []user.Profile{profile}
	if err := r.fillLocationIDs(ctx, profiles); err != nil {
		return user.Profile{}, err
	}

	return profiles[0], nil
}

// ListApproversByDepartment implements user.ProfileRepository.
func (r *profileRepository) ListApproversByDepartment(ctx context.Context, departmentID string) ([]user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.department_id = $1
		  AND u.role IN ('department_head', 'regional_manager')
		ORDER BY u.full_name`

	rows, err := q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list department approvers: %w", err)
	}
	defer rows.Close()

	var profiles []user.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approver profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.fillLocationIDs(ctx, profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

// GetDepartmentHead implements user.ProfileRepository.
func (r *profileRepository) GetDepartmentHead(ctx context.Context, userID string) (user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.role = 'department_head'
		  AND u.department_id = (SELECT department_id FROM users WHERE id = $1)
		LIMIT 1`

	profile, err := scanProfile(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Profile{}, user.ErrUserNotFound
		}
		return user.Profile{}, fmt.Errorf("failed to get department head: %w", err)
	}

	return profile, nil
}

func NewProfileRepository(db *database.DB) user.ProfileRepository {
	return &profileRepository{db: db}
}
