package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email, COALESCE(national_id, ''), supervisor_id, active, created_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.Email, &e.NationalID, &e.SupervisorID, &e.Active, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context, activeOnly bool, limit, offset int) ([]Employee, error) {
	query := `
    SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email, COALESCE(national_id, ''), supervisor_id, active, created_at
    FROM employees
  `
	args := []any{}
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY last_name, first_name LIMIT $1 OFFSET $2"
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.Email, &e.NationalID, &e.SupervisorID, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// SupervisorOf returns the supervisor of the given employee, or
// ErrNotFound when the employee has no supervisor assigned.
func (s *Store) SupervisorOf(ctx context.Context, employeeID string) (Employee, error) {
	var supervisorID *string
	if err := s.DB.QueryRow(ctx, "SELECT supervisor_id FROM employees WHERE id = $1", employeeID).Scan(&supervisorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	if supervisorID == nil || *supervisorID == "" {
		return Employee{}, ErrNotFound
	}
	return s.GetEmployee(ctx, *supervisorID)
}

func (s *Store) IsSupervisorOf(ctx context.Context, supervisorEmployeeID, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE id = $1 AND supervisor_id = $2
  `, employeeID, supervisorEmployeeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) GetShiftTemplateByName(ctx context.Context, name string) (ShiftTemplate, error) {
	var t ShiftTemplate
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_time::text, end_time::text, active
    FROM shift_templates
    WHERE name = $1 AND active
  `, name).Scan(&t.ID, &t.Name, &t.StartTime, &t.EndTime, &t.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ShiftTemplate{}, ErrNotFound
	}
	if err != nil {
		return ShiftTemplate{}, err
	}
	return t, nil
}

func (s *Store) ListShiftTemplates(ctx context.Context) ([]ShiftTemplate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_time::text, end_time::text, active
    FROM shift_templates
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShiftTemplate
	for rows.Next() {
		var t ShiftTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.StartTime, &t.EndTime, &t.Active); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, active FROM rooms ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Active); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, nil
}

// CompetentRooms lists the rooms an employee is qualified to staff.
func (s *Store) CompetentRooms(ctx context.Context, employeeID string) ([]Room, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.name, r.active
    FROM rooms r
    JOIN room_skills rs ON rs.room_id = r.id
    WHERE rs.employee_id = $1 AND r.active
    ORDER BY r.name
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Active); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, nil
}
