package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.BeginTx(ctx, pgx.TxOptions{})
}

func (s *Store) DayRecord(ctx context.Context, employeeID string, date time.Time) (DayRecord, bool, error) {
	var rec DayRecord
	err := s.DB.QueryRow(ctx, `
    SELECT d.id, d.employee_id, d.date, d.shift_template_id, st.name, d.room_id, COALESCE(r.name, ''), COALESCE(d.change_kind, ''), d.created_at
    FROM day_schedule_records d
    JOIN shift_templates st ON d.shift_template_id = st.id
    LEFT JOIN rooms r ON d.room_id = r.id
    WHERE d.employee_id = $1 AND d.date = $2
  `, employeeID, DateOnly(date)).Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ShiftTemplateID, &rec.ShiftName, &rec.RoomID, &rec.RoomName, &rec.ChangeKind, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DayRecord{}, false, nil
	}
	if err != nil {
		return DayRecord{}, false, err
	}
	return rec, true, nil
}

// StandingShift returns the standing assignment whose window contains
// the date. When windows overlap the most recent start wins.
func (s *Store) StandingShift(ctx context.Context, employeeID string, date time.Time) (StandingAssignment, bool, error) {
	var a StandingAssignment
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, a.employee_id, a.shift_template_id, st.name, a.start_date, a.end_date
    FROM standing_shift_assignments a
    JOIN shift_templates st ON a.shift_template_id = st.id
    WHERE a.employee_id = $1 AND a.start_date <= $2 AND (a.end_date IS NULL OR a.end_date >= $2)
    ORDER BY a.start_date DESC
    LIMIT 1
  `, employeeID, DateOnly(date)).Scan(&a.ID, &a.EmployeeID, &a.ShiftTemplateID, &a.ShiftName, &a.StartDate, &a.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return StandingAssignment{}, false, nil
	}
	if err != nil {
		return StandingAssignment{}, false, err
	}
	return a, true, nil
}

// SpecialRoomOn resolves a date-bounded room override for the employee,
// returning the room id and name.
func (s *Store) SpecialRoomOn(ctx context.Context, employeeID string, date time.Time) (string, string, bool, error) {
	var roomID, roomName string
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.name
    FROM room_assignments ra
    JOIN rooms r ON ra.room_id = r.id
    WHERE ra.employee_id = $1 AND ra.start_date <= $2 AND (ra.end_date IS NULL OR ra.end_date >= $2)
    ORDER BY ra.start_date DESC
    LIMIT 1
  `, employeeID, DateOnly(date)).Scan(&roomID, &roomName)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return roomID, roomName, true, nil
}

// DayRecordShiftsForDate maps employee id to the shift name pinned by a
// day record on the given date.
func (s *Store) DayRecordShiftsForDate(ctx context.Context, date time.Time) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.employee_id, st.name
    FROM day_schedule_records d
    JOIN shift_templates st ON d.shift_template_id = st.id
    WHERE d.date = $1
  `, DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var employeeID, shiftName string
		if err := rows.Scan(&employeeID, &shiftName); err != nil {
			return nil, err
		}
		out[employeeID] = shiftName
	}
	return out, nil
}

// StandingShiftsForDate maps employee id to the standing shift name in
// force on the given date, most recent start winning.
func (s *Store) StandingShiftsForDate(ctx context.Context, date time.Time) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (a.employee_id) a.employee_id, st.name
    FROM standing_shift_assignments a
    JOIN shift_templates st ON a.shift_template_id = st.id
    WHERE a.start_date <= $1 AND (a.end_date IS NULL OR a.end_date >= $1)
    ORDER BY a.employee_id, a.start_date DESC
  `, DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var employeeID, shiftName string
		if err := rows.Scan(&employeeID, &shiftName); err != nil {
			return nil, err
		}
		out[employeeID] = shiftName
	}
	return out, nil
}

func (s *Store) SpecialDayOn(ctx context.Context, date time.Time) (SpecialDay, bool, error) {
	var day SpecialDay
	err := s.DB.QueryRow(ctx, `
    SELECT id, date, kind, COALESCE(description, ''), active
    FROM special_days
    WHERE date = $1 AND active
    LIMIT 1
  `, DateOnly(date)).Scan(&day.ID, &day.Date, &day.Kind, &day.Description, &day.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return SpecialDay{}, false, nil
	}
	if err != nil {
		return SpecialDay{}, false, err
	}
	return day, true, nil
}

func (s *Store) ListSpecialDays(ctx context.Context, from, to time.Time) ([]SpecialDay, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, date, kind, COALESCE(description, ''), active
    FROM special_days
    WHERE date >= $1 AND date <= $2 AND active
    ORDER BY date
  `, DateOnly(from), DateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SpecialDay
	for rows.Next() {
		var day SpecialDay
		if err := rows.Scan(&day.ID, &day.Date, &day.Kind, &day.Description, &day.Active); err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, nil
}

func (s *Store) CreateSpecialDay(ctx context.Context, date time.Time, kind, description string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO special_days (date, kind, description)
    VALUES ($1,$2,$3)
    RETURNING id
  `, DateOnly(date), kind, description).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeactivateSpecialDay(ctx context.Context, specialDayID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE special_days SET active = false WHERE id = $1", specialDayID)
	return err
}

// UpsertDayRecordTx writes the authoritative record for the employee and
// date, replacing any previous record for that pair.
func (s *Store) UpsertDayRecordTx(ctx context.Context, tx pgx.Tx, employeeID string, date time.Time, shiftTemplateID string, roomID *string, changeKind string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO day_schedule_records (employee_id, date, shift_template_id, room_id, change_kind)
    VALUES ($1,$2,$3,$4,NULLIF($5,''))
    ON CONFLICT (employee_id, date) DO UPDATE
      SET shift_template_id = EXCLUDED.shift_template_id,
          room_id = EXCLUDED.room_id,
          change_kind = EXCLUDED.change_kind
    RETURNING id
  `, employeeID, DateOnly(date), shiftTemplateID, roomID, changeKind).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// TrimStandingAssignmentsTx shortens standing windows so none of them
// remains in force on or after the cutoff date.
func (s *Store) TrimStandingAssignmentsTx(ctx context.Context, tx pgx.Tx, employeeID string, cutoff time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, `
    UPDATE standing_shift_assignments
    SET end_date = $2::date - 1
    WHERE employee_id = $1 AND (end_date IS NULL OR end_date >= $2)
  `, employeeID, DateOnly(cutoff))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) InsertStandingAssignmentTx(ctx context.Context, tx pgx.Tx, employeeID, shiftTemplateID string, start time.Time, end *time.Time) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO standing_shift_assignments (employee_id, shift_template_id, start_date, end_date)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, employeeID, shiftTemplateID, DateOnly(start), end).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListDayRecordsRange(ctx context.Context, from, to time.Time) ([]DayRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.employee_id, d.date, d.shift_template_id, st.name, d.room_id, COALESCE(r.name, ''), COALESCE(d.change_kind, ''), d.created_at
    FROM day_schedule_records d
    JOIN shift_templates st ON d.shift_template_id = st.id
    LEFT JOIN rooms r ON d.room_id = r.id
    WHERE d.date >= $1 AND d.date <= $2
    ORDER BY d.date, d.employee_id
  `, DateOnly(from), DateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRecord
	for rows.Next() {
		var rec DayRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ShiftTemplateID, &rec.ShiftName, &rec.RoomID, &rec.RoomName, &rec.ChangeKind, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
