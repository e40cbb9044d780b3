package workflow

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
	return s.DB.Begin(ctx)
}

func (s *Store) InsertRequestTx(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO change_requests (kind, requester_id, receiver_id, target_date, comment, state, superseded_request_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id, created_at`,
		string(input.Kind), input.RequesterID, input.ReceiverID, input.TargetDate,
		input.Comment, StatePending, supersededRequestID,
	)
	req := ChangeRequest{
		Kind:                input.Kind,
		RequesterID:         input.RequesterID,
		ReceiverID:          input.ReceiverID,
		TargetDate:          input.TargetDate,
		Comment:             input.Comment,
		State:               StatePending,
		SupersededRequestID: supersededRequestID,
	}
	if err := row.Scan(&req.ID, &req.CreatedAt); err != nil {
		return ChangeRequest{}, err
	}
	return req, nil
}

func (s *Store) InsertPermanentDetailTx(ctx context.Context, tx pgx.Tx, requestID string, start time.Time, end *time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO permanent_change_details (request_id, start_date, end_date)
		VALUES ($1, $2, $3)`,
		requestID, start, end,
	)
	return err
}

func (s *Store) InsertDebtDetailTx(ctx context.Context, tx pgx.Tx, requestID string, minutes int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO double_shift_details (request_id, debt_minutes)
		VALUES ($1, $2)`,
		requestID, minutes,
	)
	return err
}

func (s *Store) GetRequest(ctx context.Context, requestID string) (ChangeRequest, error) {
	row := s.DB.QueryRow(ctx, selectRequest+` WHERE cr.id = $1`, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChangeRequest{}, &NotFoundError{Resource: "request", ID: requestID}
	}
	return req, err
}

func (s *Store) GetRequestForUpdateTx(ctx context.Context, tx pgx.Tx, requestID string) (ChangeRequest, error) {
	row := tx.QueryRow(ctx, selectRequest+` WHERE cr.id = $1 FOR UPDATE OF cr`, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChangeRequest{}, &NotFoundError{Resource: "request", ID: requestID}
	}
	return req, err
}

func (s *Store) PendingByRequesterOnDateTx(ctx context.Context, tx pgx.Tx, requesterID string, date time.Time) ([]ChangeRequest, error) {
	rows, err := tx.Query(ctx, selectRequest+`
		WHERE cr.requester_id = $1 AND cr.target_date = $2 AND cr.state = $3
		ORDER BY cr.created_at
		FOR UPDATE OF cr`,
		requesterID, date, StatePending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (s *Store) CancelRequestTx(ctx context.Context, tx pgx.Tx, requestID, note string, resolvedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE change_requests
		SET state = $2,
		    resolved_at = $3,
		    comment = CONCAT_WS(E'\n', comment, $4::text)
		WHERE id = $1`,
		requestID, StateCancelled, resolvedAt, note,
	)
	return err
}

func (s *Store) SetDecisionTx(ctx context.Context, tx pgx.Tx, requestID, role string, approved bool, decidedAt time.Time) error {
	column := "receiver"
	if role == RoleSupervisor {
		column = "supervisor"
	}
	_, err := tx.Exec(ctx, `
		UPDATE change_requests
		SET `+column+`_approved = $2, `+column+`_decided_at = $3
		WHERE id = $1`,
		requestID, approved, decidedAt,
	)
	return err
}

func (s *Store) SetStateTx(ctx context.Context, tx pgx.Tx, requestID, state string, resolvedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE change_requests SET state = $2, resolved_at = $3 WHERE id = $1`,
		requestID, state, resolvedAt,
	)
	return err
}

func (s *Store) AppendCommentTx(ctx context.Context, tx pgx.Tx, requestID, note string) error {
	_, err := tx.Exec(ctx, `
		UPDATE change_requests
		SET comment = CONCAT_WS(E'\n', comment, $2::text)
		WHERE id = $1`,
		requestID, note,
	)
	return err
}

func (s *Store) SetApplyOutcomeTx(ctx context.Context, tx pgx.Tx, requestID, message string, originRecordID, destinationRecordID *string) error {
	_, err := tx.Exec(ctx, `
		UPDATE change_requests
		SET apply_message = NULLIF($2, ''), origin_record_id = $3, destination_record_id = $4
		WHERE id = $1`,
		requestID, message, originRecordID, destinationRecordID,
	)
	return err
}

func (s *Store) HasDuplicatePendingTx(ctx context.Context, tx pgx.Tx, requesterID, receiverID string, date time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM change_requests
			WHERE requester_id = $1 AND receiver_id = $2
			  AND target_date = $3 AND state = $4
		)`,
		requesterID, receiverID, date, StatePending,
	).Scan(&exists)
	return exists, err
}

func (s *Store) HasOverlappingPermanentChange(ctx context.Context, requesterID, receiverID string, start, end time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM change_requests cr
			JOIN permanent_change_details pcd ON pcd.request_id = cr.id
			WHERE ((cr.requester_id = $1 AND cr.receiver_id = $2)
			    OR (cr.requester_id = $2 AND cr.receiver_id = $1))
			  AND cr.state IN ($3, $4)
			  AND pcd.start_date <= $6
			  AND COALESCE(pcd.end_date, DATE '9999-12-31') >= $5
		)`,
		requesterID, receiverID, StatePending, StateApproved, start, end,
	).Scan(&exists)
	return exists, err
}

func (s *Store) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]ChangeRequest, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM change_requests WHERE requester_id = $1`,
		requesterID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, selectRequest+`
		WHERE cr.requester_id = $1
		ORDER BY cr.created_at DESC
		LIMIT $2 OFFSET $3`,
		requesterID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reqs, err := scanRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (s *Store) ListPendingForReceiver(ctx context.Context, receiverID string) ([]ChangeRequest, error) {
	rows, err := s.DB.Query(ctx, selectRequest+`
		WHERE cr.receiver_id = $1 AND cr.state = $2 AND cr.receiver_approved = FALSE
		ORDER BY cr.target_date, cr.created_at`,
		receiverID, StatePending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (s *Store) ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]ChangeRequest, error) {
	rows, err := s.DB.Query(ctx, selectRequest+`
		JOIN employees e ON e.id = cr.requester_id
		WHERE e.supervisor_id = $1 AND cr.state = $2 AND cr.supervisor_approved = FALSE
		ORDER BY cr.target_date, cr.created_at`,
		supervisorID, StatePending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}
