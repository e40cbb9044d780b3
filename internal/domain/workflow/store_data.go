package workflow

import (
	"database/sql"

	"github.com/jackc/pgx/v5"
)

// selectRequest pulls a request together with its optional kind detail
// rows. Queries append their own WHERE and ORDER BY clauses.
const selectRequest = `
	SELECT cr.id, cr.kind, cr.requester_id, cr.receiver_id, cr.target_date,
	       COALESCE(cr.comment, ''), cr.state,
	       cr.receiver_approved, cr.receiver_decided_at,
	       cr.supervisor_approved, cr.supervisor_decided_at,
	       cr.superseded_request_id, cr.origin_record_id, cr.destination_record_id,
	       COALESCE(cr.apply_message, ''), cr.resolved_at, cr.created_at,
	       pcd.start_date, pcd.end_date,
	       dsd.debt_minutes, dsd.settled_on
	FROM change_requests cr
	LEFT JOIN permanent_change_details pcd ON pcd.request_id = cr.id
	LEFT JOIN double_shift_details dsd ON dsd.request_id = cr.id`

func scanRequest(row pgx.Row) (ChangeRequest, error) {
	var req ChangeRequest
	var kind string
	var permStart, permEnd sql.NullTime
	var debtMinutes sql.NullInt64
	var settledOn sql.NullTime

	err := row.Scan(
		&req.ID, &kind, &req.RequesterID, &req.ReceiverID, &req.TargetDate,
		&req.Comment, &req.State,
		&req.ReceiverApproved, &req.ReceiverDecidedAt,
		&req.SupervisorApproved, &req.SupervisorDecidedAt,
		&req.SupersededRequestID, &req.OriginRecordID, &req.DestinationRecordID,
		&req.ApplyMessage, &req.ResolvedAt, &req.CreatedAt,
		&permStart, &permEnd,
		&debtMinutes, &settledOn,
	)
	if err != nil {
		return ChangeRequest{}, err
	}
	req.Kind = Kind(kind)

	if permStart.Valid {
		detail := &PermanentChangeDetail{StartDate: permStart.Time}
		if permEnd.Valid {
			end := permEnd.Time
			detail.EndDate = &end
		}
		req.Permanent = detail
	}
	if debtMinutes.Valid {
		detail := &DoubleShiftDetail{DebtMinutes: int(debtMinutes.Int64)}
		if settledOn.Valid {
			on := settledOn.Time
			detail.SettledOn = &on
		}
		req.Debt = detail
	}
	return req, nil
}

func scanRequests(rows pgx.Rows) ([]ChangeRequest, error) {
	var reqs []ChangeRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
