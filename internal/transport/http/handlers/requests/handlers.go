package requestshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shiftswap/internal/domain/auth"
	"shiftswap/internal/domain/debt"
	"shiftswap/internal/domain/schedule"
	"shiftswap/internal/domain/workflow"
	"shiftswap/internal/platform/metrics"
	"shiftswap/internal/transport/http/api"
	"shiftswap/internal/transport/http/middleware"
	"shiftswap/internal/transport/http/shared"
)

type Handler struct {
	Service *workflow.Service
	Debt    *debt.Service
	Metrics *metrics.Collector
}

func NewHandler(service *workflow.Service, debtSvc *debt.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Debt: debtSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", h.handleListMine)
		r.Post("/", h.handleCreate)
		r.Get("/kinds", h.handleKinds)
		r.Get("/candidates", h.handleCandidates)
		r.Get("/inbox", h.handleInbox)
		r.Get("/{requestID}", h.handleGet)
		r.Post("/{requestID}/approve", h.handleApprove)
		r.Post("/{requestID}/reject", h.handleReject)
		r.Post("/{requestID}/cancel", h.handleCancel)
		r.Post("/{requestID}/settle", h.handleSettle)
	})
}

// requestView decorates a request with its display phrase.
type requestView struct {
	workflow.ChangeRequest
	DisplayStatus string `json:"displayStatus"`
}

func view(req workflow.ChangeRequest) requestView {
	return requestView{ChangeRequest: req, DisplayStatus: workflow.DisplayStatus(req)}
}

func views(reqs []workflow.ChangeRequest) []requestView {
	out := make([]requestView, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, view(req))
	}
	return out
}

// failDomain translates the workflow error taxonomy to HTTP codes.
// Unknown errors fall through to a generic 500.
func failDomain(w http.ResponseWriter, err error, requestID string) {
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", verr.Message,
			map[string]any{"rule": verr.Rule}, requestID)
		return
	}
	var perr *workflow.PermissionError
	if errors.As(err, &perr) {
		api.Fail(w, http.StatusForbidden, "forbidden", perr.Message, requestID)
		return
	}
	var cerr *workflow.StateConflictError
	if errors.As(err, &cerr) {
		if cerr.State != "" {
			api.FailWithDetails(w, http.StatusConflict, "state_conflict", cerr.Message,
				map[string]any{"state": cerr.State}, requestID)
			return
		}
		api.Fail(w, http.StatusConflict, "state_conflict", cerr.Message, requestID)
		return
	}
	var nerr *workflow.NotFoundError
	if errors.As(err, &nerr) {
		api.Fail(w, http.StatusNotFound, "not_found", nerr.Error(), requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "request_failed", "request operation failed", requestID)
}

type createRequest struct {
	Kind        string `json:"kind"`
	ReceiverID  string `json:"receiverId"`
	TargetDate  string `json:"targetDate"`
	Comment     string `json:"comment"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	DebtMinutes int    `json:"debtMinutes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("kind", payload.Kind, "kind is required")
	kind, known := workflow.ParseKind(payload.Kind)
	if payload.Kind != "" && !known {
		v.Add("kind", "unknown request kind")
	}
	targetDate, _ := v.Date("targetDate", payload.TargetDate)
	minutes := v.PositiveInt("debtMinutes", payload.DebtMinutes)

	var startDate time.Time
	var endDate *time.Time
	if payload.StartDate != "" {
		if parsed, ok := v.Date("startDate", payload.StartDate); ok {
			startDate = schedule.DateOnly(parsed)
		}
	}
	if payload.EndDate != "" {
		if parsed, ok := v.Date("endDate", payload.EndDate); ok {
			end := schedule.DateOnly(parsed)
			endDate = &end
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	req, err := h.Service.Create(r.Context(), workflow.CreateInput{
		Kind:        kind,
		RequesterID: user.EmployeeID,
		ReceiverID:  payload.ReceiverID,
		TargetDate:  schedule.DateOnly(targetDate),
		Comment:     payload.Comment,
		StartDate:   startDate,
		EndDate:     endDate,
		DebtMinutes: minutes,
	})
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCreated()
	}
	api.Created(w, view(req), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)

	reqs, total, err := h.Service.ListByRequester(r.Context(), user.EmployeeID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"items": views(reqs),
		"total": total,
	}, middleware.GetRequestID(r.Context()))
}

// handleInbox lists the requests awaiting the caller's decision, as
// receiver and as supervisor.
func (h *Handler) handleInbox(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	asReceiver, err := h.Service.ListPendingForReceiver(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "inbox_failed", "failed to load inbox", middleware.GetRequestID(r.Context()))
		return
	}
	asSupervisor, err := h.Service.ListPendingForSupervisor(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "inbox_failed", "failed to load inbox", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"asReceiver":   views(asReceiver),
		"asSupervisor": views(asSupervisor),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if req.RequesterID != user.EmployeeID && req.ReceiverID != user.EmployeeID && !auth.IsAdministrator(user.RoleName) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not a party to this request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view(req), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleKinds(w http.ResponseWriter, r *http.Request) {
	api.Success(w, []string{
		string(workflow.KindSwap),
		string(workflow.KindExtraShift),
		string(workflow.KindPermanentChange),
		string(workflow.KindWeekendDouble),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("kind", r.URL.Query().Get("kind"), "kind is required")
	kind, known := workflow.ParseKind(r.URL.Query().Get("kind"))
	if r.URL.Query().Get("kind") != "" && !known {
		v.Add("kind", "unknown request kind")
	}
	date, _ := v.Date("date", r.URL.Query().Get("date"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	candidates, err := h.Service.Candidates(r.Context(), kind, user.EmployeeID, schedule.DateOnly(date))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, candidates, middleware.GetRequestID(r.Context()))
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload decisionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	requestID := chi.URLParam(r, "requestID")
	isAdmin := auth.IsAdministrator(user.RoleName)

	var res workflow.DecisionResult
	var err error
	if approve {
		res, err = h.Service.Approve(r.Context(), requestID, user.EmployeeID, isAdmin, payload.Comment)
	} else {
		res, err = h.Service.Reject(r.Context(), requestID, user.EmployeeID, isAdmin, payload.Comment)
	}
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil && res.Final {
		h.Metrics.RecordDecision(approve)
	}

	api.Success(w, map[string]any{
		"request": view(res.Request),
		"role":    res.Role,
		"final":   res.Final,
		"apply":   res.Apply,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "requestID"), user.EmployeeID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view(req), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Debt.Settle(r.Context(), chi.URLParam(r, "requestID"), user.EmployeeID, auth.IsAdministrator(user.RoleName))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}
