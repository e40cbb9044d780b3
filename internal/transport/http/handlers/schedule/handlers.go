package schedulehandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shiftswap/internal/domain/schedule"
	"shiftswap/internal/transport/http/api"
	"shiftswap/internal/transport/http/middleware"
	"shiftswap/internal/transport/http/shared"
)

type Handler struct {
	Service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/schedule", func(r chi.Router) {
		r.Get("/day", h.handleDayRoster)
		r.Get("/employees/{employeeID}/shift", h.handleShiftDetail)
		r.Get("/special-days", h.handleListSpecialDays)
		r.With(middleware.RequireAdmin).Post("/special-days", h.handleCreateSpecialDay)
		r.With(middleware.RequireAdmin).Delete("/special-days/{specialDayID}", h.handleDeleteSpecialDay)
	})
}

func (h *Handler) handleDayRoster(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	date, ok := v.Date("date", r.URL.Query().Get("date"))
	if !ok {
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}

	entries, specialDay, err := h.Service.DayRoster(r.Context(), schedule.DateOnly(date))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "roster_failed", "failed to load day roster", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"date":       date.Format("2006-01-02"),
		"entries":    entries,
		"specialDay": specialDay,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleShiftDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	date, ok := v.Date("date", r.URL.Query().Get("date"))
	if !ok {
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}

	detail, found, err := h.Service.ShiftDetail(r.Context(), chi.URLParam(r, "employeeID"), schedule.DateOnly(date))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "shift_failed", "failed to resolve shift", middleware.GetRequestID(r.Context()))
		return
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "no_shift", "employee has no shift on that date", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSpecialDays(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	from, okFrom := v.Date("from", r.URL.Query().Get("from"))
	to, okTo := v.Date("to", r.URL.Query().Get("to"))
	if !okFrom || !okTo {
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	days, err := h.Service.ListSpecialDays(r.Context(), schedule.DateOnly(from), schedule.DateOnly(to))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "special_days_failed", "failed to list special days", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, days, middleware.GetRequestID(r.Context()))
}

type createSpecialDayRequest struct {
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateSpecialDay(w http.ResponseWriter, r *http.Request) {
	var payload createSpecialDayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	v.Required("kind", payload.Kind, "kind is required")
	v.Enum("kind", payload.Kind, []string{schedule.SpecialDayHoliday, schedule.SpecialDayMaintenance}, "kind must be holiday or maintenance")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateSpecialDay(r.Context(), schedule.DateOnly(date), payload.Kind, payload.Description)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "special_day_create_failed", "failed to create special day", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteSpecialDay(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeactivateSpecialDay(r.Context(), chi.URLParam(r, "specialDayID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "special_day_delete_failed", "failed to delete special day", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}
