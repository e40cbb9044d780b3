package corehandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/transport/http/api"
	"shiftswap/internal/transport/http/middleware"
	"shiftswap/internal/transport/http/shared"
)

type Handler struct {
	Store *core.Store
}

func NewHandler(store *core.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.handleListEmployees)
	r.Get("/employees/{employeeID}", h.handleGetEmployee)
	r.Get("/employees/{employeeID}/rooms", h.handleEmployeeRooms)
	r.Get("/shift-templates", h.handleListShiftTemplates)
	r.Get("/rooms", h.handleListRooms)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	activeOnly := shared.QueryBool(r, "active", true)

	employees, err := h.Store.ListEmployees(r.Context(), activeOnly, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	employee, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeRooms(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	rooms, err := h.Store.CompetentRooms(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rooms_failed", "failed to list rooms", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rooms, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListShiftTemplates(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	templates, err := h.Store.ListShiftTemplates(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "shift_templates_failed", "failed to list shift templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	rooms, err := h.Store.ListRooms(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rooms_failed", "failed to list rooms", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rooms, middleware.GetRequestID(r.Context()))
}
