package reportshandler

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"shiftswap/internal/domain/auth"
	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/debt"
	"shiftswap/internal/domain/schedule"
	"shiftswap/internal/transport/http/api"
	"shiftswap/internal/transport/http/middleware"
)

type Handler struct {
	Schedule *schedule.Service
	Debt     *debt.Service
	Core     *core.Store
}

func NewHandler(scheduleSvc *schedule.Service, debtSvc *debt.Service, coreStore *core.Store) *Handler {
	return &Handler{Schedule: scheduleSvc, Debt: debtSvc, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/debt", h.handleDebtBalances)
		r.Get("/debt/me", h.handleMyDebt)
		r.Get("/schedule/monthly.pdf", h.handleMonthlySchedulePDF)
	})
}

func (h *Handler) handleDebtBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.RoleName != auth.RoleSupervisor && !auth.IsAdministrator(user.RoleName) {
		api.Fail(w, http.StatusForbidden, "forbidden", "supervisor role required", middleware.GetRequestID(r.Context()))
		return
	}

	balances, err := h.Debt.Balances(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "debt_report_failed", "failed to build debt report", middleware.GetRequestID(r.Context()))
		return
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].EmployeeID < balances[j].EmployeeID })
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyDebt(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	balance, err := h.Debt.BalanceFor(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "debt_report_failed", "failed to load debt balance", middleware.GetRequestID(r.Context()))
		return
	}
	entries, err := h.Debt.ListEntries(r.Context(), user.EmployeeID, 50, 0)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "debt_report_failed", "failed to load debt entries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"balance": balance, "entries": entries}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMonthlySchedulePDF(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	month, errMonth := strconv.Atoi(r.URL.Query().Get("month"))
	if errYear != nil || errMonth != nil || month < 1 || month > 12 || year < 2000 || year > 2200 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "year and month query parameters are required", middleware.GetRequestID(r.Context()))
		return
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Schedule %s", first.Format("January 2006")))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		entries, specialDay, err := h.Schedule.DayRoster(r.Context(), day)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "schedule_report_failed", "failed to build schedule report", middleware.GetRequestID(r.Context()))
			return
		}

		pdf.SetFont("Helvetica", "B", 11)
		header := day.Format("Mon 02 Jan")
		if specialDay != nil {
			header += fmt.Sprintf(" (%s)", specialDay.Kind)
		}
		pdf.Cell(0, 7, header)
		pdf.Ln(6)

		pdf.SetFont("Helvetica", "", 10)
		if len(entries) == 0 {
			pdf.Cell(0, 6, "no assignments")
			pdf.Ln(6)
			continue
		}
		for _, entry := range entries {
			line := fmt.Sprintf("  %s: %s", entry.Employee.FullName(), entry.ShiftName)
			if entry.Pinned {
				line += " *"
			}
			pdf.Cell(0, 6, line)
			pdf.Ln(5)
		}
		pdf.Ln(2)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=schedule-%04d-%02d.pdf", year, month))
	if err := pdf.Output(w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "schedule_report_failed", "failed to render schedule report", middleware.GetRequestID(r.Context()))
	}
}
