package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinova/clinic-backend/internal/account"
)

func dashboardHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Dashboard(r.Context(), time.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, DashboardResponse{
			TotalAppointments:     summary.TotalAppointments,
			WeeklyAppointments:    summary.WeeklyAppointments,
			ScheduledAppointments: summary.ScheduledAppointments,
			CompletedAppointments: summary.CompletedAppointments,
			CancelledAppointments: summary.CancelledAppointments,
			TotalPatients:         summary.TotalPatients,
			TotalDoctors:          summary.TotalDoctors,
		})
	}
}

func listPatientsHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		patients, err := svc.ListPatients(r.Context(), limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]UserResponse, 0, len(patients))
		for i := range patients {
			resp = append(resp, toUserResponse(&patients[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteUserHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteUser(r.Context(), id); err != nil {
			if errors.Is(err, account.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
