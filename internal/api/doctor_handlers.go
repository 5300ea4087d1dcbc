package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinova/clinic-backend/internal/account"
	"github.com/clinova/clinic-backend/internal/scheduling"
)

func listDoctorsHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, DoctorResponse{
				ID:        d.ID,
				Name:      d.Name,
				Email:     d.Email,
				Specialty: d.Specialty,
				Clinic:    d.Clinic,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func listSlotsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		dateStr := r.URL.Query().Get("date")
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), doctorID, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		if slots == nil {
			slots = []time.Time{}
		}
		writeJSON(w, http.StatusOK, SlotsResponse{
			DoctorID: doctorID,
			Date:     date.Format("2006-01-02"),
			Slots:    slots,
		})
	}
}

func listAvailabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		avs, err := svc.ListAvailability(r.Context(), doctorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AvailabilityResponse, 0, len(avs))
		for i := range avs {
			resp = append(resp, toAvailabilityResponse(&avs[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// addAvailabilityHandler lets a doctor manage their own schedule; admins
// can manage any doctor's.
func addAvailabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		claims := GetClaims(r.Context())
		if claims.Role != string(account.RoleAdmin) && claims.UserID != doctorID {
			writeError(w, http.StatusForbidden, "forbidden", "doctors may only manage their own availability")
			return
		}

		var req AvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := parseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", err.Error())
			return
		}
		end, err := parseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", err.Error())
			return
		}

		av, err := svc.AddAvailability(r.Context(), doctorID, req.DayOfWeek, start, end)
		if err != nil {
			switch {
			case errors.Is(err, scheduling.ErrInvalidWeekday),
				errors.Is(err, scheduling.ErrInvalidWindow):
				writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
			case errors.Is(err, scheduling.ErrAvailabilityExists):
				writeError(w, http.StatusConflict, "availability_exists", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, toAvailabilityResponse(av))
	}
}
