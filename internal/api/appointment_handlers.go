package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinova/clinic-backend/internal/account"
	"github.com/clinova/clinic-backend/internal/scheduling"
)

func bookAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		startAt, err := time.Parse(time.RFC3339, req.StartAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_at", "start_at must be RFC 3339")
			return
		}

		claims := GetClaims(r.Context())
		patientID := claims.UserID
		if req.PatientID != nil {
			// Only admins book on behalf of someone else.
			if claims.Role != string(account.RoleAdmin) {
				writeError(w, http.StatusForbidden, "forbidden", "only admins may set patient_id")
				return
			}
			patientID, err = uuid.Parse(*req.PatientID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
		}

		appt, err := svc.Book(r.Context(), patientID, doctorID, startAt, req.Notes)
		if err != nil {
			switch {
			case errors.Is(err, scheduling.ErrSlotUnavailable):
				writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
			case errors.Is(err, scheduling.ErrSlotBeingBooked):
				writeError(w, http.StatusConflict, "slot_being_booked", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

// myAppointmentsHandler lists the caller's appointments: a patient sees
// their bookings, a doctor their schedule.
func myAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())

		var (
			appts []scheduling.Appointment
			err   error
		)
		switch claims.Role {
		case string(account.RolePatient):
			appts, err = svc.ListByPatient(r.Context(), claims.UserID, 0, 0)
		case string(account.RoleDoctor):
			appts, err = svc.ListByDoctor(r.Context(), claims.UserID, 0, 0)
		default:
			writeError(w, http.StatusForbidden, "forbidden", "admins have no personal appointment list")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, toAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func cancelAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return transitionHandler(svc, func(appt *scheduling.Appointment, claims claimsView) bool {
		// The patient, the doctor or an admin may cancel.
		return claims.isAdmin || claims.userID == appt.PatientID || claims.userID == appt.DoctorID
	}, (*scheduling.Service).Cancel)
}

func completeAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return transitionHandler(svc, func(appt *scheduling.Appointment, claims claimsView) bool {
		// Only the treating doctor or an admin may mark a visit done.
		return claims.isAdmin || claims.userID == appt.DoctorID
	}, (*scheduling.Service).Complete)
}

type claimsView struct {
	userID  uuid.UUID
	isAdmin bool
}

func transitionHandler(
	svc *scheduling.Service,
	allowed func(appt *scheduling.Appointment, claims claimsView) bool,
	apply func(*scheduling.Service, context.Context, uuid.UUID) (*scheduling.Appointment, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			if errors.Is(err, scheduling.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		claims := GetClaims(r.Context())
		view := claimsView{userID: claims.UserID, isAdmin: claims.Role == string(account.RoleAdmin)}
		if !allowed(appt, view) {
			writeError(w, http.StatusForbidden, "forbidden", "not your appointment")
			return
		}

		updated, err := apply(svc, r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, scheduling.ErrInvalidStatusTransition):
				writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
			case errors.Is(err, scheduling.ErrAppointmentNotFound):
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(updated))
	}
}
