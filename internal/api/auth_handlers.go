package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/clinova/clinic-backend/internal/account"
)

func registerHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "name, email and password are required")
			return
		}

		in := account.RegisterInput{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			Gender:      req.Gender,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		}

		if req.DateOfBirth != nil {
			dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date_of_birth", "date_of_birth must be YYYY-MM-DD")
				return
			}
			in.DateOfBirth = &dob
		}

		user, err := svc.Register(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, account.ErrEmailTaken):
				writeError(w, http.StatusConflict, "email_taken", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{
			UserID:  user.ID,
			Message: "Registration successful",
		})
	}
}

func loginHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		token, expiresAt, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expiresAt})
	}
}
