package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/dmitrijs2005/contacthub/internal/server/users"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Username, email and password are required.")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			writeDetail(w, http.StatusConflict, "A user with this email already exists.")
		case errors.Is(err, users.ErrUsernameTaken):
			writeDetail(w, http.StatusConflict, "A user with this username already exists.")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.Snapshot())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	// login is form-encoded, unlike the JSON endpoints
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	pair, err := s.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailNotConfirmed):
			writeUnauthorized(w, "Email not confirmed. Please confirm your email first.")
		case errors.Is(err, common.ErrorUnauthorized):
			writeUnauthorized(w, "Invalid username or password.")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeUnauthorized(w, msgInvalidCredentials)
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (s *Server) handleRequestEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	already, err := s.auth.RequestEmailConfirmation(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, "User with this email does not exist.")
			return
		}
		s.internalError(w, r, err)
		return
	}

	msg := "Check your email for confirmation link."
	if already {
		msg = "Email already confirmed"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	already, err := s.auth.ConfirmEmail(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			writeDetail(w, http.StatusBadRequest, "Invalid or expired token.")
		case errors.Is(err, common.ErrorNotFound):
			writeDetail(w, http.StatusBadRequest, "Verification error")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	msg := "Email confirmed successfully"
	if already {
		msg = "Email already confirmed"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeDetail(w, http.StatusNotFound, "User with this email does not exist.")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email has been sent."})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	email, err := s.auth.ResetPassword(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			writeDetail(w, http.StatusBadRequest, "Invalid or expired token.")
		case errors.Is(err, common.ErrorNotFound):
			writeDetail(w, http.StatusNotFound, "User not found.")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Token is valid. Proceed with password reset.",
		"email":   email,
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error.")
}
