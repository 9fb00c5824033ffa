package stubapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

const refreshCookieName = "refreshToken"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !user.IsVerified {
		respondError(w, http.StatusForbidden, "please verify your email first")
		return
	}

	accessToken, err := s.issueSession(w, r, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":        user,
		"accessToken": accessToken,
	})
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if _, err := s.store.CreateUser(req.Email, req.Password, req.FirstName, req.LastName, domain.RoleUser, false); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	s.sendOTP(req.Email)
	respondMessage(w, http.StatusCreated, "verification code sent")
}

// sendOTP stores a fresh verification code; a real backend would email it,
// the stub logs it instead.
func (s *Server) sendOTP(email string) {
	code := uuid.NewString()
	s.store.SetOTP(email, code)
	log.Printf("verification code for %s: %s", email, code)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email, ok := s.store.ConsumeOTP(req.Token)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid or expired verification code")
		return
	}
	user, err := s.store.MarkVerified(email)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	accessToken, err := s.issueSession(w, r, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":        user,
		"accessToken": accessToken,
	})
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.store.UserByEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if user.IsVerified {
		respondError(w, http.StatusBadRequest, "account already verified")
		return
	}
	s.sendOTP(req.Email)
	respondMessage(w, http.StatusOK, "verification code sent")
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.store.UserByEmail(req.Email); err != nil {
		// Do not reveal whether the account exists.
		respondMessage(w, http.StatusOK, "reset link sent if the account exists")
		return
	}
	token := uuid.NewString()
	s.store.SetResetToken(token, req.Email)
	log.Printf("password reset token for %s: %s", req.Email, token)
	respondMessage(w, http.StatusOK, "reset link sent if the account exists")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	email, ok := s.store.ConsumeResetToken(req.Token)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid or expired reset token")
		return
	}
	if err := s.store.SetPassword(email, req.NewPassword); err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondMessage(w, http.StatusOK, "password updated")
}

// handleRefreshToken exchanges a valid refresh cookie for a new access
// token; this is the endpoint the client's single-flight refresh hits.
func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	userID, err := s.tokens.Lookup(r.Context(), KindRefresh, cookie.Value)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	accessToken := uuid.NewString()
	if err := s.tokens.Save(r.Context(), KindAccess, accessToken, userID, s.accessTTL); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

// handleMe authenticates with the refresh cookie (app bootstrap happens
// before any access token exists) and returns the user plus a fresh token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	userID, err := s.tokens.Lookup(r.Context(), KindRefresh, cookie.Value)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := s.store.User(userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	accessToken := uuid.NewString()
	if err := s.tokens.Save(r.Context(), KindAccess, accessToken, userID, s.accessTTL); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":        user,
		"accessToken": accessToken,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	profileImage := ""
	if _, header, err := r.FormFile("profileImage"); err == nil {
		profileImage = "/uploads/" + header.Filename
	}

	user, err := s.store.UpdateProfile(userID,
		r.FormValue("firstName"),
		r.FormValue("lastName"),
		r.FormValue("nickName"),
		profileImage,
	)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.store.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	respondMessage(w, http.StatusOK, "password updated")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		_ = s.tokens.Revoke(r.Context(), KindRefresh, cookie.Value)
	}
	if token := bearerToken(r); token != "" {
		_ = s.tokens.Revoke(r.Context(), KindAccess, token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondMessage(w, http.StatusOK, "logged out")
}

// issueSession mints an access/refresh token pair and sets the refresh
// cookie.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, userID int64) (string, error) {
	accessToken := uuid.NewString()
	if err := s.tokens.Save(r.Context(), KindAccess, accessToken, userID, s.accessTTL); err != nil {
		return "", err
	}

	refreshToken := uuid.NewString()
	if err := s.tokens.Save(r.Context(), KindRefresh, refreshToken, userID, s.refreshTTL); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(s.refreshTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return accessToken, nil
}
