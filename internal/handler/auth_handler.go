package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"campaign-access-service/internal/access"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/repository/scylla"
	"campaign-access-service/internal/service"
	"campaign-access-service/internal/util"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/lock-status/{loginID}", h.LockStatus)
	})
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccountID      string   `json:"account_id"`
	LoginID        string   `json:"login_id"`
	Role           string   `json:"role"`
	VisibleColumns []string `json:"visible_columns"`
}

// Login handles credential verification behind the attempt guard
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.LoginID == "" || req.Password == "" {
		respondWithError(w, h.logger, http.StatusBadRequest,
			errors.New("login_id and password are required"), "Missing credentials")
		return
	}

	result, err := h.authService.Login(ctx, req.LoginID, req.Password, clientIP(r))
	if err != nil {
		h.respondLoginError(w, req.LoginID, err)
		return
	}

	data := loginResponse{
		AccountID:      result.Account.AccountID,
		LoginID:        result.Account.LoginID,
		Role:           string(result.Profile.Role),
		VisibleColumns: columnNames(result.Profile),
	}

	respondWithJSON(w, h.logger, http.StatusOK, successResponse(data, "Login successful"))
	h.logger.Info("Login via HTTP",
		util.String("login_id", req.LoginID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "Login"),
	)
}

// LockStatus reports the current lockout state for a login id
func (h *AuthHandler) LockStatus(w http.ResponseWriter, r *http.Request) {
	loginID := chi.URLParam(r, "loginID")
	if loginID == "" {
		respondWithError(w, h.logger, http.StatusBadRequest,
			errors.New("login id is required"), "Login ID is required")
		return
	}

	retryAfter, locked := h.authService.LockStatus(loginID)
	remaining := h.authService.RemainingAttempts(loginID)

	data := map[string]interface{}{
		"locked":              locked,
		"retry_after_seconds": retryAfter,
		"remaining_attempts":  remaining,
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(data, "Lock status retrieved"))
}

func (h *AuthHandler) respondLoginError(w http.ResponseWriter, loginID string, err error) {
	switch {
	case errors.Is(err, service.ErrAccountLocked):
		retryAfter, _ := h.authService.LockStatus(loginID)
		resp := errorResponse(err, "Too many failed attempts, account temporarily locked")
		resp.Meta = &Meta{RetryAfterSeconds: retryAfter}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		respondWithJSON(w, h.logger, http.StatusLocked, resp)
	case errors.Is(err, service.ErrInvalidCredentials):
		remaining := h.authService.RemainingAttempts(loginID)
		resp := errorResponse(err, "Invalid login id or password")
		resp.Meta = &Meta{RemainingAttempts: &remaining}
		respondWithJSON(w, h.logger, http.StatusUnauthorized, resp)
	case errors.Is(err, model.ErrInvalidProfile):
		respondWithError(w, h.logger, http.StatusInternalServerError, err, "Access profile misconfigured")
	case errors.Is(err, scylla.ErrAccountNotFound):
		respondWithError(w, h.logger, http.StatusUnauthorized, err, "Invalid login id or password")
	default:
		respondWithError(w, h.logger, http.StatusInternalServerError, err, "Login failed")
	}
}

// columnNames flattens the profile's visible columns for the wire.
func columnNames(profile model.UserAccessProfile) []string {
	visible := access.VisibleColumns(profile)
	names := make([]string, 0, len(visible))
	for _, col := range visible {
		names = append(names, string(col))
	}
	return names
}

func clientIP(r *http.Request) string {
	return r.RemoteAddr
}
