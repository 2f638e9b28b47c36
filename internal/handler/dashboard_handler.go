package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"campaign-access-service/internal/access"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/repository/scylla"
	"campaign-access-service/internal/service"
	"campaign-access-service/internal/util"
)

// loginIDHeader identifies the caller on read paths. Session tokens are a
// separate concern; the gateway in front of this service sets the header.
const loginIDHeader = "X-Login-Id"

// DashboardHandler serves the policy-filtered read paths
type DashboardHandler struct {
	authService   *service.AuthService
	accessService *service.AccessService
	logger        *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(authService *service.AuthService, accessService *service.AccessService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		authService:   authService,
		accessService: accessService,
		logger:        logger,
	}
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(router chi.Router) {
	router.Get("/dashboard/summary", h.GetSummary)
	router.Get("/campaigns", h.ListCampaigns)
	router.Put("/profiles/{accountID}", h.SaveProfile)
}

// GetSummary handles the dashboard aggregate view
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	profile, ok := h.resolveProfile(w, r)
	if !ok {
		return
	}

	refDate := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid date, expected YYYY-MM-DD")
			return
		}
		refDate = parsed
	}

	result, err := h.accessService.Summary(ctx, profile, refDate)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, err, "Failed to build summary")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, successResponse(result, "Summary retrieved successfully"))
	h.logger.Debug("Summary retrieved via HTTP",
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "GetSummary"),
	)
}

// ListCampaigns handles the filtered and masked campaign listing
func (h *DashboardHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	profile, ok := h.resolveProfile(w, r)
	if !ok {
		return
	}

	projection := access.ManagementProjection
	switch name := r.URL.Query().Get("projection"); name {
	case "", access.ManagementProjection.Name():
	case access.ReportProjection.Name():
		projection = access.ReportProjection
	case access.TimelineProjection.Name():
		projection = access.TimelineProjection
	default:
		respondWithError(w, h.logger, http.StatusBadRequest,
			errors.New("unknown projection"), "Unknown projection: "+name)
		return
	}

	views, err := h.accessService.Campaigns(ctx, profile)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, err, "Failed to list campaigns")
		return
	}

	visible := h.accessService.VisibleColumns(profile, projection)
	names := make([]string, 0, len(visible))
	for _, col := range visible {
		names = append(names, string(col))
	}

	resp := successResponse(views, "Campaigns retrieved successfully")
	resp.Meta = &Meta{VisibleColumns: names, Total: len(views)}

	respondWithJSON(w, h.logger, http.StatusOK, resp)
	h.logger.Debug("Campaigns retrieved via HTTP",
		util.Int("count", len(views)),
		util.String("projection", projection.Name()),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "ListCampaigns"),
	)
}

// SaveProfile handles access configuration updates
func (h *DashboardHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	caller, ok := h.resolveProfile(w, r)
	if !ok {
		return
	}
	if !caller.Role.IsAdmin() {
		respondWithError(w, h.logger, http.StatusForbidden,
			errors.New("admin role required"), "Only administrators can change access profiles")
		return
	}

	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		respondWithError(w, h.logger, http.StatusBadRequest,
			errors.New("account id is required"), "Account ID is required")
		return
	}

	var raw model.RawProfile
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.accessService.SaveProfileConfig(ctx, accountID, raw); err != nil {
		if errors.Is(err, model.ErrInvalidProfile) {
			respondWithError(w, h.logger, http.StatusBadRequest, err, "Profile configuration rejected")
			return
		}
		respondWithError(w, h.logger, http.StatusInternalServerError, err, "Failed to save profile")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Profile saved successfully"))
	h.logger.Info("Profile saved via HTTP",
		util.String("account_id", accountID),
		util.Duration("duration", time.Since(startTime)),
		util.String("method", "SaveProfile"),
	)
}

// resolveProfile derives the caller's access profile from the login id
// header. A false return means the response has already been written.
func (h *DashboardHandler) resolveProfile(w http.ResponseWriter, r *http.Request) (model.UserAccessProfile, bool) {
	loginID := r.Header.Get(loginIDHeader)
	if loginID == "" {
		respondWithError(w, h.logger, http.StatusUnauthorized,
			errors.New("missing login id header"), "Authentication required")
		return model.UserAccessProfile{}, false
	}

	profile, err := h.authService.ProfileFor(r.Context(), loginID)
	if err != nil {
		switch {
		case errors.Is(err, scylla.ErrAccountNotFound):
			respondWithError(w, h.logger, http.StatusUnauthorized, err, "Unknown login id")
		case errors.Is(err, model.ErrInvalidProfile):
			respondWithError(w, h.logger, http.StatusInternalServerError, err, "Access profile misconfigured")
		default:
			respondWithError(w, h.logger, http.StatusInternalServerError, err, "Failed to resolve access profile")
		}
		return model.UserAccessProfile{}, false
	}

	return profile, true
}
