package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"campaign-access-service/internal/access"
	"campaign-access-service/internal/client"
	"campaign-access-service/internal/model"
	redisrepo "campaign-access-service/internal/repository/redis"
	"campaign-access-service/internal/repository/scylla"
	"campaign-access-service/internal/summary"
	"campaign-access-service/internal/util"
)

// AccessService resolves access profiles and serves the policy-filtered read
// paths. Every outward-facing row goes through the scope filter and the
// masking transform here; handlers never touch raw rows.
type AccessService struct {
	profiles  scylla.ProfileRepository
	campaigns scylla.CampaignRepository
	cache     *redisrepo.ProfileCache
	logger    *zap.Logger
}

func NewAccessService(
	profiles scylla.ProfileRepository,
	campaigns scylla.CampaignRepository,
	cache *redisrepo.ProfileCache,
	logger *zap.Logger,
) *AccessService {
	return &AccessService{
		profiles:  profiles,
		campaigns: campaigns,
		cache:     cache,
		logger:    logger,
	}
}

// ResolveProfile derives the validated access profile for an account. The
// raw configuration comes from the cache when the session is warm, from
// Scylla otherwise. An account with no configuration yet gets the default
// profile: every column denied, rows unrestricted. A configuration that
// fails validation is an error: fail closed, no partial trust.
func (s *AccessService) ResolveProfile(ctx context.Context, accountID, roleName string) (model.UserAccessProfile, error) {
	raw, err := s.loadRawProfile(ctx, accountID)
	if err != nil {
		if errors.Is(err, scylla.ErrProfileConfigNotFound) {
			role, roleErr := model.ParseRole(roleName)
			if roleErr != nil {
				return model.UserAccessProfile{}, roleErr
			}
			s.logger.Info("no profile configured, using restrictive default",
				util.String("account_id", accountID))
			return model.DefaultProfile(role), nil
		}
		return model.UserAccessProfile{}, err
	}

	profile, err := model.ValidateProfile(raw)
	if err != nil {
		s.logger.Error("persisted profile failed validation",
			util.String("account_id", accountID),
			util.ErrorField(err))
		return model.UserAccessProfile{}, err
	}

	return profile, nil
}

func (s *AccessService) loadRawProfile(ctx context.Context, accountID string) (model.RawProfile, error) {
	if s.cache != nil {
		if raw, err := s.cache.GetRawProfile(ctx, accountID); err == nil {
			return raw, nil
		} else if !errors.Is(err, client.ErrKeyNotFound) {
			// Cache trouble falls through to the source of truth.
			s.logger.Warn("profile cache read failed",
				util.String("account_id", accountID),
				util.ErrorField(err))
		}
	}

	raw, err := s.profiles.GetProfileConfig(ctx, accountID)
	if err != nil {
		return model.RawProfile{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetRawProfile(ctx, accountID, raw); err != nil {
			s.logger.Warn("profile cache write failed",
				util.String("account_id", accountID),
				util.ErrorField(err))
		}
	}
	return raw, nil
}

// SaveProfileConfig validates and persists a new configuration, then drops
// the cached copy so the next session re-derives the profile.
func (s *AccessService) SaveProfileConfig(ctx context.Context, accountID string, raw model.RawProfile) error {
	if _, err := model.ValidateProfile(raw); err != nil {
		return err
	}
	if err := s.profiles.SaveProfileConfig(ctx, accountID, raw); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, accountID); err != nil {
			s.logger.Warn("profile cache invalidation failed",
				util.String("account_id", accountID),
				util.ErrorField(err))
		}
	}
	return nil
}

// Summary computes the dashboard aggregates for the profile at a reference
// date. Row scoping and spend gating happen inside the aggregation adapter.
func (s *AccessService) Summary(ctx context.Context, profile model.UserAccessProfile, refDate time.Time) (summary.DashboardSummary, error) {
	rows, err := s.campaigns.ListCampaigns(ctx)
	if err != nil {
		return summary.DashboardSummary{}, err
	}
	return summary.Build(rows, profile, refDate), nil
}

// Campaigns returns the scope-filtered, column-masked campaign listing.
func (s *AccessService) Campaigns(ctx context.Context, profile model.UserAccessProfile) ([]model.CampaignView, error) {
	rows, err := s.campaigns.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	visible := access.FilterRowsByScope(rows, profile)
	return access.MaskCampaigns(visible, profile), nil
}

// VisibleColumns reports the columns a feature projection exposes to the
// profile; the management table uses it to decide which headers to render.
func (s *AccessService) VisibleColumns(profile model.UserAccessProfile, projection access.Projection) []model.ColumnKey {
	return projection.Visible(profile)
}
