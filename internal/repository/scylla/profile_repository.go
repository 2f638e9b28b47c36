package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"campaign-access-service/internal/model"
	"campaign-access-service/internal/util"
)

var ErrProfileConfigNotFound = errors.New("access profile configuration not found")

// ProfileRepository loads and stores the persisted per-user access
// configuration. What it returns is untrusted: the service layer must run it
// through model.ValidateProfile before use.
type ProfileRepository interface {
	GetProfileConfig(ctx context.Context, accountID string) (model.RawProfile, error)
	SaveProfileConfig(ctx context.Context, accountID string, raw model.RawProfile) error
}

type profileRepository struct {
	client *ScyllaClient
	logger *zap.Logger
}

func NewProfileRepository(client *ScyllaClient, logger *zap.Logger) ProfileRepository {
	return &profileRepository{client: client, logger: logger}
}

func (r *profileRepository) GetProfileConfig(ctx context.Context, accountID string) (model.RawProfile, error) {
	var raw model.RawProfile
	var updatedAt time.Time

	err := r.client.Prepared.GetProfileConfig.
		WithContext(ctx).
		Bind(accountID).
		Scan(&raw.Role, &raw.ColumnPermissions, &raw.Departments, &raw.Agencies, &updatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return model.RawProfile{}, ErrProfileConfigNotFound
		}
		r.logger.Error("failed to get profile config",
			util.String("account_id", accountID),
			util.ErrorField(err))
		return model.RawProfile{}, fmt.Errorf("failed to get profile config: %w", err)
	}

	return raw, nil
}

func (r *profileRepository) SaveProfileConfig(ctx context.Context, accountID string, raw model.RawProfile) error {
	err := r.client.Prepared.SaveProfileConfig.
		WithContext(ctx).
		Bind(accountID, raw.Role, raw.ColumnPermissions, raw.Departments, raw.Agencies, time.Now().UTC()).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to save profile config: %w", err)
	}

	r.logger.Info("Profile config saved", util.String("account_id", accountID))
	return nil
}
