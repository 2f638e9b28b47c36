package scylla

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"campaign-access-service/internal/model"
	"campaign-access-service/internal/util"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignRepository reads raw campaign rows. Rows come back unfiltered and
// unmasked; the access layer applies policy before anything leaves the
// service.
type CampaignRepository interface {
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
}

type campaignRepository struct {
	client *ScyllaClient
	logger *zap.Logger
}

func NewCampaignRepository(client *ScyllaClient, logger *zap.Logger) CampaignRepository {
	return &campaignRepository{client: client, logger: logger}
}

func (r *campaignRepository) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	iter := r.client.Prepared.ListCampaigns.WithContext(ctx).Iter()

	var campaigns []model.Campaign
	var c model.Campaign
	for iter.Scan(&c.ID, &c.Name, &c.Creative, &c.Channel, &c.StartDate, &c.EndDate,
		&c.Spend, &c.BudgetAccount, &c.Department, &c.Agency, &c.CreatedAt) {
		campaigns = append(campaigns, c)
	}
	if err := iter.Close(); err != nil {
		r.logger.Error("failed to list campaigns", util.ErrorField(err))
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return campaigns, nil
}

func (r *campaignRepository) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.client.Prepared.GetCampaign.
		WithContext(ctx).
		Bind(id).
		Scan(&c.ID, &c.Name, &c.Creative, &c.Channel, &c.StartDate, &c.EndDate,
			&c.Spend, &c.BudgetAccount, &c.Department, &c.Agency, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}
