package service

import (
	"go.uber.org/zap"

	"campaign-access-service/internal/guard"
	"campaign-access-service/internal/hashing"
	redisrepo "campaign-access-service/internal/repository/redis"
	"campaign-access-service/internal/repository/scylla"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	accountRepo  scylla.AccountRepository
	profileRepo  scylla.ProfileRepository
	campaignRepo scylla.CampaignRepository
	profileCache *redisrepo.ProfileCache
	loginGuard   *guard.Guard
	hasher       *hashing.Hasher
	publisher    SecurityEventPublisher
	recorder     EventRecorder
	logger       *zap.Logger

	accessService *AccessService
	authService   *AuthService
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(
	accountRepo scylla.AccountRepository,
	profileRepo scylla.ProfileRepository,
	campaignRepo scylla.CampaignRepository,
	profileCache *redisrepo.ProfileCache,
	loginGuard *guard.Guard,
	hasher *hashing.Hasher,
	publisher SecurityEventPublisher,
	recorder EventRecorder,
	logger *zap.Logger,
) *ServiceFactory {
	return &ServiceFactory{
		accountRepo:  accountRepo,
		profileRepo:  profileRepo,
		campaignRepo: campaignRepo,
		profileCache: profileCache,
		loginGuard:   loginGuard,
		hasher:       hasher,
		publisher:    publisher,
		recorder:     recorder,
		logger:       logger,
	}
}

// AccessService returns the access service instance (singleton)
func (f *ServiceFactory) AccessService() *AccessService {
	if f.accessService == nil {
		f.accessService = NewAccessService(
			f.profileRepo,
			f.campaignRepo,
			f.profileCache,
			f.logger,
		)
	}
	return f.accessService
}

// AuthService returns the auth service instance (singleton)
func (f *ServiceFactory) AuthService() *AuthService {
	if f.authService == nil {
		f.authService = NewAuthService(
			f.accountRepo,
			f.AccessService(),
			f.loginGuard,
			f.hasher,
			f.publisher,
			f.recorder,
			f.logger,
		)
	}
	return f.authService
}

// Cleanup cleans up all services
func (f *ServiceFactory) Cleanup() {
	if f.loginGuard != nil {
		f.loginGuard.StopSweeper()
	}
}
