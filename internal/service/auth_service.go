package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campaign-access-service/internal/guard"
	"campaign-access-service/internal/hashing"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/repository/scylla"
	"campaign-access-service/internal/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
)

// LoginResult is what a successful authentication hands back to the
// transport layer: the account plus the validated access profile the rest of
// the request lifecycle will use.
type LoginResult struct {
	Account *model.Account
	Profile model.UserAccessProfile
}

// AuthService runs the guard-gated credential check. The guard is consulted
// before any credential verification is attempted; profile resolution only
// happens after the password is proven.
type AuthService struct {
	accounts  scylla.AccountRepository
	access    *AccessService
	guard     *guard.Guard
	hasher    *hashing.Hasher
	publisher SecurityEventPublisher
	recorder  EventRecorder
	logger    *zap.Logger
}

func NewAuthService(
	accounts scylla.AccountRepository,
	access *AccessService,
	loginGuard *guard.Guard,
	hasher *hashing.Hasher,
	publisher SecurityEventPublisher,
	recorder EventRecorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		access:    access,
		guard:     loginGuard,
		hasher:    hasher,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

// Login verifies credentials for a login id. The identity is throttled
// before the account is even looked up, so unknown identities burn attempts
// the same way wrong passwords do.
func (s *AuthService) Login(ctx context.Context, loginID, password, ipAddress string) (*LoginResult, error) {
	if _, locked := s.guard.IsLocked(loginID); locked {
		return nil, ErrAccountLocked
	}

	account, err := s.accounts.GetAccountByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, scylla.ErrAccountNotFound) {
			s.registerFailure(ctx, loginID, ipAddress, "unknown login id")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed",
			util.String("login_id", loginID),
			util.ErrorField(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.registerFailure(ctx, loginID, ipAddress, "wrong password")
		if _, locked := s.guard.IsLocked(loginID); locked {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	s.guard.ResetAttempts(loginID)

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, loginID, now); err != nil {
		// Login still succeeds; the timestamp is best effort.
		s.logger.Warn("failed to update last login",
			util.String("login_id", loginID),
			util.ErrorField(err))
	}

	s.emitEvent(ctx, model.EventLoginSucceeded, loginID, ipAddress, 0, "")

	profile, err := s.access.ResolveProfile(ctx, account.AccountID, account.Role)
	if err != nil {
		// Fail closed: a broken profile configuration denies the request
		// rather than granting anything by accident.
		return nil, err
	}

	s.logger.Info("login succeeded",
		util.String("login_id", loginID),
		util.String("account_id", account.AccountID))

	return &LoginResult{Account: account, Profile: profile}, nil
}

// ProfileFor resolves the access profile for an already-authenticated login
// id. Read paths call this once per request; the cache behind the access
// service keeps it cheap.
func (s *AuthService) ProfileFor(ctx context.Context, loginID string) (model.UserAccessProfile, error) {
	account, err := s.accounts.GetAccountByLoginID(ctx, loginID)
	if err != nil {
		return model.UserAccessProfile{}, err
	}
	return s.access.ResolveProfile(ctx, account.AccountID, account.Role)
}

// LockStatus reports the active lockout for an identity in whole seconds.
func (s *AuthService) LockStatus(loginID string) (int, bool) {
	return s.guard.IsLocked(loginID)
}

// RemainingAttempts reports how many failures are left before lockout.
func (s *AuthService) RemainingAttempts(loginID string) int {
	return s.guard.RemainingAttempts(loginID)
}

func (s *AuthService) registerFailure(ctx context.Context, loginID, ipAddress, details string) {
	s.guard.RecordFailure(loginID)

	attempts := s.guard.Attempts(loginID)
	eventType := model.EventLoginFailed
	if _, locked := s.guard.IsLocked(loginID); locked {
		eventType = model.EventLoginLocked
	}

	s.emitEvent(ctx, eventType, loginID, ipAddress, attempts, details)

	s.logger.Warn("login attempt failed",
		util.String("login_id", loginID),
		util.Int("attempts", attempts),
		util.Bool("locked", eventType == model.EventLoginLocked))
}

func (s *AuthService) emitEvent(ctx context.Context, eventType, loginID, ipAddress string, attempts int, details string) {
	event := model.SecurityEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		LoginID:   loginID,
		IPAddress: ipAddress,
		Attempts:  attempts,
		EventTime: time.Now().UTC(),
		Details:   details,
	}

	if s.recorder != nil {
		s.recorder.Record(event)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSecurityEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish security event",
				util.String("event_type", eventType),
				util.ErrorField(err))
		}
	}
}
