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

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository resolves login credentials.
type AccountRepository interface {
	GetAccountByLoginID(ctx context.Context, loginID string) (*model.Account, error)
	UpdateLastLogin(ctx context.Context, loginID string, at time.Time) error
}

type accountRepository struct {
	client *ScyllaClient
	logger *zap.Logger
}

func NewAccountRepository(client *ScyllaClient, logger *zap.Logger) AccountRepository {
	return &accountRepository{client: client, logger: logger}
}

func (r *accountRepository) GetAccountByLoginID(ctx context.Context, loginID string) (*model.Account, error) {
	var account model.Account
	var lastLogin time.Time

	err := r.client.Prepared.GetAccountByLoginID.
		WithContext(ctx).
		Bind(loginID).
		Scan(&account.AccountID, &account.LoginID, &account.PasswordHash,
			&account.Role, &account.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		r.logger.Error("failed to get account",
			util.String("login_id", loginID),
			util.ErrorField(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !lastLogin.IsZero() {
		account.LastLogin = &lastLogin
	}
	return &account, nil
}

func (r *accountRepository) UpdateLastLogin(ctx context.Context, loginID string, at time.Time) error {
	err := r.client.Prepared.UpdateLastLogin.
		WithContext(ctx).
		Bind(at, loginID).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
