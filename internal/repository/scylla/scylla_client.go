package scylla

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"campaign-access-service/internal/config"
	"campaign-access-service/internal/util"
)

// PreparedStatements holds the statements the repositories actually execute.
type PreparedStatements struct {
	GetAccountByLoginID *gocql.Query
	UpdateLastLogin     *gocql.Query

	GetProfileConfig  *gocql.Query
	SaveProfileConfig *gocql.Query

	ListCampaigns *gocql.Query
	GetCampaign   *gocql.Query
}

type ScyllaClient struct {
	Session      *gocql.Session
	config       *config.ScyllaConfig
	Prepared     *PreparedStatements
	prepareMutex sync.Mutex
	isPrepared   bool
}

func NewScyllaClient(cfg *config.Config, logger *zap.Logger) (*ScyllaClient, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 4
	cluster.SocketKeepalive = 30 * time.Second
	cluster.PageSize = 1000
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 3,
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	client := &ScyllaClient{
		Session: session,
		config:  &scyllaConfig,
	}

	if err := client.prepareStatements(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	util.Info("ScyllaDB client initialized",
		zap.Strings("nodes", scyllaConfig.Nodes),
		zap.String("keyspace", scyllaConfig.Keyspace))

	return client, nil
}

func (s *ScyllaClient) prepareStatements() error {
	s.prepareMutex.Lock()
	defer s.prepareMutex.Unlock()

	if s.isPrepared {
		return nil
	}

	prepared := &PreparedStatements{}

	prepared.GetAccountByLoginID = s.Session.Query(`
        SELECT account_id, login_id, password_hash, role, created_at, last_login
        FROM accounts WHERE login_id = ?`)

	prepared.UpdateLastLogin = s.Session.Query(`
        UPDATE accounts SET last_login = ? WHERE login_id = ?`)

	prepared.GetProfileConfig = s.Session.Query(`
        SELECT role, column_permissions, departments, agencies, updated_at
        FROM access_profiles WHERE account_id = ?`)

	prepared.SaveProfileConfig = s.Session.Query(`
        INSERT INTO access_profiles (account_id, role, column_permissions, departments, agencies, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`)

	prepared.ListCampaigns = s.Session.Query(`
        SELECT id, name, creative, channel, start_date, end_date, spend,
            budget_account, department, agency, created_at
        FROM campaigns`)

	prepared.GetCampaign = s.Session.Query(`
        SELECT id, name, creative, channel, start_date, end_date, spend,
            budget_account, department, agency, created_at
        FROM campaigns WHERE id = ?`)

	s.Prepared = prepared
	s.isPrepared = true

	util.Info("ScyllaDB prepared statements created")
	return nil
}

func (s *ScyllaClient) Close() {
	if s.Session != nil {
		s.Session.Close()
		util.Info("ScyllaDB client closed")
	}
}

func (s *ScyllaClient) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var clusterName string
	err := s.Session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&clusterName)
	if err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}

	util.Debug("ScyllaDB health check passed", zap.String("cluster_name", clusterName))
	return nil
}
