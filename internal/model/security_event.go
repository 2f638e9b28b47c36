package model

import "time"

// Security event types emitted by the authentication flow.
const (
	EventLoginFailed    = "login_failed"
	EventLoginLocked    = "login_locked"
	EventLoginSucceeded = "login_succeeded"
)

// SecurityEvent is published to Kafka and appended to the ClickHouse audit
// table for every authentication outcome.
type SecurityEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	LoginID   string    `json:"login_id"`
	IPAddress string    `json:"ip_address"`
	Attempts  int       `json:"attempts"`
	EventTime time.Time `json:"event_time"`
	Details   string    `json:"details"`
}
