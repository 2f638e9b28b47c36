package model

import "time"

// Account is a login credential record. The password is stored only as an
// argon2id hash; there is no reversible form anywhere in the system.
type Account struct {
	AccountID    string     `db:"account_id"`
	LoginID      string     `db:"login_id"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLogin    *time.Time `db:"last_login"`
}
