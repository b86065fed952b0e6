package models

import "time"

// Role separates the land registry authority from land holders.
type Role string

const (
	// RoleIssuer may mint and revoke record assets.
	RoleIssuer Role = "issuer"

	// RoleHolder owns land records and receives their assets.
	RoleHolder Role = "holder"
)

// User is a ledger account holder. EncryptedPrivateKey is the vault-sealed
// signing key (one opaque blob); the plaintext form never reaches storage
// or logs.
type User struct {
	ID                  string
	Username            string
	HashedPassword      string
	FirstName           string
	Surname             string
	NationalID          int64
	PhoneNumber         string
	Role                Role
	Address             string
	EncryptedPrivateKey []byte
	Disabled            bool
	CreatedAt           time.Time
}

// IsIssuer reports whether the user holds issuing authority.
func (u *User) IsIssuer() bool {
	return u.Role == RoleIssuer
}
