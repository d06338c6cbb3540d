package domain

import "time"

// Account is a resource owner that signs in with the password grant. The
// login identifier is the email address.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	Verified     bool
	Authorities  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the public view of the account handed back with tokens.
func (a Account) Summary() MemberSummary {
	return MemberSummary{
		ID:       a.ID,
		Username: a.Email,
		Name:     a.Name,
	}
}

// MemberSummary never carries credential material or internal claims.
type MemberSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
