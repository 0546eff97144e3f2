// Package models holds the identity records tracked by the directory.
// Storage of the actual records lives behind the store interfaces.
package models

import (
	"maps"
	"strings"
	"time"
)

// User is the primary identity record. Username and WalletAddress are each
// unique across the directory, compared case-insensitively; the stored
// casing is preserved as entered.
type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	WalletAddress string        `json:"walletAddress"`
	Twitter       string        `json:"twitter,omitempty"`
	GitHub        string        `json:"github,omitempty"`
	Avatar        string        `json:"avatar,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Credentials   []*Credential `json:"credentials"`
}

// MatchesUsername reports a case-insensitive username match.
func (u *User) MatchesUsername(username string) bool {
	return strings.EqualFold(u.Username, username)
}

// MatchesWallet reports a case-insensitive wallet address match.
func (u *User) MatchesWallet(addr string) bool {
	return strings.EqualFold(u.WalletAddress, addr)
}

// Clone returns a deep copy so callers can hold a user without racing the
// directory's own record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Credentials = make([]*Credential, len(u.Credentials))
	for i, c := range u.Credentials {
		cc := *c
		// The typed metadata variants are value types; the generic bag is
		// a map and must not be shared with the directory's record.
		if gm, ok := cc.Metadata.(GenericMetadata); ok {
			cc.Metadata = maps.Clone(gm)
		}
		out.Credentials[i] = &cc
	}
	return &out
}

// PublicProfile is the verifier-facing view of a user. It deliberately
// carries no internal id.
type PublicProfile struct {
	Name          string        `json:"name"`
	Username      string        `json:"username"`
	WalletAddress string        `json:"walletAddress"`
	Twitter       string        `json:"twitter,omitempty"`
	GitHub        string        `json:"github,omitempty"`
	Avatar        string        `json:"avatar,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Credentials   []*Credential `json:"credentials"`
}

// PublicView projects a user onto its public profile.
func (u *User) PublicView() *PublicProfile {
	c := u.Clone()
	return &PublicProfile{
		Name:          c.Name,
		Username:      c.Username,
		WalletAddress: c.WalletAddress,
		Twitter:       c.Twitter,
		GitHub:        c.GitHub,
		Avatar:        c.Avatar,
		CreatedAt:     c.CreatedAt,
		Credentials:   c.Credentials,
	}
}
