package models

import (
	"encoding/json"
	"time"
)

// CredentialType enumerates the claim categories the issuer knows about.
// Unknown types are carried through with generic metadata rather than
// rejected.
type CredentialType string

const (
	TypeEmailVerification    CredentialType = "EmailVerification"
	TypeKYCVerification      CredentialType = "KYCVerification"
	TypeEducationCredential  CredentialType = "EducationCredential"
	TypeEmploymentCredential CredentialType = "EmploymentCredential"
)

// CredentialStatus is set to active at issuance. No code path transitions
// it; expiry sweeps and revocation flows do not exist.
type CredentialStatus string

const (
	StatusActive  CredentialStatus = "active"
	StatusExpired CredentialStatus = "expired"
	StatusRevoked CredentialStatus = "revoked"
)

// Credential is a claim about a user. Created only by the issuer, appended
// to the owning user's sequence, never mutated or deleted afterwards.
type Credential struct {
	ID          string           `json:"id"`
	Type        CredentialType   `json:"type"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IssuedAt    time.Time        `json:"issuedAt"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	Issuer      string           `json:"issuer"`
	Status      CredentialStatus `json:"status"`
	Verified    bool             `json:"verified"`
	Metadata    Metadata         `json:"-"`
	Icon        string           `json:"icon,omitempty"`
}

// credentialJSON mirrors Credential with raw metadata so the tagged variant
// can be resolved against the credential type during decoding. The wire
// shape stays the original flat key-value bag.
type credentialJSON struct {
	ID          string           `json:"id"`
	Type        CredentialType   `json:"type"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IssuedAt    time.Time        `json:"issuedAt"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	Issuer      string           `json:"issuer"`
	Status      CredentialStatus `json:"status"`
	Verified    bool             `json:"verified"`
	Metadata    json.RawMessage  `json:"metadata"`
	Icon        string           `json:"icon,omitempty"`
}

func (c Credential) MarshalJSON() ([]byte, error) {
	meta := c.Metadata
	if meta == nil {
		meta = GenericMetadata{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return json.Marshal(credentialJSON{
		ID:          c.ID,
		Type:        c.Type,
		Name:        c.Name,
		Description: c.Description,
		IssuedAt:    c.IssuedAt,
		ExpiresAt:   c.ExpiresAt,
		Issuer:      c.Issuer,
		Status:      c.Status,
		Verified:    c.Verified,
		Metadata:    raw,
		Icon:        c.Icon,
	})
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	var cj credentialJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	meta, err := DecodeMetadata(cj.Type, cj.Metadata)
	if err != nil {
		return err
	}
	*c = Credential{
		ID:          cj.ID,
		Type:        cj.Type,
		Name:        cj.Name,
		Description: cj.Description,
		IssuedAt:    cj.IssuedAt,
		ExpiresAt:   cj.ExpiresAt,
		Issuer:      cj.Issuer,
		Status:      cj.Status,
		Verified:    cj.Verified,
		Metadata:    meta,
	}
	c.Icon = cj.Icon
	return nil
}
