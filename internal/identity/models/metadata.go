package models

import "encoding/json"

// Metadata is the per-type payload attached to a credential. Each known
// credential type carries its own shape; anything else falls back to the
// open GenericMetadata bag so unknown types survive a round trip.
type Metadata interface {
	isMetadata()
}

// EmailMetadata backs EmailVerification credentials.
type EmailMetadata struct {
	Email string `json:"email,omitempty"`
}

// KYCMetadata backs KYCVerification credentials.
type KYCMetadata struct {
	Level  int    `json:"level,omitempty"`
	Method string `json:"method,omitempty"`
}

// EducationMetadata backs EducationCredential credentials.
type EducationMetadata struct {
	Degree         string `json:"degree,omitempty"`
	University     string `json:"university,omitempty"`
	GraduationYear string `json:"graduationYear,omitempty"`
}

// EmploymentMetadata backs EmploymentCredential credentials.
type EmploymentMetadata struct {
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
	Since   string `json:"since,omitempty"`
}

// GenericMetadata is the open fallback for credential types the issuer does
// not model.
type GenericMetadata map[string]any

func (EmailMetadata) isMetadata()      {}
func (KYCMetadata) isMetadata()        {}
func (EducationMetadata) isMetadata()  {}
func (EmploymentMetadata) isMetadata() {}
func (GenericMetadata) isMetadata()    {}

// DecodeMetadata resolves the raw metadata bag against the credential type.
// Empty or missing metadata decodes to the type's zero variant.
func DecodeMetadata(t CredentialType, raw json.RawMessage) (Metadata, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	switch t {
	case TypeEmailVerification:
		var m EmailMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeKYCVerification:
		var m KYCMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeEducationCredential:
		var m EducationMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeEmploymentCredential:
		var m EmploymentMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		var m GenericMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}
