package issuer

import "bitid/internal/identity/models"

// Template carries the prefilled fields for a well-known credential kind.
// Issuance starts from a template and lets the request override any field.
type Template struct {
	Type        models.CredentialType `json:"type"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Issuer      string                `json:"issuer"`
	Icon        string                `json:"icon"`
	Metadata    models.Metadata       `json:"metadata"`
}

func templates() []Template {
	return []Template{
		{
			Type:        models.TypeEmailVerification,
			Name:        "Verified Email",
			Description: "Verify ownership of an email address",
			Issuer:      "BitID Verification Service",
			Icon:        "mail-check",
			Metadata:    models.EmailMetadata{},
		},
		{
			Type:        models.TypeKYCVerification,
			Name:        "KYC Level 1",
			Description: "Basic Know Your Customer verification",
			Issuer:      "BitID Verification Service",
			Icon:        "shield-check",
			Metadata:    models.KYCMetadata{Level: 1},
		},
		{
			Type:        models.TypeEducationCredential,
			Name:        "University Degree",
			Description: "Verify an academic degree from an educational institution",
			Issuer:      "Educational Institution",
			Icon:        "graduation-cap",
			Metadata:    models.EducationMetadata{},
		},
		{
			Type:        models.TypeEmploymentCredential,
			Name:        "Employment Verification",
			Description: "Verify current or past employment",
			Issuer:      "Employer",
			Icon:        "briefcase",
			Metadata:    models.EmploymentMetadata{},
		},
	}
}

func templateFor(t models.CredentialType) (Template, bool) {
	for _, tpl := range templates() {
		if tpl.Type == t {
			return tpl, true
		}
	}
	return Template{}, false
}
