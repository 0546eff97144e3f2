package store

import (
	"time"

	"bitid/internal/identity/models"
)

// SeedUsers returns the demonstration directory written to an empty medium
// on first load: two users with a handful of pre-issued credentials.
func SeedUsers() []*models.User {
	return []*models.User{
		{
			ID:            "u_1",
			Name:          "Alex Johnson",
			Username:      "alexbtc",
			Email:         "alex@example.com",
			WalletAddress: "bc1q9h805z6vkn87zx584ngnj88tn4vsp7hdzwqf45",
			Twitter:       "@alexbtc",
			GitHub:        "alexbtc",
			Avatar:        "https://images.unsplash.com/photo-1568602471122-7832951cc4c5?w=400&auto=format&fit=crop&q=60&ixlib=rb-4.0.3",
			CreatedAt:     time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
			Credentials: []*models.Credential{
				{
					ID:          "c_1",
					Type:        models.TypeEmailVerification,
					Name:        "Verified Email",
					Description: "This credential verifies the ownership of an email address",
					IssuedAt:    time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
					Issuer:      "BitID Verification Service",
					Status:      models.StatusActive,
					Verified:    true,
					Metadata:    models.EmailMetadata{Email: "alex@example.com"},
					Icon:        "mail-check",
				},
				{
					ID:          "c_2",
					Type:        models.TypeKYCVerification,
					Name:        "KYC Level 1",
					Description: "This user has completed basic Know Your Customer verification",
					IssuedAt:    time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
					Issuer:      "BitID Verification Service",
					Status:      models.StatusActive,
					Verified:    true,
					Metadata:    models.KYCMetadata{Level: 1, Method: "document"},
					Icon:        "shield-check",
				},
			},
		},
		{
			ID:            "u_2",
			Name:          "Emma Smith",
			Username:      "emmabtc",
			Email:         "emma@example.com",
			WalletAddress: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
			Twitter:       "@emmasmith",
			CreatedAt:     time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC),
			Credentials: []*models.Credential{
				{
					ID:          "c_3",
					Type:        models.TypeEmailVerification,
					Name:        "Verified Email",
					Description: "This credential verifies the ownership of an email address",
					IssuedAt:    time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC),
					Issuer:      "BitID Verification Service",
					Status:      models.StatusActive,
					Verified:    true,
					Metadata:    models.EmailMetadata{Email: "emma@example.com"},
					Icon:        "mail-check",
				},
				{
					ID:          "c_4",
					Type:        models.TypeEducationCredential,
					Name:        "University Degree",
					Description: "Bachelor of Computer Science from Tech University",
					IssuedAt:    time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC),
					Issuer:      "Tech University",
					Status:      models.StatusActive,
					Verified:    true,
					Metadata: models.EducationMetadata{
						Degree:         "Bachelor of Computer Science",
						University:     "Tech University",
						GraduationYear: "2022",
					},
					Icon: "graduation-cap",
				},
			},
		},
	}
}
