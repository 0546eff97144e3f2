package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Action    string
	// Subject names what was acted on when it is not the user itself,
	// e.g. the credential id for an issuance or the query for a lookup.
	Subject string
	// Wallet carries the address involved in login/signup/connect events,
	// preserved as entered.
	Wallet string
	// Device is a short user-agent summary recorded on login.
	Device string
	// RequestID is the correlation id from the HTTP request context.
	RequestID string
	Reason    string
}

type AuditEvent string

const (
	EventUserCreated         AuditEvent = "user_created"
	EventUserLogin           AuditEvent = "user_login"
	EventUserLoginFailed     AuditEvent = "user_login_failed"
	EventUserLoggedOut       AuditEvent = "user_logged_out"
	EventUserUpdated         AuditEvent = "user_updated"
	EventCredentialIssued    AuditEvent = "credential_issued"
	EventProfileVerified     AuditEvent = "profile_verified"
	EventWalletConnected     AuditEvent = "wallet_connected"
	EventWalletConnectFailed AuditEvent = "wallet_connect_failed"
)
