// Package wallet connects the identity service to a wallet authenticator.
//
// Two connectors implement the same handshake surface: a mock used for
// local development, and an extension connector that drives an external
// authenticator process over HTTP. The selection is a configuration
// concern; callers only see the Connector interface.
package wallet

import (
	"context"
	"fmt"

	"bitid/internal/platform/config"
)

// Account is the result of a successful wallet connection.
type Account struct {
	Address  string `json:"address"`
	Provider string `json:"provider"`
}

// Connector establishes and tears down a wallet session. Connect blocks
// until the handshake resolves or the context is done; a cancelled context
// surfaces as sentinel.ErrCancelled, distinct from handshake failure.
type Connector interface {
	Connect(ctx context.Context) (Account, error)
	Disconnect(ctx context.Context) error
}

// NotInstalledError reports an absent wallet authenticator together with
// the page where one can be obtained.
type NotInstalledError struct {
	InstallURL string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("wallet authenticator is not installed, get it at %s", e.InstallURL)
}

// FromConfig builds the connector selected by cfg.Wallet.
func FromConfig(cfg config.Server) (Connector, error) {
	switch cfg.Wallet {
	case config.WalletMock:
		return NewMockConnector(cfg.WalletAddress, cfg.WalletConnectDelay), nil
	case config.WalletExtension:
		return NewExtensionConnector(cfg.AuthenticatorURL, cfg.WalletInstallPageURL), nil
	default:
		return nil, fmt.Errorf("unknown wallet mode %q", cfg.Wallet)
	}
}
