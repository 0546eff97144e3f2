package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "bitid/pkg/domain-errors"
	"bitid/pkg/platform/sentinel"
)

// ExtensionConnector drives an external wallet authenticator over HTTP.
// The authenticator owns the wallet session and its lifetime; this side
// only initiates the handshake and reads the resulting profile token.
type ExtensionConnector struct {
	baseURL    string
	installURL string
	client     *http.Client

	appName string
	appURL  string
}

type ExtensionOption func(*ExtensionConnector)

func WithHTTPClient(client *http.Client) ExtensionOption {
	return func(c *ExtensionConnector) { c.client = client }
}

// WithAppMetadata sets the identity shown to the user during the
// show-connect prompt.
func WithAppMetadata(name, url string) ExtensionOption {
	return func(c *ExtensionConnector) {
		c.appName = name
		c.appURL = url
	}
}

func NewExtensionConnector(baseURL, installURL string, opts ...ExtensionOption) *ExtensionConnector {
	c := &ExtensionConnector{
		baseURL:    baseURL,
		installURL: installURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		appName:    "BitID",
		appURL:     "https://bitid.example.com",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type connectRequest struct {
	AppName string `json:"appName"`
	AppURL  string `json:"appUrl"`
}

type connectResponse struct {
	ProfileToken string `json:"profileToken"`
	Error        string `json:"error"`
}

// Connect probes for the authenticator, then runs the show-connect
// handshake and decodes the wallet address from the returned profile
// token. The token signature belongs to the authenticator's trust domain
// and is not verified here.
func (c *ExtensionConnector) Connect(ctx context.Context) (Account, error) {
	if err := c.probe(ctx); err != nil {
		return Account{}, err
	}

	body, err := json.Marshal(connectRequest{AppName: c.appName, AppURL: c.appURL})
	if err != nil {
		return Account{}, fmt.Errorf("encode connect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connect", bytes.NewReader(body))
	if err != nil {
		return Account{}, fmt.Errorf("build connect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Account{}, dErrors.Wrap(sentinel.ErrCancelled, dErrors.CodeBadRequest, "wallet connection cancelled")
		}
		return Account{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "wallet authenticator unreachable")
	}
	defer resp.Body.Close()

	var decoded connectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Account{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "malformed authenticator response")
	}

	if resp.StatusCode != http.StatusOK {
		// The authenticator reports a user-dismissed prompt as a
		// cancellation, which is not a failure of the handshake itself.
		if decoded.Error == "cancelled" {
			return Account{}, dErrors.Wrap(sentinel.ErrCancelled, dErrors.CodeBadRequest, "wallet connection cancelled")
		}
		return Account{}, dErrors.New(dErrors.CodeUnavailable, "wallet authenticator refused the connection")
	}

	address, err := addressFromToken(decoded.ProfileToken)
	if err != nil {
		return Account{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "invalid profile token")
	}
	return Account{Address: address, Provider: "extension"}, nil
}

// Disconnect invokes the authenticator's sign-out. The session belongs to
// the authenticator, so a missing authenticator means there is nothing to
// tear down.
func (c *ExtensionConnector) Disconnect(ctx context.Context) error {
	if err := c.probe(ctx); err != nil {
		var notInstalled *NotInstalledError
		if errors.As(err, &notInstalled) {
			return nil
		}
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signout", nil)
	if err != nil {
		return fmt.Errorf("build signout request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "wallet authenticator unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return dErrors.New(dErrors.CodeUnavailable, "wallet sign-out failed")
	}
	return nil
}

// probe checks the authenticator is present at all. Both an unset base URL
// and a connection error mean the user has nothing installed.
func (c *ExtensionConnector) probe(ctx context.Context) error {
	if c.baseURL == "" {
		return &NotInstalledError{InstallURL: c.installURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return dErrors.Wrap(sentinel.ErrCancelled, dErrors.CodeBadRequest, "wallet connection cancelled")
		}
		return &NotInstalledError{InstallURL: c.installURL}
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &NotInstalledError{InstallURL: c.installURL}
	}
	return nil
}

// addressFromToken reads the walletAddress claim without verifying the
// signature; verification is out of scope on this side of the handshake.
func addressFromToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty profile token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse profile token: %w", err)
	}

	address, ok := claims["walletAddress"].(string)
	if !ok || address == "" {
		return "", fmt.Errorf("profile token has no wallet address claim")
	}
	return address, nil
}
