// package auth owns the Google OAuth credential lifecycle.
//
// A Manager loads the persisted token, refreshes it when possible, or falls
// back to an interactive consent flow, and persists the result before
// returning so subsequent runs skip re-authentication.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes requested during the consent flow. Documents for content edits,
// Drive for filing the created document.
var Scopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
}

// Flow performs the interactive authorization-code consent flow.
//
// Abstracted behind an interface so tests can substitute a stub returning a
// fixed credential.
type Flow interface {
	Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)
}

// Manager owns one OAuth credential and its persistence.
type Manager struct {
	config    *oauth2.Config
	tokenPath string
	flow      Flow
	logger    *log.Logger
}

// NewManager builds a Manager from a client-secret descriptor file and a
// persisted-token path.
func NewManager(credentialsPath, tokenPath string, flow Flow, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	data, err := shared.VerifyAndReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: client secret file: %v", shared.ErrAuthFailed, err)
	}

	config, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parse client secret: %v", shared.ErrAuthFailed, err)
	}

	return &Manager{
		config:    config,
		tokenPath: tokenPath,
		flow:      flow,
		logger:    logger,
	}, nil
}

// NewManagerWithConfig builds a Manager from an already-parsed OAuth config.
func NewManagerWithConfig(config *oauth2.Config, tokenPath string, flow Flow, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{config: config, tokenPath: tokenPath, flow: flow, logger: logger}
}

// Obtain returns a usable credential.
//
// A valid persisted token is returned unchanged with no network calls. An
// expired token with a refresh token is refreshed (one token-endpoint call)
// and persisted. Anything else runs the interactive flow and persists the
// result. Persistence completes before Obtain returns.
func (m *Manager) Obtain(ctx context.Context) (*oauth2.Token, error) {
	token := m.loadToken()

	if token != nil && token.Valid() {
		m.logger.Debug("persisted token is valid", "path", m.tokenPath)
		return token, nil
	}

	if token != nil && token.RefreshToken != "" {
		m.logger.Debug("refreshing expired token", "path", m.tokenPath)
		refreshed, err := m.config.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
		if err := m.saveToken(refreshed); err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	if m.flow == nil {
		if token != nil {
			return nil, fmt.Errorf("%w: interactive re-consent required", shared.ErrNoRefreshToken)
		}
		return nil, fmt.Errorf("%w: no credential and no interactive flow configured", shared.ErrAuthFailed)
	}

	m.logger.Info("no usable credential, starting consent flow")
	token, err := m.flow.Authorize(ctx, m.config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := m.saveToken(token); err != nil {
		return nil, err
	}

	return token, nil
}

// TokenSource obtains a credential and wraps it in a refreshing
// [oauth2.TokenSource] for use with API clients.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := m.Obtain(ctx)
	if err != nil {
		return nil, err
	}
	return m.config.TokenSource(ctx, token), nil
}

// TokenStatus describes the persisted credential without touching the network.
type TokenStatus struct {
	Present         bool
	Valid           bool
	HasRefreshToken bool
	Expiry          time.Time
}

// Status inspects the persisted token file.
func (m *Manager) Status() TokenStatus {
	token := m.loadToken()
	if token == nil {
		return TokenStatus{}
	}
	return TokenStatus{
		Present:         true,
		Valid:           token.Valid(),
		HasRefreshToken: token.RefreshToken != "",
		Expiry:          token.Expiry,
	}
}

// loadToken reads the persisted token file.
//
// A missing or corrupt file degrades to "no credential found" so the caller
// falls through to the consent flow.
func (m *Manager) loadToken() *oauth2.Token {
	data, err := os.ReadFile(m.tokenPath)
	if err != nil {
		m.logger.Debug("no persisted token", "path", m.tokenPath)
		return nil
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		m.logger.Warn("persisted token is corrupt, re-authenticating", "path", m.tokenPath, "err", err)
		return nil
	}

	return &token
}

// saveToken overwrites the persisted token file.
func (m *Manager) saveToken(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("%w: serialize token: %v", shared.ErrAuthFailed, err)
	}

	if err := os.WriteFile(m.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("%w: write token file: %v", shared.ErrAuthFailed, err)
	}

	m.logger.Debug("persisted token", "path", m.tokenPath)
	return nil
}
