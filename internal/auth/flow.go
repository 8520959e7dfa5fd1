package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/server"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"golang.org/x/oauth2"
)

// LocalServerFlow implements [Flow] by binding an ephemeral loopback port,
// opening the user's browser to the consent page, and exchanging the
// authorization code delivered to the callback.
type LocalServerFlow struct {
	logger      *log.Logger
	openBrowser func(url string) error
	timeout     time.Duration
}

// NewLocalServerFlow creates a LocalServerFlow with a 5 minute consent timeout.
func NewLocalServerFlow(logger *log.Logger) *LocalServerFlow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LocalServerFlow{
		logger:      logger,
		openBrowser: shared.OpenBrowser,
		timeout:     5 * time.Minute,
	}
}

// Authorize runs the authorization-code flow and returns the obtained token.
func (f *LocalServerFlow) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener: %w", err)
	}
	defer listener.Close()

	// Copy the config so the ephemeral redirect URL stays local to this flow.
	flowConfig := *config
	flowConfig.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(&flowConfig, state)

	router := server.NewBasicRouter()
	router.Handler(handler)

	srv := &http.Server{Handler: router}
	go srv.Serve(listener)
	defer srv.Shutdown(context.Background())

	authURL := flowConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	f.logger.Info("waiting for authorization", "url", authURL)

	if err := f.openBrowser(authURL); err != nil {
		f.logger.Warn("could not open browser, visit the URL manually", "url", authURL, "err", err)
	}

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return nil, result.Error()
		}
		return result.Token, nil
	case <-timer.C:
		return nil, fmt.Errorf("consent flow timed out after %s", f.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
