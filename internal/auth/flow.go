package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// ErrNoCode is reported when the provider redirects back without an
// authorization code.
var ErrNoCode = errors.New("no code received from Google")

type authResult struct {
	tok *oauth2.Token
	err error
}

// CallbackFlow implements GrantFlow over a one-shot OAuth callback endpoint.
// Authorize arms a single-use channel that the Callback handler resolves with
// either a token pair or an error. The handler is not re-entrant: a second
// callback while none is pending is answered with an error body.
//
// When addr is set the flow runs its own listener for the duration of the
// exchange; otherwise Callback must be mounted on an existing router.
type CallbackFlow struct {
	addr   string
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	conf    *oauth2.Config
	pending chan authResult
}

// NewCallbackFlow creates a grant flow whose callback handler is mounted on
// an external router.
func NewCallbackFlow(logger zerolog.Logger) *CallbackFlow {
	return &CallbackFlow{path: "/oauth2callback", logger: logger}
}

// NewStandaloneFlow creates a grant flow that starts its own listener on addr
// while an authorization is in flight.
func NewStandaloneFlow(addr string, logger zerolog.Logger) *CallbackFlow {
	flow := NewCallbackFlow(logger)
	flow.addr = addr
	return flow
}

// Authorize prints the consent URL and blocks until the callback resolves the
// exchange. Offline access with forced re-consent is requested so a refresh
// token is always issued. There is no timeout: the flow waits as long as the
// operator takes to finish the consent screen.
func (f *CallbackFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ch := make(chan authResult, 1)
	f.mu.Lock()
	f.conf = conf
	f.pending = ch
	f.mu.Unlock()

	authURL := conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	f.logger.Info().Str("url", authURL).Msg("Please visit this URL to authenticate")

	if f.addr != "" {
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.GET(f.path, f.Callback)
		go func() {
			if err := e.Start(f.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				f.logger.Error().Err(err).Msg("OAuth callback listener failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = e.Shutdown(shutdownCtx)
		}()
		f.logger.Info().Str("addr", f.addr).Msg("OAuth callback listener waiting")
	}

	res := <-ch
	return res.tok, res.err
}

// Callback handles GET /oauth2callback. It exchanges the authorization code
// for a token pair and resolves the pending authorization exactly once.
func (f *CallbackFlow) Callback(c echo.Context) error {
	f.mu.Lock()
	ch := f.pending
	conf := f.conf
	f.pending = nil
	f.mu.Unlock()

	code := c.QueryParam("code")
	if code == "" {
		if ch != nil {
			ch <- authResult{err: ErrNoCode}
		}
		return c.String(http.StatusBadRequest, "No code received from Google")
	}
	if ch == nil {
		return c.String(http.StatusConflict, "No authentication in progress")
	}

	tok, err := conf.Exchange(c.Request().Context(), code)
	if err != nil {
		f.logger.Error().Err(err).Msg("Error during authentication")
		ch <- authResult{err: fmt.Errorf("failed to exchange auth code: %w", err)}
		return c.String(http.StatusInternalServerError, "Authentication failed")
	}

	f.logger.Info().Msg("Authentication successful")
	ch <- authResult{tok: tok}
	return c.String(http.StatusOK, "Authentication successful! You can now scrape emails.")
}
