package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Store reads and writes the persisted credential blob. Load returns
// (nil, nil) when no blob exists yet.
type Store interface {
	Load(ctx context.Context) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
}

// GrantFlow obtains a brand new token pair interactively. It is used only
// when no credential exists.
type GrantFlow interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// Manager owns the OAuth client state: it decides between the cached token
// and the interactive grant, and persists every refreshed token back to the
// store. One Manager is active per process invocation.
type Manager struct {
	conf   *oauth2.Config
	store  Store
	grant  GrantFlow
	logger zerolog.Logger
	last   *Credential
}

// NewManager creates a token manager over the given credential store and
// grant flow.
func NewManager(conf *oauth2.Config, store Store, grant GrantFlow, logger zerolog.Logger) *Manager {
	return &Manager{
		conf:   conf,
		store:  store,
		grant:  grant,
		logger: logger,
	}
}

// Client returns an authorized HTTP client. With no stored credential it
// blocks on the interactive grant flow and persists the new token pair
// immediately. With a stored credential it forces one access-token retrieval
// up front (refreshing if expired); if that refresh fails the error is logged
// and a client carrying the last-known token is returned, so callers get a
// best-effort authorized client rather than a hard failure.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	cred, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load token from storage")
		cred = nil
	}

	if cred == nil {
		m.logger.Info().Msg("No token found, starting interactive authentication")
		tok, err := m.grant.Authorize(ctx, m.conf)
		if err != nil {
			return nil, fmt.Errorf("interactive authentication failed: %w", err)
		}
		cred = FromToken(tok)
		m.last = cred
		if err := m.store.Save(ctx, cred); err != nil {
			m.logger.Error().Err(err).Msg("Failed to save token to storage")
		} else {
			m.logger.Info().Msg("Token saved to storage")
		}
		return oauth2.NewClient(ctx, m.watch(m.conf.TokenSource(ctx, tok))), nil
	}

	m.logger.Info().Msg("Using existing token")
	m.last = cred
	src := m.watch(m.conf.TokenSource(ctx, cred.Token()))

	if _, err := src.Token(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to refresh access token")
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(cred.Token())), nil
	}
	return oauth2.NewClient(ctx, src), nil
}

func (m *Manager) watch(src oauth2.TokenSource) oauth2.TokenSource {
	return &notifyingSource{src: src, manager: m}
}

// tokenRefreshed merges a refreshed token over the last known credential and
// writes the merged blob back. Refresh events arrive sequentially from the
// token source, so the store write is never reordered relative to the event
// that produced it.
func (m *Manager) tokenRefreshed(tok *oauth2.Token) {
	if m.last != nil && tok.AccessToken == m.last.AccessToken {
		return
	}
	merged := Merge(m.last, FromToken(tok))
	m.last = merged
	if err := m.store.Save(context.Background(), merged); err != nil {
		m.logger.Error().Err(err).Msg("Failed to save refreshed token")
		return
	}
	m.logger.Info().Msg("Token refreshed and saved")
}

// notifyingSource reports every token the wrapped source yields back to the
// manager, which persists the ones that changed.
type notifyingSource struct {
	src     oauth2.TokenSource
	manager *Manager
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.manager.tokenRefreshed(tok)
	return tok, nil
}
