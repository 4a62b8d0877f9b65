package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"summarizer/internal/auth"
	"summarizer/internal/config"
)

// FileStore keeps the credential blob in a local JSON file. Used by the dev
// profile.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the token file. A missing file means no credential exists yet.
func (s *FileStore) Load(_ context.Context) (*auth.Credential, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info().Str("path", s.path).Msg("Token file does not exist")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var cred auth.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("malformed credential blob: %w", err)
	}
	return &cred, nil
}

// Save overwrites the token file.
func (s *FileStore) Save(_ context.Context, cred *auth.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential blob: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	s.logger.Info().Str("path", s.path).Msg("Token saved to file")
	return nil
}

// FromConfig picks the credential store for the active profile: a local token
// file in dev, the Cloud Storage blob otherwise.
func FromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (auth.Store, error) {
	if cfg.IsDev() {
		return NewFileStore(cfg.TokenFile, logger), nil
	}
	return NewGCSStore(ctx, cfg.TokenBucket, cfg.TokenObject, logger)
}
