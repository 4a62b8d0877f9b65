// Package credstore persists the OAuth credential blob. The blob is a single
// JSON object at a fixed logical path; implementations are pure I/O with no
// merge logic of their own.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	"summarizer/internal/auth"
)

// GCSStore keeps the credential blob as a JSON object in a Cloud Storage
// bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
	logger zerolog.Logger
}

// NewGCSStore creates a store backed by the given bucket and object path.
func NewGCSStore(ctx context.Context, bucket, object string, logger zerolog.Logger) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		object: object,
		logger: logger,
	}, nil
}

// Load reads the token blob. A missing object means no credential exists yet
// and is not an error.
func (s *GCSStore) Load(ctx context.Context) (*auth.Credential, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		s.logger.Info().Msg("Token file does not exist in Cloud Storage")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open token object: %w", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing token reader")
		}
	}()

	var cred auth.Credential
	if err := json.NewDecoder(r).Decode(&cred); err != nil {
		return nil, fmt.Errorf("malformed credential blob: %w", err)
	}
	return &cred, nil
}

// Save overwrites the token blob. There is no optimistic-concurrency check;
// across processes the last writer wins.
func (s *GCSStore) Save(ctx context.Context, cred *auth.Credential) error {
	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "application/json"
	if err := json.NewEncoder(w).Encode(cred); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to encode credential blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write token object: %w", err)
	}
	s.logger.Info().Msg("Token saved to Cloud Storage")
	return nil
}

// Close releases the underlying storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
