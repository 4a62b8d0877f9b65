// Package ingest pulls labeled newsletter messages from Gmail and stores them
// as raw warehouse rows.
package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"time"

	"github.com/rs/zerolog"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"summarizer/internal/auth"
	"summarizer/internal/config"
	"summarizer/internal/models"
	"summarizer/internal/warehouse"
)

// Fetcher runs the auth+fetch+store cycle for one invocation.
type Fetcher struct {
	auth   *auth.Manager
	wh     *warehouse.Client
	label  string
	max    int64
	logger zerolog.Logger
	now    func() time.Time
}

// NewFetcher creates a fetcher bound to a token manager and warehouse client.
func NewFetcher(mgr *auth.Manager, wh *warehouse.Client, cfg *config.Config, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		auth:   mgr,
		wh:     wh,
		label:  cfg.NewsletterLabel,
		max:    cfg.MaxMessages,
		logger: logger,
		now:    time.Now,
	}
}

// BuildQuery returns the Gmail search query for the trailing 7 days ending on
// today. The window is computed on the caller's local clock, matching the
// scheduler's notion of "today".
func BuildQuery(label string, today time.Time) string {
	start := today.AddDate(0, 0, -7)
	return fmt.Sprintf("label:%s after:%s before:%s",
		label, start.Format("2006/01/02"), today.Format("2006/01/02"))
}

// Run lists matching messages (first page only, up to the configured size)
// and stores each one as a raw row. Per-message failures are logged and the
// loop continues with the next message.
func (f *Fetcher) Run(ctx context.Context) error {
	httpClient, err := f.auth.Client(ctx)
	if err != nil {
		return fmt.Errorf("failed to authorize Gmail client: %w", err)
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}

	query := BuildQuery(f.label, f.now())
	f.logger.Info().Str("query", query).Msg("Scraping emails")

	resp, err := svc.Users.Messages.List("me").Q(query).MaxResults(f.max).Do()
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	if len(resp.Messages) == 0 {
		f.logger.Info().Msg("No emails found")
		return nil
	}

	for _, m := range resp.Messages {
		full, err := svc.Users.Messages.Get("me", m.Id).Format("full").Do()
		if err != nil {
			f.logger.Error().Err(err).Str("id", m.Id).Msg("Failed to fetch message")
			continue
		}
		raw, err := ParseMessage(full)
		if err != nil {
			f.logger.Error().Err(err).Str("id", m.Id).Msg("Failed to parse message")
			continue
		}
		if err := f.wh.InsertRaw(ctx, raw); err != nil {
			f.logger.Error().Err(err).Str("id", m.Id).Msg("Failed to insert raw row")
			continue
		}
		f.logger.Info().Str("id", raw.ID).Str("subject", raw.Subject).Msg("Raw email stored")
	}
	return nil
}

// ParseMessage turns a full Gmail message into a raw warehouse row: headers
// picked out, the body located, decoded and stripped to plain text.
func ParseMessage(msg *gmail.Message) (*models.RawMessage, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	raw := &models.RawMessage{ID: msg.Id}
	var dateHeader string
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			raw.Subject = h.Value
		case "From":
			raw.Sender = h.Value
		case "Date":
			dateHeader = h.Value
		}
	}

	received := time.Now()
	if dateHeader != "" {
		if t, err := mail.ParseDate(dateHeader); err == nil {
			received = t
		}
	}
	raw.ReceivedDate = FormatKST(received)

	data, contentType := findBodyPart(msg.Payload)
	if data == "" {
		return nil, fmt.Errorf("no body found for message %s", msg.Id)
	}
	decoded, err := decodeBody(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body of message %s: %w", msg.Id, err)
	}
	raw.EmailContent = ExtractText(decodeCharset(decoded, contentType))

	return raw, nil
}

// FormatKST renders the instant as a KST civil timestamp by shifting the UTC
// clock forward nine hours. The source header is assumed to carry UTC.
func FormatKST(t time.Time) string {
	return t.UTC().Add(9 * time.Hour).Format("2006-01-02 15:04:05")
}

// findBodyPart returns the base64 data of the first text part. Messages
// without parts carry the body on the payload itself.
func findBodyPart(payload *gmail.MessagePart) (data, contentType string) {
	if len(payload.Parts) == 0 {
		return bodyData(payload), partContentType(payload)
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" || part.MimeType == "text/html" {
			if d := bodyData(part); d != "" {
				return d, partContentType(part)
			}
		}
	}
	return bodyData(payload), partContentType(payload)
}

func bodyData(p *gmail.MessagePart) string {
	if p.Body == nil {
		return ""
	}
	return p.Body.Data
}

func partContentType(p *gmail.MessagePart) string {
	for _, h := range p.Headers {
		if h.Name == "Content-Type" {
			return h.Value
		}
	}
	return ""
}

// decodeBody decodes Gmail's web-safe base64. Some senders pad, some do not,
// and forwarded bodies occasionally arrive in standard base64.
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(data)
}

func charsetName(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
