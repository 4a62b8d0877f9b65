package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"summarizer/internal/models"
)

// Table names in the summarizer dataset.
const (
	rawTable       = "newsletter_raw"
	summaryTable   = "newsletter_summary"
	factCheckTable = "scraped_url"
)

// Client provides row inserts and the templated date-range query against the
// newsletter tables.
type Client struct {
	db     *sqlx.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewClient creates a warehouse client over an open connection.
func NewClient(db *sqlx.DB, logger zerolog.Logger) *Client {
	return &Client{db: db, logger: logger, now: time.Now}
}

// ErrNotConnected is returned when the server came up without a warehouse
// connection.
var ErrNotConnected = fmt.Errorf("warehouse connection not available")

// InsertRaw stores one fetched message. Rows are written once and never
// updated; exclusion happens through the is_delete flag.
func (c *Client) InsertRaw(ctx context.Context, msg *models.RawMessage) error {
	if c.db == nil {
		return ErrNotConnected
	}
	query := c.db.Rebind(`INSERT INTO ` + rawTable + `
		(id, subject, sender, received_date, email_content, is_delete)
		VALUES (?, ?, ?, ?, ?, 'N')`)
	if _, err := c.db.ExecContext(ctx, query,
		msg.ID, msg.Subject, msg.Sender, msg.ReceivedDate, msg.EmailContent); err != nil {
		return fmt.Errorf("failed to insert raw email: %w", err)
	}
	return nil
}

// WeeklyRaw returns the live raw rows received in the week ending yesterday
// (KST). Soft-deleted rows are filtered out, not removed.
func (c *Client) WeeklyRaw(ctx context.Context) ([]models.RawMessage, error) {
	if c.db == nil {
		return nil, ErrNotConnected
	}
	end := c.now().UTC().Add(9 * time.Hour).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -6)

	query := c.db.Rebind(`SELECT id, email_content FROM ` + rawTable + `
		WHERE received_date BETWEEN ? AND ? AND is_delete = 'N'`)

	var rows []models.RawMessage
	err := c.db.SelectContext(ctx, &rows, query,
		start.Format("2006-01-02")+" 00:00:00",
		end.Format("2006-01-02")+" 23:59:59")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw emails: %w", err)
	}
	return rows, nil
}

// InsertSummaries writes one summary row per issue, all carrying the id of
// the raw row they were extracted from.
func (c *Client) InsertSummaries(ctx context.Context, rawID string, issues []models.Issue) error {
	if c.db == nil {
		return ErrNotConnected
	}
	query := c.db.Rebind(`INSERT INTO ` + summaryTable + ` (raw_id, title, content) VALUES (?, ?, ?)`)
	for _, issue := range issues {
		if _, err := c.db.ExecContext(ctx, query, rawID, issue.Title, issue.Content); err != nil {
			return fmt.Errorf("failed to insert summary row: %w", err)
		}
	}
	return nil
}

// InsertFactChecks appends scraped fact-check cards.
func (c *Client) InsertFactChecks(ctx context.Context, cards []models.FactCheckCard) error {
	if c.db == nil {
		return ErrNotConnected
	}
	query := c.db.Rebind(`INSERT INTO ` + factCheckTable + ` (url, news_agency, reg_date) VALUES (?, ?, ?)`)
	for _, card := range cards {
		if _, err := c.db.ExecContext(ctx, query, card.URL, card.NewsAgency, card.RegDate); err != nil {
			return fmt.Errorf("failed to insert fact-check row: %w", err)
		}
	}
	return nil
}
