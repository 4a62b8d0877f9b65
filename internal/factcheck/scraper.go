// Package factcheck crawls the fact-check listing page with a headless
// browser and appends the cards to the warehouse.
package factcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"summarizer/internal/models"
	"summarizer/internal/warehouse"
)

const cardSelector = "ul.factcheck_cards._card_list li"

// extractCards collects the link and news-agency label of every card on the
// listing page.
const extractCards = `Array.from(document.querySelectorAll("ul.factcheck_cards._card_list li")).flatMap((card) => {
	const link = card.querySelector("a");
	const subItems = Array.from(card.querySelectorAll("span.factcheck_card_sub_item")).map(
		(span) => span.innerText.trim()
	);
	if (!link || subItems.length === 0) {
		return [];
	}
	return [{ url: link.href, newsAgency: subItems[0], regDate: null }];
})`

// Scraper pulls the fact-check listing page once per invocation.
type Scraper struct {
	wh     *warehouse.Client
	url    string
	logger zerolog.Logger
}

// New creates a scraper for the given listing URL.
func New(wh *warehouse.Client, url string, logger zerolog.Logger) *Scraper {
	return &Scraper{wh: wh, url: url, logger: logger}
}

// Run opens the page, extracts the cards and inserts them as scraped_url
// rows.
func (s *Scraper) Run(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, 2*time.Minute)
	defer timeoutCancel()

	var nodes []*cdp.Node
	var cards []models.FactCheckCard
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.url),
		chromedp.WaitReady(cardSelector, chromedp.ByQuery),
		chromedp.Nodes(cardSelector, &nodes, chromedp.ByQueryAll),
		chromedp.Evaluate(extractCards, &cards),
	)
	if err != nil {
		return fmt.Errorf("failed to crawl fact-check page: %w", err)
	}

	s.logger.Info().Int("cards", len(nodes)).Int("extracted", len(cards)).Msg("Fact-check cards crawled")
	if len(cards) == 0 {
		return nil
	}

	if err := s.wh.InsertFactChecks(ctx, cards); err != nil {
		return fmt.Errorf("failed to store fact-check rows: %w", err)
	}
	s.logger.Info().Int("rows", len(cards)).Msg("Fact-check rows inserted")
	return nil
}
