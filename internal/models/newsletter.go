package models

// RawMessage is one fetched newsletter email. Rows are inserted once and never
// mutated; downstream queries exclude rows whose is_delete flag is set.
type RawMessage struct {
	ID           string `db:"id" json:"id"`
	Subject      string `db:"subject" json:"subject"`
	Sender       string `db:"sender" json:"sender"`
	ReceivedDate string `db:"received_date" json:"received_date"` // KST civil timestamp
	EmailContent string `db:"email_content" json:"email_content"` // HTML stripped to plain text
	IsDelete     string `db:"is_delete" json:"is_delete"`         // 'N' live, 'Y' soft-deleted
}

// Issue is one topical unit extracted from a newsletter body. Content is
// carried verbatim from the original body text.
type Issue struct {
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
}

// IssueSet is the constrained JSON shape the assistant replies with.
type IssueSet struct {
	Issues []Issue `json:"issues"`
}

// SummaryRow is one newsletter_summary table row. RawID references the source
// raw row by value only; the relation is not enforced.
type SummaryRow struct {
	RawID   string `db:"raw_id" json:"raw_id"`
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
}

// FactCheckCard is one entry scraped from the fact-check listing page.
type FactCheckCard struct {
	URL        string  `db:"url" json:"url"`
	NewsAgency string  `db:"news_agency" json:"newsAgency"`
	RegDate    *string `db:"reg_date" json:"regDate"`
}
