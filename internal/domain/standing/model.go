package standing

import "context"

// Row is one team's line in the division table.
type Row struct {
	Position      int
	Team          string
	Played        int
	Won           int
	Drawn         int
	Lost          int
	FramesFor     int
	FramesAgainst int
	FrameDiff     int
	Points        int
	Raw           []string
}

// Table is the scraped division table.
type Table struct {
	Division  string
	ScrapedAt string
	Source    string
	Rows      []Row
}

// RawResponse is an upstream answer relayed without interpretation.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Source provides the league table from the external scraper.
type Source interface {
	FetchTable(ctx context.Context) (Table, error)
	FetchRaw(ctx context.Context) (RawResponse, error)
}
