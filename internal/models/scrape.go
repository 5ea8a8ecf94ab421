package models

// ScrapeResult is the response of a scrape collaborator.
type ScrapeResult struct {
	Success bool        `json:"success"`
	Data    *ScrapeData `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ScrapeData holds the readable page text and its metadata (title, ogTitle, ...).
type ScrapeData struct {
	Markdown string         `json:"markdown"`
	Metadata map[string]any `json:"metadata"`
}
