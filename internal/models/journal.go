package models

import "time"

// JournalEntry is one free-text entry per calendar date (YYYY-MM-DD).
type JournalEntry struct {
	Date        string    `bson:"date" json:"date"`
	Content     string    `bson:"content" json:"content"`
	LastUpdated time.Time `bson:"last_updated" json:"lastUpdated"`
}

// WeeklySummary is the aggregator output. Message is set when the lists are
// empty because there was nothing to summarize or generation degraded.
type WeeklySummary struct {
	Noticed []string `json:"noticed"`
	Focus   []string `json:"focus"`
	Message string   `json:"message,omitempty"`
}

func (s WeeklySummary) IsEmpty() bool {
	return len(s.Noticed) == 0 && len(s.Focus) == 0
}
