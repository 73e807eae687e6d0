package model

import "time"

const (
	SchemaVersionLegacy  = 1
	SchemaVersionCurrent = 2
)

// Snapshot is the export/import envelope of every collection.
type Snapshot struct {
	Version       int             `json:"version"`
	ExportedAt    time.Time       `json:"exported_at"`
	Positions     []Position      `json:"positions"`
	Accounts      []Account       `json:"accounts"`
	DailyReviews  []DailyReview   `json:"daily_reviews"`
	WeeklyReviews []WeeklyReview  `json:"weekly_reviews"`
	Tags          []TagDefinition `json:"tags"`
}
