package model

import "time"

type DailyReview struct {
	ID            string    `json:"id"`
	Date          string    `json:"date"`
	MarketSummary string    `json:"market_summary"`
	Operations    string    `json:"operations"`
	Reflection    string    `json:"reflection"`
	Mood          string    `json:"mood,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type WeeklyReview struct {
	ID           string    `json:"id"`
	WeekLabel    string    `json:"week_label"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Summary      string    `json:"summary"`
	Wins         string    `json:"wins"`
	Mistakes     string    `json:"mistakes"`
	NextWeekPlan string    `json:"next_week_plan"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TagKind string

const (
	TagKindEmotion TagKind = "emotion"
	TagKindReason  TagKind = "reason"
)

type TagDefinition struct {
	ID    string  `json:"id"`
	Kind  TagKind `json:"kind"`
	Name  string  `json:"name"`
	Color string  `json:"color,omitempty"`
}
