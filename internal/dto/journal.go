package dto

import "golang-portfolio/internal/model"

type SaveDailyReviewRequest struct {
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	MarketSummary string   `json:"market_summary" validate:"max=4096"`
	Operations    string   `json:"operations" validate:"max=4096"`
	Reflection    string   `json:"reflection" validate:"max=4096"`
	Mood          string   `json:"mood" validate:"max=32"`
	Tags          []string `json:"tags" validate:"max=16,dive,max=32"`
}

// SaveWeeklyReviewRequest identifies the week by any date inside it.
type SaveWeeklyReviewRequest struct {
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Summary      string `json:"summary" validate:"max=4096"`
	Wins         string `json:"wins" validate:"max=4096"`
	Mistakes     string `json:"mistakes" validate:"max=4096"`
	NextWeekPlan string `json:"next_week_plan" validate:"max=4096"`
	Rating       int    `json:"rating" validate:"min=0,max=5"`
}

type CreateTagRequest struct {
	Kind  model.TagKind `json:"kind" validate:"required,oneof=emotion reason"`
	Name  string        `json:"name" validate:"required,max=32"`
	Color string        `json:"color" validate:"omitempty,hexcolor"`
}
