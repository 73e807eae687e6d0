package repository

import (
	"context"
	"golang-portfolio/internal/model"
	"golang-portfolio/pkg/common"
	"golang-portfolio/pkg/logger"
)

type JournalRepository interface {
	GetDailyReviews(ctx context.Context) ([]model.DailyReview, error)
	ReplaceDailyReviews(ctx context.Context, reviews []model.DailyReview) error
	GetWeeklyReviews(ctx context.Context) ([]model.WeeklyReview, error)
	ReplaceWeeklyReviews(ctx context.Context, reviews []model.WeeklyReview) error
	GetTags(ctx context.Context) ([]model.TagDefinition, error)
	ReplaceTags(ctx context.Context, tags []model.TagDefinition) error
}

type journalRepository struct {
	daily  collection[model.DailyReview]
	weekly collection[model.WeeklyReview]
	tags   collection[model.TagDefinition]
}

func NewJournalRepository(store Store, log *logger.Logger) JournalRepository {
	return &journalRepository{
		daily:  newCollection[model.DailyReview](store, common.KEY_DAILY_REVIEWS, log),
		weekly: newCollection[model.WeeklyReview](store, common.KEY_WEEKLY_REVIEWS, log),
		tags:   newCollection[model.TagDefinition](store, common.KEY_TAGS, log),
	}
}

func (r *journalRepository) GetDailyReviews(ctx context.Context) ([]model.DailyReview, error) {
	return r.daily.GetAll(ctx)
}

func (r *journalRepository) ReplaceDailyReviews(ctx context.Context, reviews []model.DailyReview) error {
	return r.daily.ReplaceAll(ctx, reviews)
}

func (r *journalRepository) GetWeeklyReviews(ctx context.Context) ([]model.WeeklyReview, error) {
	return r.weekly.GetAll(ctx)
}

func (r *journalRepository) ReplaceWeeklyReviews(ctx context.Context, reviews []model.WeeklyReview) error {
	return r.weekly.ReplaceAll(ctx, reviews)
}

func (r *journalRepository) GetTags(ctx context.Context) ([]model.TagDefinition, error) {
	return r.tags.GetAll(ctx)
}

func (r *journalRepository) ReplaceTags(ctx context.Context, tags []model.TagDefinition) error {
	return r.tags.ReplaceAll(ctx, tags)
}
