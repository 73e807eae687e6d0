package service

import (
	"context"
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"golang-portfolio/internal/repository"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/utils"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JournalService interface {
	SaveDailyReview(ctx context.Context, req dto.SaveDailyReviewRequest) (*model.DailyReview, error)
	GetDailyReview(ctx context.Context, date string) (*model.DailyReview, error)
	ListDailyReviews(ctx context.Context, from, to string) ([]model.DailyReview, error)
	DeleteDailyReview(ctx context.Context, date string) error

	SaveWeeklyReview(ctx context.Context, req dto.SaveWeeklyReviewRequest) (*model.WeeklyReview, error)
	GetWeeklyReview(ctx context.Context, label string) (*model.WeeklyReview, error)
	ListWeeklyReviews(ctx context.Context) ([]model.WeeklyReview, error)
	DeleteWeeklyReview(ctx context.Context, label string) error

	ListTags(ctx context.Context, kind model.TagKind) ([]model.TagDefinition, error)
	CreateTag(ctx context.Context, req dto.CreateTagRequest) (*model.TagDefinition, error)
	DeleteTag(ctx context.Context, tagID string) error
}

type journalService struct {
	cfg         *config.Config
	log         *logger.Logger
	mu          *sync.Mutex
	journalRepo repository.JournalRepository
	now         func() time.Time
	newID       func() string
}

func NewJournalService(cfg *config.Config, log *logger.Logger, mu *sync.Mutex, journalRepo repository.JournalRepository) *journalService {
	loc := utils.LoadLocation(cfg.Ledger.TimeZone)
	return &journalService{
		cfg:         cfg,
		log:         log,
		mu:          mu,
		journalRepo: journalRepo,
		now:         func() time.Time { return utils.TimeNowIn(loc) },
		newID:       uuid.NewString,
	}
}

// SaveDailyReview creates or replaces the review of req.Date.
func (s *journalService) SaveDailyReview(ctx context.Context, req dto.SaveDailyReviewRequest) (*model.DailyReview, error) {
	if _, err := utils.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, req.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.journalRepo.GetDailyReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily reviews: %w", err)
	}

	now := s.now()
	review := model.DailyReview{
		ID:            s.newID(),
		Date:          req.Date,
		MarketSummary: req.MarketSummary,
		Operations:    req.Operations,
		Reflection:    req.Reflection,
		Mood:          req.Mood,
		Tags:          req.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	idx := indexOfDailyReview(reviews, req.Date)
	if idx >= 0 {
		review.ID = reviews[idx].ID
		review.CreatedAt = reviews[idx].CreatedAt
		reviews[idx] = review
	} else {
		reviews = append(reviews, review)
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].Date > reviews[j].Date })

	if err := s.journalRepo.ReplaceDailyReviews(ctx, reviews); err != nil {
		return nil, fmt.Errorf("failed to save daily reviews: %w", err)
	}
	s.log.InfoContext(ctx, "Daily review saved", logger.StringField("date", req.Date))
	return &review, nil
}

func (s *journalService) GetDailyReview(ctx context.Context, date string) (*model.DailyReview, error) {
	reviews, err := s.journalRepo.GetDailyReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily reviews: %w", err)
	}
	idx := indexOfDailyReview(reviews, date)
	if idx < 0 {
		return nil, ErrReviewNotFound
	}
	return &reviews[idx], nil
}

// ListDailyReviews returns reviews between from and to inclusive, newest first.
// An empty bound is open.
func (s *journalService) ListDailyReviews(ctx context.Context, from, to string) ([]model.DailyReview, error) {
	reviews, err := s.journalRepo.GetDailyReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily reviews: %w", err)
	}

	filtered := []model.DailyReview{}
	for _, r := range reviews {
		if from != "" && r.Date < from {
			continue
		}
		if to != "" && r.Date > to {
			continue
		}
		filtered = append(filtered, r)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Date > filtered[j].Date })
	return filtered, nil
}

func (s *journalService) DeleteDailyReview(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.journalRepo.GetDailyReviews(ctx)
	if err != nil {
		return fmt.Errorf("failed to load daily reviews: %w", err)
	}
	idx := indexOfDailyReview(reviews, date)
	if idx < 0 {
		return ErrReviewNotFound
	}
	reviews = append(reviews[:idx], reviews[idx+1:]...)
	if err := s.journalRepo.ReplaceDailyReviews(ctx, reviews); err != nil {
		return fmt.Errorf("failed to save daily reviews: %w", err)
	}
	return nil
}

// SaveWeeklyReview creates or replaces the review of the ISO week containing
// req.Date.
func (s *journalService) SaveWeeklyReview(ctx context.Context, req dto.SaveWeeklyReviewRequest) (*model.WeeklyReview, error) {
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, req.Date)
	}
	label := utils.WeekLabel(date)
	start, end := utils.WeekRange(date)

	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.journalRepo.GetWeeklyReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly reviews: %w", err)
	}

	now := s.now()
	review := model.WeeklyReview{
		ID:           s.newID(),
		WeekLabel:    label,
		StartDate:    utils.FormatDate(start),
		EndDate:      utils.FormatDate(end),
		Summary:      req.Summary,
		Wins:         req.Wins,
		Mistakes:     req.Mistakes,
		NextWeekPlan: req.NextWeekPlan,
		Rating:       req.Rating,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	idx := indexOfWeeklyReview(reviews, label)
	if idx >= 0 {
		review.ID = reviews[idx].ID
		review.CreatedAt = reviews[idx].CreatedAt
		reviews[idx] = review
	} else {
		reviews = append(reviews, review)
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].StartDate > reviews[j].StartDate })

	if err := s.journalRepo.ReplaceWeeklyReviews(ctx, reviews); err != nil {
		return nil, fmt.Errorf("failed to save weekly reviews: %w", err)
	}
	s.log.InfoContext(ctx, "Weekly review saved", logger.StringField("week", label))
	return &review, nil
}

func (s *journalService) GetWeeklyReview(ctx context.Context, label string) (*model.WeeklyReview, error) {
	if _, err := utils.ParseWeekLabel(label); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, label)
	}
	reviews, err := s.journalRepo.GetWeeklyReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly reviews: %w", err)
	}
	idx := indexOfWeeklyReview(reviews, label)
	if idx < 0 {
		return nil, ErrReviewNotFound
	}
	return &reviews[idx], nil
}

func (s *journalService) ListWeeklyReviews(ctx context.Context) ([]model.WeeklyReview, error) {
	reviews, err := s.journalRepo.GetWeeklyReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly reviews: %w", err)
	}
	return reviews, nil
}

func (s *journalService) DeleteWeeklyReview(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.journalRepo.GetWeeklyReviews(ctx)
	if err != nil {
		return fmt.Errorf("failed to load weekly reviews: %w", err)
	}
	idx := indexOfWeeklyReview(reviews, label)
	if idx < 0 {
		return ErrReviewNotFound
	}
	reviews = append(reviews[:idx], reviews[idx+1:]...)
	if err := s.journalRepo.ReplaceWeeklyReviews(ctx, reviews); err != nil {
		return fmt.Errorf("failed to save weekly reviews: %w", err)
	}
	return nil
}

// ListTags returns the tags of one kind, or all tags when kind is empty.
func (s *journalService) ListTags(ctx context.Context, kind model.TagKind) ([]model.TagDefinition, error) {
	tags, err := s.journalRepo.GetTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if kind == "" {
		return tags, nil
	}
	filtered := []model.TagDefinition{}
	for _, t := range tags {
		if t.Kind == kind {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// CreateTag adds a tag. Names are unique per kind, ignoring case.
func (s *journalService) CreateTag(ctx context.Context, req dto.CreateTagRequest) (*model.TagDefinition, error) {
	name := strings.TrimSpace(req.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := s.journalRepo.GetTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	for _, t := range tags {
		if t.Kind == req.Kind && strings.EqualFold(t.Name, name) {
			return nil, ErrTagExists
		}
	}

	tag := model.TagDefinition{
		ID:    s.newID(),
		Kind:  req.Kind,
		Name:  name,
		Color: req.Color,
	}
	tags = append(tags, tag)
	if err := s.journalRepo.ReplaceTags(ctx, tags); err != nil {
		return nil, fmt.Errorf("failed to save tags: %w", err)
	}
	return &tag, nil
}

func (s *journalService) DeleteTag(ctx context.Context, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := s.journalRepo.GetTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	for i, t := range tags {
		if t.ID != tagID {
			continue
		}
		tags = append(tags[:i], tags[i+1:]...)
		if err := s.journalRepo.ReplaceTags(ctx, tags); err != nil {
			return fmt.Errorf("failed to save tags: %w", err)
		}
		return nil
	}
	return ErrTagNotFound
}

func indexOfDailyReview(reviews []model.DailyReview, date string) int {
	for i, r := range reviews {
		if r.Date == date {
			return i
		}
	}
	return -1
}

func indexOfWeeklyReview(reviews []model.WeeklyReview, label string) int {
	for i, r := range reviews {
		if r.WeekLabel == label {
			return i
		}
	}
	return -1
}
