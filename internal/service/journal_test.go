package service

import (
	"context"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"golang-portfolio/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *journalService {
	t.Helper()
	env := newTestEnv(t, testConfig())
	s := NewJournalService(env.cfg, logger.NewNop(), &sync.Mutex{}, env.repo.JournalRepo)
	s.now = func() time.Time { return fixedNow }
	s.newID = sequentialIDs("jr")
	return s
}

func TestJournal_DailyReviews(t *testing.T) {
	ctx := context.Background()
	s := newTestJournal(t)

	first, err := s.SaveDailyReview(ctx, dto.SaveDailyReviewRequest{Date: "2026-10-14", Reflection: "chased the open"})
	require.NoError(t, err)
	_, err = s.SaveDailyReview(ctx, dto.SaveDailyReviewRequest{Date: "2026-10-15", Mood: "calm"})
	require.NoError(t, err)

	// upsert keeps identity
	s.now = func() time.Time { return fixedNow.Add(time.Hour) }
	updated, err := s.SaveDailyReview(ctx, dto.SaveDailyReviewRequest{Date: "2026-10-14", Reflection: "waited for confirmation"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	all, err := s.ListDailyReviews(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-10-15", all[0].Date, "newest first")

	ranged, err := s.ListDailyReviews(ctx, "2026-10-14", "2026-10-14")
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "waited for confirmation", ranged[0].Reflection)

	got, err := s.GetDailyReview(ctx, "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, "calm", got.Mood)

	require.NoError(t, s.DeleteDailyReview(ctx, "2026-10-15"))
	_, err = s.GetDailyReview(ctx, "2026-10-15")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.ErrorIs(t, s.DeleteDailyReview(ctx, "2026-10-15"), ErrReviewNotFound)

	_, err = s.SaveDailyReview(ctx, dto.SaveDailyReviewRequest{Date: "2026-13-01"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestJournal_WeeklyReviews(t *testing.T) {
	ctx := context.Background()
	s := newTestJournal(t)

	review, err := s.SaveWeeklyReview(ctx, dto.SaveWeeklyReviewRequest{Date: "2026-10-15", Summary: "flat week", Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, "2026-W42", review.WeekLabel)
	assert.Equal(t, "2026-10-12", review.StartDate)
	assert.Equal(t, "2026-10-18", review.EndDate)

	// any day of the same week updates the same review
	again, err := s.SaveWeeklyReview(ctx, dto.SaveWeeklyReviewRequest{Date: "2026-10-18", Summary: "flat week, one good exit", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, review.ID, again.ID)

	_, err = s.SaveWeeklyReview(ctx, dto.SaveWeeklyReviewRequest{Date: "2026-10-19", Summary: "next"})
	require.NoError(t, err)

	all, err := s.ListWeeklyReviews(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-W43", all[0].WeekLabel)

	got, err := s.GetWeeklyReview(ctx, "2026-W42")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)

	_, err = s.GetWeeklyReview(ctx, "2026-42")
	assert.ErrorIs(t, err, ErrInvalidDate)

	require.NoError(t, s.DeleteWeeklyReview(ctx, "2026-W42"))
	_, err = s.GetWeeklyReview(ctx, "2026-W42")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestJournal_Tags(t *testing.T) {
	ctx := context.Background()
	s := newTestJournal(t)

	calm, err := s.CreateTag(ctx, dto.CreateTagRequest{Kind: model.TagKindEmotion, Name: "Calm"})
	require.NoError(t, err)
	_, err = s.CreateTag(ctx, dto.CreateTagRequest{Kind: model.TagKindReason, Name: "calm"})
	require.NoError(t, err, "names are unique per kind only")

	_, err = s.CreateTag(ctx, dto.CreateTagRequest{Kind: model.TagKindEmotion, Name: " calm "})
	assert.ErrorIs(t, err, ErrTagExists)

	emotions, err := s.ListTags(ctx, model.TagKindEmotion)
	require.NoError(t, err)
	assert.Len(t, emotions, 1)

	all, err := s.ListTags(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteTag(ctx, calm.ID))
	assert.ErrorIs(t, s.DeleteTag(ctx, calm.ID), ErrTagNotFound)
}
