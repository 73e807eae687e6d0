package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"golang-portfolio/internal/repository"
	"golang-portfolio/pkg/common"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/utils"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var defaultTags = []model.TagDefinition{
	{Kind: model.TagKindEmotion, Name: "calm", Color: "#52c41a"},
	{Kind: model.TagKindEmotion, Name: "confident", Color: "#1890ff"},
	{Kind: model.TagKindEmotion, Name: "greedy", Color: "#fa8c16"},
	{Kind: model.TagKindEmotion, Name: "fearful", Color: "#722ed1"},
	{Kind: model.TagKindEmotion, Name: "fomo", Color: "#f5222d"},
	{Kind: model.TagKindReason, Name: "technical breakout", Color: "#13c2c2"},
	{Kind: model.TagKindReason, Name: "value", Color: "#2f54eb"},
	{Kind: model.TagKindReason, Name: "earnings", Color: "#faad14"},
	{Kind: model.TagKindReason, Name: "news", Color: "#eb2f96"},
	{Kind: model.TagKindReason, Name: "stop loss", Color: "#8c8c8c"},
	{Kind: model.TagKindReason, Name: "take profit", Color: "#a0d911"},
}

type Migrator interface {
	Run(ctx context.Context) (dto.MigrationResult, error)
}

type migrator struct {
	cfg   *config.Config
	log   *logger.Logger
	mu    *sync.Mutex
	store repository.Store
	now   func() time.Time
	newID func() string
}

func NewMigrator(cfg *config.Config, log *logger.Logger, mu *sync.Mutex, store repository.Store) *migrator {
	loc := utils.LoadLocation(cfg.Ledger.TimeZone)
	return &migrator{
		cfg:   cfg,
		log:   log,
		mu:    mu,
		store: store,
		now:   func() time.Time { return utils.TimeNowIn(loc) },
		newID: uuid.NewString,
	}
}

// Run upgrades stored collections to the current schema version. A missing
// version key means legacy data. When the version or any collection cannot be
// parsed the result is unreadable and nothing is written.
func (m *migrator) Run(ctx context.Context) (dto.MigrationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := dto.MigrationResult{To: model.SchemaVersionCurrent}

	version, err := m.readVersion(ctx)
	if err != nil {
		var parseErr *unreadableError
		if errors.As(err, &parseErr) {
			result.Status = dto.MigrationUnreadable
			result.Reason = parseErr.Error()
			m.log.WarnContext(ctx, "Stored schema version is unreadable", logger.ErrorField(err))
			return result, nil
		}
		return result, err
	}
	result.From = version

	if version == model.SchemaVersionCurrent {
		result.Status = dto.MigrationAlreadyCurrent
		return result, nil
	}
	if version > model.SchemaVersionCurrent {
		result.Status = dto.MigrationUnreadable
		result.Reason = fmt.Sprintf("schema version %d is newer than supported version %d", version, model.SchemaVersionCurrent)
		return result, nil
	}

	snapshot := &model.Snapshot{Version: version}
	loaders := []struct {
		key  string
		dest any
	}{
		{common.KEY_POSITIONS, &snapshot.Positions},
		{common.KEY_ACCOUNTS, &snapshot.Accounts},
		{common.KEY_DAILY_REVIEWS, &snapshot.DailyReviews},
		{common.KEY_WEEKLY_REVIEWS, &snapshot.WeeklyReviews},
		{common.KEY_TAGS, &snapshot.Tags},
	}
	for _, l := range loaders {
		if err := m.readStrict(ctx, l.key, l.dest); err != nil {
			var parseErr *unreadableError
			if errors.As(err, &parseErr) {
				result.Status = dto.MigrationUnreadable
				result.Reason = parseErr.Error()
				m.log.WarnContext(ctx, "Stored collection is unreadable, skipping migration",
					logger.StringField("key", l.key),
					logger.ErrorField(err),
				)
				return result, nil
			}
			return result, err
		}
	}

	upgradeSnapshot(snapshot, m.cfg.Ledger.DefaultAccountName, m.now(), m.newID)

	if err := writeSnapshot(ctx, m.store, snapshot); err != nil {
		return result, err
	}

	result.Status = dto.MigrationMigrated
	m.log.InfoContext(ctx, "Schema migrated",
		logger.IntField("from", result.From),
		logger.IntField("to", result.To),
		logger.IntField("positions", len(snapshot.Positions)),
	)
	return result, nil
}

func (m *migrator) readVersion(ctx context.Context) (int, error) {
	raw, ok, err := m.store.Get(ctx, common.KEY_SCHEMA_VERSION)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !ok {
		return model.SchemaVersionLegacy, nil
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || version < model.SchemaVersionLegacy {
		return 0, &unreadableError{key: common.KEY_SCHEMA_VERSION, err: fmt.Errorf("invalid schema version %q", raw)}
	}
	return version, nil
}

func (m *migrator) readStrict(ctx context.Context, key string, dest any) error {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &unreadableError{key: key, err: err}
	}
	return nil
}

// upgradeSnapshot brings s to the current schema version in place. Legacy
// data has no accounts, so every unassigned position moves into the default
// account.
func upgradeSnapshot(s *model.Snapshot, defaultAccountName string, now time.Time, newID func() string) {
	if s.Version < model.SchemaVersionCurrent {
		s.Accounts, _ = normalizeDefaultAccount(s.Accounts, defaultAccountName, now, newID)
		def, _ := FindDefaultAccount(s.Accounts)
		for i := range s.Positions {
			if s.Positions[i].AccountID == "" {
				s.Positions[i].AccountID = def.ID
			}
		}
		if len(s.Tags) == 0 {
			s.Tags = make([]model.TagDefinition, 0, len(defaultTags))
			for _, tag := range defaultTags {
				tag.ID = newID()
				s.Tags = append(s.Tags, tag)
			}
		}
	}
	s.Version = model.SchemaVersionCurrent
}

// writeSnapshot replaces every collection and stamps the version last, so an
// interrupted write is retried on the next start.
func writeSnapshot(ctx context.Context, store repository.Store, s *model.Snapshot) error {
	writes := []struct {
		key   string
		value any
	}{
		{common.KEY_POSITIONS, nonNil(s.Positions)},
		{common.KEY_ACCOUNTS, nonNil(s.Accounts)},
		{common.KEY_DAILY_REVIEWS, nonNil(s.DailyReviews)},
		{common.KEY_WEEKLY_REVIEWS, nonNil(s.WeeklyReviews)},
		{common.KEY_TAGS, nonNil(s.Tags)},
	}
	for _, w := range writes {
		raw, err := json.Marshal(w.value)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", w.key, err)
		}
		if err := store.Set(ctx, w.key, raw); err != nil {
			return fmt.Errorf("failed to write %s: %w", w.key, err)
		}
	}
	if err := store.Set(ctx, common.KEY_SCHEMA_VERSION, []byte(strconv.Itoa(s.Version))); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

type unreadableError struct {
	key string
	err error
}

func (e *unreadableError) Error() string {
	return fmt.Sprintf("%s is unreadable: %v", e.key, e.err)
}

func (e *unreadableError) Unwrap() error {
	return e.err
}
