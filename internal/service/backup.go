package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"golang-portfolio/internal/repository"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
)

type BackupService interface {
	Export(ctx context.Context) (*model.Snapshot, error)
	Import(ctx context.Context, raw []byte) (*dto.ImportResult, error)
}

type backupService struct {
	cfg   *config.Config
	log   *logger.Logger
	mu    *sync.Mutex
	store repository.Store
	repo  *repository.Repository
	now   func() time.Time
	newID func() string
}

func NewBackupService(cfg *config.Config, log *logger.Logger, mu *sync.Mutex, repo *repository.Repository) *backupService {
	loc := utils.LoadLocation(cfg.Ledger.TimeZone)
	return &backupService{
		cfg:   cfg,
		log:   log,
		mu:    mu,
		store: repo.Store,
		repo:  repo,
		now:   func() time.Time { return utils.TimeNowIn(loc) },
		newID: uuid.NewString,
	}
}

func (s *backupService) Export(ctx context.Context) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &model.Snapshot{
		Version:    model.SchemaVersionCurrent,
		ExportedAt: s.now(),
	}

	var err error
	if snapshot.Positions, err = s.repo.PositionRepo.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	if snapshot.Accounts, err = s.repo.AccountRepo.GetAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if snapshot.DailyReviews, err = s.repo.JournalRepo.GetDailyReviews(ctx); err != nil {
		return nil, fmt.Errorf("failed to load daily reviews: %w", err)
	}
	if snapshot.WeeklyReviews, err = s.repo.JournalRepo.GetWeeklyReviews(ctx); err != nil {
		return nil, fmt.Errorf("failed to load weekly reviews: %w", err)
	}
	if snapshot.Tags, err = s.repo.JournalRepo.GetTags(ctx); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return snapshot, nil
}

// Import validates a snapshot and replaces every collection with it. Nothing
// is written unless the whole snapshot is valid. Snapshots from an older
// schema are upgraded first; a snapshot without a version is legacy.
func (s *backupService) Import(ctx context.Context, raw []byte) (*dto.ImportResult, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	positionsRaw, ok := envelope["positions"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(positionsRaw), []byte("[")) {
		return nil, fmt.Errorf("%w: positions array is required", ErrInvalidImport)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	if snapshot.Version == 0 {
		snapshot.Version = model.SchemaVersionLegacy
	}
	if snapshot.Version > model.SchemaVersionCurrent {
		return nil, fmt.Errorf("%w: schema version %d is not supported", ErrInvalidImport, snapshot.Version)
	}

	positions, err := normalizePositions(snapshot.Positions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	snapshot.Positions = positions

	migration := dto.MigrationResult{
		Status: dto.MigrationAlreadyCurrent,
		From:   snapshot.Version,
		To:     model.SchemaVersionCurrent,
	}
	if snapshot.Version < model.SchemaVersionCurrent {
		upgradeSnapshot(&snapshot, s.cfg.Ledger.DefaultAccountName, s.now(), s.newID)
		migration.Status = dto.MigrationMigrated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeSnapshot(ctx, s.store, &snapshot); err != nil {
		return nil, err
	}

	result := &dto.ImportResult{
		Version:   snapshot.Version,
		Positions: len(snapshot.Positions),
		Accounts:  len(snapshot.Accounts),
		Reviews:   len(snapshot.DailyReviews) + len(snapshot.WeeklyReviews),
		Migration: migration,
	}
	s.log.InfoContext(ctx, "Backup imported",
		logger.IntField("version", result.Version),
		logger.IntField("positions", result.Positions),
		logger.IntField("accounts", result.Accounts),
		logger.StringField("migration", string(migration.Status)),
	)
	return result, nil
}
