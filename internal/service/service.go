package service

import (
	"golang-portfolio/config"
	"golang-portfolio/internal/repository"
	"golang-portfolio/pkg/logger"
	"sync"
)

type Service struct {
	LedgerService    LedgerService
	AccountService   AccountService
	BackupService    BackupService
	JournalService   JournalService
	SchedulerService SchedulerService
	Migrator         Migrator
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	// every collection write goes through this lock; the store itself has no
	// compare-and-swap
	mu := &sync.Mutex{}

	ledgerService := NewLedgerService(cfg, log, mu, repo.PositionRepo, repo.AccountRepo, repo.QuoteRepo)
	return &Service{
		LedgerService:    ledgerService,
		AccountService:   NewAccountService(cfg, log, mu, repo.AccountRepo, repo.PositionRepo),
		BackupService:    NewBackupService(cfg, log, mu, repo),
		JournalService:   NewJournalService(cfg, log, mu, repo.JournalRepo),
		SchedulerService: NewSchedulerService(cfg, log, ledgerService),
		Migrator:         NewMigrator(cfg, log, mu, repo.Store),
	}
}
