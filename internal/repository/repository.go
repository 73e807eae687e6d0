package repository

import (
	"golang-portfolio/config"
	"golang-portfolio/pkg/cache"
	"golang-portfolio/pkg/logger"
)

type Repository struct {
	Store        Store
	PositionRepo PositionRepository
	AccountRepo  AccountRepository
	JournalRepo  JournalRepository
	QuoteRepo    QuoteRepository
}

func NewRepository(cfg *config.Config, store Store, inmemoryCache cache.Cache, log *logger.Logger) *Repository {
	return &Repository{
		Store:        store,
		PositionRepo: NewPositionRepository(store, log),
		AccountRepo:  NewAccountRepository(store, log),
		JournalRepo:  NewJournalRepository(store, log),
		QuoteRepo:    NewYahooQuoteRepository(cfg, log, inmemoryCache),
	}
}
