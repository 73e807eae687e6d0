package service

import (
	"context"
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/dto"
	"golang-portfolio/pkg/logger"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshListener is called after every successful quote refresh.
type RefreshListener func(ctx context.Context, result *dto.RefreshResult)

type SchedulerService interface {
	Start() error
	Stop(ctx context.Context)
	RunQuoteRefresh(ctx context.Context) error
	OnRefresh(listener RefreshListener)
}

type schedulerService struct {
	cfg           *config.Config
	log           *logger.Logger
	cronParser    cron.Parser
	cron          *cron.Cron
	ledgerService LedgerService
	running       atomic.Bool
	listenersMu   sync.RWMutex
	listeners     []RefreshListener
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	ledgerService LedgerService,
) *schedulerService {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &schedulerService{
		cfg:           cfg,
		log:           log,
		cronParser:    parser,
		cron:          cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		ledgerService: ledgerService,
	}
}

// Start registers the quote refresh job and starts the cron runner. An empty
// schedule disables the job.
func (s *schedulerService) Start() error {
	spec := s.cfg.Scheduler.QuoteRefreshCron
	if spec == "" {
		s.log.Info("Quote refresh scheduler disabled")
		return nil
	}

	schedule, err := s.cronParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", spec, err)
	}

	s.cron.Schedule(schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
		defer cancel()
		if err := s.RunQuoteRefresh(ctx); err != nil {
			s.log.ErrorContext(ctx, "Scheduled quote refresh failed", logger.ErrorField(err))
		}
	}))
	s.cron.Start()

	s.log.Info("Quote refresh scheduler started",
		logger.StringField("cron", spec),
		logger.StringField("next_run", schedule.Next(time.Now()).Format(time.RFC3339)),
	)
	return nil
}

// Stop halts the runner and waits for a running job until ctx is done.
func (s *schedulerService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Quote refresh scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Timeout while stopping quote refresh scheduler")
	}
}

// RunQuoteRefresh refreshes all prices once. Overlapping runs are skipped.
func (s *schedulerService) RunQuoteRefresh(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.log.WarnContext(ctx, "Quote refresh already running, skipping")
		return nil
	}
	defer s.running.Store(false)

	start := time.Now()
	result, err := s.ledgerService.RefreshPrices(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh prices: %w", err)
	}

	s.log.InfoContext(ctx, "Quote refresh completed",
		logger.IntField("total", result.Total),
		logger.IntField("updated", result.Updated),
		logger.StringField("duration", time.Since(start).String()),
	)

	s.listenersMu.RLock()
	listeners := s.listeners
	s.listenersMu.RUnlock()
	for _, listener := range listeners {
		listener(ctx, result)
	}
	return nil
}

func (s *schedulerService) OnRefresh(listener RefreshListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, listener)
}
