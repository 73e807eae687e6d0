package service

import (
	"context"
	"errors"
	"golang-portfolio/internal/dto"
	"golang-portfolio/pkg/logger"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	LedgerService
	calls   atomic.Int32
	block   chan struct{}
	err     error
	started chan struct{}
}

func (s *stubLedger) RefreshPrices(ctx context.Context) (*dto.RefreshResult, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RefreshResult{Total: 1, Updated: 1}, nil
}

func TestScheduler_RunQuoteRefresh(t *testing.T) {
	ledger := &stubLedger{}
	s := NewSchedulerService(testConfig(), logger.NewNop(), ledger)

	require.NoError(t, s.RunQuoteRefresh(context.Background()))
	assert.Equal(t, int32(1), ledger.calls.Load())

	ledger.err = errors.New("store unavailable")
	assert.Error(t, s.RunQuoteRefresh(context.Background()))
}

func TestScheduler_NotifiesListeners(t *testing.T) {
	ledger := &stubLedger{}
	s := NewSchedulerService(testConfig(), logger.NewNop(), ledger)

	var got []*dto.RefreshResult
	s.OnRefresh(func(ctx context.Context, result *dto.RefreshResult) {
		got = append(got, result)
	})

	require.NoError(t, s.RunQuoteRefresh(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Updated)

	ledger.err = errors.New("store unavailable")
	assert.Error(t, s.RunQuoteRefresh(context.Background()))
	assert.Len(t, got, 1, "failed runs are not broadcast")
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	ledger := &stubLedger{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewSchedulerService(testConfig(), logger.NewNop(), ledger)

	done := make(chan error, 1)
	go func() { done <- s.RunQuoteRefresh(context.Background()) }()
	<-ledger.started

	require.NoError(t, s.RunQuoteRefresh(context.Background()))
	assert.Equal(t, int32(1), ledger.calls.Load())

	close(ledger.block)
	require.NoError(t, <-done)
}

func TestScheduler_StartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.QuoteRefreshCron = "@every 1h"
	s := NewSchedulerService(cfg, logger.NewNop(), &stubLedger{})

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_InvalidCron(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.QuoteRefreshCron = "every five minutes"
	s := NewSchedulerService(cfg, logger.NewNop(), &stubLedger{})
	assert.Error(t, s.Start())
}

func TestScheduler_Disabled(t *testing.T) {
	s := NewSchedulerService(testConfig(), logger.NewNop(), &stubLedger{})
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
}
