package service

import (
	"context"
	"encoding/json"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"golang-portfolio/pkg/common"
	"golang-portfolio/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackup(env *testEnv) *backupService {
	s := NewBackupService(env.cfg, logger.NewNop(), &sync.Mutex{}, env.repo)
	s.now = func() time.Time { return fixedNow }
	s.newID = sequentialIDs("bak")
	return s
}

func seedLedger(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	env.createAccount(t, "Main")
	env.quotes.set("600519.SH", "Kweichow Moutai", "1700")
	env.quotes.set("AAPL", "Apple", "190.12")

	p, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "600519.SH", Price: d("1680.50"), Quantity: d("100"), Reasons: []string{"value"}})
	require.NoError(t, err)
	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: p.ID, Type: model.TradeTypeBuy, Price: d("1700"), Quantity: d("100")})
	require.NoError(t, err)
	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: p.ID, Type: model.TradeTypeSell, Price: d("1750"), Quantity: d("50")})
	require.NoError(t, err)
	_, err = env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "AAPL", Price: d("185.333"), Quantity: d("3")})
	require.NoError(t, err)
}

func TestBackup_RoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	seedLedger(t, env)
	backup := newTestBackup(env)

	exported, err := backup.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SchemaVersionCurrent, exported.Version)
	require.Len(t, exported.Positions, 2)

	raw, err := json.Marshal(exported)
	require.NoError(t, err)

	// import into an empty store
	target := newTestEnv(t, testConfig())
	result, err := newTestBackup(target).Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Positions)
	assert.Equal(t, 1, result.Accounts)
	assert.Equal(t, dto.MigrationAlreadyCurrent, result.Migration.Status)

	reexported, err := newTestBackup(target).Export(ctx)
	require.NoError(t, err)

	want, err := json.Marshal(exported.Positions)
	require.NoError(t, err)
	got, err := json.Marshal(reexported.Positions)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	for i := range exported.Positions {
		assert.True(t, exported.Positions[i].CostPrice.Equal(reexported.Positions[i].CostPrice))
	}
}

func TestBackup_ImportRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `positions`},
		{name: "missing positions", raw: `{"version":2,"accounts":[]}`},
		{name: "positions not an array", raw: `{"version":2,"positions":{}}`},
		{name: "unsupported version", raw: `{"version":9,"positions":[]}`},
		{
			name: "amount mismatch",
			raw: `{"version":2,"positions":[{"id":"p1","symbol":"AAPL","quantity":"2","total_buy_amount":"300","total_sell_amount":"0",
				"transactions":[{"id":"t1","type":"buy","price":"100","quantity":"2","amount":"300"}]}]}`,
		},
		{
			name: "quantity mismatch",
			raw: `{"version":2,"positions":[{"id":"p1","symbol":"AAPL","quantity":"5","total_buy_amount":"200","total_sell_amount":"0",
				"transactions":[{"id":"t1","type":"buy","price":"100","quantity":"2","amount":"200"}]}]}`,
		},
		{
			name: "sell before buy",
			raw: `{"version":2,"positions":[{"id":"p1","symbol":"AAPL","quantity":"0","total_buy_amount":"200","total_sell_amount":"200",
				"transactions":[{"id":"t1","type":"sell","price":"100","quantity":"2","amount":"200"},
				{"id":"t2","type":"buy","price":"100","quantity":"2","amount":"200"}]}]}`,
		},
		{
			name: "duplicate position ids",
			raw: `{"version":2,"positions":[
				{"id":"p1","symbol":"AAPL","quantity":"2","total_buy_amount":"200","total_sell_amount":"0",
				 "transactions":[{"id":"t1","type":"buy","price":"100","quantity":"2","amount":"200"}]},
				{"id":"p1","symbol":"MSFT","quantity":"1","total_buy_amount":"400","total_sell_amount":"0",
				 "transactions":[{"id":"t2","type":"buy","price":"400","quantity":"1","amount":"400"}]}]}`,
		},
		{
			name: "unknown trade type",
			raw: `{"version":2,"positions":[{"id":"p1","symbol":"AAPL","quantity":"2","total_buy_amount":"200","total_sell_amount":"0",
				"transactions":[{"id":"t1","type":"short","price":"100","quantity":"2","amount":"200"}]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, testConfig())
			seedLedger(t, env)

			_, err := newTestBackup(env).Import(ctx, []byte(tt.raw))
			assert.ErrorIs(t, err, ErrInvalidImport)

			positions, err := env.repo.PositionRepo.GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, positions, 2, "store is untouched")
		})
	}
}

func TestBackup_ImportLegacySnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())

	raw := `{"positions":` + legacyPositions + `}`
	result, err := newTestBackup(env).Import(ctx, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, model.SchemaVersionCurrent, result.Version)
	assert.Equal(t, dto.MigrationResult{Status: dto.MigrationMigrated, From: 1, To: 2}, result.Migration)
	assert.Equal(t, 1, result.Accounts)

	accounts, err := env.repo.AccountRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	positions, err := env.repo.PositionRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, accounts[0].ID, positions[0].AccountID)

	version, ok, err := env.repo.Store.Get(ctx, common.KEY_SCHEMA_VERSION)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", string(version))
}

func TestBackup_ImportRecomputesCostPrice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())

	raw := `{"version":2,"positions":[{"id":"p1","symbol":"AAPL","quantity":"2","cost_price":"999",
		"current_price":"110","change_percent":"-88.99","total_buy_amount":"200","total_sell_amount":"0",
		"transactions":[{"id":"t1","type":"buy","price":"100","quantity":"2","amount":"200"}]}]}`
	_, err := newTestBackup(env).Import(ctx, []byte(raw))
	require.NoError(t, err)

	positions, err := env.repo.PositionRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assertDecimal(t, "100", positions[0].CostPrice)
	assertDecimal(t, "10", positions[0].ChangePercent)
}
