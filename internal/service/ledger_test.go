package service

import (
	"context"
	"errors"
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"golang-portfolio/internal/repository"
	"golang-portfolio/pkg/logger"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type fakeQuoteRepository struct {
	mu     sync.Mutex
	quotes map[string]*dto.Quote
	errs   map[string]error
	calls  int
}

func newFakeQuoteRepository() *fakeQuoteRepository {
	return &fakeQuoteRepository{
		quotes: map[string]*dto.Quote{},
		errs:   map[string]error{},
	}
}

func (f *fakeQuoteRepository) set(symbol, name, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = &dto.Quote{Symbol: symbol, Name: name, Price: decimal.RequireFromString(price)}
}

func (f *fakeQuoteRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.quotes[symbol], nil
}

type testEnv struct {
	cfg      *config.Config
	repo     *repository.Repository
	quotes   *fakeQuoteRepository
	ledger   *ledgerService
	accounts *accountService
}

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.Scheduler{MaxConcurrency: 2, TimeoutDuration: time.Second},
		Ledger: config.Ledger{
			DefaultAccountName: "Default Account",
			TimeZone:           "UTC",
		},
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	log := logger.NewNop()
	store := repository.NewMemoryStore()
	quotes := newFakeQuoteRepository()
	repo := &repository.Repository{
		Store:        store,
		PositionRepo: repository.NewPositionRepository(store, log),
		AccountRepo:  repository.NewAccountRepository(store, log),
		JournalRepo:  repository.NewJournalRepository(store, log),
		QuoteRepo:    quotes,
	}
	mu := &sync.Mutex{}

	ledger := NewLedgerService(cfg, log, mu, repo.PositionRepo, repo.AccountRepo, quotes)
	ledger.now = func() time.Time { return fixedNow }
	ledger.newID = sequentialIDs("pos")

	accounts := NewAccountService(cfg, log, mu, repo.AccountRepo, repo.PositionRepo)
	accounts.now = func() time.Time { return fixedNow }
	accounts.newID = sequentialIDs("acc")

	return &testEnv{cfg: cfg, repo: repo, quotes: quotes, ledger: ledger, accounts: accounts}
}

func (e *testEnv) createAccount(t *testing.T, name string) *model.Account {
	t.Helper()
	account, err := e.accounts.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Name: name,
		Type: model.AccountTypeBroker,
	})
	require.NoError(t, err)
	return account
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msg ...string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s %v", want, got, msg)
}

func TestLedger_TradeLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	account := env.createAccount(t, "Main")
	env.quotes.set("600519.SH", "Kweichow Moutai", "1700")

	// open: buy 100 @ 1680.50
	p, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{
		Symbol:   "600519.SH",
		Price:    d("1680.50"),
		Quantity: d("100"),
		Emotion:  "calm",
	})
	require.NoError(t, err)
	assert.Equal(t, account.ID, p.AccountID)
	assert.Equal(t, "Kweichow Moutai", p.Name)
	assert.Len(t, p.Transactions, 1)
	assertDecimal(t, "100", p.Quantity)
	assertDecimal(t, "1680.5", p.CostPrice)
	assertDecimal(t, "168050", p.TotalBuyAmount)
	assertDecimal(t, "0", p.TotalSellAmount)
	assertDecimal(t, "1700", p.CurrentPrice)
	assertDecimal(t, "1.16", p.ChangePercent)
	assertDecimal(t, "168050", p.Transactions[0].Amount)

	// add: buy 100 @ 1700
	p, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{
		PositionID: p.ID,
		Type:       model.TradeTypeBuy,
		Price:      d("1700"),
		Quantity:   d("100"),
	})
	require.NoError(t, err)
	assertDecimal(t, "200", p.Quantity)
	assertDecimal(t, "338050", p.TotalBuyAmount)
	assertDecimal(t, "1690.25", p.CostPrice)

	// partial sell: 50 @ 1750, cost price follows the formula
	p, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{
		PositionID: p.ID,
		Type:       model.TradeTypeSell,
		Price:      d("1750"),
		Quantity:   d("50"),
	})
	require.NoError(t, err)
	assertDecimal(t, "150", p.Quantity)
	assertDecimal(t, "87500", p.TotalSellAmount)
	assertDecimal(t, "1670.33", p.CostPrice.Round(2))
	assert.False(t, p.CostPrice.Equal(d("1690.25")))

	// full exit: 150 @ 1600
	p, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{
		PositionID: p.ID,
		Type:       model.TradeTypeSell,
		Price:      d("1600"),
		Quantity:   d("150"),
	})
	require.NoError(t, err)
	assertDecimal(t, "0", p.Quantity)
	assertDecimal(t, "327500", p.TotalSellAmount)
	assertDecimal(t, "0", p.CostPrice)
	assert.True(t, p.IsCleared())
	assert.Len(t, p.Transactions, 4)

	positions, err := env.ledger.ListPositions(ctx, "")
	require.NoError(t, err)
	require.Len(t, positions, 1, "a cleared position keeps its history")

	cleared := CalculateClearedProfit(positions)
	require.NotNil(t, cleared)
	assert.Equal(t, 1, cleared.Count)
	assertDecimal(t, "-10550", cleared.TotalProfit)
	assertDecimal(t, "-3.12", cleared.ProfitPercent.Round(2))

	summary := CalculateProfitSummary(positions, false)
	assert.Empty(t, summary.Positions)
	assertDecimal(t, "0", summary.TotalCost)

	// sell more than held: rejected, nothing changes
	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{
		PositionID: p.ID,
		Type:       model.TradeTypeSell,
		Price:      d("1600"),
		Quantity:   d("10"),
	})
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	stored, err := env.ledger.GetPosition(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Transactions, 4)
	assertDecimal(t, "0", stored.Quantity)
	assertDecimal(t, "327500", stored.TotalSellAmount)
}

func TestLedger_OpenPositionValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.createAccount(t, "Main")
	env.quotes.set("AAPL", "Apple", "190")
	env.quotes.errs["MSFT"] = errors.New("upstream down")

	tests := []struct {
		name    string
		req     dto.OpenPositionRequest
		wantErr error
	}{
		{
			name:    "zero price",
			req:     dto.OpenPositionRequest{Symbol: "AAPL", Price: d("0"), Quantity: d("1")},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "negative quantity",
			req:     dto.OpenPositionRequest{Symbol: "AAPL", Price: d("1"), Quantity: d("-1")},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "unknown symbol",
			req:     dto.OpenPositionRequest{Symbol: "NOPE", Price: d("1"), Quantity: d("1")},
			wantErr: ErrQuoteNotFound,
		},
		{
			name:    "unknown account",
			req:     dto.OpenPositionRequest{AccountID: "missing", Symbol: "AAPL", Price: d("1"), Quantity: d("1")},
			wantErr: ErrAccountNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.OpenPosition(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("quote source failure", func(t *testing.T) {
		_, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "MSFT", Price: d("1"), Quantity: d("1")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream down")
	})

	positions, err := env.ledger.ListPositions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestLedger_OpenPositionWithoutAccounts(t *testing.T) {
	env := newTestEnv(t, testConfig())
	env.quotes.set("AAPL", "Apple", "190")

	_, err := env.ledger.OpenPosition(context.Background(), dto.OpenPositionRequest{Symbol: "AAPL", Price: d("1"), Quantity: d("1")})
	assert.ErrorIs(t, err, ErrNoDefaultAccount)
}

// The duplicate-symbol check ignores the account by default, which blocks the
// same symbol in two accounts. Whether that is intended is pending product
// owner confirmation; ledger.duplicate_check_per_account scopes it per account.
func TestLedger_DuplicateSymbolCheck(t *testing.T) {
	ctx := context.Background()

	open := func(env *testEnv, accountID, symbol string) (*model.Position, error) {
		return env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{
			AccountID: accountID,
			Symbol:    symbol,
			Price:     d("10"),
			Quantity:  d("100"),
		})
	}

	t.Run("same account, different case", func(t *testing.T) {
		env := newTestEnv(t, testConfig())
		a := env.createAccount(t, "A")
		env.quotes.set("600519.SH", "Moutai", "10")

		_, err := open(env, a.ID, "600519.SH")
		require.NoError(t, err)
		_, err = open(env, a.ID, "600519.sh")
		assert.ErrorIs(t, err, ErrSymbolExists)
	})

	t.Run("other account blocked by default (pending confirmation)", func(t *testing.T) {
		env := newTestEnv(t, testConfig())
		a := env.createAccount(t, "A")
		b := env.createAccount(t, "B")
		env.quotes.set("600519.SH", "Moutai", "10")

		_, err := open(env, a.ID, "600519.SH")
		require.NoError(t, err)
		_, err = open(env, b.ID, "600519.SH")
		assert.ErrorIs(t, err, ErrSymbolExists)
	})

	t.Run("other account allowed when scoped per account", func(t *testing.T) {
		cfg := testConfig()
		cfg.Ledger.DuplicateCheckPerAccount = true
		env := newTestEnv(t, cfg)
		a := env.createAccount(t, "A")
		b := env.createAccount(t, "B")
		env.quotes.set("600519.SH", "Moutai", "10")

		_, err := open(env, a.ID, "600519.SH")
		require.NoError(t, err)
		p, err := open(env, b.ID, "600519.SH")
		require.NoError(t, err)
		assert.Equal(t, b.ID, p.AccountID)
	})

	t.Run("cleared position does not block", func(t *testing.T) {
		env := newTestEnv(t, testConfig())
		a := env.createAccount(t, "A")
		env.quotes.set("600519.SH", "Moutai", "10")

		p, err := open(env, a.ID, "600519.SH")
		require.NoError(t, err)
		_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: p.ID, Type: model.TradeTypeSell, Price: d("12"), Quantity: d("100")})
		require.NoError(t, err)

		_, err = open(env, a.ID, "600519.SH")
		assert.NoError(t, err)
	})
}

func TestLedger_ExecuteTradeErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.createAccount(t, "Main")
	env.quotes.set("AAPL", "Apple", "190")
	p, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "AAPL", Price: d("180"), Quantity: d("10")})
	require.NoError(t, err)

	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: "missing", Type: model.TradeTypeBuy, Price: d("1"), Quantity: d("1")})
	assert.ErrorIs(t, err, ErrPositionNotFound)

	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: p.ID, Type: "short", Price: d("1"), Quantity: d("1")})
	assert.ErrorIs(t, err, ErrInvalidTradeType)

	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: p.ID, Type: model.TradeTypeBuy, Price: d("-1"), Quantity: d("1")})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: p.ID, Type: model.TradeTypeSell, Price: d("1"), Quantity: d("0")})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLedger_DeletePosition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.createAccount(t, "Main")
	env.quotes.set("AAPL", "Apple", "190")
	p, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "AAPL", Price: d("180"), Quantity: d("10")})
	require.NoError(t, err)

	require.NoError(t, env.ledger.DeletePosition(ctx, p.ID))
	assert.ErrorIs(t, env.ledger.DeletePosition(ctx, p.ID), ErrPositionNotFound)

	_, err = env.ledger.GetPosition(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestLedger_RefreshPrices(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.createAccount(t, "Main")
	env.quotes.set("AAPL", "Apple", "100")
	env.quotes.set("MSFT", "Microsoft", "400")
	env.quotes.set("TSLA", "Tesla", "250")

	for _, symbol := range []string{"AAPL", "MSFT", "TSLA"} {
		_, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: symbol, Price: d("100"), Quantity: d("1")})
		require.NoError(t, err)
	}

	env.quotes.set("AAPL", "Apple", "110")
	env.quotes.errs["MSFT"] = errors.New("timeout")
	delete(env.quotes.quotes, "TSLA")

	result, err := env.ledger.RefreshPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Updated)
	assert.ElementsMatch(t, []string{"MSFT", "TSLA"}, result.Skipped)

	positions, err := env.ledger.ListPositions(ctx, "")
	require.NoError(t, err)
	prices := map[string]decimal.Decimal{}
	changes := map[string]decimal.Decimal{}
	for _, p := range positions {
		prices[p.Symbol] = p.CurrentPrice
		changes[p.Symbol] = p.ChangePercent
	}
	assertDecimal(t, "110", prices["AAPL"])
	assertDecimal(t, "10", changes["AAPL"])
	assertDecimal(t, "400", prices["MSFT"], "failed lookup leaves the price untouched")
	assertDecimal(t, "250", prices["TSLA"], "unknown symbol leaves the price untouched")
}

func TestLedger_RefreshPricesEmpty(t *testing.T) {
	env := newTestEnv(t, testConfig())
	result, err := env.ledger.RefreshPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, env.quotes.calls)
}

func TestLedger_ReplaceAccountPositions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	a := env.createAccount(t, "A")
	b := env.createAccount(t, "B")
	env.quotes.set("AAPL", "Apple", "100")
	env.quotes.set("MSFT", "Microsoft", "400")

	_, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{AccountID: a.ID, Symbol: "AAPL", Price: d("100"), Quantity: d("1")})
	require.NoError(t, err)
	msft, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{AccountID: b.ID, Symbol: "MSFT", Price: d("400"), Quantity: d("2")})
	require.NoError(t, err)

	// editing from the "all accounts" view lands in the default account (A)
	incoming := []model.Position{*msft}
	incoming[0].ID = "copied"
	merged, err := env.ledger.ReplaceAccountPositions(ctx, dto.ReplacePositionsRequest{Positions: incoming})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, msft.ID, merged[0].ID)
	assert.Equal(t, b.ID, merged[0].AccountID)
	assert.Equal(t, "copied", merged[1].ID)
	assert.Equal(t, a.ID, merged[1].AccountID)

	broken := *msft
	broken.Quantity = d("5")
	_, err = env.ledger.ReplaceAccountPositions(ctx, dto.ReplacePositionsRequest{AccountID: b.ID, Positions: []model.Position{broken}})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	t.Run("id owned by another account", func(t *testing.T) {
		_, err := env.ledger.ReplaceAccountPositions(ctx, dto.ReplacePositionsRequest{AccountID: a.ID, Positions: []model.Position{*msft}})
		assert.ErrorIs(t, err, ErrInvalidPosition)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := env.ledger.ReplaceAccountPositions(ctx, dto.ReplacePositionsRequest{AccountID: b.ID, Positions: []model.Position{*msft, *msft}})
		assert.ErrorIs(t, err, ErrInvalidPosition)
	})

	t.Run("sell before any buy", func(t *testing.T) {
		p := model.Position{
			ID:              "short",
			Symbol:          "TSLA",
			Quantity:        d("0"),
			TotalBuyAmount:  d("200"),
			TotalSellAmount: d("200"),
			Transactions: []model.Transaction{
				{ID: "t1", Type: model.TradeTypeSell, Price: d("100"), Quantity: d("2"), Amount: d("200")},
				{ID: "t2", Type: model.TradeTypeBuy, Price: d("100"), Quantity: d("2"), Amount: d("200")},
			},
		}
		_, err := env.ledger.ReplaceAccountPositions(ctx, dto.ReplacePositionsRequest{AccountID: b.ID, Positions: []model.Position{p}})
		assert.ErrorIs(t, err, ErrInvalidPosition)
		assert.ErrorIs(t, err, ErrInsufficientQuantity)
	})

	t.Run("derived fields are recomputed", func(t *testing.T) {
		edited := *msft
		edited.CostPrice = d("999")
		edited.ChangePercent = d("-60")
		merged, err := env.ledger.ReplaceAccountPositions(ctx, dto.ReplacePositionsRequest{AccountID: b.ID, Positions: []model.Position{edited}})
		require.NoError(t, err)

		stored, err := env.ledger.GetPosition(ctx, msft.ID)
		require.NoError(t, err)
		assertDecimal(t, "400", stored.CostPrice)
		assertDecimal(t, "0", stored.ChangePercent)
		assert.Len(t, merged, 2)
	})

	positions, err := env.repo.PositionRepo.GetAll(ctx)
	require.NoError(t, err)
	ids := map[string]int{}
	for _, p := range positions {
		ids[p.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "position %s stored once", id)
	}
}

func TestLedger_Overview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testConfig())
	env.createAccount(t, "Main")
	env.quotes.set("AAPL", "Apple", "120")
	env.quotes.set("MSFT", "Microsoft", "400")

	_, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "AAPL", Price: d("100"), Quantity: d("10")})
	require.NoError(t, err)
	overview, err := env.ledger.Overview(ctx, "", nil)
	require.NoError(t, err)
	assert.Nil(t, overview.Cleared, "no cleared position means no cleared aggregate")
	assertDecimal(t, "200", overview.Summary.TotalProfit)

	msft, err := env.ledger.OpenPosition(ctx, dto.OpenPositionRequest{Symbol: "MSFT", Price: d("400"), Quantity: d("1")})
	require.NoError(t, err)
	_, err = env.ledger.ExecuteTrade(ctx, dto.TradeRequest{PositionID: msft.ID, Type: model.TradeTypeSell, Price: d("450"), Quantity: d("1")})
	require.NoError(t, err)

	overview, err = env.ledger.Overview(ctx, "", nil)
	require.NoError(t, err)
	assert.False(t, overview.IncludeCleared)
	assert.Len(t, overview.Summary.Positions, 1)
	require.NotNil(t, overview.Cleared)
	assertDecimal(t, "50", overview.Cleared.TotalProfit)

	include := true
	overview, err = env.ledger.Overview(ctx, "", &include)
	require.NoError(t, err)
	assert.True(t, overview.IncludeCleared)
	assert.Len(t, overview.Summary.Positions, 2)
}

func TestApplyTrade_SequenceInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		p := model.Position{ID: "p", Symbol: "X"}
		buyQty, sellQty := decimal.Zero, decimal.Zero

		for step := 0; step < 20; step++ {
			tradeType := model.TradeTypeBuy
			if rng.Intn(2) == 0 {
				tradeType = model.TradeTypeSell
			}
			qty := decimal.NewFromInt(int64(rng.Intn(500) + 1))
			price := decimal.NewFromInt(int64(rng.Intn(20000) + 1)).Div(decimal.NewFromInt(100))
			tx := model.Transaction{Type: tradeType, Price: price, Quantity: qty, Amount: price.Mul(qty)}

			before := p
			err := applyTrade(&p, tx)
			if tradeType == model.TradeTypeSell && qty.GreaterThan(before.Quantity) {
				require.ErrorIs(t, err, ErrInsufficientQuantity)
				assert.True(t, before.Quantity.Equal(p.Quantity))
				assert.Len(t, p.Transactions, len(before.Transactions))
				continue
			}
			require.NoError(t, err)
			if tradeType == model.TradeTypeBuy {
				buyQty = buyQty.Add(qty)
			} else {
				sellQty = sellQty.Add(qty)
			}

			assert.True(t, p.Quantity.Equal(buyQty.Sub(sellQty)))
			if p.Quantity.IsPositive() {
				want := p.TotalBuyAmount.Sub(p.TotalSellAmount).Div(p.Quantity)
				assert.True(t, want.Equal(p.CostPrice))
				if p.TotalBuyAmount.GreaterThanOrEqual(p.TotalSellAmount) {
					assert.False(t, p.CostPrice.IsNegative())
				}
			} else {
				assert.True(t, p.CostPrice.IsZero())
			}
		}
		require.NoError(t, validatePosition(p))
	}
}
