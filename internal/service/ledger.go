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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type LedgerService interface {
	ListPositions(ctx context.Context, accountID string) ([]model.Position, error)
	GetPosition(ctx context.Context, positionID string) (*model.Position, error)
	OpenPosition(ctx context.Context, req dto.OpenPositionRequest) (*model.Position, error)
	ExecuteTrade(ctx context.Context, req dto.TradeRequest) (*model.Position, error)
	DeletePosition(ctx context.Context, positionID string) error
	RefreshPrices(ctx context.Context) (*dto.RefreshResult, error)
	ReplaceAccountPositions(ctx context.Context, req dto.ReplacePositionsRequest) ([]model.Position, error)
	Overview(ctx context.Context, accountID string, includeCleared *bool) (*dto.PortfolioOverview, error)
}

type ledgerService struct {
	cfg          *config.Config
	log          *logger.Logger
	mu           *sync.Mutex
	positionRepo repository.PositionRepository
	accountRepo  repository.AccountRepository
	quoteRepo    repository.QuoteRepository
	now          func() time.Time
	newID        func() string
}

func NewLedgerService(
	cfg *config.Config,
	log *logger.Logger,
	mu *sync.Mutex,
	positionRepo repository.PositionRepository,
	accountRepo repository.AccountRepository,
	quoteRepo repository.QuoteRepository,
) *ledgerService {
	loc := utils.LoadLocation(cfg.Ledger.TimeZone)
	return &ledgerService{
		cfg:          cfg,
		log:          log,
		mu:           mu,
		positionRepo: positionRepo,
		accountRepo:  accountRepo,
		quoteRepo:    quoteRepo,
		now:          func() time.Time { return utils.TimeNowIn(loc) },
		newID:        uuid.NewString,
	}
}

func (s *ledgerService) ListPositions(ctx context.Context, accountID string) ([]model.Position, error) {
	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	return ResolvePositions(positions, accountID), nil
}

func (s *ledgerService) GetPosition(ctx context.Context, positionID string) (*model.Position, error) {
	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	idx := indexOfPosition(positions, positionID)
	if idx < 0 {
		return nil, ErrPositionNotFound
	}
	return &positions[idx], nil
}

// OpenPosition creates a position from a first buy. The quote lookup confirms
// the symbol exists and seeds the current price.
func (s *ledgerService) OpenPosition(ctx context.Context, req dto.OpenPositionRequest) (*model.Position, error) {
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	symbol := utils.NormalizeSymbol(req.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	accountID, err := resolveTargetAccount(accounts, req.AccountID)
	if err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	if s.hasOpenPosition(positions, symbol, accountID) {
		return nil, ErrSymbolExists
	}

	quote, err := s.quoteRepo.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if quote == nil {
		return nil, ErrQuoteNotFound
	}

	now := s.now()
	name := req.Name
	if name == "" {
		name = quote.Name
	}

	position := model.Position{
		ID:              s.newID(),
		AccountID:       accountID,
		Symbol:          symbol,
		Name:            name,
		CostPrice:       decimal.Zero,
		Quantity:        decimal.Zero,
		CurrentPrice:    quote.Price,
		ChangePercent:   decimal.Zero,
		Transactions:    []model.Transaction{},
		TotalBuyAmount:  decimal.Zero,
		TotalSellAmount: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	tx := s.newTransaction(model.TradeTypeBuy, req.Price, req.Quantity, req.Emotion, req.Reasons, req.Note, now)
	if err := applyTrade(&position, tx); err != nil {
		return nil, err
	}

	positions = append(positions, position)
	if err := s.positionRepo.ReplaceAll(ctx, positions); err != nil {
		return nil, fmt.Errorf("failed to save positions: %w", err)
	}

	s.log.InfoContext(ctx, "Position opened",
		logger.StringField("position_id", position.ID),
		logger.StringField("account_id", accountID),
		logger.StringField("symbol", symbol),
		logger.DecimalField("price", req.Price),
		logger.DecimalField("quantity", req.Quantity),
	)
	return &position, nil
}

// ExecuteTrade appends a buy or sell to an existing position. A rejected trade
// leaves the stored position untouched.
func (s *ledgerService) ExecuteTrade(ctx context.Context, req dto.TradeRequest) (*model.Position, error) {
	if !req.Type.IsValid() {
		return nil, ErrInvalidTradeType
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	idx := indexOfPosition(positions, req.PositionID)
	if idx < 0 {
		return nil, ErrPositionNotFound
	}

	position := positions[idx]
	position.Transactions = append([]model.Transaction{}, position.Transactions...)
	tx := s.newTransaction(req.Type, req.Price, req.Quantity, req.Emotion, req.Reasons, req.Note, s.now())
	if err := applyTrade(&position, tx); err != nil {
		return nil, err
	}

	positions[idx] = position
	if err := s.positionRepo.ReplaceAll(ctx, positions); err != nil {
		return nil, fmt.Errorf("failed to save positions: %w", err)
	}

	s.log.InfoContext(ctx, "Trade executed",
		logger.StringField("position_id", position.ID),
		logger.StringField("symbol", position.Symbol),
		logger.StringField("type", string(req.Type)),
		logger.DecimalField("price", req.Price),
		logger.DecimalField("quantity", req.Quantity),
		logger.DecimalField("remaining", position.Quantity),
	)
	return &position, nil
}

func (s *ledgerService) DeletePosition(ctx context.Context, positionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}
	idx := indexOfPosition(positions, positionID)
	if idx < 0 {
		return ErrPositionNotFound
	}

	positions = append(positions[:idx], positions[idx+1:]...)
	if err := s.positionRepo.ReplaceAll(ctx, positions); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	s.log.InfoContext(ctx, "Position deleted", logger.StringField("position_id", positionID))
	return nil
}

// RefreshPrices pulls a quote for every distinct symbol and updates current
// price and change percent. Quotes are fetched without holding the lock; the
// results are applied to a freshly loaded list so concurrent trades survive.
func (s *ledgerService) RefreshPrices(ctx context.Context) (*dto.RefreshResult, error) {
	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	result := &dto.RefreshResult{Total: len(positions)}
	if len(positions) == 0 {
		return result, nil
	}

	var symbols []string
	for _, p := range positions {
		if !utils.ContainsString(symbols, p.Symbol) {
			symbols = append(symbols, p.Symbol)
		}
	}

	quotes := make([]*dto.Quote, len(symbols))
	var g errgroup.Group
	if s.cfg.Scheduler.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.Scheduler.MaxConcurrency)
	}
	for i, symbol := range symbols {
		g.Go(func() error {
			quote, err := s.quoteRepo.GetQuote(ctx, symbol)
			if err != nil {
				s.log.WarnContext(ctx, "Failed to refresh quote",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
				return nil
			}
			quotes[i] = quote
			return nil
		})
	}
	_ = g.Wait()

	bySymbol := make(map[string]*dto.Quote, len(symbols))
	for i, symbol := range symbols {
		if quotes[i] != nil {
			bySymbol[symbol] = quotes[i]
		} else {
			result.Skipped = append(result.Skipped, symbol)
		}
	}
	if len(bySymbol) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	for i := range latest {
		quote, ok := bySymbol[latest[i].Symbol]
		if !ok {
			continue
		}
		latest[i].CurrentPrice = quote.Price
		latest[i].ChangePercent = changePercentOf(quote.Price, latest[i].CostPrice)
		result.Updated++
	}
	if err := s.positionRepo.ReplaceAll(ctx, latest); err != nil {
		return nil, fmt.Errorf("failed to save positions: %w", err)
	}

	s.log.InfoContext(ctx, "Prices refreshed",
		logger.IntField("total", result.Total),
		logger.IntField("updated", result.Updated),
		logger.IntField("skipped", len(result.Skipped)),
	)
	return result, nil
}

// ReplaceAccountPositions writes one account's complete position list back
// without touching the positions of any other account.
func (s *ledgerService) ReplaceAccountPositions(ctx context.Context, req dto.ReplacePositionsRequest) ([]model.Position, error) {
	incoming, err := normalizePositions(req.Positions)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	merged, err := MergeAccountPositions(all, incoming, req.AccountID, accounts)
	if err != nil {
		return nil, err
	}
	if err := s.positionRepo.ReplaceAll(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to save positions: %w", err)
	}
	return merged, nil
}

// Overview combines the profit summary and the cleared roll-up for one
// account, or for every account when accountID is empty.
func (s *ledgerService) Overview(ctx context.Context, accountID string, includeCleared *bool) (*dto.PortfolioOverview, error) {
	positions, err := s.ListPositions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	include := s.cfg.Ledger.IncludeClearedInOverview
	if includeCleared != nil {
		include = *includeCleared
	}

	return &dto.PortfolioOverview{
		AccountID:      accountID,
		IncludeCleared: include,
		Summary:        CalculateProfitSummary(positions, include),
		Cleared:        CalculateClearedProfit(positions),
	}, nil
}

func (s *ledgerService) hasOpenPosition(positions []model.Position, symbol, accountID string) bool {
	for _, p := range positions {
		if p.IsCleared() || utils.NormalizeSymbol(p.Symbol) != symbol {
			continue
		}
		if s.cfg.Ledger.DuplicateCheckPerAccount && p.AccountID != accountID {
			continue
		}
		return true
	}
	return false
}

func (s *ledgerService) newTransaction(
	tradeType model.TradeType,
	price, quantity decimal.Decimal,
	emotion string,
	reasons []string,
	note string,
	now time.Time,
) model.Transaction {
	return model.Transaction{
		ID:        s.newID(),
		Type:      tradeType,
		Price:     price,
		Quantity:  quantity,
		Amount:    price.Mul(quantity),
		Timestamp: now,
		Emotion:   emotion,
		Reasons:   reasons,
		Note:      note,
	}
}

// applyTrade folds tx into p and recomputes the derived fields. p is not
// modified when the trade is rejected.
func applyTrade(p *model.Position, tx model.Transaction) error {
	switch tx.Type {
	case model.TradeTypeBuy:
		p.TotalBuyAmount = p.TotalBuyAmount.Add(tx.Amount)
		p.Quantity = p.Quantity.Add(tx.Quantity)
	case model.TradeTypeSell:
		if tx.Quantity.GreaterThan(p.Quantity) {
			return fmt.Errorf("%w: holding %s, selling %s", ErrInsufficientQuantity, p.Quantity, tx.Quantity)
		}
		p.TotalSellAmount = p.TotalSellAmount.Add(tx.Amount)
		p.Quantity = p.Quantity.Sub(tx.Quantity)
	default:
		return ErrInvalidTradeType
	}

	p.Transactions = append(p.Transactions, tx)
	p.CostPrice = costPriceOf(p.TotalBuyAmount, p.TotalSellAmount, p.Quantity)
	p.ChangePercent = changePercentOf(p.CurrentPrice, p.CostPrice)
	p.UpdatedAt = tx.Timestamp
	return nil
}

// costPriceOf spreads the net cash put in over the shares still held. Realized
// gains lower it, realized losses raise it.
func costPriceOf(totalBuy, totalSell, quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return totalBuy.Sub(totalSell).Div(quantity)
}

func changePercentOf(currentPrice, costPrice decimal.Decimal) decimal.Decimal {
	return percentOf(currentPrice.Sub(costPrice), costPrice).Round(2)
}

// validatePosition checks the transaction history is internally consistent
// with the denormalized totals.
func validatePosition(p model.Position) error {
	if p.ID == "" || p.Symbol == "" {
		return fmt.Errorf("%w: id and symbol are required", ErrInvalidPosition)
	}

	buyAmount, sellAmount, quantity := decimal.Zero, decimal.Zero, decimal.Zero
	for _, tx := range p.Transactions {
		var reason error
		switch {
		case !tx.Type.IsValid():
			reason = ErrInvalidTradeType
		case !tx.Price.IsPositive():
			reason = ErrInvalidPrice
		case !tx.Quantity.IsPositive():
			reason = ErrInvalidQuantity
		case !tx.Amount.Equal(tx.Price.Mul(tx.Quantity)):
			reason = fmt.Errorf("amount %s does not equal price x quantity", tx.Amount)
		}
		if reason != nil {
			return fmt.Errorf("%w: %s transaction %s: %w", ErrInvalidPosition, p.Symbol, tx.ID, reason)
		}

		if tx.Type == model.TradeTypeBuy {
			buyAmount = buyAmount.Add(tx.Amount)
			quantity = quantity.Add(tx.Quantity)
			continue
		}
		if tx.Quantity.GreaterThan(quantity) {
			return fmt.Errorf("%w: %s transaction %s: %w: holding %s, selling %s",
				ErrInvalidPosition, p.Symbol, tx.ID, ErrInsufficientQuantity, quantity, tx.Quantity)
		}
		sellAmount = sellAmount.Add(tx.Amount)
		quantity = quantity.Sub(tx.Quantity)
	}

	if !quantity.Equal(p.Quantity) {
		return fmt.Errorf("%w: %s quantity %s does not match transactions (%s)", ErrInvalidPosition, p.Symbol, p.Quantity, quantity)
	}
	if !buyAmount.Equal(p.TotalBuyAmount) || !sellAmount.Equal(p.TotalSellAmount) {
		return fmt.Errorf("%w: %s buy/sell totals do not match transactions", ErrInvalidPosition, p.Symbol)
	}
	return nil
}

// normalizePositions validates positions coming from outside the ledger and
// recomputes the fields derived from their totals. Ids must be unique.
func normalizePositions(positions []model.Position) ([]model.Position, error) {
	seen := make(map[string]struct{}, len(positions))
	out := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if err := validatePosition(p); err != nil {
			return nil, err
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate position id %s", ErrInvalidPosition, p.ID)
		}
		seen[p.ID] = struct{}{}

		p.CostPrice = costPriceOf(p.TotalBuyAmount, p.TotalSellAmount, p.Quantity)
		p.ChangePercent = changePercentOf(p.CurrentPrice, p.CostPrice)
		out = append(out, p)
	}
	return out, nil
}

func indexOfPosition(positions []model.Position, positionID string) int {
	for i, p := range positions {
		if p.ID == positionID {
			return i
		}
	}
	return -1
}
