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
)

// ResolvePositions returns the positions of one account, or every position
// when accountID is empty.
func ResolvePositions(positions []model.Position, accountID string) []model.Position {
	if accountID == "" {
		return positions
	}
	filtered := []model.Position{}
	for _, p := range positions {
		if p.AccountID == accountID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func FindDefaultAccount(accounts []model.Account) (model.Account, bool) {
	for _, a := range accounts {
		if a.IsDefault {
			return a, true
		}
	}
	return model.Account{}, false
}

// resolveTargetAccount picks the account a write lands in: the requested one
// if it exists, otherwise the default account.
func resolveTargetAccount(accounts []model.Account, accountID string) (string, error) {
	if accountID == "" {
		def, ok := FindDefaultAccount(accounts)
		if !ok {
			return "", ErrNoDefaultAccount
		}
		return def.ID, nil
	}
	if indexOfAccount(accounts, accountID) < 0 {
		return "", ErrAccountNotFound
	}
	return accountID, nil
}

// MergeAccountPositions replaces the target account's slice of the full
// position list with incoming. Positions of other accounts keep their order
// and come first; incoming positions are re-tagged with the target account.
func MergeAccountPositions(
	all []model.Position,
	incoming []model.Position,
	currentAccountID string,
	accounts []model.Account,
) ([]model.Position, error) {
	target, err := resolveTargetAccount(accounts, currentAccountID)
	if err != nil {
		return nil, err
	}

	merged := make([]model.Position, 0, len(all)+len(incoming))
	elsewhere := make(map[string]string)
	for _, p := range all {
		if p.AccountID != target {
			merged = append(merged, p)
			elsewhere[p.ID] = p.AccountID
		}
	}
	seen := make(map[string]struct{}, len(incoming))
	for _, p := range incoming {
		if owner, ok := elsewhere[p.ID]; ok {
			return nil, fmt.Errorf("%w: position %s belongs to account %s", ErrInvalidPosition, p.ID, owner)
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate position id %s", ErrInvalidPosition, p.ID)
		}
		seen[p.ID] = struct{}{}

		p.AccountID = target
		merged = append(merged, p)
	}
	return merged, nil
}

type AccountService interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, accountID string) (*model.Account, error)
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*model.Account, error)
	UpdateAccount(ctx context.Context, req dto.UpdateAccountRequest) (*model.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	SetDefaultAccount(ctx context.Context, accountID string) (*model.Account, error)
	EnsureDefaultAccount(ctx context.Context) (*model.Account, error)
	Stats(ctx context.Context) (*dto.AccountStatsReport, error)
}

type accountService struct {
	cfg          *config.Config
	log          *logger.Logger
	mu           *sync.Mutex
	accountRepo  repository.AccountRepository
	positionRepo repository.PositionRepository
	now          func() time.Time
	newID        func() string
}

func NewAccountService(
	cfg *config.Config,
	log *logger.Logger,
	mu *sync.Mutex,
	accountRepo repository.AccountRepository,
	positionRepo repository.PositionRepository,
) *accountService {
	loc := utils.LoadLocation(cfg.Ledger.TimeZone)
	return &accountService{
		cfg:          cfg,
		log:          log,
		mu:           mu,
		accountRepo:  accountRepo,
		positionRepo: positionRepo,
		now:          func() time.Time { return utils.TimeNowIn(loc) },
		newID:        uuid.NewString,
	}
}

func (s *accountService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfAccount(accounts, accountID)
	if idx < 0 {
		return nil, ErrAccountNotFound
	}
	return &accounts[idx], nil
}

// CreateAccount adds an account. The first account always becomes the default.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	now := s.now()
	account := model.Account{
		ID:          s.newID(),
		Name:        req.Name,
		Type:        req.Type,
		Broker:      req.Broker,
		Description: req.Description,
		Color:       req.Color,
		IsDefault:   req.IsDefault || len(accounts) == 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if account.IsDefault {
		clearDefault(accounts, now)
	}

	accounts = append(accounts, account)
	if err := s.accountRepo.ReplaceAll(ctx, accounts); err != nil {
		return nil, fmt.Errorf("failed to save accounts: %w", err)
	}

	s.log.InfoContext(ctx, "Account created",
		logger.StringField("account_id", account.ID),
		logger.StringField("name", account.Name),
	)
	return &account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, req dto.UpdateAccountRequest) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	idx := indexOfAccount(accounts, req.ID)
	if idx < 0 {
		return nil, ErrAccountNotFound
	}

	account := &accounts[idx]
	account.Name = req.Name
	account.Type = req.Type
	account.Broker = req.Broker
	account.Description = req.Description
	account.Color = req.Color
	account.UpdatedAt = s.now()

	if err := s.accountRepo.ReplaceAll(ctx, accounts); err != nil {
		return nil, fmt.Errorf("failed to save accounts: %w", err)
	}
	updated := *account
	return &updated, nil
}

// DeleteAccount removes an account together with its positions. The default
// account cannot be deleted.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	idx := indexOfAccount(accounts, accountID)
	if idx < 0 {
		return ErrAccountNotFound
	}
	if accounts[idx].IsDefault {
		return ErrCannotDeleteDefaultAccount
	}

	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}
	remaining := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if p.AccountID != accountID {
			remaining = append(remaining, p)
		}
	}

	// positions go first so a failed account write never leaves orphans
	if err := s.positionRepo.ReplaceAll(ctx, remaining); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	accounts = append(accounts[:idx], accounts[idx+1:]...)
	if err := s.accountRepo.ReplaceAll(ctx, accounts); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.log.InfoContext(ctx, "Account deleted",
		logger.StringField("account_id", accountID),
		logger.IntField("positions_removed", len(positions)-len(remaining)),
	)
	return nil
}

func (s *accountService) SetDefaultAccount(ctx context.Context, accountID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	idx := indexOfAccount(accounts, accountID)
	if idx < 0 {
		return nil, ErrAccountNotFound
	}

	now := s.now()
	clearDefault(accounts, now)
	accounts[idx].IsDefault = true
	accounts[idx].UpdatedAt = now

	if err := s.accountRepo.ReplaceAll(ctx, accounts); err != nil {
		return nil, fmt.Errorf("failed to save accounts: %w", err)
	}
	account := accounts[idx]
	return &account, nil
}

// EnsureDefaultAccount makes sure exactly one default account exists, creating
// one from ledger.default_account_name when the list is empty.
func (s *accountService) EnsureDefaultAccount(ctx context.Context) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	accounts, changed := normalizeDefaultAccount(accounts, s.cfg.Ledger.DefaultAccountName, s.now(), s.newID)
	if changed {
		if err := s.accountRepo.ReplaceAll(ctx, accounts); err != nil {
			return nil, fmt.Errorf("failed to save accounts: %w", err)
		}
		s.log.InfoContext(ctx, "Default account ensured")
	}

	def, _ := FindDefaultAccount(accounts)
	return &def, nil
}

// Stats summarizes the open positions of each account. Positions without an
// account are not counted anywhere.
func (s *accountService) Stats(ctx context.Context) (*dto.AccountStatsReport, error) {
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	positions, err := s.positionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	report := &dto.AccountStatsReport{Accounts: []dto.AccountStats{}}
	var owned []model.Position
	for _, account := range accounts {
		accountPositions := ResolvePositions(positions, account.ID)
		summary := CalculateProfitSummary(accountPositions, false)
		report.Accounts = append(report.Accounts, dto.AccountStats{
			Account:       account,
			PositionCount: len(summary.Positions),
			Summary:       summary,
		})
		owned = append(owned, accountPositions...)
	}
	report.Total = CalculateProfitSummary(owned, false)
	return report, nil
}

// normalizeDefaultAccount returns accounts with exactly one default: the first
// flagged one, the first account when none is flagged, or a newly created
// account when the list is empty.
func normalizeDefaultAccount(accounts []model.Account, name string, now time.Time, newID func() string) ([]model.Account, bool) {
	if len(accounts) == 0 {
		return []model.Account{{
			ID:        newID(),
			Name:      name,
			Type:      model.AccountTypeBroker,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}}, true
	}

	changed := false
	found := false
	for i := range accounts {
		if !accounts[i].IsDefault {
			continue
		}
		if found {
			accounts[i].IsDefault = false
			accounts[i].UpdatedAt = now
			changed = true
		}
		found = true
	}
	if !found {
		accounts[0].IsDefault = true
		accounts[0].UpdatedAt = now
		changed = true
	}
	return accounts, changed
}

func clearDefault(accounts []model.Account, now time.Time) {
	for i := range accounts {
		if accounts[i].IsDefault {
			accounts[i].IsDefault = false
			accounts[i].UpdatedAt = now
		}
	}
}

func indexOfAccount(accounts []model.Account, accountID string) int {
	for i, a := range accounts {
		if a.ID == accountID {
			return i
		}
	}
	return -1
}
