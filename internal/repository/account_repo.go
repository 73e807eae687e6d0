package repository

import (
	"context"
	"golang-portfolio/internal/model"
	"golang-portfolio/pkg/common"
	"golang-portfolio/pkg/logger"
)

type AccountRepository interface {
	GetAll(ctx context.Context) ([]model.Account, error)
	ReplaceAll(ctx context.Context, accounts []model.Account) error
}

type accountRepository struct {
	collection[model.Account]
}

func NewAccountRepository(store Store, log *logger.Logger) AccountRepository {
	return &accountRepository{
		collection: newCollection[model.Account](store, common.KEY_ACCOUNTS, log),
	}
}
