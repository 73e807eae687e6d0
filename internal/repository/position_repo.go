package repository

import (
	"context"
	"golang-portfolio/internal/model"
	"golang-portfolio/pkg/common"
	"golang-portfolio/pkg/logger"
)

type PositionRepository interface {
	GetAll(ctx context.Context) ([]model.Position, error)
	ReplaceAll(ctx context.Context, positions []model.Position) error
}

type positionRepository struct {
	collection[model.Position]
}

func NewPositionRepository(store Store, log *logger.Logger) PositionRepository {
	return &positionRepository{
		collection: newCollection[model.Position](store, common.KEY_POSITIONS, log),
	}
}
