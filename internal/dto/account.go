package dto

import "golang-portfolio/internal/model"

type CreateAccountRequest struct {
	Name        string            `json:"name" validate:"required,max=64"`
	Type        model.AccountType `json:"type" validate:"required,oneof=broker strategy family"`
	Broker      string            `json:"broker" validate:"max=64"`
	Description string            `json:"description" validate:"max=256"`
	Color       string            `json:"color" validate:"omitempty,hexcolor"`
	IsDefault   bool              `json:"is_default"`
}

type UpdateAccountRequest struct {
	ID          string            `json:"-"`
	Name        string            `json:"name" validate:"required,max=64"`
	Type        model.AccountType `json:"type" validate:"required,oneof=broker strategy family"`
	Broker      string            `json:"broker" validate:"max=64"`
	Description string            `json:"description" validate:"max=256"`
	Color       string            `json:"color" validate:"omitempty,hexcolor"`
}

type AccountStats struct {
	Account       model.Account `json:"account"`
	PositionCount int           `json:"position_count"`
	Summary       ProfitSummary `json:"summary"`
}

type AccountStatsReport struct {
	Accounts []AccountStats `json:"accounts"`
	Total    ProfitSummary  `json:"total"`
}
