package model

import "time"

type AccountType string

const (
	AccountTypeBroker   AccountType = "broker"
	AccountTypeStrategy AccountType = "strategy"
	AccountTypeFamily   AccountType = "family"
)

type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Broker      string      `json:"broker,omitempty"`
	Description string      `json:"description,omitempty"`
	Color       string      `json:"color,omitempty"`
	IsDefault   bool        `json:"is_default"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
