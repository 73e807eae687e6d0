package service

import "errors"

var (
	ErrInvalidPrice               = errors.New("price must be greater than zero")
	ErrInvalidQuantity            = errors.New("quantity must be greater than zero")
	ErrInvalidTradeType           = errors.New("trade type must be buy or sell")
	ErrSymbolExists               = errors.New("symbol is already in the position list")
	ErrQuoteNotFound              = errors.New("no quote found for symbol")
	ErrInsufficientQuantity       = errors.New("insufficient quantity")
	ErrPositionNotFound           = errors.New("position not found")
	ErrInvalidPosition            = errors.New("invalid position")
	ErrAccountNotFound            = errors.New("account not found")
	ErrNoDefaultAccount           = errors.New("no default account")
	ErrCannotDeleteDefaultAccount = errors.New("cannot delete default account")
	ErrInvalidImport              = errors.New("invalid import data")
	ErrReviewNotFound             = errors.New("review not found")
	ErrTagNotFound                = errors.New("tag not found")
	ErrTagExists                  = errors.New("tag already exists")
	ErrInvalidDate                = errors.New("invalid date")
)
