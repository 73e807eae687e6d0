package utils

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// ContainsString checks if a slice of strings contains a specific string.
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}

// GoSafe runs fn on its own goroutine and keeps a panic from taking the process down.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// NormalizeSymbol upper-cases and trims a ticker so "600519.sh " and "600519.SH" compare equal.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func FormatPercentage(value decimal.Decimal) string {
	if value.IsPositive() {
		return "+" + value.StringFixed(2) + "%"
	}
	return value.StringFixed(2) + "%"
}

func FormatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// FormatChangeWithIcon renders a signed percentage with an up/down marker.
func FormatChangeWithIcon(value decimal.Decimal) string {
	switch {
	case value.IsPositive():
		return "🟢 +" + value.StringFixed(2) + "%"
	case value.IsNegative():
		return "🔴 " + value.StringFixed(2) + "%"
	default:
		return "⚪ 0.00%"
	}
}
