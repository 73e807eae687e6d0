package common

// Store keys, one JSON blob per collection.
const (
	KEY_POSITIONS      = "positions"
	KEY_ACCOUNTS       = "accounts"
	KEY_DAILY_REVIEWS  = "daily_reviews"
	KEY_WEEKLY_REVIEWS = "weekly_reviews"
	KEY_TAGS           = "tags"
	KEY_SCHEMA_VERSION = "schema_version"
)

// Cache keys.
const (
	KEY_LAST_QUOTE = "last_quote:%s"
)

const (
	EXCHANGE_SH = "SH"
	EXCHANGE_SZ = "SZ"
	EXCHANGE_HK = "HK"
)

// YahooSuffixOverrides maps local exchange suffixes to the ones Yahoo Finance expects.
var YahooSuffixOverrides = map[string]string{
	EXCHANGE_SH: "SS",
}
