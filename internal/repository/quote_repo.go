package repository

import (
	"context"
	"fmt"
	"golang-portfolio/config"
	"golang-portfolio/internal/dto"
	"golang-portfolio/pkg/cache"
	"golang-portfolio/pkg/common"
	"golang-portfolio/pkg/httpclient"
	"golang-portfolio/pkg/logger"
	"golang-portfolio/pkg/utils"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// QuoteRepository looks up the latest quote of a symbol. A nil quote with a nil
// error means the symbol is not known to the source.
type QuoteRepository interface {
	GetQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type yahooQuoteRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	log            *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
}

func NewYahooQuoteRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache) QuoteRepository {
	limit := rate.Inf
	if cfg.Quote.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.Quote.MaxRequestPerMinute))
	}

	return &yahooQuoteRepository{
		httpClient:     httpclient.New(cfg.Quote.BaseURL, cfg.Quote.Timeout, cfg.Quote.RetryCount),
		cfg:            cfg,
		log:            log,
		cache:          inmemoryCache,
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

// ToYahooSymbol converts "600519.SH" style tickers to Yahoo's form ("600519.SS").
// Hong Kong codes are trimmed to four digits ("00700.HK" -> "0700.HK").
func ToYahooSymbol(symbol string) string {
	symbol = utils.NormalizeSymbol(symbol)
	idx := strings.LastIndex(symbol, ".")
	if idx <= 0 || idx == len(symbol)-1 {
		return symbol
	}

	code, suffix := symbol[:idx], symbol[idx+1:]
	if override, ok := common.YahooSuffixOverrides[suffix]; ok {
		suffix = override
	}
	if suffix == common.EXCHANGE_HK && len(code) == 5 && strings.HasPrefix(code, "0") {
		code = code[1:]
	}
	return code + "." + suffix
}

func (r *yahooQuoteRepository) GetQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbol = utils.NormalizeSymbol(symbol)
	cacheKey := fmt.Sprintf(common.KEY_LAST_QUOTE, symbol)
	if quote, found := cache.GetFromCache[dto.Quote](r.cache, cacheKey); found {
		return &quote, nil
	}

	if !r.requestLimiter.Allow() {
		r.log.WarnContext(ctx, "Quote request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.Quote.MaxRequestPerMinute),
			logger.StringField("symbol", symbol),
		)
		if err := r.requestLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	queryParams := map[string]string{
		"interval":       "1d",
		"range":          "5d",
		"includePrePost": "false",
	}
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":     "application/json, text/plain, */*",
		"Referer":    "https://finance.yahoo.com/",
	}

	var chart dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, "/"+ToYahooSymbol(symbol), queryParams, headers, &chart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		r.log.DebugContext(ctx, "Symbol not found at quote source", logger.StringField("symbol", symbol))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Quote source returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol),
			logger.StringField("body", string(resp.Body)),
		)
		return nil, fmt.Errorf("quote source returned status: %d", resp.StatusCode)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, nil
		}
		return nil, fmt.Errorf("quote source error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return nil, nil
	}

	quote := mapYahooQuote(symbol, chart.Chart.Result[0])
	r.cache.Set(cacheKey, quote, r.cfg.Cache.QuoteExpiration)
	return &quote, nil
}

func mapYahooQuote(symbol string, result dto.YahooChartResult) dto.Quote {
	meta := result.Meta
	price := decimal.NewFromFloat(meta.RegularMarketPrice)

	previousClose := meta.PreviousClose
	if previousClose <= 0 {
		previousClose = meta.ChartPreviousClose
	}

	quote := dto.Quote{
		Symbol:    symbol,
		Name:      meta.ShortName,
		Price:     price,
		High:      decimal.NewFromFloat(meta.RegularMarketDayHigh),
		Low:       decimal.NewFromFloat(meta.RegularMarketDayLow),
		Volume:    meta.RegularMarketVolume,
		Timestamp: time.Unix(meta.RegularMarketTime, 0).UTC(),
	}
	if quote.Name == "" {
		quote.Name = meta.LongName
	}

	if previousClose > 0 {
		prev := decimal.NewFromFloat(previousClose)
		quote.Change = price.Sub(prev)
		quote.ChangePercent = quote.Change.Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
	}

	// The last candle of the range is today's session.
	if len(result.Indicators.Quote) > 0 {
		candles := result.Indicators.Quote[0]
		last := len(candles.Open) - 1
		if last >= 0 && candles.Open[last] > 0 {
			quote.Open = decimal.NewFromFloat(candles.Open[last])
		}
		if quote.High.IsZero() && last < len(candles.High) && last >= 0 {
			quote.High = decimal.NewFromFloat(candles.High[last])
		}
		if quote.Low.IsZero() && last < len(candles.Low) && last >= 0 {
			quote.Low = decimal.NewFromFloat(candles.Low[last])
		}
		if quote.Volume == 0 && last < len(candles.Volume) && last >= 0 {
			quote.Volume = candles.Volume[last]
		}
	}
	return quote
}
