package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/logger"
)

// Client fetches quotes from the quote service over HTTP.
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

func NewClient(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{http: http, logger: log}
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&quote).
		Get(fmt.Sprintf("/quotes/%s", symbol))
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("quote service returned status %d for %s", resp.StatusCode(), symbol)
	}
	if !quote.CurrentPrice.IsPositive() {
		// no last price means trading is suspended
		return nil, fmt.Errorf("no tradable price for %s", symbol)
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return &quote, nil
}

// GetQuotes fans out one GetQuote per symbol with bounded concurrency and
// returns the results keyed by symbol. Any failed symbol fails the batch.
func (c *Client) GetQuotes(ctx context.Context, symbols []string, concurrency int) (map[string]*Quote, error) {
	if concurrency <= 0 {
		concurrency = 5
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, concurrency)
		quotes  = make(map[string]*Quote, len(symbols))
		lastErr error
	)

	for _, symbol := range symbols {
		sem <- struct{}{}
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			q, err := c.GetQuote(ctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Error("fetch quote failed", "symbol", symbol, "error", err)
				lastErr = err
				return
			}
			quotes[symbol] = q
		}(symbol)
	}
	wg.Wait()

	if lastErr != nil {
		return nil, lastErr
	}
	return quotes, nil
}
