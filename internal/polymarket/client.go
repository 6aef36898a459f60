// Package polymarket provides read-only access to the Polymarket Gamma,
// CLOB, and Data APIs.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
)

const userAgent = "LPWatch/1.0 (LP rewards analyzer)"

// ClientConfig holds optional HTTP client tuning.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
	PageLimit      int
}

// Client provides access to the Polymarket APIs.
type Client struct {
	gammaAPIURL    string
	clobAPIURL     string
	dataAPIURL     string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
	pageLimit      int
}

// NewClient creates a new Polymarket client with a fixed per-call timeout.
func NewClient(gammaAPIURL, clobAPIURL, dataAPIURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}
	return &Client{
		gammaAPIURL:    gammaAPIURL,
		clobAPIURL:     clobAPIURL,
		dataAPIURL:     dataAPIURL,
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
		pageLimit:      cfg.PageLimit,
	}
}

// FetchAllMarkets retrieves every active, non-closed market with pagination.
func (c *Client) FetchAllMarkets(ctx context.Context) ([]Market, error) {
	var all []Market
	offset := 0
	for {
		u, err := url.Parse(c.gammaAPIURL + "/markets")
		if err != nil {
			return nil, fmt.Errorf("failed to parse URL: %w", err)
		}
		q := u.Query()
		q.Set("active", "true")
		q.Set("closed", "false")
		q.Set("limit", strconv.Itoa(c.pageLimit))
		q.Set("offset", strconv.Itoa(offset))
		u.RawQuery = q.Encode()

		var page []Market
		if err := c.getJSON(ctx, u.String(), &page); err != nil {
			return nil, fmt.Errorf("failed to fetch markets at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(page) < c.pageLimit {
			break
		}
		offset += c.pageLimit
	}
	return all, nil
}

// FetchMarketBySlug retrieves a single market by its slug. Returns (nil, nil)
// when no market matches.
func (c *Client) FetchMarketBySlug(ctx context.Context, slug string) (*Market, error) {
	u, err := url.Parse(c.gammaAPIURL + "/markets")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("slug", models.NormalizeSlug(slug))
	u.RawQuery = q.Encode()

	var markets []Market
	if err := c.getJSON(ctx, u.String(), &markets); err != nil {
		return nil, fmt.Errorf("failed to fetch market %q: %w", slug, err)
	}
	if len(markets) == 0 {
		return nil, nil
	}
	return &markets[0], nil
}

// FetchOrderBook retrieves the resting order book for a CLOB token.
func (c *Client) FetchOrderBook(ctx context.Context, tokenID string) (*OrderBook, error) {
	u, err := url.Parse(c.clobAPIURL + "/book")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("token_id", tokenID)
	u.RawQuery = q.Encode()

	var book OrderBook
	if err := c.getJSON(ctx, u.String(), &book); err != nil {
		return nil, fmt.Errorf("failed to fetch order book for token %s: %w", tokenID, err)
	}
	return &book, nil
}

// FetchUserPositions retrieves all open positions for a user/proxy wallet
// address from the public Data API, paginated.
func (c *Client) FetchUserPositions(ctx context.Context, userAddress string) ([]UserPosition, error) {
	const limit = 500
	var all []UserPosition
	offset := 0
	for {
		u, err := url.Parse(c.dataAPIURL + "/positions")
		if err != nil {
			return nil, fmt.Errorf("failed to parse URL: %w", err)
		}
		q := u.Query()
		q.Set("user", userAddress)
		q.Set("sizeThreshold", "0")
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		u.RawQuery = q.Encode()

		var page []UserPosition
		if err := c.getJSON(ctx, u.String(), &page); err != nil {
			return nil, fmt.Errorf("failed to fetch positions at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(page) < limit {
			break
		}
		offset += limit
	}
	return all, nil
}

// getJSON performs a GET with retry and decodes the response body.
func (c *Client) getJSON(ctx context.Context, urlStr string, out any) error {
	resp, err := c.doRequest(ctx, urlStr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP GET with linear-backoff retry on transport
// errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("request failed: %d", resp.StatusCode)
		}
		return resp, nil
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
