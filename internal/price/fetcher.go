// Package price converts native-currency amounts to fiat using CoinGecko.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves native token prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.client = hc }
}

// WithBaseURL points the fetcher at another CoinGecko-compatible API.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// NewFetcher creates a price fetcher quoting in currency (default usd).
func NewFetcher(currency string, opts ...Option) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	f := &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Currency returns the quote currency, lowercased.
func (f *Fetcher) Currency() string { return f.currency }

// coinGeckoIDs maps native currency symbols to CoinGecko coin IDs. Testnet
// symbols map to their mainnet coin.
var coinGeckoIDs = map[string]string{
	"eth":   "ethereum",
	"bnb":   "binancecoin",
	"tbnb":  "binancecoin",
	"matic": "matic-network",
	"pol":   "matic-network",
	"avax":  "avalanche-2",
	"ftm":   "fantom",
	"celo":  "celo",
	"xdai":  "xdai",
	"mnt":   "mantle",
	"cro":   "crypto-com-chain",
	"glmr":  "moonbeam",
}

// CoinID returns the CoinGecko ID for a native currency symbol.
func CoinID(symbol string) (string, bool) {
	id, ok := coinGeckoIDs[strings.ToLower(symbol)]
	return id, ok
}

// GetPrice returns the price of one unit of symbol.
func (f *Fetcher) GetPrice(ctx context.Context, symbol string) (float64, error) {
	id, ok := CoinID(symbol)
	if !ok {
		return 0, fmt.Errorf("no price source for %s", symbol)
	}
	prices, err := f.fetchBatch(ctx, []string{id})
	if err != nil {
		return 0, err
	}
	p, ok := prices[id]
	if !ok {
		return 0, fmt.Errorf("price not available for: %s", id)
	}
	return p, nil
}

// Convert prices amount units of symbol in the fetcher's currency.
func (f *Fetcher) Convert(ctx context.Context, amount float64, symbol string) (float64, error) {
	p, err := f.GetPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return amount * p, nil
}

func (f *Fetcher) fetchBatch(ctx context.Context, ids []string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, strings.Join(ids, ","), f.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned HTTP %d", resp.StatusCode)
	}

	// Response: {"ethereum":{"usd":1234.56}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}

	prices := make(map[string]float64)
	for id, currencies := range raw {
		if p, ok := currencies[f.currency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}
