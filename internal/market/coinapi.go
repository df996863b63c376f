package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Provider failure classification. Fetch errors wrap one of these sentinels
// so callers can use errors.Is.
var (
	ErrTooManyRequests = errors.New("too many requests to the provider")
	ErrUnauthorized    = errors.New("unauthorized request to the provider")
	ErrBadRequest      = errors.New("bad request to the provider")
)

const (
	DefaultCoinAPIBaseURL = "https://rest.coinapi.io"

	assetsPath     = "/v1/assets"
	apiKeyHeader   = "X-CoinAPI-Key"
	requestTimeout = 10 * time.Second
	maxRetries     = 3
)

// CoinAPIClient fetches the tradable asset universe from the CoinAPI REST
// endpoint. Rate-limited requests are retried with fibonacci backoff.
type CoinAPIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewCoinAPIClient(baseURL, apiKey string) *CoinAPIClient {
	if baseURL == "" {
		baseURL = DefaultCoinAPIBaseURL
	}
	return &CoinAPIClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// assetDTO mirrors the CoinAPI /v1/assets response shape. Only crypto assets
// (type_is_crypto == 1) make it into the universe.
type assetDTO struct {
	AssetID      string  `json:"asset_id"`
	Name         string  `json:"name"`
	TypeIsCrypto int     `json:"type_is_crypto"`
	PriceUSD     float64 `json:"price_usd"`
}

// Fetch implements Provider.
func (c *CoinAPIClient) Fetch(ctx context.Context) ([]Asset, error) {
	var assets []Asset

	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result, err := c.fetchOnce(ctx)
		if err != nil {
			if errors.Is(err, ErrTooManyRequests) {
				return retry.RetryableError(err)
			}
			return err
		}
		assets = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}

func (c *CoinAPIClient) fetchOnce(ctx context.Context) ([]Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+assetsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching assets: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return nil, err
	}

	var dtos []assetDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decoding provider response: %w", err)
	}

	assets := make([]Asset, 0, len(dtos))
	for _, d := range dtos {
		if d.TypeIsCrypto != 1 {
			continue
		}
		assets = append(assets, Asset{ID: d.AssetID, Name: d.Name, Price: d.PriceUSD})
	}

	return assets, nil
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		return fmt.Errorf("unexpected provider status %d", code)
	}
}
