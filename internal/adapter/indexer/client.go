package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
	"github.com/simaogato/seflow-backend/internal/usecase/history"
)

const (
	DefaultFindLabsBase  = "https://api.test-find.xyz"
	DefaultAccessNodeURL = "https://rest-testnet.onflow.org"
	defaultTimeout       = 15 * time.Second
	maxErrorBody         = 512
)

// Config holds the indexer endpoints and credentials
// FindLabs is skipped when User or Pass is empty.
type Config struct {
	FindLabsBase  string
	FindLabsUser  string
	FindLabsPass  string
	AccessNodeURL string
	Timeout       time.Duration
}

// Client is a HistorySource backed by the FindLabs indexer with an Access Node fallback
// Each source is tried once per call; there are no retries.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewClient creates a new indexer client
func NewClient(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	cfg.FindLabsBase = strings.TrimRight(cfg.FindLabsBase, "/")
	if cfg.FindLabsBase == "" {
		cfg.FindLabsBase = DefaultFindLabsBase
	}
	cfg.AccessNodeURL = strings.TrimRight(cfg.AccessNodeURL, "/")
	if cfg.AccessNodeURL == "" {
		cfg.AccessNodeURL = DefaultAccessNodeURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// ListTransactions returns up to limit normalized history records for address
func (c *Client) ListTransactions(ctx context.Context, address string, limit int) ([]domain.TransactionRecord, error) {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	records, err := c.fromFindLabs(ctx, addr)
	if err != nil || len(records) == 0 {
		if err != nil && !errors.Is(err, errNoCredentials) {
			c.logger.Warn().Err(err).Str("address", addr).Msg("findlabs unavailable, falling back to access node")
		}
		c.metrics.HistoryFallback("access_node")

		records, err = c.fromAccessNode(ctx, addr)
		if err != nil {
			return nil, err
		}
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var errNoCredentials = errors.New("findlabs credentials not configured")

func (c *Client) fromFindLabs(ctx context.Context, address string) ([]domain.TransactionRecord, error) {
	if c.cfg.FindLabsUser == "" || c.cfg.FindLabsPass == "" {
		return nil, errNoCredentials
	}

	token, err := c.findLabsToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/flow/v1/account/%s/transaction?limit=%d&include_events=true",
		c.cfg.FindLabsBase, address, history.MaxFindLabsRecords)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	var page history.FindLabsPage
	if err := c.do(req, &page); err != nil {
		return nil, fmt.Errorf("findlabs transactions: %w", err)
	}
	return history.NormalizeFindLabs(page.Data, c.now()), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// findLabsToken exchanges the Basic credentials for a one hour JWT
func (c *Client) findLabsToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.FindLabsBase+"/auth/v1/generate?expiry=1h", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.FindLabsUser, c.cfg.FindLabsPass)
	req.Header.Set("Accept", "application/json")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", fmt.Errorf("findlabs auth: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("findlabs auth: no access token received")
	}
	return tok.AccessToken, nil
}

func (c *Client) fromAccessNode(ctx context.Context, address string) ([]domain.TransactionRecord, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/transactions?limit=50&order=desc", c.cfg.AccessNodeURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var txs []history.AccessNodeTransaction
	if err := c.do(req, &txs); err != nil {
		return nil, fmt.Errorf("access node transactions: %w", err)
	}
	return history.NormalizeAccessNode(txs, c.now()), nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
