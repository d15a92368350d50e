package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"GtnPortal/internal/apperr"
	"GtnPortal/internal/config"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/masterdata"
	"GtnPortal/internal/pdftext"
	"GtnPortal/internal/pricelist"
)

// Fetcher downloads the published price-ceiling document.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// HTTPFetcher returns a Fetcher with the given timeout.
func HTTPFetcher(timeout time.Duration) Fetcher {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error fetching price list: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
}

// RefreshConfig controls one CeilingRefresher.
type RefreshConfig struct {
	URL        string
	MaxRetries int
	RetryDelay time.Duration
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	Rows   int
	Report pricelist.Report
}

// CeilingRefresher downloads the published price list, parses it and replaces
// the stored price ceilings. A run that yields no rows keeps the previous set.
type CeilingRefresher struct {
	cfg     RefreshConfig
	repo    masterdata.Repository
	parser  *pricelist.Parser
	fetch   Fetcher
	breaker *CircuitBreaker
}

func NewCeilingRefresher(cfg RefreshConfig, repo masterdata.Repository, parser *pricelist.Parser, fetch Fetcher) *CeilingRefresher {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if parser == nil {
		parser = pricelist.NewParser(pricelist.Rules{})
	}
	if fetch == nil {
		fetch = HTTPFetcher(time.Duration(config.DefaultFetchTimeoutSecs) * time.Second)
	}
	return &CeilingRefresher{
		cfg:     cfg,
		repo:    repo,
		parser:  parser,
		fetch:   fetch,
		breaker: NewCircuitBreaker(5, 30*time.Minute),
	}
}

// RunOnce performs a single refresh.
func (r *CeilingRefresher) RunOnce(ctx context.Context) (RefreshResult, error) {
	if r.cfg.URL == "" {
		return RefreshResult{}, apperr.New(apperr.KindInput, "price list URL is not configured")
	}

	var data []byte
	err := RetryWithBackoff(ctx, r.cfg.MaxRetries, r.cfg.RetryDelay, func() error {
		return r.breaker.Execute(func() error {
			b, err := r.fetch(ctx, r.cfg.URL)
			data = b
			return err
		})
	})
	if err != nil {
		return RefreshResult{}, apperr.Wrap(apperr.KindInternal, "price list download failed", err)
	}

	text := string(data)
	if !strings.HasSuffix(strings.ToLower(r.cfg.URL), ".txt") {
		if text, err = pdftext.Extract(data); err != nil {
			return RefreshResult{}, err
		}
	}

	res := r.parser.Parse(text)
	if len(res.Rows) == 0 {
		return RefreshResult{Report: res.Report}, apperr.New(apperr.KindEmptyInput, "price list produced no ceilings; previous ceilings kept")
	}
	if err := masterdata.SaveCeilings(ctx, r.repo, res.Rows); err != nil {
		return RefreshResult{}, err
	}

	logger.Audit("price ceilings replaced",
		zap.String("url", r.cfg.URL),
		zap.Int("rows", len(res.Rows)),
		zap.Int("sections", res.Report.Sections),
		zap.Int("overridden", res.Report.Overridden),
		zap.Bool("degraded", res.Report.Degraded()),
	)
	return RefreshResult{Rows: len(res.Rows), Report: res.Report}, nil
}
