package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"philately/catalog/internal/config"
	"philately/catalog/internal/domain"
)

// ErrFetchFailed means the remote catalog API stayed unreachable (or kept
// returning non-2xx) after the configured retries. Callers fall back to
// cached or seed data; FetchAll still returns whatever pages it did get.
var ErrFetchFailed = errors.New("remote catalog fetch failed")

// CatalogPage is one page of the remote catalog listing.
type CatalogPage struct {
	Items      []RawStamp `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	TotalItems int        `json:"totalItems"`
}

// CatalogClient fetches catalog pages from the remote API. It is the only
// component allowed to see the raw upstream shape.
type CatalogClient interface {
	FetchPage(ctx context.Context, page int) (*CatalogPage, error)
	// FetchAll fetches every page in page order, invoking onProgress after
	// each one. On persistent page failure it surfaces ErrFetchFailed while
	// returning all records fetched so far.
	FetchAll(ctx context.Context, onProgress func(domain.FetchProgress)) ([]domain.StampRecord, error)
}

type catalogClient struct {
	rl          ratelimit.Limiter
	config      config.CatalogConfig
	baseURL     string
	httpClient  *resty.Client
	pageTimeout time.Duration
}

func NewCatalogClient(cfg config.CatalogConfig) CatalogClient {
	client := resty.New().
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Accept", "application/json")

	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &catalogClient{
		rl:          ratelimit.New(rps),
		config:      cfg,
		baseURL:     cfg.BaseURL,
		httpClient:  client,
		pageTimeout: timeout,
	}
}

func (c *catalogClient) FetchPage(ctx context.Context, page int) (*CatalogPage, error) {
	c.rl.Take()

	// Each page attempt gets its own deadline so one hung request cannot
	// stall the whole bulk fetch.
	reqCtx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	result := &CatalogPage{}
	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("pageSize", fmt.Sprintf("%d", c.config.PageSize)).
		SetResult(result).
		Get(c.baseURL + "/stamps")

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error on catalog page %d: %d %s", page, resp.StatusCode(), resp.Status())
	}

	log.Debugf("Fetched catalog page %d with %d items", page, len(result.Items))
	return result, nil
}

func (c *catalogClient) FetchAll(ctx context.Context, onProgress func(domain.FetchProgress)) ([]domain.StampRecord, error) {
	records := make([]domain.StampRecord, 0)

	first, err := c.FetchPage(ctx, 1)
	if err != nil {
		return records, fmt.Errorf("%w: first page: %v", ErrFetchFailed, err)
	}

	totalPages := first.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}

	report := func(page int, complete bool) {
		if onProgress == nil {
			return
		}
		onProgress(domain.FetchProgress{
			IsFetching:   !complete,
			Progress:     page * 100 / totalPages,
			TotalItems:   first.TotalItems,
			CurrentItems: len(records),
			CurrentPage:  page,
			TotalPages:   totalPages,
			IsComplete:   complete,
		})
	}

	for _, raw := range first.Items {
		records = append(records, Normalize(raw))
	}
	report(1, totalPages == 1)

	// Pages are applied strictly in page order so offset-based pagination
	// over the store stays consistent.
	for pageNum := 2; pageNum <= totalPages; pageNum++ {
		page, err := c.FetchPage(ctx, pageNum)
		if err != nil {
			log.Errorf("❌ Failed to fetch catalog page %d after retries: %v", pageNum, err)
			report(pageNum, false)
			return records, fmt.Errorf("%w: page %d: %v", ErrFetchFailed, pageNum, err)
		}

		for _, raw := range page.Items {
			records = append(records, Normalize(raw))
		}
		report(pageNum, pageNum == totalPages)

		if pageNum%100 == 0 {
			log.Infof("Fetched %d of %d catalog pages", pageNum, totalPages)
		}
	}

	log.Infof("✅ Completed catalog fetch: %d pages, %d records", totalPages, len(records))
	return records, nil
}
