// Package sheets fetches the published CSV export of the collection
// spreadsheet. Private sheets are read with a bearer token.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	ccsv "waste-stats/connectors/csv"
	"waste-stats/domain/waste"
)

const (
	acceptCSV        = "text/csv, text/plain;q=0.9, */*;q=0.5"
	maxBody          = 32 << 20
	defaultRetryWait = 2 * time.Second
	maxRetryWait     = time.Minute
)

// ErrStatus is returned (wrapped) when the sheet answers with a non-200 status.
var ErrStatus = errors.New("unexpected status")

// Client downloads the sheet. Use New to construct it.
type Client struct {
	c       *http.Client
	url     string
	retries int
	sleep   func(ctx context.Context, d time.Duration) error
}

// New returns a client for url. When token is set requests carry it as an
// OAuth2 bearer token. retries bounds the extra attempts on 429 and 5xx.
func New(ctx context.Context, url, token string, timeout time.Duration, retries int) *Client {
	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = timeout
	return &Client{c: hc, url: url, retries: max(retries, 0), sleep: sleepCtx}
}

// Name identifies the source in status output.
func (sc *Client) Name() string { return sc.url }

// Fetch returns the CSV text of the sheet.
func (sc *Client) Fetch(ctx context.Context) (string, error) {
	slog.Info("sheet.fetch.start", "url", sc.url)
	resp, err := sc.do(ctx)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("read sheet: %w", err)
	}
	slog.Info("sheet.fetch.done", "bytes", len(b))
	return string(b), nil
}

// Load fetches and parses the sheet. Rows that cannot be used are dropped
// by the parser; an empty result is left for the caller to judge.
func (sc *Client) Load(ctx context.Context) ([]waste.Record, error) {
	text, err := sc.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	records, stats := ccsv.ParseWaste(text)
	if stats.Short+stats.Failed > 0 {
		slog.Info("sheet.rows.dropped", "short", stats.Short, "failed", stats.Failed)
	}
	return records, nil
}

func (sc *Client) newRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sc.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptCSV)
	return req, nil
}

func (sc *Client) do(ctx context.Context) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := sc.newRequest(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := sc.c.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch sheet: %w", err)
		}
		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if retryable && attempt < sc.retries {
			wait := retryAfter(resp.Header.Get("Retry-After"), attempt)
			_ = drainAndClose(resp.Body)
			slog.Warn("sheet.fetch.retry", "status", resp.StatusCode, "attempt", attempt+1, "wait", wait)
			if err := sc.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("sheet %s returned %d: %w: %s", sc.url, resp.StatusCode, ErrStatus, string(b))
	}
}

// retryAfter honours a Retry-After in seconds, else backs off exponentially.
func retryAfter(header string, attempt int) time.Duration {
	if sec, err := strconv.Atoi(header); err == nil && sec >= 0 {
		return min(time.Duration(sec)*time.Second, maxRetryWait)
	}
	if at, err := http.ParseTime(header); err == nil {
		return min(max(time.Until(at), 0), maxRetryWait)
	}
	return min(defaultRetryWait<<attempt, maxRetryWait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, rc)
	return rc.Close()
}
