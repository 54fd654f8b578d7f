package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantora/compass/internal/contracts"
	"github.com/quantora/compass/pkg/config"
	"github.com/quantora/compass/pkg/httputil"
	"github.com/quantora/compass/pkg/logger"
)

// Client fetches realized next-day sector moves used as the calibration
// basis. SSOT: market data calls go through this client only.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.MarketDataConfig
}

// NewClient creates a new market data client
func NewClient(cfg config.MarketDataConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// NextDayChanges returns the percentage move of each sector on the trading
// day after dateKey, keyed by (sector, dateKey). Implements
// contracts.MarketDataSource. Falls back to scraping the HTML performance
// table when the JSON endpoint fails and a fallback URL is configured.
func (c *Client) NextDayChanges(ctx context.Context, dateKey string) (map[contracts.GroupKey]float64, error) {
	changes, err := c.fetchJSON(ctx, dateKey)
	if err == nil {
		return changes, nil
	}

	if c.cfg.FallbackHTMLURL == "" {
		return nil, err
	}

	c.logger.WithError(err).Warn("Market data JSON endpoint failed, falling back to HTML")

	changes, htmlErr := c.fetchHTML(ctx, dateKey)
	if htmlErr != nil {
		return nil, fmt.Errorf("json: %v; html fallback: %w", err, htmlErr)
	}

	return changes, nil
}

func (c *Client) fetchJSON(ctx context.Context, dateKey string) (map[contracts.GroupKey]float64, error) {
	endpoint := fmt.Sprintf("%s/v1/sector-moves?date=%s", c.cfg.BaseURL, url.QueryEscape(dateKey))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("market data API error status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		DateKey string `json:"date_key"`
		Moves   []struct {
			Sector     string  `json:"sector"`
			NextDayPct float64 `json:"next_day_pct"`
		} `json:"moves"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode market data response: %w", err)
	}

	changes := make(map[contracts.GroupKey]float64, len(result.Moves))
	for _, m := range result.Moves {
		if m.Sector == "" {
			continue
		}
		changes[contracts.GroupKey{Sector: m.Sector, DateKey: dateKey}] = m.NextDayPct
	}

	c.logger.WithFields(map[string]interface{}{
		"date_key": dateKey,
		"sectors":  len(changes),
	}).Debug("Fetched next-day sector moves")

	return changes, nil
}

func (c *Client) fetchHTML(ctx context.Context, dateKey string) (map[contracts.GroupKey]float64, error) {
	endpoint := fmt.Sprintf("%s?date=%s", c.cfg.FallbackHTMLURL, url.QueryEscape(dateKey))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("HTML request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read HTML body failed: %w", err)
	}

	return parseMovesHTML(string(body), dateKey)
}

// parseMovesHTML extracts (sector, next-day pct) pairs from the sector
// performance table. Expected layout: first table with a sector name in
// the first cell and a signed percentage in the second.
func parseMovesHTML(html, dateKey string) (map[contracts.GroupKey]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	changes := make(map[contracts.GroupKey]float64)

	doc.Find("table").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // header or separator row
		}

		sector := strings.TrimSpace(cells.Eq(0).Text())
		pct, ok := parsePct(cells.Eq(1).Text())
		if sector == "" || !ok {
			return
		}

		changes[contracts.GroupKey{Sector: sector, DateKey: dateKey}] = pct
	})

	if len(changes) == 0 {
		return nil, fmt.Errorf("no sector moves found in HTML")
	}

	return changes, nil
}

// parsePct parses values like "+1.50%", "-0.3 %" or "2.1".
func parsePct(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
