// Package naver は Naver Finance の銘柄ページと指数ポーリングAPIをスクレイピングします。
package naver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fiflow_backend/internal/shared/apperr"
	"fiflow_backend/internal/shared/ratelimiter"

	"github.com/PuerkitoBio/goquery"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/encoding/korean"
)

const (
	// UserAgent はブラウザを装う User-Agent です。既定の Go UA は拒否されることがあります。
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// nameTTL は銘柄名のメモ化期間です。銘柄名はほとんど変わりません。
	nameTTL = 24 * time.Hour
)

// Config は Naver Finance の接続先です。
type Config struct {
	BaseURL        string // https://finance.naver.com
	PollingBaseURL string // https://polling.finance.naver.com
}

// Client は Naver Finance のスクレイパーです。
type Client struct {
	cfg     Config
	http    *http.Client
	limiter ratelimiter.RateLimiterInterface
	names   *gocache.Cache
}

// NewClient は Client を生成します。limiter が nil の場合は制限しません。
func NewClient(cfg Config, httpClient *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(0, 0)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.PollingBaseURL = strings.TrimRight(cfg.PollingBaseURL, "/")
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: limiter,
		names:   gocache.New(nameTTL, time.Hour),
	}
}

// ResolveDisplayName は銘柄コードから銘柄名を取得します。
// ページに銘柄名がない場合（存在しないコード）は ok=false を返します。
func (c *Client) ResolveDisplayName(ctx context.Context, symbol string) (string, bool, error) {
	if v, found := c.names.Get(symbol); found {
		return v.(string), true, nil
	}

	doc, err := c.fetchDocument(ctx, c.itemURL("main.naver", symbol), "")
	if err != nil {
		return "", false, apperr.Upstream("symbol lookup failed", err)
	}
	name := strings.TrimSpace(doc.Find("#middle > div.h_company > div.wrap_company > h2 > a").First().Text())
	if name == "" {
		slog.Debug("display name not found", "symbol", symbol)
		return "", false, nil
	}
	c.names.SetDefault(symbol, name)
	return name, true, nil
}

func (c *Client) itemURL(page, symbol string) string {
	return fmt.Sprintf("%s/item/%s?code=%s", c.cfg.BaseURL, page, url.QueryEscape(symbol))
}

// fetchDocument は HTML を取得して goquery のドキュメントにします。
// Naver Finance のページは EUC-KR なので、Content-Type が UTF-8 でない限り変換します。
func (c *Client) fetchDocument(ctx context.Context, rawURL, referer string) (*goquery.Document, error) {
	resp, err := c.get(ctx, rawURL, referer)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if !isUTF8(resp.Header.Get("Content-Type")) {
		body = korean.EUCKR.NewDecoder().Reader(resp.Body)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, rawURL, referer string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func isUTF8(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "utf-8")
}
