package http

import (
	"net"
	"net/http"
	"time"
)

// Option は NewHTTPClient の設定を変更します。
type Option func(*clientOptions)

type clientOptions struct {
	userAgent       string
	maxConnsPerHost int
}

// WithUserAgent は全リクエストに User-Agent ヘッダーを付与します。
// リクエスト側で既に設定されている場合は上書きしません。
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.userAgent = ua }
}

// WithMaxConnsPerHost はホストごとの同時接続数を制限します。0 は無制限です。
func WithMaxConnsPerHost(n int) Option {
	return func(o *clientOptions) { o.maxConnsPerHost = n }
}

// NewHTTPClient は外部API・スクレイピング呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: Naver / Kakao のように接続先が少ないため、ホストあたりのアイドル接続を多めに保持
//   - Client.Timeout: リクエスト全体のタイムアウト（UPSTREAM_TIMEOUT）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
func NewHTTPClient(timeout time.Duration, opts ...Option) *http.Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     o.maxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	var rt http.RoundTripper = t
	if o.userAgent != "" {
		rt = &userAgentTransport{base: t, userAgent: o.userAgent}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.base.RoundTrip(req)
	}
	// RoundTripper は元のリクエストを変更してはいけない
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.userAgent)
	return u.base.RoundTrip(r)
}
