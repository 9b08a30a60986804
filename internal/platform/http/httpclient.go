// Package http provides the outbound HTTP client used by the admin tooling.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はタイムアウト付きのHTTPクライアントを作成します。
// http.DefaultClientにはタイムアウトがないため、外部への呼び出しでは常にこちらを使います。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
