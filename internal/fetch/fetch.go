// 包 fetch 封装 HTTP 客户端（超时/重试），用于抓取讨论接口与订阅。
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// DefaultUserAgent 可通过环境变量 DOHRANO_UA 覆盖。
const DefaultUserAgent = "dohrano-stats/1.0 (+https://nyx.cz)"

// maxBody 为单次响应体读取上限。
const maxBody = 16 << 20

// Client 为带重试的 HTTP 客户端。
type Client struct {
	http  *http.Client
	retry int
	delay time.Duration
}

// Options 为客户端构造参数。
type Options struct {
	Timeout time.Duration
	Retry   int
	// RetryDelay 为线性回退基数，默认 300ms。
	RetryDelay time.Duration
}

// New 创建客户端；代理遵循 HTTP_PROXY/HTTPS_PROXY 环境变量。
func New(opts Options) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 300 * time.Millisecond
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &Client{
		http:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		retry: opts.Retry,
		delay: opts.RetryDelay,
	}
}

// Get 发送 GET 请求，非 2xx 或网络错误时按线性回退重试。
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for i := 0; i <= c.retry; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		ua := os.Getenv("DOHRANO_UA")
		if ua == "" {
			ua = DefaultUserAgent
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept", "application/json, application/rss+xml, application/atom+xml, */*")
		resp, err := c.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("http status: %s", resp.Status)
			resp.Body.Close()
		} else {
			lastErr = err
		}
		if i == c.retry {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * c.delay):
		}
	}
	return nil, lastErr
}

// GetJSON 请求并解码 JSON 响应到 out。
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}
	return nil
}
