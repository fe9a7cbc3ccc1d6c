// Package httpclient is a small JSON client over fasthttp.
package httpclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/RishalEP/tenx-blockchain/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	// Debug logs every request.
	Debug bool

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout bounds a request when ctx has no earlier deadline. Default is [DefaultTimeout].
	Timeout time.Duration
}

type Client struct {
	baseURL *url.URL
	Config
}

func New(baseURL string, config ...Config) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse base url")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}
	var cf Config
	if len(config) > 0 {
		cf = config[0]
	}
	if cf.Timeout <= 0 {
		cf.Timeout = DefaultTimeout
	}
	return &Client{baseURL: parsed, Config: cf}, nil
}

type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// UnmarshalBody decodes a JSON body into out.
func (r *Response) UnmarshalBody(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrapf(err, "can't unmarshal json body from %s, %q", r.URL, string(r.Body))
	}
	return nil
}

// BaseURL returns a copy of the base URL of the client.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Get requests path relative to the base URL.
func (c *Client) Get(ctx context.Context, p string, query url.Values) (*Response, error) {
	u := c.BaseURL()
	u.Path = path.Join(u.Path, p)
	u.RawQuery = query.Encode()
	target := u.String()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodGet)
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	req.SetRequestURI(target)

	deadline := time.Now().Add(c.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	err := fasthttp.DoDeadline(req, resp, deadline)
	if c.Debug {
		logger.DebugContext(ctx, "Finished request",
			slog.String("package", "httpclient"),
			slog.String("url", target),
			slog.Duration("latency", time.Since(start)),
			slog.Int("status", resp.StatusCode()),
			slog.Bool("failed", err != nil),
		)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "url: %s", target)
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, errors.Wrapf(err, "can't uncompress body from %s", target)
	}
	return &Response{
		URL:        target,
		StatusCode: resp.StatusCode(),
		Body:       append([]byte(nil), body...),
	}, nil
}
