package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/util"
)

// Client fetches rendered map images from the static map service
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
}

// ClientOptions configures a Client
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewClient creates a rendering client. Requests are single-attempt.
func NewClient(opts ClientOptions) *Client {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10_000_000
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:   strings.TrimSuffix(opts.BaseURL, "?"),
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

// URL returns the full request URL for req
func (c *Client) URL(req Request) string {
	return c.baseURL + "?" + req.Encode()
}

// Image is a rendered map returned by the service
type Image struct {
	Data        []byte
	ContentType string
}

// Fetch sends req to the rendering service and returns the raw image bytes.
// Any non-2xx status is returned as *model.UpstreamError; the body is not inspected.
func (c *Client) Fetch(ctx context.Context, req Request) (*Image, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &model.UpstreamError{Collaborator: "rendering", Err: stripKey(err, req)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, &model.UpstreamError{Collaborator: "rendering", Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.UpstreamError{
			Collaborator: "rendering",
			Status:       resp.StatusCode,
			Details:      strings.TrimSpace(string(body)),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return &Image{Data: body, ContentType: contentType}, nil
}

// stripKey removes the API key from transport errors, which embed the request URL
func stripKey(err error, req Request) error {
	msg := err.Error()
	for _, key := range req.Values("key") {
		if key != "" {
			msg = strings.ReplaceAll(msg, key, "REDACTED")
		}
	}
	return fmt.Errorf("%s", msg)
}
