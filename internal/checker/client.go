// Package checker submits credential pairs to the p12 verification web
// service and returns its result page.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	DefaultBaseURL       = "https://check-p12.applep12.com/"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultTokenTimeout  = 20 * time.Second
	DefaultSubmitTimeout = 60 * time.Second

	tokenField = "__RequestVerificationToken"

	// maxPageSize bounds how much of a response page is read.
	maxPageSize = 4 << 20
)

var (
	// ErrTransport wraps every network or HTTP-status failure.
	ErrTransport = errors.New("verification service request failed")

	// ErrNoToken is returned when the check page has no anti-forgery token.
	ErrNoToken = errors.New("couldn't find __RequestVerificationToken on page")
)

// Submission is one credential pair to check.
type Submission struct {
	P12         []byte
	P12Name     string
	Password    string
	Profile     []byte
	ProfileName string
}

// Options configures a Client. Zero values take defaults.
type Options struct {
	BaseURL       string
	UserAgent     string
	TokenTimeout  time.Duration
	SubmitTimeout time.Duration
	Transport     http.RoundTripper
	Logger        *zap.Logger
}

// Client talks to the verification service. Each Submit runs in its own
// cookie session.
type Client struct {
	baseURL       string
	origin        string
	userAgent     string
	tokenTimeout  time.Duration
	submitTimeout time.Duration
	transport     http.RoundTripper
	logger        *zap.Logger
}

// NewClient validates opts.BaseURL and returns a Client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid service URL %q", opts.BaseURL)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.TokenTimeout <= 0 {
		opts.TokenTimeout = DefaultTokenTimeout
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:       opts.BaseURL,
		origin:        u.Scheme + "://" + u.Host,
		userAgent:     opts.UserAgent,
		tokenTimeout:  opts.TokenTimeout,
		submitTimeout: opts.SubmitTimeout,
		transport:     opts.Transport,
		logger:        opts.Logger,
	}, nil
}

// Submit fetches a fresh token, posts the pair and returns the result page.
func (c *Client) Submit(ctx context.Context, s Submission) (string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie jar: %w", err)
	}
	hc := &http.Client{Transport: c.transport, Jar: jar}

	token, err := c.fetchToken(ctx, hc)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Fetched verification token", zap.Int("token_len", len(token)))

	body, contentType, err := encodeForm(s, token)
	if err != nil {
		return "", fmt.Errorf("failed to encode form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL)
	req.Header.Set("Origin", c.origin)

	page, err := c.do(hc, req)
	if err != nil {
		return "", fmt.Errorf("submit check: %w", err)
	}
	c.logger.Debug("Received check result", zap.Int("bytes", len(page)))
	return page, nil
}

func (c *Client) fetchToken(ctx context.Context, hc *http.Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.tokenTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	page, err := c.do(hc, req)
	if err != nil {
		return "", fmt.Errorf("fetch token page: %w", err)
	}
	return findToken(page)
}

// do sends req and returns the body; failures wrap ErrTransport.
func (c *Client) do(hc *http.Client, req *http.Request) (string, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	return string(body), nil
}

// findToken returns the value of the first token input on the page.
func findToken(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse token page: %w", err)
	}

	var (
		token string
		found bool
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == tokenField {
			token, found = attr(n, "value"), true
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)

	if !found {
		return "", ErrNoToken
	}
	return token, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// encodeForm builds the multipart body the service's check form expects.
func encodeForm(s Submission, token string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeFile(w, "P12File", fileName(s.P12Name, "certificate.p12"), "application/x-pkcs12", s.P12); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("P12PassWord", s.Password); err != nil {
		return nil, "", err
	}
	if err := writeFile(w, "MobileProvisionFile", fileName(s.ProfileName, "profile.mobileprovision"), "application/octet-stream", s.Profile); err != nil {
		return nil, "", err
	}
	if err := w.WriteField(tokenField, token); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func writeFile(w *multipart.Writer, field, name, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func fileName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
