// Package client talks to the citybus API: it downloads database archives
// and polls live bus positions. Every request is signed by internal/auth.
package client

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rsclarke/citybus/internal/archive"
	"github.com/rsclarke/citybus/internal/auth"
	"github.com/rsclarke/citybus/internal/config"
	"github.com/rsclarke/citybus/internal/logging"
)

type Client struct {
	HTTPClient *http.Client
	Signer     *auth.Signer
	Extractor  archive.Extractor
	// Recorder is optional; when nil fetches are not recorded.
	Recorder Recorder
	Logger   *zap.Logger

	AppVersion  int
	DBBaseURL   string
	LiveBaseURL string
	OutputDir   string
}

// NewClient creates a Client from cfg. Archives are unpacked with the
// configured 7-Zip binary.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTPClient:  http.DefaultClient,
		Signer:      auth.NewSigner(cfg.AppID, cfg.Salt),
		Extractor:   archive.NewSevenZip(cfg.Extractor, logger.Named("archive")),
		Logger:      logger.Named("client"),
		AppVersion:  cfg.AppVersion,
		DBBaseURL:   cfg.DBBaseURL,
		LiveBaseURL: cfg.LiveBaseURL,
		OutputDir:   cfg.OutputDir,
	}
}

// TransportError wraps a failure to complete an HTTP exchange.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response the client cannot accept.
type ProtocolError struct {
	StatusCode int
	URL        string
	Reason     string
}

func (e *ProtocolError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// Do sends a signed request without a body. query must be the exact query
// string carried by url. The response is returned unread; the caller owns
// the body.
func (c *Client) Do(ctx context.Context, method, url, query string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.signer().Sign(query).Apply(req.Header)

	c.logger().Debug("sending request", logging.Method(method), logging.URL(url))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	return resp, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) signer() *auth.Signer {
	if c.Signer != nil {
		return c.Signer
	}
	return auth.NewSigner(auth.DefaultAppID, auth.DefaultSalt)
}

func (c *Client) extractor() archive.Extractor {
	if c.Extractor != nil {
		return c.Extractor
	}
	return archive.NewSevenZip("7z", c.logger())
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c *Client) outputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return "."
}

func (c *Client) versionQuery() string {
	return fmt.Sprintf("v=%d", c.AppVersion)
}

func (c *Client) archivePaths(name string) (zipPath, outDir string) {
	dir := c.outputDir()
	return filepath.Join(dir, name+".zip"), filepath.Join(dir, name)
}
