package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/pipcheck/pipcheck/internal/cache"
	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/pep440"
)

// simpleJSONMediaType is the PEP 691 JSON rendering of the simple index API
const simpleJSONMediaType = "application/vnd.pypi.simple.v1+json"

// ErrProjectNotFound reports a project the index does not serve
var ErrProjectNotFound = errors.New("project not found on index")

// IndexClient queries a package index over its simple API
type IndexClient struct {
	httpClient     *http.Client
	insecureClient *http.Client
	cache          *cache.Cache
}

// NewIndexClient creates an index client. cache may be nil.
func NewIndexClient(c *cache.Cache, timeout time.Duration) *IndexClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &IndexClient{
		httpClient: &http.Client{Timeout: timeout},
		insecureClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		cache: c,
	}
}

// client picks the transport honoring the source's verify_ssl flag
func (c *IndexClient) client(src models.Source) *http.Client {
	if !src.VerifySSL {
		return c.insecureClient
	}
	return c.httpClient
}

// CheckIndex confirms the index root answers
func (c *IndexClient) CheckIndex(ctx context.Context, src models.Source) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return fmt.Errorf("bad index URL %q: %w", src.URL, err)
	}
	req.Header.Set("Accept", simpleJSONMediaType+", text/html")

	resp, err := c.client(src).Do(req)
	if err != nil {
		return fmt.Errorf("index %s unreachable: %w", src.URL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("index %s returned status %d", src.URL, resp.StatusCode)
	}
	return nil
}

// simpleProject is the PEP 691 project page
type simpleProject struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// ProjectVersions returns the versions an index publishes for a project.
// ErrProjectNotFound is returned for unknown projects; a nil slice with nil
// error means the index answered but did not report versions (HTML-only).
func (c *IndexClient) ProjectVersions(ctx context.Context, src models.Source, name string) ([]string, error) {
	projectURL := strings.TrimRight(src.URL, "/") + "/" + pep440.NormalizeName(name) + "/"

	var data []byte
	if c.cache != nil {
		if cached, ok := c.cache.Get(projectURL); ok {
			data = cached
		}
	}

	if data == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, projectURL, nil)
		if err != nil {
			return nil, fmt.Errorf("bad project URL %q: %w", projectURL, err)
		}
		req.Header.Set("Accept", simpleJSONMediaType)

		resp, err := c.client(src).Do(req)
		if err != nil {
			return nil, fmt.Errorf("querying %s: %w", projectURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrProjectNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("index returned status %d for %s", resp.StatusCode, projectURL)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response for %s: %w", projectURL, err)
		}

		if c.cache != nil {
			c.cache.Set(projectURL, data)
		}
	}

	var project simpleProject
	if err := json.Unmarshal(data, &project); err != nil {
		// Index answered in HTML only; existence is confirmed but the
		// version list is unknown
		clog.FromContext(ctx).Warnf("index %s did not return the JSON simple API for %s", src.URL, name)
		return nil, nil
	}

	return project.Versions, nil
}
