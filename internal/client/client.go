package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

const (
	statsPath   = "/api/dashboard/stats/"
	alertsPath  = "/api/dashboard/alerts/"
	dismissPath = "/api/dashboard/alerts/dismiss/"
	exportPath  = "/api/dashboard/export/"

	csrfHeader = "X-CSRFToken"
)

// ErrPayload is returned when the server answers with an "error" field.
var ErrPayload = errors.New("server reported an error")

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code: %d - status: %s - %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d - status: %s", e.Code, e.Status)
}

// Client talks to the dashboard API. It keeps the session cookies and the
// CSRF token needed for POSTs.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu   sync.RWMutex
	csrf string
}

// New returns a client for baseURL. A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

func (c *Client) SetCSRFToken(token string) {
	c.mu.Lock()
	c.csrf = token
	c.mu.Unlock()
}

func (c *Client) CSRFToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrf
}

func (c *Client) FetchStats(ctx context.Context, days int) (*models.DashboardStats, error) {
	q := url.Values{"date_range": {strconv.Itoa(days)}}

	var stats models.DashboardStats
	if err := c.getJSON(ctx, statsPath+"?"+q.Encode(), &stats); err != nil {
		return nil, err
	}
	if stats.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrPayload, stats.Error)
	}
	return &stats, nil
}

func (c *Client) FetchAlerts(ctx context.Context) (*models.AlertsPayload, error) {
	var payload models.AlertsPayload
	if err := c.getJSON(ctx, alertsPath, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrPayload, payload.Error)
	}
	return &payload, nil
}

// DismissAlert tells the server the alert was acknowledged.
func (c *Client) DismissAlert(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodPost, dismissPath+url.PathEscape(id)+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ExportFilename is the name the export is saved under for the given day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("dashboard-%s.xlsx", now.UTC().Format("2006-01-02"))
}

// Export downloads the spreadsheet export into dir and returns its path.
func (c *Client) Export(ctx context.Context, dir string, now time.Time) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, exportPath, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(dir, ".dashboard-export-*")
	if err != nil {
		return "", fmt.Errorf("error creating export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("error writing export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("error closing export file: %w", err)
	}

	path := filepath.Join(dir, ExportFilename(now))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("error saving export: %w", err)
	}
	return path, nil
}

// SubmitForm posts form values to action, a path relative to the base URL.
func (c *Client) SubmitForm(ctx context.Context, action string, values url.Values) error {
	req, err := c.newRequest(ctx, http.MethodPost, action, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing path %q: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method != http.MethodGet {
		if tok := c.CSRFToken(); tok != "" {
			req.Header.Set(csrfHeader, tok)
		}
		// Django rejects HTTPS POSTs without a same-origin Referer.
		req.Header.Set("Referer", c.baseURL.String()+"/")
	}
	return req, nil
}

// do sends req and turns non-2xx responses into *StatusError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		serr := &StatusError{Code: resp.StatusCode, Status: resp.Status}

		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body) == nil {
			serr.Message = body.Error
		}
		return nil, serr
	}
	return resp, nil
}
