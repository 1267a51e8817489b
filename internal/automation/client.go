// Package automation talks to the workflow automation platform that owns the
// band records. Every call is a plain webhook; the platform answers with JSON.
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/utils"
	"github.com/tidwall/gjson"
)

// ErrRemote covers non-2xx answers and bodies that say success:false.
var ErrRemote = errors.New("automation platform error")

type Client struct {
	baseURL     string
	bandsPath   string
	refreshPath string
	statusPath  string
	http        *retryablehttp.Client
}

// BandStatus is the body of the band status webhook.
type BandStatus struct {
	BandID     string                 `json:"bandId"`
	BandName   string                 `json:"bandName"`
	BandAction string                 `json:"bandAction"`
	Extra      map[string]interface{} `json:"-"`
}

func (s BandStatus) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(s.Extra)+3)
	for k, v := range s.Extra {
		body[k] = v
	}
	body["bandId"] = s.BandID
	body["bandName"] = s.BandName
	body["bandAction"] = s.BandAction
	return json.Marshal(body)
}

func NewClient(cfg *config.Config) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.AutomationRetryMax
	rc.HTTPClient.Timeout = cfg.AutomationTimeout
	rc.Logger = nil
	// Hand the final response back so status codes and bodies stay readable.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:     strings.TrimRight(cfg.AutomationBaseURL, "/"),
		bandsPath:   cfg.AutomationBandsPath,
		refreshPath: cfg.AutomationRefreshPath,
		statusPath:  cfg.AutomationStatusPath,
		http:        rc,
	}
}

// FetchBands returns the raw band payload. Shape problems are left to the
// normalize package.
func (c *Client) FetchBands(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, c.bandsPath, nil)
}

// TriggerRefresh asks the platform to re-run its band scrape.
func (c *Client) TriggerRefresh(ctx context.Context, lastRefresh time.Time) error {
	body := map[string]interface{}{}
	if !lastRefresh.IsZero() {
		body["lastRefresh"] = lastRefresh.UTC().Format(time.RFC3339)
	}
	_, err := c.do(ctx, http.MethodPost, c.refreshPath, body)
	return err
}

// PostBandStatus forwards a played/removed decision.
func (c *Client) PostBandStatus(ctx context.Context, status BandStatus) error {
	_, err := c.do(ctx, http.MethodPost, c.statusPath, status)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrRemote, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrRemote, err)
	}

	utils.Log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("automation call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrRemote, method, path, resp.StatusCode)
	}
	if gjson.ValidBytes(data) {
		if ok := gjson.GetBytes(data, "success"); ok.Exists() && ok.Type == gjson.False {
			msg := gjson.GetBytes(data, "error").String()
			if msg == "" {
				msg = gjson.GetBytes(data, "message").String()
			}
			return nil, fmt.Errorf("%w: %s", ErrRemote, msg)
		}
	}
	return data, nil
}
