// Package djclient is the console's HTTP client for the stagedoor API.
package djclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stagedoor/backend/internal/finance"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/normalize"
	"github.com/tidwall/gjson"
)

var (
	ErrRemote = errors.New("api error")
	// ErrRefreshTooSoon is returned by Refresh while the server's gate is closed.
	ErrRefreshTooSoon = errors.New("refresh already requested")
)

// RefreshTooSoonError carries the server's retry_after.
type RefreshTooSoonError struct {
	RetryAfter time.Duration
}

func (e *RefreshTooSoonError) Error() string {
	return fmt.Sprintf("refresh already requested, retry in %s", e.RetryAfter)
}

func (e *RefreshTooSoonError) Unwrap() error { return ErrRefreshTooSoon }

type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

type Options struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryMax int
}

func New(opts Options) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.Logger = nil
	// Hand the final response back so status codes and bodies stay readable.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    rc,
	}
}

type response struct {
	status int
	body   gjson.Result
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return &response{status: resp.StatusCode, body: gjson.ParseBytes(data)}, nil
}

// call is do plus the success check shared by every endpoint.
func (c *Client) call(ctx context.Context, method, path string, body interface{}) (gjson.Result, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.status < 200 || resp.status >= 300 || resp.body.Get("success").Type == gjson.False {
		msg := resp.body.Get("error").String()
		if msg == "" {
			msg = http.StatusText(resp.status)
		}
		return gjson.Result{}, fmt.Errorf("%w: %d %s", ErrRemote, resp.status, msg)
	}
	return resp.body, nil
}

// Fetch loads the unified DJ payload.
func (c *Client) Fetch(ctx context.Context) (models.DJSnapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/dj/requests", nil)
	if err != nil {
		return models.DJSnapshot{}, err
	}
	if resp.status < 200 || resp.status >= 300 {
		return models.DJSnapshot{}, fmt.Errorf("%w: %d", ErrRemote, resp.status)
	}
	snap, err := normalize.DJPayload([]byte(resp.body.Raw))
	if err != nil {
		return models.DJSnapshot{}, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return snap, nil
}

func (c *Client) AddRequest(ctx context.Context, title, artist string) (models.SongRequest, error) {
	body, err := c.call(ctx, http.MethodPost, "/api/v1/dj/requests", map[string]interface{}{
		"action": "requests.add",
		"data": map[string]interface{}{
			"title":     title,
			"artist":    artist,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return models.SongRequest{}, err
	}
	return normalize.SongRequest(body.Get("data")), nil
}

func (c *Client) PlaySong(ctx context.Context, cd models.CooldownSong) error {
	_, err := c.call(ctx, http.MethodPost, "/api/v1/dj/play-song", map[string]interface{}{
		"songId":        cd.SongID,
		"title":         cd.Title,
		"artist":        cd.Artist,
		"cooldownUntil": cd.CooldownUntil.UTC().Format(time.RFC3339),
	})
	return err
}

func (c *Client) Blacklist(ctx context.Context, b models.BlacklistedSong) error {
	_, err := c.call(ctx, http.MethodPost, "/api/v1/dj/blacklist", map[string]interface{}{
		"songId": b.SongID,
		"title":  b.Title,
		"artist": b.Artist,
	})
	return err
}

func (c *Client) Unblacklist(ctx context.Context, songID string) error {
	_, err := c.call(ctx, http.MethodDelete, "/api/v1/dj/blacklist", map[string]interface{}{"songId": songID})
	return err
}

// BandQuery mirrors the GET /bands query string.
type BandQuery struct {
	Focus          string
	View           string
	Sort           string
	Recommendation string
	Status         string
	Query          string
	Limit          int
}

func (q BandQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("focus", q.Focus)
	set("view", q.View)
	set("sort", q.Sort)
	set("recommendation", q.Recommendation)
	set("status", q.Status)
	set("q", q.Query)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) Bands(ctx context.Context, q BandQuery) ([]models.Band, error) {
	path := "/api/v1/bands"
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}
	body, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var bands []models.Band
	if err := json.Unmarshal([]byte(body.Get("data").Raw), &bands); err != nil {
		return nil, fmt.Errorf("%w: decoding bands: %v", ErrRemote, err)
	}
	return bands, nil
}

// Refresh triggers a band rescrape. While the gate is closed it returns a
// *RefreshTooSoonError.
func (c *Client) Refresh(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/bands/refresh", map[string]interface{}{})
	if err != nil {
		return err
	}
	if resp.status == http.StatusTooManyRequests {
		secs := resp.body.Get("retry_after").Float()
		return &RefreshTooSoonError{RetryAfter: time.Duration(math.Ceil(secs)) * time.Second}
	}
	if resp.status < 200 || resp.status >= 300 {
		return fmt.Errorf("%w: %d %s", ErrRemote, resp.status, resp.body.Get("error").String())
	}
	return nil
}

// BreakEven runs the calculator server side.
func (c *Client) BreakEven(ctx context.Context, in finance.Inputs) (finance.Result, finance.Display, error) {
	body, err := c.call(ctx, http.MethodPost, "/api/v1/finance/break-even", in)
	if err != nil {
		return finance.Result{}, finance.Display{}, err
	}
	var res finance.Result
	var disp finance.Display
	if err := json.Unmarshal([]byte(body.Get("data").Raw), &res); err != nil {
		return res, disp, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	if err := json.Unmarshal([]byte(body.Get("display").Raw), &disp); err != nil {
		return res, disp, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return res, disp, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return body.Get("token").String(), nil
}
