package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnavailable covers transport-level failures: timeouts, refused
	// connections, 5xx answers. The caller cannot know whether the upstream
	// applied the request.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrRejected covers 4xx answers: the upstream saw the request and said no.
	ErrRejected = errors.New("upstream rejected request")
	// ErrBadResponse covers 2xx answers whose body does not satisfy the
	// contract. The boundary fails closed instead of probing optional fields.
	ErrBadResponse = errors.New("upstream response malformed")
)

// Client talks to the platform backend that owns packages, orders, payment
// verification and the wallet ledger.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, serviceToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      serviceToken,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return data, fmt.Errorf("%w: %s %s: status %d", ErrRejected, method, path, resp.StatusCode)
	default:
		return data, fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadResponse, path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	data, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadResponse, path, err)
	}
	return nil
}

func userPath(prefix string, userID int64, suffix string) string {
	return prefix + strconv.FormatInt(userID, 10) + suffix
}
