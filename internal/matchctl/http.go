package matchctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/volmatch/internal/domain/types"
	"github.com/okian/volmatch/pkg/errs"
)

// Client calls the matching API over HTTP.
type Client struct {
	client *http.Client
	base   string
}

// NewClient creates a new client for cfg.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		base:   strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Trim(cfg.Prefix, "/"),
	}
}

// List returns the ranked volunteers for eventID.
func (c *Client) List(ctx context.Context, eventID string) ([]types.Volunteer, error) {
	var out []types.Volunteer
	if _, err := c.do(ctx, http.MethodGet, "/matchByEvent/"+url.PathEscape(eventID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Commit saves volunteerIDs against eventID. A partial commit returns the
// response body together with an *APIError of kind partial failure.
func (c *Client) Commit(ctx context.Context, eventID string, volunteerIDs []string) (types.SaveMatchResponse, error) {
	body := map[string]any{"eventId": eventID, "volunteerIds": volunteerIDs}
	var out types.SaveMatchResponse
	status, err := c.do(ctx, http.MethodPost, "/saveMatch", body, &out)
	if err != nil {
		return types.SaveMatchResponse{}, err
	}
	if status == http.StatusMultiStatus {
		return out, &APIError{Status: status, Code: errs.CodePartialFailure, Message: out.Message}
	}
	return out, nil
}

// History returns the committed matches for eventID.
func (c *Client) History(ctx context.Context, eventID string) ([]types.HistoryEntry, error) {
	var out []types.HistoryEntry
	if _, err := c.do(ctx, http.MethodGet, "/history/"+url.PathEscape(eventID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errs.WrapKind("matchctl."+method, errs.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusMultiStatus:
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
		return resp.StatusCode, nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var failure struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &failure) == nil && failure.Code != "" {
		apiErr.Code, apiErr.Message = failure.Code, failure.Message
	} else {
		apiErr.Code, apiErr.Message = errs.CodeInternal, strings.TrimSpace(string(data))
	}
	return resp.StatusCode, apiErr
}
