package kycapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"kyc-dashboard.gomodule/typespec/customers"
	"kyc-dashboard.gomodule/typespec/reverification"
)

var (
	// ErrNotFound indicates the backend has no such resource (maps to 404)
	ErrNotFound = errors.New("backend resource not found")

	// ErrUnavailable indicates the backend could not be reached or failed (maps to 502)
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError is a 4xx answer from the backend other than 404. The backend
// message is kept so handlers can pass it through.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend rejected request: %d %s", e.StatusCode, e.Message)
}

// Config holds the connection settings for the KYC backend
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the external KYC backend.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: u,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL is the backend root, used by pass-through proxy routes.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Authorize sets the backend credentials on an outgoing request.
func (c *Client) Authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

type catalogResponse struct {
	Items reverification.Catalog `json:"items"`
}

// ListReverificationTypes fetches the verification-type catalog.
func (c *Client) ListReverificationTypes(ctx context.Context) (reverification.Catalog, error) {
	var resp catalogResponse
	if err := c.do(ctx, http.MethodGet, "/v1/reverification-types", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CreateResult is the backend's answer to a reverification submission.
type CreateResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateReverification submits a validated payload. idempotencyKey lets a
// resubmission after a network failure be recognised by the backend; pass
// uuid.Nil to have one generated.
func (c *Client) CreateReverification(ctx context.Context, customerID string, p reverification.Payload, idempotencyKey uuid.UUID) (CreateResult, error) {
	if idempotencyKey == uuid.Nil {
		idempotencyKey = uuid.New()
	}
	headers := http.Header{"Idempotency-Key": []string{idempotencyKey.String()}}
	path := "/v1/customers/" + url.PathEscape(customerID) + "/reverifications"

	var res CreateResult
	if err := c.do(ctx, http.MethodPost, path, p, headers, &res); err != nil {
		return CreateResult{}, err
	}
	return res, nil
}

// CancelReverification cancels a whole request or only its next occurrence.
func (c *Client) CancelReverification(ctx context.Context, customerID, requestID string, body reverification.CancelBody) error {
	path := "/v1/customers/" + url.PathEscape(customerID) +
		"/reverifications/" + url.PathEscape(requestID) + "/cancel"
	return c.do(ctx, http.MethodPost, path, body, nil, nil)
}

// GetCustomer fetches a single customer.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (customers.Customer, error) {
	var cust customers.Customer
	path := "/v1/customers/" + url.PathEscape(customerID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &cust); err != nil {
		return customers.Customer{}, err
	}
	return cust, nil
}

// Report is a downloaded verification report. The caller closes Body.
type Report struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// DownloadReport streams a customer's verification report.
func (c *Client) DownloadReport(ctx context.Context, customerID string) (Report, error) {
	path := "/v1/customers/" + url.PathEscape(customerID) + "/report"
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return Report{}, err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return Report{}, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return Report{Body: resp.Body, ContentType: contentType, Size: resp.ContentLength}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, headers http.Header) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	c.Authorize(req)
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers http.Header, out any) error {
	req, err := c.newRequest(ctx, method, path, body, headers)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Message == "" {
		eb.Message = strings.TrimSpace(string(data))
	}
	return &APIError{StatusCode: resp.StatusCode, Message: eb.Message}
}
