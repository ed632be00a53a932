package erpnext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TraceFunc receives one diagnostic step label plus a structured detail
// payload. It is for operator-facing debugging only and never drives control
// flow.
type TraceFunc func(step string, details map[string]interface{})

// Filter is one frappe list filter, encoded on the wire as the array
// [doctype, field, operator, value].
type Filter struct {
	DocType  string
	Field    string
	Operator string
	Value    interface{}
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.DocType, f.Field, f.Operator, f.Value})
}

// TestResult is the outcome of a connectivity self-test. Failure is reported
// as data, not as an error: the test exists to show operators what is wrong.
type TestResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NormalizeURL trims whitespace, prefixes https:// when no scheme is present
// and strips one trailing slash. Applying it twice changes nothing.
func NormalizeURL(raw string) string {
	normalized := strings.TrimSpace(raw)
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}
	return strings.TrimSuffix(normalized, "/")
}

// GetAuthToken exchanges the API key/secret pair for a bearer token. Tokens
// are requested fresh for every top-level operation and never cached.
func (c *Client) GetAuthToken(ctx context.Context, baseURL, apiKey, apiSecret string, trace TraceFunc) (string, error) {
	tokenURL := baseURL + "/api/method/frappe.auth.get_token"

	if trace != nil {
		trace("Initiating authentication request", map[string]interface{}{
			"url":    tokenURL,
			"method": http.MethodPost,
		})
	}

	payload, err := json.Marshal(map[string]string{
		"api_key":    apiKey,
		"api_secret": apiSecret,
	})
	if err != nil {
		return "", &AuthError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", &AuthError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if trace != nil {
			trace("Authentication failed", map[string]interface{}{"error": err.Error()})
		}
		return "", &AuthError{Cause: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if trace != nil {
		trace("Authentication response received", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Cause: apiError(resp.StatusCode, body)}
	}

	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", &AuthError{Cause: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if tokenResp.Token == "" {
		return "", &AuthError{Cause: fmt.Errorf("no token received from ERPNext")}
	}
	return tokenResp.Token, nil
}

// TestConnection normalizes the URL, acquires a token and resolves the
// logged-in user. It never returns an error; failures come back in the
// result.
func (c *Client) TestConnection(ctx context.Context, rawURL, apiKey, apiSecret string, trace TraceFunc) TestResult {
	baseURL := NormalizeURL(rawURL)
	if trace != nil {
		trace("URL normalized", map[string]interface{}{
			"originalUrl":   rawURL,
			"normalizedUrl": baseURL,
		})
		trace("Attempting to get auth token", map[string]interface{}{
			"url":             baseURL,
			"apiKeyLength":    len(apiKey),
			"apiSecretLength": len(apiSecret),
		})
	}

	token, err := c.GetAuthToken(ctx, baseURL, apiKey, apiSecret, trace)
	if err != nil {
		if trace != nil {
			trace("Connection test failed", map[string]interface{}{"error": err.Error()})
		}
		return TestResult{
			Success: false,
			Message: fmt.Sprintf("Connection failed: %s", err),
		}
	}

	userURL := baseURL + "/api/method/frappe.auth.get_logged_user"
	if trace != nil {
		trace("Testing user authentication", map[string]interface{}{
			"url":    userURL,
			"method": http.MethodGet,
		})
	}

	var userResp struct {
		Message string `json:"message"`
	}
	if err := c.getJSON(ctx, userURL, token, &userResp); err != nil {
		if trace != nil {
			trace("Connection test failed", map[string]interface{}{"error": err.Error()})
		}
		return TestResult{
			Success: false,
			Message: fmt.Sprintf("Connection failed: %s", err),
		}
	}

	if trace != nil {
		trace("User authentication response", map[string]interface{}{"user": userResp.Message})
	}

	return TestResult{
		Success: true,
		Message: "Successfully connected to ERPNext",
		Details: map[string]interface{}{
			"user":      userResp.Message,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// FetchResource queries one resource collection with optional filters and
// returns the raw records, empty when the response carries no data field. A
// fresh token is acquired per call.
func (c *Client) FetchResource(ctx context.Context, rawURL, apiKey, apiSecret, resource string, filters []Filter) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	if err := c.fetchList(ctx, rawURL, apiKey, apiSecret, resource, resource, filters, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []map[string]interface{}{}
	}
	return records, nil
}

// FetchCustomers lists Customer documents, optionally narrowed by a
// case-insensitive name match.
func (c *Client) FetchCustomers(ctx context.Context, rawURL, apiKey, apiSecret, search string) ([]Customer, error) {
	var filters []Filter
	if search != "" {
		filters = append(filters, Filter{"Customer", "customer_name", "like", "%" + search + "%"})
	}

	var customers []Customer
	if err := c.fetchList(ctx, rawURL, apiKey, apiSecret, "Customer", "clients", filters, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// FetchCustomerDetail fetches one Customer document by name.
func (c *Client) FetchCustomerDetail(ctx context.Context, rawURL, apiKey, apiSecret, customerID string) (*Customer, error) {
	baseURL := NormalizeURL(rawURL)
	token, err := c.GetAuthToken(ctx, baseURL, apiKey, apiSecret, nil)
	if err != nil {
		return nil, &FetchError{Resource: "client details", Cause: err}
	}

	detailURL := fmt.Sprintf("%s/api/resource/Customer/%s", baseURL, url.PathEscape(customerID))
	var resp struct {
		Data Customer `json:"data"`
	}
	if err := c.getJSON(ctx, detailURL, token, &resp); err != nil {
		return nil, &FetchError{Resource: "client details", Cause: err}
	}
	return &resp.Data, nil
}

// FetchCustomerOrders lists the Sales Orders of one customer.
func (c *Client) FetchCustomerOrders(ctx context.Context, rawURL, apiKey, apiSecret, customerID string) ([]SalesOrder, error) {
	filters := []Filter{{"Sales Order", "customer", "=", customerID}}

	var orders []SalesOrder
	if err := c.fetchList(ctx, rawURL, apiKey, apiSecret, "Sales Order", "client orders", filters, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchCustomerComments lists the Comments referencing one customer.
func (c *Client) FetchCustomerComments(ctx context.Context, rawURL, apiKey, apiSecret, customerID string) ([]Comment, error) {
	filters := []Filter{{"Comment", "reference_name", "=", customerID}}

	var comments []Comment
	if err := c.fetchList(ctx, rawURL, apiKey, apiSecret, "Comment", "client comments", filters, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// fetchList acquires a fresh token and queries one resource collection,
// decoding the response's data field into out. label names the resource in
// error messages.
func (c *Client) fetchList(ctx context.Context, rawURL, apiKey, apiSecret, resource, label string, filters []Filter, out interface{}) error {
	baseURL := NormalizeURL(rawURL)
	token, err := c.GetAuthToken(ctx, baseURL, apiKey, apiSecret, nil)
	if err != nil {
		return &FetchError{Resource: label, Cause: err}
	}

	q := url.Values{}
	q.Set("fields", `["*"]`)
	if len(filters) > 0 {
		encoded, err := json.Marshal(filters)
		if err != nil {
			return &FetchError{Resource: label, Cause: err}
		}
		q.Set("filters", string(encoded))
	}

	resourceURL := fmt.Sprintf("%s/api/resource/%s?%s", baseURL, url.PathEscape(resource), q.Encode())

	payload := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := c.getJSON(ctx, resourceURL, token, &payload); err != nil {
		return &FetchError{Resource: label, Cause: err}
	}
	if payload.Data == nil {
		return nil
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		return &FetchError{Resource: label, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// apiError prefers the message field frappe puts in error bodies, falling
// back to the HTTP status.
func apiError(statusCode int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("%s (status %d)", errResp.Message, statusCode)
	}
	return fmt.Errorf("request failed with status %d", statusCode)
}
