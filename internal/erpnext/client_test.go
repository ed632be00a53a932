package erpnext

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"https://example.com/", "https://example.com"},
		{"http://x.com", "http://x.com"},
		{"http://x.com/", "http://x.com"},
		{"  example.com  ", "https://example.com"},
		{"https://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in))
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	once := NormalizeURL("example.com/")
	assert.Equal(t, once, NormalizeURL(once))
}

func TestGetAuthToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/method/frappe.auth.get_token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key", body["api_key"])
		assert.Equal(t, "secret", body["api_secret"])

		json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
	}))
	defer ts.Close()

	client := NewClient()
	token, err := client.GetAuthToken(context.Background(), ts.URL, "key", "secret", nil)
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestGetAuthTokenMissingToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer ts.Close()

	client := NewClient()
	_, err := client.GetAuthToken(context.Background(), ts.URL, "key", "secret", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failed")

	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestGetAuthTokenHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid API key"})
	}))
	defer ts.Close()

	client := NewClient()
	_, err := client.GetAuthToken(context.Background(), ts.URL, "key", "secret", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failed")
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestTestConnectionSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/method/frappe.auth.get_token":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		case "/api/method/frappe.auth.get_logged_user":
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{"message": "admin@example.com"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	var steps []string
	client := NewClient()
	result := client.TestConnection(context.Background(), ts.URL+"/", "key", "secret",
		func(step string, details map[string]interface{}) {
			steps = append(steps, step)
		})

	assert.True(t, result.Success)
	assert.Equal(t, "Successfully connected to ERPNext", result.Message)
	require.NotNil(t, result.Details)
	assert.Equal(t, "admin@example.com", result.Details["user"])
	assert.NotEmpty(t, steps)
}

func TestTestConnectionUnreachableHost(t *testing.T) {
	client := NewClient()
	result := client.TestConnection(context.Background(), "http://127.0.0.1:1", "key", "secret", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Connection failed:")
}

func TestTestConnectionBadCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid API key"})
	}))
	defer ts.Close()

	client := NewClient()
	result := client.TestConnection(context.Background(), ts.URL, "key", "wrong", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Connection failed:")
	assert.Contains(t, result.Message, "Authentication failed")
}

func TestFetchCustomers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/method/frappe.auth.get_token":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		case "/api/resource/Customer":
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
			assert.Equal(t, `["*"]`, r.URL.Query().Get("fields"))
			assert.Equal(t, `[["Customer","customer_name","like","%acme%"]]`, r.URL.Query().Get("filters"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"name": "CUST-0001", "customer_name": "Acme Corp"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := NewClient()
	customers, err := client.FetchCustomers(context.Background(), ts.URL, "key", "secret", "acme")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "CUST-0001", customers[0].Name)
	assert.Equal(t, "Acme Corp", customers[0].CustomerName)
}

func TestFetchCustomersNoSearchSendsNoFilters(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/method/frappe.auth.get_token":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		case "/api/resource/Customer":
			assert.False(t, r.URL.Query().Has("filters"))
			json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]interface{}{}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := NewClient()
	customers, err := client.FetchCustomers(context.Background(), ts.URL, "key", "secret", "")
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestFetchResourceMissingDataField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/method/frappe.auth.get_token":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{"message": "ok"})
		}
	}))
	defer ts.Close()

	client := NewClient()
	records, err := client.FetchResource(context.Background(), ts.URL, "key", "secret", "Customer", nil)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchCustomerOrdersFilterEncoding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/method/frappe.auth.get_token":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		case "/api/resource/Sales Order":
			assert.Equal(t, `[["Sales Order","customer","=","CUST-0001"]]`, r.URL.Query().Get("filters"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"name": "SO-0001", "customer": "CUST-0001", "grand_total": 150.5, "status": "To Deliver"},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := NewClient()
	orders, err := client.FetchCustomerOrders(context.Background(), ts.URL, "key", "secret", "CUST-0001")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "SO-0001", orders[0].Name)
	assert.Equal(t, 150.5, orders[0].GrandTotal)
}

func TestFetchCustomerOrdersAuthFailureWrapsFetchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer ts.Close()

	client := NewClient()
	_, err := client.FetchCustomerOrders(context.Background(), ts.URL, "key", "secret", "CUST-0001")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "Failed to fetch client orders")
	assert.Contains(t, err.Error(), "Authentication failed")
}
