package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCustomersSendsPagingAndAuth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/customers", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "jane", r.URL.Query().Get("search"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck", user)
		assert.Equal(t, "cs", pass)

		json.NewEncoder(w).Encode([]Customer{{ID: 5, Email: "jane@example.com", Username: "jane"}})
	}))
	defer ts.Close()

	client := NewClient(ts.URL+"/", "ck", "cs")
	customers, err := client.GetCustomers(context.Background(), "jane", 2, 20)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, 5, customers[0].ID)
}

func TestGetCustomersOmitsEmptySearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("search"))
		json.NewEncoder(w).Encode([]Customer{})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	_, err := client.GetCustomers(context.Background(), "", 1, 20)
	require.NoError(t, err)
}

func TestGetCustomerOrdersUsesCustomerParam(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("customer"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		json.NewEncoder(w).Encode([]Order{{ID: 1, CustomerID: 42}})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	orders, err := client.GetCustomerOrders(context.Background(), 42, 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 42, orders[0].CustomerID)
}

func TestGetOrdersWithNotesJoinsNotes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/orders":
			json.NewEncoder(w).Encode([]Order{
				{ID: 1, Number: "1001"},
				{ID: 2, Number: "1002"},
			})
		case "/wp-json/wc/v3/orders/1/notes":
			json.NewEncoder(w).Encode([]OrderNote{{ID: 11, Note: "first"}})
		case "/wp-json/wc/v3/orders/2/notes":
			json.NewEncoder(w).Encode([]OrderNote{{ID: 21, Note: "second"}, {ID: 22, Note: "third"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	orders, err := client.GetOrdersWithNotes(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	byID := map[int][]OrderNote{}
	for _, o := range orders {
		byID[o.ID] = o.Notes
	}
	assert.Len(t, byID[1], 1)
	assert.Len(t, byID[2], 2)
}

func TestGetOrdersWithNotesFailsWhole(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/orders":
			json.NewEncoder(w).Encode([]Order{{ID: 1}, {ID: 2}})
		case "/wp-json/wc/v3/orders/1/notes":
			json.NewEncoder(w).Encode([]OrderNote{{ID: 11}})
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	orders, err := client.GetOrdersWithNotes(context.Background(), 1, 20)
	require.Error(t, err)
	assert.Nil(t, orders)
	assert.Contains(t, err.Error(), "failed to fetch notes for order 2")
}

func TestGetSalesReportTakesFirstRow(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/reports/sales", r.URL.Path)
		assert.Equal(t, "year", r.URL.Query().Get("period"))
		json.NewEncoder(w).Encode([]SalesReport{{
			TotalSales:     "1234.56",
			TotalOrders:    37,
			TotalCustomers: 12,
		}})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	report, err := client.GetSalesReport(context.Background(), "year")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", report.TotalSales)
	assert.Equal(t, 37, report.TotalOrders)
	assert.Equal(t, 12, report.TotalCustomers)
}

func TestGetSalesReportEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]SalesReport{})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	report, err := client.GetSalesReport(context.Background(), "year")
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalOrders)
}

func TestErrorIncludesStatusAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"woocommerce_rest_cannot_view"}`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	_, err := client.GetProducts(context.Background(), 1, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "woocommerce_rest_cannot_view")
}

func TestSystemStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/system_status", r.URL.Path)
		w.Write([]byte(`{"environment":{}}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "ck", "cs")
	assert.NoError(t, client.SystemStatus(context.Background()))
}
