package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the page size used by every paged collection fetch.
const DefaultPageSize = 20

type Client struct {
	storeURL       string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
}

func NewClient(storeURL, consumerKey, consumerSecret string) *Client {
	return &Client{
		storeURL:       strings.TrimRight(storeURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	fullURL := fmt.Sprintf("%s/wp-json/wc/v3%s", c.storeURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetCustomers fetches one page of customers, optionally narrowed by a search term.
func (c *Client) GetCustomers(ctx context.Context, search string, page, perPage int) ([]Customer, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	if search != "" {
		q.Set("search", search)
	}

	var customers []Customer
	if err := c.get(ctx, "/customers", q, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// GetCustomer fetches a single customer by ID
func (c *Client) GetCustomer(ctx context.Context, customerID int) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, fmt.Sprintf("/customers/%d", customerID), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetProducts fetches one page of products
func (c *Client) GetProducts(ctx context.Context, page, perPage int) ([]Product, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))

	var products []Product
	if err := c.get(ctx, "/products", q, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetOrders fetches one page of orders, without notes
func (c *Client) GetOrders(ctx context.Context, page, perPage int) ([]Order, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))

	var orders []Order
	if err := c.get(ctx, "/orders", q, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetCustomerOrders fetches up to perPage orders placed by one customer.
func (c *Client) GetCustomerOrders(ctx context.Context, customerID, perPage int) ([]Order, error) {
	q := url.Values{}
	q.Set("customer", strconv.Itoa(customerID))
	q.Set("per_page", strconv.Itoa(perPage))

	var orders []Order
	if err := c.get(ctx, "/orders", q, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderNotes fetches the notes sub-resource of one order
func (c *Client) GetOrderNotes(ctx context.Context, orderID int) ([]OrderNote, error) {
	var notes []OrderNote
	if err := c.get(ctx, fmt.Sprintf("/orders/%d/notes", orderID), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetOrdersWithNotes fetches one page of orders and joins each order's notes
// onto it. Note fetches run concurrently and are awaited together; if any one
// fails the whole page fails and nothing is returned.
func (c *Client) GetOrdersWithNotes(ctx context.Context, page, perPage int) ([]Order, error) {
	orders, err := c.GetOrders(ctx, page, perPage)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range orders {
		i := i
		g.Go(func() error {
			notes, err := c.GetOrderNotes(gctx, orders[i].ID)
			if err != nil {
				return fmt.Errorf("failed to fetch notes for order %d: %w", orders[i].ID, err)
			}
			orders[i].Notes = notes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetSalesReport fetches the sales report for the given period (week, month,
// last_month or year). The endpoint returns a single-row array.
func (c *Client) GetSalesReport(ctx context.Context, period string) (*SalesReport, error) {
	q := url.Values{}
	q.Set("period", period)

	var reports []SalesReport
	if err := c.get(ctx, "/reports/sales", q, &reports); err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return &SalesReport{}, nil
	}
	return &reports[0], nil
}

// SystemStatus probes the store's system_status endpoint. The decoded body is
// discarded; only reachability matters to callers.
func (c *Client) SystemStatus(ctx context.Context) error {
	return c.get(ctx, "/system_status", nil, nil)
}
