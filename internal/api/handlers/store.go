package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"storeadmin/internal/logger"
	"storeadmin/internal/pagelist"
	"storeadmin/internal/registry"
	"storeadmin/internal/woocommerce"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// StoreHandler serves the WooCommerce list views. Each view keeps an
// accumulated pagelist so successive requests extend the list instead of
// re-fetching it, exactly one synchronizer per view.
type StoreHandler struct {
	registry *registry.Registry
	logger   *logger.Logger

	mu         sync.Mutex
	userSearch string
	users      *pagelist.List[woocommerce.Customer, int]
	products   *pagelist.List[woocommerce.Product, int]
	orders     *pagelist.List[woocommerce.Order, int]
}

func NewStoreHandler(reg *registry.Registry, logger *logger.Logger) *StoreHandler {
	return &StoreHandler{
		registry: reg,
		logger:   logger,
		users: pagelist.NewList(woocommerce.DefaultPageSize, func(c woocommerce.Customer) int {
			return c.ID
		}),
		products: pagelist.NewList(woocommerce.DefaultPageSize, func(p woocommerce.Product) int {
			return p.ID
		}),
		orders: pagelist.NewList(woocommerce.DefaultPageSize, func(o woocommerce.Order) int {
			return o.ID
		}),
	}
}

func (h *StoreHandler) activeClient() (*woocommerce.Client, error) {
	server, err := h.registry.GetActive()
	if err != nil {
		return nil, err
	}
	return woocommerce.NewClient(server.URL, server.ConsumerKey, server.ConsumerSecret), nil
}

func (h *StoreHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, registry.ErrNoActiveServer) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active WooCommerce server configured. Please set up a server in the Settings page."})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// SearchUsers extends the accumulated customer list by one page. A changed
// search term or reset=true discards the accumulated state first.
func (h *StoreHandler) SearchUsers(c *gin.Context) {
	search := c.Query("search")

	h.mu.Lock()
	if c.Query("reset") == "true" || search != h.userSearch {
		h.users.Reset()
		h.userSearch = search
	}
	h.mu.Unlock()

	client, err := h.activeClient()
	if err != nil {
		h.fail(c, err)
		return
	}

	page, token := h.users.Begin()
	fetched, err := client.GetCustomers(c.Request.Context(), search, page, h.users.PageSize())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.users.Apply(token, fetched)

	items, _, hasMore := h.users.Snapshot()
	items = pagelist.Filter(items, func(u woocommerce.Customer) bool {
		return matchesUser(u, search)
	})

	c.JSON(http.StatusOK, gin.H{"data": items, "hasMore": hasMore})
}

func matchesUser(user woocommerce.Customer, search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	fullName := strings.ToLower(user.FirstName + " " + user.LastName)
	return strings.Contains(strings.ToLower(user.Email), search) ||
		strings.Contains(strings.ToLower(user.Username), search) ||
		strings.Contains(strings.ToLower(user.FirstName), search) ||
		strings.Contains(strings.ToLower(user.LastName), search) ||
		strings.Contains(fullName, search)
}

// GetUser returns one customer plus their orders, fetched in parallel.
func (h *StoreHandler) GetUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	client, err := h.activeClient()
	if err != nil {
		h.fail(c, err)
		return
	}

	var customer *woocommerce.Customer
	var orders []woocommerce.Order

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		customer, err = client.GetCustomer(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = client.GetCustomerOrders(ctx, userID, 100)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"customer": customer,
		"orders":   orders,
	}})
}

// ListProducts extends the accumulated product list by one page.
func (h *StoreHandler) ListProducts(c *gin.Context) {
	if c.Query("reset") == "true" {
		h.products.Reset()
	}

	client, err := h.activeClient()
	if err != nil {
		h.fail(c, err)
		return
	}

	page, token := h.products.Begin()
	fetched, err := client.GetProducts(c.Request.Context(), page, h.products.PageSize())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.products.Apply(token, fetched)

	items, _, hasMore := h.products.Snapshot()
	c.JSON(http.StatusOK, gin.H{"data": items, "hasMore": hasMore})
}

// ListOrders extends the accumulated order list by one page, with each
// order's notes joined on. Filtering by order number and sorting by id or
// date apply to the whole accumulated list, not the fetched page.
func (h *StoreHandler) ListOrders(c *gin.Context) {
	if c.Query("reset") == "true" {
		h.orders.Reset()
	}

	client, err := h.activeClient()
	if err != nil {
		h.fail(c, err)
		return
	}

	page, token := h.orders.Begin()
	fetched, err := client.GetOrdersWithNotes(c.Request.Context(), page, h.orders.PageSize())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.orders.Apply(token, fetched)

	items, _, hasMore := h.orders.Snapshot()

	if search := c.Query("search"); search != "" {
		items = pagelist.Filter(items, func(o woocommerce.Order) bool {
			return strings.Contains(o.Number, search)
		})
	}

	items = sortOrders(items, c.DefaultQuery("sort", "date_created"), c.DefaultQuery("direction", "desc"))

	c.JSON(http.StatusOK, gin.H{"data": items, "hasMore": hasMore})
}

func sortOrders(orders []woocommerce.Order, field, direction string) []woocommerce.Order {
	asc := direction == "asc"
	if field == "id" {
		return pagelist.SortedCopy(orders, func(a, b woocommerce.Order) bool {
			if asc {
				return a.ID < b.ID
			}
			return a.ID > b.ID
		})
	}
	return pagelist.SortedCopy(orders, func(a, b woocommerce.Order) bool {
		da, db := parseOrderDate(a.DateCreated), parseOrderDate(b.DateCreated)
		if asc {
			return da.Before(db)
		}
		return db.Before(da)
	})
}

// parseOrderDate handles both the zone-less format WooCommerce uses for
// date_created and full RFC 3339.
func parseOrderDate(value string) time.Time {
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

// Dashboard returns the yearly sales summary.
func (h *StoreHandler) Dashboard(c *gin.Context) {
	client, err := h.activeClient()
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := client.GetSalesReport(c.Request.Context(), "year")
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"totalUsers":   report.TotalCustomers,
		"totalOrders":  report.TotalOrders,
		"totalRevenue": report.TotalSales,
	}})
}
