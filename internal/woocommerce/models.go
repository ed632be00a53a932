package woocommerce

// Customer is a WooCommerce store customer.
type Customer struct {
	ID          int     `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Role        string  `json:"role"`
	DateCreated string  `json:"date_created"`
	Billing     Address `json:"billing"`
	Shipping    Address `json:"shipping"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Product is a WooCommerce catalog product.
type Product struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Price        string  `json:"price"`
	RegularPrice string  `json:"regular_price"`
	SalePrice    string  `json:"sale_price"`
	Status       string  `json:"status"`
	StockStatus  string  `json:"stock_status"`
	DateCreated  string  `json:"date_created"`
	Images       []Image `json:"images"`
}

type Image struct {
	ID  int    `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Order is a WooCommerce order. Notes is filled by a secondary fetch of the
// order's notes sub-resource, not by the orders endpoint itself.
type Order struct {
	ID           int         `json:"id"`
	Number       string      `json:"number"`
	Status       string      `json:"status"`
	Currency     string      `json:"currency"`
	DateCreated  string      `json:"date_created"`
	Total        string      `json:"total"`
	CustomerID   int         `json:"customer_id"`
	CustomerNote string      `json:"customer_note"`
	Billing      Address     `json:"billing"`
	LineItems    []LineItem  `json:"line_items"`
	Notes        []OrderNote `json:"notes"`
}

type LineItem struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

type OrderNote struct {
	ID           int    `json:"id"`
	Author       string `json:"author"`
	DateCreated  string `json:"date_created"`
	Note         string `json:"note"`
	CustomerNote bool   `json:"customer_note"`
}

// SalesReport is one row of the reports/sales endpoint.
type SalesReport struct {
	TotalSales     string `json:"total_sales"`
	NetSales       string `json:"net_sales"`
	TotalOrders    int    `json:"total_orders"`
	TotalItems     int    `json:"total_items"`
	TotalCustomers int    `json:"total_customers"`
}
