package erpnext

// Customer is an ERPNext Customer document. Field names follow the frappe
// resource API.
type Customer struct {
	Name                   string `json:"name"`
	CustomerName           string `json:"customer_name"`
	CustomerGroup          string `json:"customer_group"`
	Territory              string `json:"territory"`
	CustomerType           string `json:"customer_type"`
	Email                  string `json:"email_id"`
	Phone                  string `json:"phone"`
	MobileNo               string `json:"mobile_no"`
	TaxID                  string `json:"tax_id"`
	CustomerPrimaryContact string `json:"customer_primary_contact"`
	Creation               string `json:"creation"`
	Modified               string `json:"modified"`
}

// SalesOrder is an ERPNext Sales Order document.
type SalesOrder struct {
	Name            string           `json:"name"`
	Customer        string           `json:"customer"`
	TransactionDate string           `json:"transaction_date"`
	GrandTotal      float64          `json:"grand_total"`
	Status          string           `json:"status"`
	Items           []SalesOrderItem `json:"items"`
}

type SalesOrderItem struct {
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

// Comment is an ERPNext Comment document attached to another document.
type Comment struct {
	Name        string `json:"name"`
	CommentType string `json:"comment_type"`
	Content     string `json:"content"`
	Creation    string `json:"creation"`
	Owner       string `json:"owner"`
}
