package woocommerce

import (
	"fmt"
	"strconv"
)

// Stock statuses understood by WooCommerce
const (
	StockStatusInStock    = "instock"
	StockStatusOutOfStock = "outofstock"
)

// Product is the subset of a WooCommerce product used here
type Product struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Type          string             `json:"type"`
	Status        string             `json:"status"`
	SKU           string             `json:"sku"`
	Price         string             `json:"price"`
	ManageStock   bool               `json:"manage_stock"`
	StockQuantity *int               `json:"stock_quantity"`
	StockStatus   string             `json:"stock_status"`
	Attributes    []ProductAttribute `json:"attributes"`
}

// PriceValue parses the product price; an empty price is zero
func (p Product) PriceValue() (float64, error) {
	if p.Price == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q for product %d: %w", p.Price, p.ID, err)
	}
	return v, nil
}

// ProductAttribute is an attribute attached to a product. ID is zero for
// local (custom) attributes.
type ProductAttribute struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Slug    string   `json:"slug,omitempty"`
	Options []string `json:"options"`
}

// Attribute is a global product attribute (taxonomy)
type Attribute struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	HasArchives bool   `json:"has_archives"`
}

// Term is a single value of a global attribute
type Term struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// StockUpdate changes the stock fields of one product
type StockUpdate struct {
	ID            int64  `json:"id"`
	StockQuantity int    `json:"stock_quantity"`
	StockStatus   string `json:"stock_status"`
}

// Billing holds the buyer contact details of an order
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// LineItem is one product line of an order
type LineItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ProductID   int64   `json:"product_id"`
	VariationID int64   `json:"variation_id"`
	Quantity    int     `json:"quantity"`
	Subtotal    string  `json:"subtotal"`
	Total       string  `json:"total"`
	Price       float64 `json:"price"`
}

// MetaData is a custom field stored on an order
type MetaData struct {
	ID    int64  `json:"id,omitempty"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Order is the subset of a WooCommerce order used here
type Order struct {
	ID                 int64      `json:"id"`
	Number             string     `json:"number"`
	Status             string     `json:"status"`
	Currency           string     `json:"currency"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	Billing            Billing    `json:"billing"`
	LineItems          []LineItem `json:"line_items"`
	MetaData           []MetaData `json:"meta_data"`
}

// Meta returns the string value of a metadata key, or "" when missing
func (o *Order) Meta(key string) string {
	for _, m := range o.MetaData {
		if m.Key != key {
			continue
		}
		switch v := m.Value.(type) {
		case string:
			return v
		case nil:
			return ""
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Subtotal sums the line subtotals, before discounts, shipping and fees
func (o *Order) Subtotal() (float64, error) {
	var sum float64
	for _, item := range o.LineItems {
		if item.Subtotal == "" {
			continue
		}
		v, err := strconv.ParseFloat(item.Subtotal, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid subtotal %q on line %d: %w", item.Subtotal, item.ID, err)
		}
		sum += v
	}
	return sum, nil
}

// DisplayNumber is the order number shown to customers
func (o *Order) DisplayNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return strconv.FormatInt(o.ID, 10)
}
