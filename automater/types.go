package automater

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an Automater identifier. The API is not consistent about sending
// identifiers as numbers or strings, so both decode into the same value.
type ID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as sent on the wire
func (id ID) String() string {
	return string(id)
}

// flexInt decodes integers that may arrive quoted.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", string(data), err)
	}
	*f = flexInt(n)
	return nil
}

// ProductType selects the product listing
type ProductType string

// ProductStatus filters products by state
type ProductStatus string

const (
	TypeShop    ProductType = "shop"
	TypeAllegro ProductType = "allegro"

	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

// Product is a product listed on the Automater account
type Product struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	AvailableCodes int     `json:"available_codes"`
	DatabaseID     ID      `json:"database_id"`
}

// UnmarshalJSON accepts a quoted code counter.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		AvailableCodes flexInt `json:"available_codes"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.AvailableCodes = int(aux.AvailableCodes)
	return nil
}

// ProductsRequest selects a page of products
type ProductsRequest struct {
	Type   ProductType
	Status ProductStatus
	Page   int
	Limit  int
}

// Page is the pagination envelope shared by listing endpoints
type Page struct {
	Count      int `json:"count"`
	PagesCount int `json:"pages_count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

// ProductsResponse is a single page of products
type ProductsResponse struct {
	Page
	Data []Product `json:"data"`
}

// Language of the messages Automater sends to the buyer
type Language string

const (
	LanguagePL Language = "pl"
	LanguageEN Language = "en"
)

// ParseLanguage maps a locale such as "pl_PL" onto a supported language.
// Anything that is not Polish falls back to English.
func ParseLanguage(locale string) Language {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if len(locale) > 2 {
		locale = locale[:2]
	}
	if locale == string(LanguagePL) {
		return LanguagePL
	}
	return LanguageEN
}

// TransactionProduct is a single cart line
type TransactionProduct struct {
	ID       ID
	Quantity int
	Price    float64
	Currency string
}

// TransactionRequest creates a new cart
type TransactionRequest struct {
	Products        []TransactionProduct
	Email           string
	Phone           string
	Language        Language
	SendStatusEmail bool
	Custom          string
}

// TransactionResponse describes the created cart
type TransactionResponse struct {
	CartID         ID   `json:"cart_id"`
	TransactionIDs []ID `json:"transaction_ids"`
}

// PaymentRequest pays for a cart
type PaymentRequest struct {
	PaymentID   string
	Amount      float64
	Currency    string
	Description string
	Custom      string
}

// PaymentResponse is returned after posting a payment
type PaymentResponse struct {
	CartID    ID     `json:"cart_id"`
	PaymentID string `json:"payment_id"`
	Message   string `json:"message"`
}

// Database is a pool of codes backing one or more products
type Database struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	AvailableCodes int    `json:"available_codes"`
}

// UnmarshalJSON accepts a quoted code counter.
func (d *Database) UnmarshalJSON(data []byte) error {
	type plain Database
	aux := struct {
		*plain
		AvailableCodes flexInt `json:"available_codes"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.AvailableCodes = int(aux.AvailableCodes)
	return nil
}

// DatabasesResponse is a single page of code databases
type DatabasesResponse struct {
	Page
	Data []Database `json:"data"`
}

// CodesResponse reports how many codes were stored
type CodesResponse struct {
	Added int `json:"added"`
}

// envelope carries the status fields present in every response body.
type envelope struct {
	Code    *flexInt `json:"code"`
	Message string   `json:"message"`
}
