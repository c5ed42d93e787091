package automater

import "context"

// API defines the interface for Automater operations
type API interface {
	// TestConnection verifies the credentials
	TestConnection(ctx context.Context) error

	// AllProducts retrieves every active shop product
	AllProducts(ctx context.Context) ([]Product, error)

	// AvailableCodes returns the number of codes left for a product
	AvailableCodes(ctx context.Context, id ID) (int, error)

	// CreateTransaction creates a cart for the given products
	CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error)

	// CreatePayment marks a cart as paid
	CreatePayment(ctx context.Context, cartID ID, req PaymentRequest) (*PaymentResponse, error)
}

var _ API = (*Client)(nil)
