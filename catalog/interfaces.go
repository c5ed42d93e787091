package catalog

import (
	"context"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/woocommerce"
)

// Automater is the part of the Automater API used by the catalog
type Automater interface {
	AllProducts(ctx context.Context) ([]automater.Product, error)
	AvailableCodes(ctx context.Context, id automater.ID) (int, error)
}

// TermSource looks up the automater_product attribute and its terms
type TermSource interface {
	FindAttribute(ctx context.Context, slug string) (*woocommerce.Attribute, error)
	ListTerms(ctx context.Context, attributeID int64) ([]woocommerce.Term, error)
}

// Store is the part of the WooCommerce API used by the catalog
type Store interface {
	TermSource
	AllProducts(ctx context.Context) ([]woocommerce.Product, error)
	UpdateStock(ctx context.Context, updates []woocommerce.StockUpdate) error
	CreateAttribute(ctx context.Context, attribute woocommerce.Attribute) (*woocommerce.Attribute, error)
	CreateTerm(ctx context.Context, attributeID int64, term woocommerce.Term) (*woocommerce.Term, error)
	DeleteTerm(ctx context.Context, attributeID, termID int64) error
}

var (
	_ Automater = (*automater.Client)(nil)
	_ Store     = (*woocommerce.Client)(nil)
)
