package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/woocommerce"
)

type mockAutomater struct {
	mu          sync.Mutex
	products    []automater.Product
	productsErr error
	counts      map[automater.ID]int
	countErrs   map[automater.ID]error
	calls       map[automater.ID]int
}

func (m *mockAutomater) AllProducts(ctx context.Context) ([]automater.Product, error) {
	return m.products, m.productsErr
}

func (m *mockAutomater) AvailableCodes(ctx context.Context, id automater.ID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[automater.ID]int)
	}
	m.calls[id]++
	if err := m.countErrs[id]; err != nil {
		return 0, err
	}
	return m.counts[id], nil
}

type mockStore struct {
	attribute   *woocommerce.Attribute
	createdAttr *woocommerce.Attribute
	terms       []woocommerce.Term
	createErrs  map[string]error
	deleted     []int64
	products    []woocommerce.Product
	updates     []woocommerce.StockUpdate
	updateCalls int
	nextTermID  int64
	findAttrErr error
	productsErr error
}

func (m *mockStore) AllProducts(ctx context.Context) ([]woocommerce.Product, error) {
	return m.products, m.productsErr
}

func (m *mockStore) UpdateStock(ctx context.Context, updates []woocommerce.StockUpdate) error {
	m.updateCalls++
	m.updates = append(m.updates, updates...)
	return nil
}

func (m *mockStore) FindAttribute(ctx context.Context, slug string) (*woocommerce.Attribute, error) {
	if m.findAttrErr != nil {
		return nil, m.findAttrErr
	}
	if m.attribute == nil {
		return nil, fmt.Errorf("attribute %s: %w", slug, woocommerce.ErrNotFound)
	}
	return m.attribute, nil
}

func (m *mockStore) CreateAttribute(ctx context.Context, attribute woocommerce.Attribute) (*woocommerce.Attribute, error) {
	attribute.ID = 7
	m.createdAttr = &attribute
	m.attribute = &attribute
	return &attribute, nil
}

func (m *mockStore) ListTerms(ctx context.Context, attributeID int64) ([]woocommerce.Term, error) {
	return m.terms, nil
}

func (m *mockStore) CreateTerm(ctx context.Context, attributeID int64, term woocommerce.Term) (*woocommerce.Term, error) {
	if err := m.createErrs[term.Slug]; err != nil {
		return nil, err
	}
	m.nextTermID++
	term.ID = 100 + m.nextTermID
	m.terms = append(m.terms, term)
	return &term, nil
}

func (m *mockStore) DeleteTerm(ctx context.Context, attributeID, termID int64) error {
	m.deleted = append(m.deleted, termID)
	return nil
}

func intPtr(v int) *int {
	return &v
}
