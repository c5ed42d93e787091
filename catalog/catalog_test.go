package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/filter"
	"github.com/s0up4200/automater-sync/woocommerce"
)

func TestAPIEnabled(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"

	assert.True(t, APIEnabled(key, key))
	assert.True(t, APIEnabled(" "+key+" ", key))
	assert.False(t, APIEnabled(key, ""))
	assert.False(t, APIEnabled(key[:31], key))
	assert.False(t, APIEnabled(key, key+"0"))
}

func TestEnsureAttributeCreatesMissing(t *testing.T) {
	store := &mockStore{}

	attr, err := EnsureAttribute(context.Background(), store)
	require.NoError(t, err)
	require.NotNil(t, store.createdAttr)

	assert.Equal(t, int64(7), attr.ID)
	assert.Equal(t, AttributeSlug, store.createdAttr.Slug)
	assert.Equal(t, AttributeName, store.createdAttr.Name)
	assert.Equal(t, "select", store.createdAttr.Type)
	assert.Equal(t, "menu_order", store.createdAttr.OrderBy)
	assert.False(t, store.createdAttr.HasArchives)
}

func TestEnsureAttributeKeepsExisting(t *testing.T) {
	store := &mockStore{attribute: &woocommerce.Attribute{ID: 3, Slug: "pa_automater_product"}}

	attr, err := EnsureAttribute(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, int64(3), attr.ID)
	assert.Nil(t, store.createdAttr)
}

func TestEnsureAttributePropagatesErrors(t *testing.T) {
	store := &mockStore{findAttrErr: woocommerce.ErrUnauthorized}

	_, err := EnsureAttribute(context.Background(), store)
	require.Error(t, err)
	assert.ErrorIs(t, err, woocommerce.ErrUnauthorized)
	assert.Nil(t, store.createdAttr)
}

func TestResolver(t *testing.T) {
	r := NewResolverFromTerms(3, []woocommerce.Term{
		{ID: 1, Name: "Game key", Slug: "101"},
		{ID: 2, Name: "Gift card", Slug: "202"},
	})

	tests := []struct {
		name    string
		product woocommerce.Product
		want    automater.ID
		wantOK  bool
	}{
		{
			name: "global attribute by id",
			product: woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
				{ID: 3, Name: "Automater Product", Options: []string{"Gift card", "Game key"}},
			}},
			want:   "202",
			wantOK: true,
		},
		{
			name: "global attribute by slug",
			product: woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
				{ID: 9, Slug: "pa_automater_product", Options: []string{"Game key"}},
			}},
			want:   "101",
			wantOK: true,
		},
		{
			name: "local attribute uses option text",
			product: woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
				{ID: 0, Name: "Automater Product", Options: []string{" 555 "}},
			}},
			want:   "555",
			wantOK: true,
		},
		{
			name: "unknown term",
			product: woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
				{ID: 3, Options: []string{"Missing"}},
			}},
		},
		{
			name: "other attribute",
			product: woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
				{ID: 4, Name: "Color", Slug: "pa_color", Options: []string{"Red"}},
			}},
		},
		{
			name:    "no attributes",
			product: woocommerce.Product{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.product)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverAmbiguousNames(t *testing.T) {
	r := NewResolverFromTerms(3, []woocommerce.Term{
		{ID: 100, Name: "Steam Key", Slug: "100"},
		{ID: 200, Name: "Steam Key", Slug: "200"},
		{ID: 300, Name: "Gift card", Slug: "300"},
	})

	assert.Equal(t, []string{"Steam Key"}, r.Ambiguous())

	got, ok := r.Resolve(woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
		{ID: 3, Options: []string{"Steam Key"}},
	}})
	assert.False(t, ok)
	assert.Empty(t, got)

	// the slug still identifies the product
	got, ok = r.Resolve(woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
		{ID: 3, Options: []string{"100"}},
	}})
	assert.True(t, ok)
	assert.Equal(t, automater.ID("100"), got)

	got, ok = r.Resolve(woocommerce.Product{Attributes: []woocommerce.ProductAttribute{
		{ID: 3, Options: []string{"Gift card"}},
	}})
	assert.True(t, ok)
	assert.Equal(t, automater.ID("300"), got)
}

func TestImport(t *testing.T) {
	a := &mockAutomater{products: []automater.Product{
		{ID: "101", Name: "Game key"},
		{ID: "303", Name: "New product"},
		{ID: "303", Name: "Duplicate"},
		{ID: "404", Name: "Broken"},
	}}
	store := &mockStore{
		attribute:  &woocommerce.Attribute{ID: 3, Slug: "pa_automater_product"},
		terms:      []woocommerce.Term{{ID: 11, Name: "Game key", Slug: "101"}, {ID: 12, Name: "Gone", Slug: "202"}},
		createErrs: map[string]error{"404": errors.New("term exists")},
	}

	result, err := NewImporter(a, store, zerolog.Nop()).Import(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ImportResult{Imported: 1, Failed: 1, Deleted: 1, Unchanged: 1}, result)
	assert.Equal(t, ImportSuccess, result.Status())
	assert.Equal(t, []int64{12}, store.deleted)
	require.Len(t, store.terms, 3)
	assert.Equal(t, woocommerce.Term{ID: 101, Name: "New product", Slug: "303"}, store.terms[2])
}

func TestImportKeepsTermsWhenFetchFails(t *testing.T) {
	a := &mockAutomater{productsErr: automater.ErrTimeout}
	store := &mockStore{
		attribute: &woocommerce.Attribute{ID: 3},
		terms:     []woocommerce.Term{{ID: 11, Slug: "101"}},
	}

	_, err := NewImporter(a, store, zerolog.Nop()).Import(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, automater.ErrTimeout)
	assert.Empty(t, store.deleted)
}

func TestImportWithFilter(t *testing.T) {
	f, err := filter.Compile(`Price > 10`)
	require.NoError(t, err)

	a := &mockAutomater{products: []automater.Product{
		{ID: "1", Name: "Cheap", Price: 5},
		{ID: "2", Name: "Pricey", Price: 50},
	}}
	store := &mockStore{
		attribute: &woocommerce.Attribute{ID: 3},
		terms:     []woocommerce.Term{{ID: 11, Slug: "1"}},
	}

	result, err := NewImporter(a, store, zerolog.Nop(), WithFilter(f)).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 1, Deleted: 1}, result)
	assert.Equal(t, []int64{11}, store.deleted)
}

func TestImportDryRun(t *testing.T) {
	a := &mockAutomater{products: []automater.Product{{ID: "1", Name: "One"}}}
	store := &mockStore{
		attribute: &woocommerce.Attribute{ID: 3},
		terms:     []woocommerce.Term{{ID: 11, Slug: "9"}},
	}

	result, err := NewImporter(a, store, zerolog.Nop(), WithDryRun(true)).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 1, Deleted: 1}, result)
	assert.Len(t, store.terms, 1)
	assert.Empty(t, store.deleted)
}

func TestImportResultStatus(t *testing.T) {
	assert.Equal(t, ImportSuccess, ImportResult{Imported: 1, Failed: 3}.Status())
	assert.Equal(t, ImportFailed, ImportResult{Failed: 1}.Status())
	assert.Equal(t, ImportNothing, ImportResult{Unchanged: 4, Deleted: 2}.Status())
}

func stockProduct(id int64, automaterID string, manage bool, qty *int, status string) woocommerce.Product {
	return woocommerce.Product{
		ID:            id,
		ManageStock:   manage,
		StockQuantity: qty,
		StockStatus:   status,
		Attributes: []woocommerce.ProductAttribute{
			{ID: 0, Name: AttributeSlug, Options: []string{automaterID}},
		},
	}
}

func TestStockUpdate(t *testing.T) {
	a := &mockAutomater{
		counts:    map[automater.ID]int{"1": 5, "2": 0, "3": 7},
		countErrs: map[automater.ID]error{"4": errors.New("boom")},
	}
	store := &mockStore{products: []woocommerce.Product{
		stockProduct(10, "1", true, intPtr(2), woocommerce.StockStatusInStock),
		stockProduct(11, "2", true, nil, woocommerce.StockStatusInStock),
		stockProduct(12, "3", true, intPtr(7), woocommerce.StockStatusInStock),
		stockProduct(13, "4", true, intPtr(1), woocommerce.StockStatusInStock),
		stockProduct(14, "1", false, nil, ""),
		stockProduct(15, "1", true, intPtr(0), woocommerce.StockStatusOutOfStock),
		{ID: 16},
	}}

	result, err := NewStockUpdater(a, store, zerolog.Nop(), WithConcurrency(2)).Update(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StockResult{Linked: 6, Updated: 3, Unchanged: 1, Skipped: 1, Failed: 1}, result)
	assert.Equal(t, 1, store.updateCalls)
	assert.ElementsMatch(t, []woocommerce.StockUpdate{
		{ID: 10, StockQuantity: 5, StockStatus: woocommerce.StockStatusInStock},
		{ID: 11, StockQuantity: 0, StockStatus: woocommerce.StockStatusOutOfStock},
		{ID: 15, StockQuantity: 5, StockStatus: woocommerce.StockStatusInStock},
	}, store.updates)

	// one lookup per Automater product
	assert.Equal(t, 1, a.calls["1"])
}

func TestStockUpdateNothingToDo(t *testing.T) {
	a := &mockAutomater{}
	store := &mockStore{products: []woocommerce.Product{{ID: 1}}}

	result, err := NewStockUpdater(a, store, zerolog.Nop()).Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StockResult{}, result)
	assert.Zero(t, store.updateCalls)
}

func TestStockUpdateDryRun(t *testing.T) {
	a := &mockAutomater{counts: map[automater.ID]int{"1": 3}}
	store := &mockStore{products: []woocommerce.Product{
		stockProduct(10, "1", true, nil, ""),
	}}

	result, err := NewStockUpdater(a, store, zerolog.Nop(), WithDryRun(true)).Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, store.updateCalls)
}

func TestStockUpdateStoreError(t *testing.T) {
	store := &mockStore{productsErr: woocommerce.ErrUnauthorized}

	_, err := NewStockUpdater(&mockAutomater{}, store, zerolog.Nop()).Update(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, woocommerce.ErrUnauthorized)
}

type countingUpdater struct {
	runs atomic.Int32
}

func (c *countingUpdater) Update(ctx context.Context) (StockResult, error) {
	c.runs.Add(1)
	return StockResult{}, errors.New("ignored")
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	updater := &countingUpdater{}
	s := NewScheduler(updater, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return updater.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(&countingUpdater{}, 0, zerolog.Nop())
	assert.Equal(t, DefaultInterval, s.Interval())
}
