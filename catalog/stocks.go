package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/metrics"
	"github.com/s0up4200/automater-sync/woocommerce"
)

// StockResult summarises a stock synchronisation run
type StockResult struct {
	// Linked products carry an Automater product ID
	Linked int
	// Updated products had their stock written
	Updated int
	// Unchanged products already had the right stock
	Unchanged int
	// Skipped products do not manage stock
	Skipped int
	// Failed products could not get a code count and were left untouched
	Failed int
}

// StockUpdater copies Automater code counts into WooCommerce stock
type StockUpdater struct {
	automater Automater
	store     Store
	opts      options
	logger    zerolog.Logger
}

// NewStockUpdater creates a new stock updater
func NewStockUpdater(a Automater, store Store, logger zerolog.Logger, opts ...Option) *StockUpdater {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &StockUpdater{
		automater: a,
		store:     store,
		opts:      o,
		logger:    logger.With().Str("component", "stocks").Logger(),
	}
}

type linkedProduct struct {
	product     woocommerce.Product
	automaterID automater.ID
}

// Update synchronises the stock of every linked product that manages stock
func (u *StockUpdater) Update(ctx context.Context) (result StockResult, err error) {
	start := time.Now()
	defer func() {
		metrics.StockSyncDuration.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.StockSyncRuns.WithLabelValues(outcome).Inc()
	}()

	resolver, err := NewResolver(ctx, u.store)
	if err != nil {
		return result, err
	}
	if names := resolver.Ambiguous(); len(names) > 0 {
		u.logger.Warn().Strs("names", names).Msg("Attribute terms share a name, products linked by these names are not resolved")
	}

	products, err := u.store.AllProducts(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch store products: %w", err)
	}

	var linked []linkedProduct
	for _, product := range products {
		id, ok := resolver.Resolve(product)
		if !ok {
			continue
		}
		result.Linked++
		if !product.ManageStock {
			u.logger.Debug().Int64("product_id", product.ID).Msg("Skipping product without stock management")
			result.Skipped++
			continue
		}
		linked = append(linked, linkedProduct{product: product, automaterID: id})
	}

	counts, err := u.fetchCounts(ctx, linked)
	if err != nil {
		return result, err
	}

	var updates []woocommerce.StockUpdate
	for _, lp := range linked {
		count, ok := counts[lp.automaterID]
		if !ok {
			result.Failed++
			continue
		}

		status := woocommerce.StockStatusOutOfStock
		if count > 0 {
			status = woocommerce.StockStatusInStock
		}

		if lp.product.StockQuantity != nil && *lp.product.StockQuantity == count && lp.product.StockStatus == status {
			result.Unchanged++
			continue
		}

		u.logger.Debug().
			Int64("product_id", lp.product.ID).
			Str("automater_id", lp.automaterID.String()).
			Int("quantity", count).
			Msg("Updating product stock")
		updates = append(updates, woocommerce.StockUpdate{
			ID:            lp.product.ID,
			StockQuantity: count,
			StockStatus:   status,
		})
	}

	if len(updates) > 0 {
		if u.opts.dryRun {
			for _, update := range updates {
				u.logger.Info().
					Int64("product_id", update.ID).
					Int("quantity", update.StockQuantity).
					Str("status", update.StockStatus).
					Msg("Dry run: would update stock")
			}
		} else {
			if err := u.store.UpdateStock(ctx, updates); err != nil {
				return result, fmt.Errorf("failed to update stock: %w", err)
			}
			metrics.StockProductsUpdated.Add(float64(len(updates)))
		}
		result.Updated = len(updates)
	}

	u.logger.Info().
		Int("linked", result.Linked).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Stock update finished")

	return result, nil
}

// fetchCounts looks up every distinct Automater ID once. Failed lookups are
// logged and left out of the returned map.
func (u *StockUpdater) fetchCounts(ctx context.Context, linked []linkedProduct) (map[automater.ID]int, error) {
	counts := make(map[automater.ID]int)
	if len(linked) == 0 {
		return counts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.concurrency)

	var mu sync.Mutex
	seen := make(map[automater.ID]struct{})
	for _, lp := range linked {
		if _, ok := seen[lp.automaterID]; ok {
			continue
		}
		seen[lp.automaterID] = struct{}{}

		id := lp.automaterID
		g.Go(func() error {
			count, err := u.automater.AvailableCodes(gctx, id)
			if err != nil {
				u.logger.Warn().Err(err).Str("automater_id", id.String()).Msg("Failed to get available codes")
				return nil
			}
			mu.Lock()
			counts[id] = count
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
