package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/metrics"
	"github.com/s0up4200/automater-sync/woocommerce"
)

// Import statuses
const (
	ImportSuccess = "success"
	ImportFailed  = "failed"
	ImportNothing = "nothing"
)

// ImportResult summarises a product import
type ImportResult struct {
	Imported  int
	Failed    int
	Deleted   int
	Unchanged int
}

// Status reports success when anything was imported, failed when only
// errors happened and nothing otherwise
func (r ImportResult) Status() string {
	switch {
	case r.Imported > 0:
		return ImportSuccess
	case r.Failed > 0:
		return ImportFailed
	default:
		return ImportNothing
	}
}

// Importer mirrors Automater products into attribute terms
type Importer struct {
	automater Automater
	store     Store
	opts      options
	logger    zerolog.Logger
}

// NewImporter creates a new importer
func NewImporter(a Automater, store Store, logger zerolog.Logger, opts ...Option) *Importer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Importer{
		automater: a,
		store:     store,
		opts:      o,
		logger:    logger.With().Str("component", "importer").Logger(),
	}
}

// Import creates a term for every new Automater product and deletes terms of
// products that no longer exist. Nothing is deleted when the product list
// cannot be fetched.
func (i *Importer) Import(ctx context.Context) (ImportResult, error) {
	var result ImportResult

	attr, err := EnsureAttribute(ctx, i.store)
	if err != nil {
		return result, err
	}

	products, err := i.automater.AllProducts(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch Automater products: %w", err)
	}
	products = i.applyFilter(products)

	terms, err := i.store.ListTerms(ctx, attr.ID)
	if err != nil {
		return result, fmt.Errorf("failed to list attribute terms: %w", err)
	}

	existing := make(map[string]int64, len(terms))
	for _, term := range terms {
		existing[term.Slug] = term.ID
	}
	toDelete := make(map[string]int64, len(existing))
	for slug, id := range existing {
		toDelete[slug] = id
	}

	seen := make(map[string]struct{}, len(products))
	for _, product := range products {
		slug := termSlug(product.ID)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		if _, ok := existing[slug]; ok {
			delete(toDelete, slug)
			result.Unchanged++
			continue
		}

		i.logger.Debug().Str("automater_id", slug).Str("name", product.Name).Msg("Importing product")
		if i.opts.dryRun {
			i.logger.Info().Str("automater_id", slug).Str("name", product.Name).Msg("Dry run: would create term")
			result.Imported++
			continue
		}

		if _, err := i.store.CreateTerm(ctx, attr.ID, woocommerce.Term{Name: product.Name, Slug: slug}); err != nil {
			i.logger.Error().Err(err).Str("automater_id", slug).Msg("Product was not imported")
			metrics.ImportedTerms.WithLabelValues("failed").Inc()
			result.Failed++
			continue
		}
		metrics.ImportedTerms.WithLabelValues("created").Inc()
		result.Imported++
	}

	for slug, termID := range toDelete {
		i.logger.Debug().Str("automater_id", slug).Int64("term_id", termID).Msg("Deleting product that no longer exists")
		if i.opts.dryRun {
			i.logger.Info().Str("automater_id", slug).Msg("Dry run: would delete term")
			result.Deleted++
			continue
		}
		if err := i.store.DeleteTerm(ctx, attr.ID, termID); err != nil {
			i.logger.Error().Err(err).Str("automater_id", slug).Msg("Failed to delete term")
			continue
		}
		metrics.ImportedTerms.WithLabelValues("deleted").Inc()
		result.Deleted++
	}

	i.logger.Info().
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Int("deleted", result.Deleted).
		Int("unchanged", result.Unchanged).
		Str("status", result.Status()).
		Msg("Import finished")

	return result, nil
}

func (i *Importer) applyFilter(products []automater.Product) []automater.Product {
	if i.opts.filter == nil {
		return products
	}
	matched, errs := i.opts.filter.Apply(products)
	for _, err := range errs {
		i.logger.Warn().Err(err).Msg("Product excluded by filter error")
	}
	i.logger.Debug().
		Str("filter", i.opts.filter.Expression()).
		Int("total", len(products)).
		Int("matched", len(matched)).
		Msg("Applied product filter")
	return matched
}

// termSlug turns an Automater ID into the term slug WordPress would store
func termSlug(id automater.ID) string {
	return strings.ToLower(strings.TrimSpace(id.String()))
}
