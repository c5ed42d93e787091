package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/woocommerce"
)

const (
	// AttributeSlug is the slug of the global attribute holding Automater products
	AttributeSlug = "automater_product"
	// AttributeName is the label shown for the attribute in WooCommerce
	AttributeName = "Automater Product"
)

// APIKeyLength is the length of a valid Automater API key and secret
const APIKeyLength = 32

// APIEnabled reports whether the Automater credentials look usable
func APIEnabled(apiKey, apiSecret string) bool {
	return len(strings.TrimSpace(apiKey)) == APIKeyLength &&
		len(strings.TrimSpace(apiSecret)) == APIKeyLength
}

// EnsureAttribute returns the automater_product attribute, creating it when missing
func EnsureAttribute(ctx context.Context, store Store) (*woocommerce.Attribute, error) {
	attr, err := store.FindAttribute(ctx, AttributeSlug)
	if err == nil {
		return attr, nil
	}
	if !errors.Is(err, woocommerce.ErrNotFound) {
		return nil, fmt.Errorf("failed to find attribute: %w", err)
	}

	attr, err = store.CreateAttribute(ctx, woocommerce.Attribute{
		Name:        AttributeName,
		Slug:        AttributeSlug,
		Type:        "select",
		OrderBy:     "menu_order",
		HasArchives: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}
	return attr, nil
}

// Resolver maps WooCommerce products to Automater product IDs
type Resolver struct {
	attributeID int64
	slugByName  map[string]string
	slugs       map[string]struct{}
	// names shared by terms with different slugs
	ambiguous map[string]struct{}
}

func newResolver(attributeID int64) *Resolver {
	return &Resolver{
		attributeID: attributeID,
		slugByName:  make(map[string]string),
		slugs:       make(map[string]struct{}),
		ambiguous:   make(map[string]struct{}),
	}
}

func (r *Resolver) addTerms(terms []woocommerce.Term) {
	for _, term := range terms {
		r.slugs[term.Slug] = struct{}{}
		if slug, ok := r.slugByName[term.Name]; ok && slug != term.Slug {
			r.ambiguous[term.Name] = struct{}{}
			continue
		}
		r.slugByName[term.Name] = term.Slug
	}
}

// Ambiguous returns the term names that map to more than one Automater
// product. Products linked through these names are not resolved.
func (r *Resolver) Ambiguous() []string {
	names := make([]string, 0, len(r.ambiguous))
	for name := range r.ambiguous {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewResolver loads the attribute terms needed to resolve global attributes.
// A store without the attribute still resolves local attributes.
func NewResolver(ctx context.Context, store TermSource) (*Resolver, error) {
	r := newResolver(0)

	attr, err := store.FindAttribute(ctx, AttributeSlug)
	if errors.Is(err, woocommerce.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find attribute: %w", err)
	}
	r.attributeID = attr.ID

	terms, err := store.ListTerms(ctx, attr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute terms: %w", err)
	}
	r.addTerms(terms)
	return r, nil
}

// NewResolverFromTerms builds a resolver from already loaded terms
func NewResolverFromTerms(attributeID int64, terms []woocommerce.Term) *Resolver {
	r := newResolver(attributeID)
	r.addTerms(terms)
	return r
}

// Resolve returns the Automater product ID linked to a product. The first
// option of the attribute wins.
func (r *Resolver) Resolve(product woocommerce.Product) (automater.ID, bool) {
	for _, attr := range product.Attributes {
		if len(attr.Options) == 0 {
			continue
		}
		option := strings.TrimSpace(attr.Options[0])

		switch {
		case r.isGlobal(attr):
			if _, ok := r.ambiguous[option]; !ok {
				if slug, ok := r.slugByName[option]; ok {
					return automater.ID(slug), true
				}
			}
			// WooCommerce may already report the slug
			if _, ok := r.slugs[option]; ok {
				return automater.ID(option), true
			}
		case attr.ID == 0 && normalizeName(attr.Name) == AttributeSlug:
			if option != "" {
				return automater.ID(option), true
			}
		}
	}
	return "", false
}

func (r *Resolver) isGlobal(attr woocommerce.ProductAttribute) bool {
	if attr.ID == 0 {
		return false
	}
	if r.attributeID != 0 && attr.ID == r.attributeID {
		return true
	}
	return attr.Slug == woocommerce.TaxonomyPrefix+AttributeSlug
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}
