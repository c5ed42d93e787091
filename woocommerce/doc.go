// Package woocommerce provides a small client for the WooCommerce REST API
// (wc/v3), covering the pieces the synchroniser touches: products and their
// stock, product attributes and terms, and orders with their notes and
// metadata.
//
// Authentication uses the consumer key and secret over HTTP basic auth, so
// the store must be served over HTTPS.
package woocommerce
