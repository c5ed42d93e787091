// Package webhook receives WooCommerce webhook deliveries and turns order
// events into Automater transactions and payments.
//
// Deliveries are verified with the X-WC-Webhook-Signature header, the base64
// encoded HMAC-SHA256 of the raw body keyed with the webhook secret. Verified
// deliveries are acknowledged with 202 right away and processed on a bounded
// worker pool.
//
// # Routes
//
//	POST /webhooks/woocommerce  order.created and order.updated deliveries
//	GET  /healthz               liveness probe
//	GET  /metrics               Prometheus metrics
package webhook
