// Package orders forwards WooCommerce order events to Automater.pl.
//
// A placed order becomes an Automater cart, a paid order becomes a payment
// for that cart. Every outcome is reported back as a private order note and
// the cart ID and payment state are kept in order metadata, so repeated
// events for the same order are harmless.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/automater-sync/automater"
	"github.com/s0up4200/automater-sync/catalog"
	"github.com/s0up4200/automater-sync/woocommerce"
)

// Order metadata keys
const (
	MetaCartID = "automater_cart_id"
	MetaPaid   = "automater_paid"
)

const noteSeparator = "<br>"

// Outcome describes what happened to an order event
type Outcome string

const (
	// OutcomeCreated means an Automater cart was created
	OutcomeCreated Outcome = "created"
	// OutcomePaid means the cart payment was posted
	OutcomePaid Outcome = "paid"
	// OutcomeRejected means nothing could be sent or Automater refused it
	OutcomeRejected Outcome = "rejected"
	// OutcomeSkipped means the order needed no work
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDryRun means the request was only logged
	OutcomeDryRun Outcome = "dry_run"
)

// Automater is the part of the Automater API used for orders
type Automater interface {
	AvailableCodes(ctx context.Context, id automater.ID) (int, error)
	CreateTransaction(ctx context.Context, req automater.TransactionRequest) (*automater.TransactionResponse, error)
	CreatePayment(ctx context.Context, cartID automater.ID, req automater.PaymentRequest) (*automater.PaymentResponse, error)
}

// Store is the part of the WooCommerce API used for orders
type Store interface {
	catalog.TermSource
	GetOrder(ctx context.Context, id int64) (*woocommerce.Order, error)
	GetProduct(ctx context.Context, id int64) (*woocommerce.Product, error)
	UpdateOrderMeta(ctx context.Context, id int64, key, value string) error
	AddOrderNote(ctx context.Context, id int64, note string) error
}

var (
	_ Automater = (*automater.Client)(nil)
	_ Store     = (*woocommerce.Client)(nil)
)

// Config holds the settings of a Processor
type Config struct {
	// ShopName appears in the transaction label
	ShopName string
	// Language of the messages Automater sends to the buyer
	Language automater.Language
	// DryRun logs requests instead of sending them
	DryRun bool
}

// Result reports what an order event did
type Result struct {
	Outcome Outcome
	CartID  automater.ID
	Notes   []string
}

// Processor handles order events
type Processor struct {
	automater Automater
	store     Store
	cfg       Config
	logger    zerolog.Logger
}

// NewProcessor creates a new order processor
func NewProcessor(a Automater, store Store, cfg Config, logger zerolog.Logger) *Processor {
	if cfg.Language == "" {
		cfg.Language = automater.LanguageEN
	}
	return &Processor{
		automater: a,
		store:     store,
		cfg:       cfg,
		logger:    logger.With().Str("component", "orders").Logger(),
	}
}

// cartLine is an Automater product aggregated over order lines
type cartLine struct {
	id       automater.ID
	quantity int
	price    float64
}

// OrderPlaced creates an Automater cart for the linked products of an order
func (p *Processor) OrderPlaced(ctx context.Context, orderID int64) (*Result, error) {
	log := p.logger.With().Int64("order_id", orderID).Logger()
	log.Info().Msg("Order has been placed")

	order, err := p.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	if cartID := order.Meta(MetaCartID); cartID != "" {
		log.Debug().Str("cart_id", cartID).Msg("Order already has a cart, skipping")
		return &Result{Outcome: OutcomeSkipped, CartID: automater.ID(cartID)}, nil
	}

	resolver, err := catalog.NewResolver(ctx, p.store)
	if err != nil {
		return nil, err
	}
	if names := resolver.Ambiguous(); len(names) > 0 {
		log.Warn().Strs("names", names).Msg("Attribute terms share a name, products linked by these names are not resolved")
	}

	notes := []string{"Automater.pl codes:"}
	lines := p.collectLines(ctx, order, resolver, &notes)
	lines = p.checkStock(ctx, lines, &notes)

	result := &Result{Outcome: OutcomeRejected}
	if len(lines) == 0 {
		log.Info().Msg("No Automater products to send")
		result.Notes = notes
		return result, p.addNote(ctx, order.ID, notes)
	}

	req := p.transactionRequest(order, lines)
	if p.cfg.DryRun {
		log.Info().
			Int("products", len(req.Products)).
			Str("email", req.Email).
			Str("label", req.Custom).
			Msg("Dry run: would create Automater transaction")
		result.Outcome = OutcomeDryRun
		result.Notes = notes
		return result, nil
	}

	resp, err := p.automater.CreateTransaction(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create Automater transaction")
		notes = append(notes, errorNote(err))
		result.Notes = notes
		return result, p.addNote(ctx, order.ID, notes)
	}

	var metaErr error
	if resp.CartID != "" {
		result.Outcome = OutcomeCreated
		result.CartID = resp.CartID
		if err := p.store.UpdateOrderMeta(ctx, order.ID, MetaCartID, resp.CartID.String()); err != nil {
			metaErr = fmt.Errorf("failed to store cart id: %w", err)
		}
		notes = append(notes, fmt.Sprintf("Created cart number: %s", resp.CartID))
		log.Info().Str("cart_id", resp.CartID.String()).Msg("Created Automater cart")
	}

	result.Notes = notes
	if err := p.addNote(ctx, order.ID, notes); err != nil {
		return result, err
	}
	return result, metaErr
}

// collectLines resolves order lines to Automater products, summing the
// quantity of lines that point at the same product
func (p *Processor) collectLines(ctx context.Context, order *woocommerce.Order, resolver *catalog.Resolver, notes *[]string) []cartLine {
	var lines []cartLine
	index := make(map[automater.ID]int)

	for _, item := range order.LineItems {
		product, err := p.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			*notes = append(*notes, fmt.Sprintf("%s: %s [%d]", err, item.Name, item.ID))
			continue
		}

		id, ok := resolver.Resolve(*product)
		if !ok {
			*notes = append(*notes, fmt.Sprintf("Product not managed by automater: %s [%d]", item.Name, item.ID))
			continue
		}
		if item.Quantity <= 0 {
			*notes = append(*notes, fmt.Sprintf("Invalid quantity of product: %s [%d]", item.Name, item.ID))
			continue
		}

		if i, ok := index[id]; ok {
			lines[i].quantity += item.Quantity
			continue
		}

		price, err := product.PriceValue()
		if err != nil {
			*notes = append(*notes, fmt.Sprintf("%s: %s [%d]", err, item.Name, item.ID))
			continue
		}
		index[id] = len(lines)
		lines = append(lines, cartLine{id: id, quantity: item.Quantity, price: price})
	}
	return lines
}

// checkStock drops products without codes and caps quantities to the
// number of codes left
func (p *Processor) checkStock(ctx context.Context, lines []cartLine, notes *[]string) []cartLine {
	kept := lines[:0]
	for _, line := range lines {
		count, err := p.automater.AvailableCodes(ctx, line.id)
		if err != nil {
			*notes = append(*notes, fmt.Sprintf("%s: %s", apiMessage(err), line.id))
			continue
		}
		if count <= 0 {
			*notes = append(*notes, fmt.Sprintf("No codes for ID: %s", line.id))
			continue
		}
		if count < line.quantity {
			*notes = append(*notes, fmt.Sprintf("Not enough codes for ID, sent less: %s", line.id))
			line.quantity = count
		}
		kept = append(kept, line)
	}
	return kept
}

func (p *Processor) transactionRequest(order *woocommerce.Order, lines []cartLine) automater.TransactionRequest {
	products := make([]automater.TransactionProduct, 0, len(lines))
	for _, line := range lines {
		products = append(products, automater.TransactionProduct{
			ID:       line.id,
			Quantity: line.quantity,
			Price:    line.price,
			Currency: order.Currency,
		})
	}

	email := strings.TrimSpace(order.Billing.Email)
	return automater.TransactionRequest{
		Products:        products,
		Email:           email,
		Phone:           strings.TrimSpace(order.Billing.Phone),
		Language:        p.cfg.Language,
		SendStatusEmail: email != "",
		Custom:          fmt.Sprintf("Order from %s, id: #%s", p.cfg.ShopName, order.DisplayNumber()),
	}
}

// OrderPaid posts the payment for the cart created when the order was placed
func (p *Processor) OrderPaid(ctx context.Context, orderID int64) (*Result, error) {
	log := p.logger.With().Int64("order_id", orderID).Logger()
	log.Info().Msg("Payment has been received")

	order, err := p.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	cartID := automater.ID(order.Meta(MetaCartID))
	if cartID == "" {
		log.Debug().Msg("Order has no Automater cart, skipping")
		return &Result{Outcome: OutcomeSkipped}, nil
	}
	if order.Meta(MetaPaid) == "yes" {
		log.Debug().Str("cart_id", cartID.String()).Msg("Cart already paid, skipping")
		return &Result{Outcome: OutcomeSkipped, CartID: cartID}, nil
	}

	amount, err := order.Subtotal()
	if err != nil {
		return nil, err
	}

	description := order.PaymentMethodTitle
	if description == "" {
		description = order.PaymentMethod
	}
	req := automater.PaymentRequest{
		PaymentID:   strconv.FormatInt(order.ID, 10),
		Amount:      amount,
		Currency:    order.Currency,
		Description: description,
	}

	result := &Result{Outcome: OutcomeRejected, CartID: cartID}
	notes := []string{"Automater.pl codes:"}

	if p.cfg.DryRun {
		log.Info().
			Str("cart_id", cartID.String()).
			Float64("amount", amount).
			Str("currency", req.Currency).
			Msg("Dry run: would post Automater payment")
		result.Outcome = OutcomeDryRun
		result.Notes = notes
		return result, nil
	}

	var metaErr error
	if _, err := p.automater.CreatePayment(ctx, cartID, req); err != nil {
		log.Warn().Err(err).Str("cart_id", cartID.String()).Msg("Failed to post Automater payment")
		notes = append(notes, errorNote(err))
	} else {
		result.Outcome = OutcomePaid
		notes = append(notes, fmt.Sprintf("Automater.pl - paid successfully: %s", cartID))
		if err := p.store.UpdateOrderMeta(ctx, order.ID, MetaPaid, "yes"); err != nil {
			metaErr = fmt.Errorf("failed to mark order paid: %w", err)
		}
		log.Info().Str("cart_id", cartID.String()).Msg("Automater cart paid")
	}

	result.Notes = notes
	if err := p.addNote(ctx, order.ID, notes); err != nil {
		return result, err
	}
	return result, metaErr
}

func (p *Processor) addNote(ctx context.Context, orderID int64, notes []string) error {
	note := strings.Join(notes, noteSeparator)
	p.logger.Debug().Int64("order_id", orderID).Str("note", note).Msg("Adding order note")
	if err := p.store.AddOrderNote(ctx, orderID, note); err != nil {
		return fmt.Errorf("failed to add note to order %d: %w", orderID, err)
	}
	return nil
}

// errorNote renders an Automater error as an order note line
func errorNote(err error) string {
	switch {
	case errors.Is(err, automater.ErrUnauthorized):
		return "Automater.pl: Invalid API key"
	case errors.Is(err, automater.ErrTooManyRequests):
		return "Automater.pl: Too many requests to Automater: " + apiMessage(err)
	case errors.Is(err, automater.ErrNotFound):
		return "Automater.pl: Not found - invalid params"
	default:
		return "Automater.pl: " + apiMessage(err)
	}
}

// apiMessage prefers the message returned by Automater over the wrapped error text
func apiMessage(err error) string {
	var apiErr *automater.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
