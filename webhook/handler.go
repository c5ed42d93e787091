package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/s0up4200/automater-sync/metrics"
	"github.com/s0up4200/automater-sync/orders"
)

// WooCommerce webhook headers
const (
	HeaderTopic     = "X-WC-Webhook-Topic"
	HeaderSignature = "X-WC-Webhook-Signature"
	HeaderDelivery  = "X-WC-Webhook-Delivery-ID"
)

// Order topics
const (
	TopicOrderCreated = "order.created"
	TopicOrderUpdated = "order.updated"
)

// orderPayload is the part of an order delivery we need
type orderPayload struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Sign returns the signature WooCommerce sends for body
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Server) verify(body []byte, signature string) bool {
	if s.cfg.Secret == "" {
		return true
	}
	expected := Sign(body, s.cfg.Secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Server) handleWooCommerce(c *gin.Context) {
	topic := c.GetHeader(HeaderTopic)
	log := s.logger.With().
		Str("topic", topic).
		Str("delivery_id", c.GetHeader(HeaderDelivery)).
		Logger()

	body, err := c.GetRawData()
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(topicLabel(topic), "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	// WooCommerce pings a new webhook without a topic or a signature. A
	// ping starts no work, so it is answered before verification.
	if topic == "" {
		metrics.WebhookDeliveries.WithLabelValues("ping", "accepted").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
		return
	}

	if !s.verify(body, c.GetHeader(HeaderSignature)) {
		log.Warn().Msg("Rejected webhook with invalid signature")
		metrics.WebhookDeliveries.WithLabelValues(topicLabel(topic), "rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	if topic != TopicOrderCreated && topic != TopicOrderUpdated {
		log.Debug().Msg("Ignoring webhook topic")
		metrics.WebhookDeliveries.WithLabelValues("other", "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	var payload orderPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID <= 0 {
		log.Warn().Err(err).Msg("Invalid order payload")
		metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
		return
	}

	var (
		kind string
		run  func(ctx context.Context, orderID int64) (*orders.Result, error)
	)
	switch {
	case topic == TopicOrderCreated:
		kind, run = "placed", s.orders.OrderPlaced
	case s.isPaid(payload.Status):
		kind, run = "paid", s.orders.OrderPaid
	default:
		log.Debug().Int64("order_id", payload.ID).Str("status", payload.Status).Msg("Order status does not trigger payment")
		metrics.WebhookDeliveries.WithLabelValues(topic, "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	// Events of one order run in delivery order on a single worker
	err = s.pool.SubmitKey(payload.ID, s.orderJob(kind, payload.ID, run))
	if err != nil {
		log.Error().Err(err).Int64("order_id", payload.ID).Msg("Failed to queue order event")
		metrics.WebhookDeliveries.WithLabelValues(topic, "rejected").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(topic, "accepted").Inc()
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "order_id": payload.ID})
}

func (s *Server) orderJob(kind string, orderID int64, run func(context.Context, int64) (*orders.Result, error)) Job {
	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()

		result, err := run(ctx, orderID)
		if err != nil {
			s.logger.Error().Err(err).Str("kind", kind).Int64("order_id", orderID).Msg("Order event failed")
			metrics.OrderEvents.WithLabelValues(kind, "error").Inc()
			return
		}

		s.logger.Info().
			Str("kind", kind).
			Int64("order_id", orderID).
			Str("outcome", string(result.Outcome)).
			Msg("Order event processed")
		metrics.OrderEvents.WithLabelValues(kind, string(result.Outcome)).Inc()
	}
}

// topicLabel keeps metric cardinality bounded for unverified input
func topicLabel(topic string) string {
	switch topic {
	case TopicOrderCreated, TopicOrderUpdated:
		return topic
	case "":
		return "ping"
	default:
		return "other"
	}
}
