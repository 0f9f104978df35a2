package stripewebhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"quizzq-backend/internal/domain/entitlement"
	"quizzq-backend/internal/domain/plans"
	"quizzq-backend/internal/infra/stripeapi"
	"quizzq-backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
)

const maxBodyBytes = 65536

// PlanCatalog resolves a Stripe price id to a locally synced plan row.
type PlanCatalog interface {
	ByPriceID(priceID string) (*plans.Plan, bool)
}

// Handler ingests signed Stripe webhook deliveries and applies the matching
// entitlement transition. This endpoint has no session check: the signature
// is the sole authentication, computed over the exact raw bytes, so no body
// parsing middleware may run before it.
type Handler struct {
	Store  entitlement.Store
	Plans  PlanCatalog
	Stripe stripeapi.Client
	Secret string
	Log    *zap.SugaredLogger

	// now is swappable in tests.
	now func() time.Time
}

func New(store entitlement.Store, catalog PlanCatalog, client stripeapi.Client, secret string, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Store:  store,
		Plans:  catalog,
		Stripe: client,
		Secret: secret,
		Log:    log,
		now:    time.Now,
	}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	payload, err := readWebhookBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.Log.Warnw("webhook_signature_rejected", "error", err.Error())
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	eventType := string(event.Type)

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			metrics.WebhookEvents.WithLabelValues(eventType, "rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse checkout session"})
			return
		}
		if err := h.handleCheckoutCompleted(&session); err != nil {
			if errors.Is(err, entitlement.ErrDuplicateEvent) {
				// Stripe retried delivery; the grant already happened.
				h.Log.Infow("webhook_duplicate_session", "session_id", session.ID)
				metrics.WebhookEvents.WithLabelValues(eventType, "duplicate").Inc()
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			h.Log.Errorw("webhook_checkout_failed", "session_id", session.ID, "error", err.Error())
			metrics.WebhookEvents.WithLabelValues(eventType, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.WebhookEvents.WithLabelValues(eventType, "handled").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})

	case "customer.subscription.updated":
		sub, ok := h.parseSubscription(c, event.Data.Raw, eventType)
		if !ok {
			return
		}
		if err := h.handleSubscriptionUpdated(sub); err != nil {
			h.Log.Errorw("webhook_update_failed", "subscription_id", sub.ID, "error", err.Error())
			metrics.WebhookEvents.WithLabelValues(eventType, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.WebhookEvents.WithLabelValues(eventType, "handled").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})

	case "customer.subscription.deleted":
		sub, ok := h.parseSubscription(c, event.Data.Raw, eventType)
		if !ok {
			return
		}
		if err := h.handleSubscriptionDeleted(sub); err != nil {
			h.Log.Errorw("webhook_cancel_failed", "subscription_id", sub.ID, "error", err.Error())
			metrics.WebhookEvents.WithLabelValues(eventType, "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.WebhookEvents.WithLabelValues(eventType, "handled").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})

	default:
		// Acknowledge unknown event kinds; a non-2xx here would put Stripe
		// into a redelivery loop for events we never handle.
		metrics.WebhookEvents.WithLabelValues(eventType, "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *Handler) parseSubscription(c *gin.Context, raw json.RawMessage, eventType string) (*stripe.Subscription, bool) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil || sub.ID == "" {
		metrics.WebhookEvents.WithLabelValues(eventType, "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
		return nil, false
	}
	return &sub, true
}

// customerEmailFor resolves the processor-reported customer email for a
// subscription event. The payload carries only the customer handle, so this
// may cost one customer lookup.
func (h *Handler) customerEmailFor(sub *stripe.Subscription) (string, error) {
	if sub.Customer == nil || sub.Customer.ID == "" {
		return "", errors.New("subscription event missing customer")
	}
	if sub.Customer.Email != "" {
		return sub.Customer.Email, nil
	}
	return h.Stripe.CustomerEmail(sub.Customer.ID)
}

func snapshotOf(sub *stripe.Subscription) entitlement.Snapshot {
	var trialEnd *time.Time
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0)
		trialEnd = &t
	}
	return entitlement.Snapshot{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
		PeriodEnd:      time.Unix(sub.CurrentPeriodEnd, 0),
		TrialEnd:       trialEnd,
	}
}

func readWebhookBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
