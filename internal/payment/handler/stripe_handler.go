package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ms-hotel/internal/kafka"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/payment/services"
	"ms-hotel/internal/payment/storage"
	"ms-hotel/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeHandler struct {
	stripeService *services.StripeService
	attemptStore  storage.Store
	producer      *kafka.Producer
	webhookSecret string
	logger        *logger.Logger
}

func NewStripeHandler(stripeService *services.StripeService, attemptStore storage.Store, producer *kafka.Producer, webhookSecret string, logger *logger.Logger) *StripeHandler {
	return &StripeHandler{
		stripeService: stripeService,
		attemptStore:  attemptStore,
		producer:      producer,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// ValidateCard checks card details without creating a charge.
func (h *StripeHandler) ValidateCard(c *gin.Context) {
	var req models.CardValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	result, err := h.stripeService.ValidateCard(&req.Card)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Card validation failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Card validation result", result))
}

// ChargeCard runs a card charge for an invoice. The attempt is recorded
// before the Stripe call so a crash mid-charge leaves an auditable row,
// and a succeeded charge is streamed to Kafka for the core to settle.
func (h *StripeHandler) ChargeCard(c *gin.Context) {
	var req models.CardChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	if req.Currency == "" {
		req.Currency = "usd"
	}
	if req.Token == "" && req.Card == nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", "Either token or card must be provided"))
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", fmt.Sprintf("amount must be positive, got %.2f", req.Amount)))
		return
	}

	attempt := &models.PaymentAttempt{
		AttemptID: utils.GenerateAttemptID(),
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    models.AttemptPending,
		CreatedAt: time.Now(),
	}
	if err := h.attemptStore.SaveAttempt(attempt); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Could not record payment attempt", err.Error()))
		return
	}

	result, err := h.stripeService.ChargeCard(c.Request.Context(), attempt.AttemptID, &req)
	if err != nil {
		attempt.Status = models.AttemptFailed
		if updateErr := h.attemptStore.UpdateAttempt(attempt); updateErr != nil {
			h.logger.Error("PAYMENT", fmt.Sprintf("Failed to mark attempt %s failed: %v", attempt.AttemptID, updateErr))
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Payment processing failed", err.Error()))
		return
	}

	attempt.Status = result.Status
	attempt.TransactionID = result.TransactionID
	attempt.ReceiptURL = result.ReceiptURL
	if err := h.attemptStore.UpdateAttempt(attempt); err != nil {
		h.logger.Error("PAYMENT", fmt.Sprintf("Failed to update attempt %s: %v", attempt.AttemptID, err))
	}

	if result.Status == models.AttemptSucceeded {
		h.publishSucceeded(attempt)
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment processed", map[string]interface{}{
		"charge_result": result,
		"attempt":       attempt,
	}))
}

func (h *StripeHandler) publishSucceeded(attempt *models.PaymentAttempt) {
	event := models.CardPaymentEvent{
		AttemptID: attempt.AttemptID,
		InvoiceID: attempt.InvoiceID,
		Amount:    attempt.Amount,
		Timestamp: time.Now(),
	}
	if err := h.producer.PublishCardPaymentSucceeded(event); err != nil {
		h.logger.Error("KAFKA", fmt.Sprintf("Failed to publish card payment event: %v", err))
	} else {
		h.logger.LogKafka("PUBLISH", kafka.TopicCardPayments, fmt.Sprintf("attempt %s for invoice %d", attempt.AttemptID, attempt.InvoiceID))
	}
}

// HandleWebhook settles attempts that were still pending when the charge
// returned. Stripe confirms asynchronously via payment_intent events, so
// this is the authoritative path for processing and 3DS flows.
func (h *StripeHandler) HandleWebhook(c *gin.Context) {
	if h.webhookSecret == "" {
		h.logger.Error("WEBHOOK", "Stripe webhook secret is not configured")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Webhook processing error", "webhook secret not configured"))
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid webhook payload", err.Error()))
		return
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret, opts)
	if err != nil {
		h.logger.Error("WEBHOOK", fmt.Sprintf("Signature verification failed: %v", err))
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid webhook signature", err.Error()))
		return
	}

	h.logger.Info("WEBHOOK", fmt.Sprintf("Processing Stripe event: %s", event.Type))

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid event data", err.Error()))
			return
		}

		attemptID, ok := intent.Metadata["attempt_id"]
		if !ok {
			h.logger.Error("WEBHOOK", fmt.Sprintf("Payment intent %s has no attempt_id in metadata", intent.ID))
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid payment intent data", "missing attempt_id metadata"))
			return
		}

		attempt, err := h.attemptStore.GetAttempt(attemptID)
		if err != nil {
			c.JSON(utils.HTTPStatus(err), utils.ErrorResponse("Attempt not found", err.Error()))
			return
		}

		// Attempts already settled by the synchronous charge path are
		// left alone so the Kafka event is not emitted twice.
		if attempt.Status != models.AttemptPending {
			c.JSON(http.StatusOK, utils.SuccessResponse("Attempt already settled", attempt))
			return
		}

		if event.Type == "payment_intent.succeeded" {
			attempt.Status = models.AttemptSucceeded
		} else {
			attempt.Status = models.AttemptFailed
		}
		attempt.TransactionID = intent.ID
		if err := h.attemptStore.UpdateAttempt(attempt); err != nil {
			h.logger.Error("WEBHOOK", fmt.Sprintf("Failed to update attempt %s: %v", attemptID, err))
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Could not update attempt", err.Error()))
			return
		}

		if attempt.Status == models.AttemptSucceeded {
			h.publishSucceeded(attempt)
		}
		c.JSON(http.StatusOK, utils.SuccessResponse("Webhook processed", attempt))

	default:
		c.JSON(http.StatusOK, utils.SuccessResponse("Event ignored", nil))
	}
}

func (h *StripeHandler) GetAttempt(c *gin.Context) {
	attempt, err := h.attemptStore.GetAttempt(c.Param("attemptId"))
	if err != nil {
		c.JSON(utils.HTTPStatus(err), utils.ErrorResponse("Attempt not found", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment attempt", attempt))
}

func (h *StripeHandler) ListAttempts(c *gin.Context) {
	invoiceID, err := strconv.ParseInt(c.Param("invoiceId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid invoice id", err.Error()))
		return
	}

	limit := 50
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			offset = parsed
		}
	}

	attempts, err := h.attemptStore.ListAttemptsByInvoice(invoiceID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Could not list attempts", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment attempts", attempts))
}
