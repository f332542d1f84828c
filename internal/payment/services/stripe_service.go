package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

// StripeService wraps the Stripe API for card validation and charges.
type StripeService struct {
	client *client.API
	log    *logger.Logger
}

func parseStringToInt64(s string) int64 {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

func NewStripeService(secretKey string, log *logger.Logger) (*StripeService, error) {
	if secretKey == "" {
		log.Error("STRIPE", "Stripe secret key not configured")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	if sc == nil {
		log.Error("STRIPE", "Failed to initialize Stripe client")
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeService{
		client: sc,
		log:    log,
	}, nil
}

// ValidateCard checks card details with Stripe without charging.
func (s *StripeService) ValidateCard(card *models.CardDetails) (*models.CardValidationResponse, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(parseStringToInt64(card.ExpMonth)),
			ExpYear:  stripe.Int64(parseStringToInt64(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
		},
	}

	pm, err := s.client.PaymentMethods.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Card validation failed: %v", err))
		return &models.CardValidationResponse{
			Valid:   false,
			Message: err.Error(),
		}, nil
	}

	response := &models.CardValidationResponse{
		Valid:    true,
		Message:  "Card is valid",
		CardType: string(pm.Card.Brand),
		Last4:    pm.Card.Last4,
	}

	s.log.Info("VALIDATE", fmt.Sprintf("Card validation successful: %s ending in %s", response.CardType, response.Last4))

	// The payment method was only created for validation, drop it again.
	_, err = s.client.PaymentMethods.Detach(pm.ID, &stripe.PaymentMethodDetachParams{})
	if err != nil {
		s.log.Warn("STRIPE", fmt.Sprintf("Failed to detach payment method: %v", err))
	}

	return response, nil
}

// ChargeCard creates and confirms a payment intent for the attempt.
func (s *StripeService) ChargeCard(ctx context.Context, attemptID string, req *models.CardChargeRequest) (*models.CardChargeResponse, error) {
	s.log.Info("PROCESS", fmt.Sprintf("Charging card for invoice %d, amount: %.2f %s (attempt: %s)",
		req.InvoiceID, req.Amount, req.Currency, attemptID))

	if req.Amount <= 0 {
		s.log.Error("STRIPE", fmt.Sprintf("Invalid amount for invoice %d: %.2f", req.InvoiceID, req.Amount))
		return nil, fmt.Errorf("charge %.2f: %w", req.Amount, models.ErrInvalidAmount)
	}

	var paymentMethod string
	if req.Token != "" {
		paymentMethod = req.Token
	} else if req.Card != nil {
		pmParams := &stripe.PaymentMethodParams{
			Type: stripe.String("card"),
			Card: &stripe.PaymentMethodCardParams{
				Number:   stripe.String(req.Card.Number),
				ExpMonth: stripe.Int64(parseStringToInt64(req.Card.ExpMonth)),
				ExpYear:  stripe.Int64(parseStringToInt64(req.Card.ExpYear)),
				CVC:      stripe.String(req.Card.CVC),
			},
		}
		if req.Card.Name != "" {
			pmParams.BillingDetails = &stripe.PaymentMethodBillingDetailsParams{
				Name: stripe.String(req.Card.Name),
			}
		}
		pm, err := s.client.PaymentMethods.New(pmParams)
		if err != nil {
			s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment method: %v", err))
			return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
		}
		paymentMethod = pm.ID
		s.log.Info("STRIPE", fmt.Sprintf("Payment method created: %s (attempt: %s)", pm.ID, attemptID))
	} else {
		return nil, fmt.Errorf("%w: no payment method provided", ErrStripeAPIError)
	}

	// Stripe amounts are in the smallest currency unit.
	amountInCents := int64(req.Amount * 100)
	metadata := map[string]string{
		"attempt_id": attemptID,
		"invoice_id": strconv.FormatInt(req.InvoiceID, 10),
	}

	piParams := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(req.Currency),
		PaymentMethod:      stripe.String(paymentMethod),
		Description:        stripe.String(fmt.Sprintf("Hotel invoice %d", req.InvoiceID)),
		Metadata:           metadata,
		ConfirmationMethod: stripe.String("manual"),
		Confirm:            stripe.Bool(true),
		PaymentMethodTypes: []*string{stripe.String("card")},
	}

	pi, err := s.client.PaymentIntents.New(piParams)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.Info("STRIPE", fmt.Sprintf("Payment intent created: %s (attempt: %s)", pi.ID, attemptID))

	var status models.AttemptStatus
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = models.AttemptSucceeded
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresAction:
		status = models.AttemptPending
	default:
		status = models.AttemptFailed
		s.log.Error("STRIPE", fmt.Sprintf("Charge failed with status: %s (attempt: %s)", pi.Status, attemptID))
	}

	response := &models.CardChargeResponse{
		AttemptID:     attemptID,
		InvoiceID:     req.InvoiceID,
		Status:        status,
		Amount:        float64(pi.Amount) / 100.0,
		Currency:      string(pi.Currency),
		TransactionID: pi.ID,
	}

	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		charge, err := s.client.Charges.Get(pi.LatestCharge.ID, nil)
		if err == nil && charge.ReceiptURL != "" {
			response.ReceiptURL = charge.ReceiptURL
		}
	}

	return response, nil
}
