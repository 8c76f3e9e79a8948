package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
)

// Ensure StripeProvider implements the Provider interface
var _ Provider = (*StripeProvider)(nil)

// StripeProvider implements Provider for Stripe.
type StripeProvider struct {
	apiKey string
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		apiKey: apiKey,
	}
}

// CreatePaymentIntent creates a new payment intent in Stripe
// This supports credit cards, Apple Pay, and Google Pay automatically through Stripe's Payment Element.
func (s *StripeProvider) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return pi.ID, pi.ClientSecret, nil
}

// GetPaymentStatus retrieves the current status of a payment intent.
func (s *StripeProvider) GetPaymentStatus(paymentReference string) (string, error) {
	pi, err := paymentintent.Get(paymentReference, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get payment intent: %w", err)
	}

	return string(pi.Status), nil
}

// RefundPayment creates a refund for a payment
// If amount is nil, it refunds the full amount.
func (s *StripeProvider) RefundPayment(paymentReference string, amount *int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentReference),
	}

	if amount != nil {
		params.Amount = stripe.Int64(*amount)
	}

	_, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	return nil
}
