package payment

// Provider abstracts the payment processor used for experience checkout.
// CreatePaymentIntent returns the provider reference and the client secret
// the frontend needs to collect payment. Amounts are in the currency's
// smallest unit.
type Provider interface {
	CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (string, string, error)
	GetPaymentStatus(paymentReference string) (string, error)
	RefundPayment(paymentReference string, amount *int64) error
}
