package payments

import (
	"fmt"

	"contesthub/internal/config"
	"contesthub/internal/payments/stripe"
	"contesthub/internal/payments/stub"
)

// NewProvider builds the configured provider. It returns nil when payments are disabled.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case config.PaymentNone, "":
		return nil, nil
	case config.PaymentStub:
		return stub.New(cfg.PaymentSecretKey), nil
	case config.PaymentStripe:
		return stripe.New(cfg.PaymentSecretKey), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}
