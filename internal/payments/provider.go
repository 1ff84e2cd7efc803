// Package payments abstracts the external processor that creates payment intents.
package payments

import "context"

// Provider creates payment intents with an external processor.
type Provider interface {
	Name() string

	// CreateIntent registers a charge of amount minor units and returns the processor's
	// intent id and the client secret the frontend confirms the payment with.
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (id, clientSecret string, err error)
}
