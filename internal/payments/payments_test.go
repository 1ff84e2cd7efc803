package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contesthub/internal/config"
	"contesthub/internal/payments/stub"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantName string
		wantErr  bool
	}{
		{name: "disabled", provider: config.PaymentNone},
		{name: "stub", provider: config.PaymentStub, wantName: "stub"},
		{name: "stripe", provider: config.PaymentStripe, wantName: "stripe"},
		{name: "unknown", provider: "paypal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(&config.Config{PaymentProvider: tt.provider, PaymentSecretKey: "sk_test_x"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, p)
				return
			}
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestStubProvider(t *testing.T) {
	p := stub.New("secret")

	id, secret, err := p.CreateIntent(context.Background(), 1050, "usd", nil)
	require.NoError(t, err)
	assert.Contains(t, secret, id)
	assert.True(t, p.Verify(secret, 1050, "usd"))
	assert.False(t, p.Verify(secret, 1051, "usd"))
	assert.False(t, stub.New("other").Verify(secret, 1050, "usd"))

	_, _, err = p.CreateIntent(context.Background(), 0, "usd", nil)
	assert.Error(t, err)
}
