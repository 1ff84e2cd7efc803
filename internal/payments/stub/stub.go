// Package stub is an offline payment provider for development and tests. Client
// secrets are HMAC-signed so a fake checkout can verify what it was handed.
package stub

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const defaultSecret = "stub-secret"

type Provider struct {
	secret []byte
}

func New(secret string) *Provider {
	if secret == "" {
		secret = defaultSecret
	}
	return &Provider{secret: []byte(secret)}
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) CreateIntent(_ context.Context, amount int64, currency string, _ map[string]string) (string, string, error) {
	if amount <= 0 {
		return "", "", fmt.Errorf("amount must be positive, got %d", amount)
	}
	id := "pi_stub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return id, id + "_secret_" + p.sign(id, amount, currency), nil
}

// Verify reports whether clientSecret was issued by this provider for the given charge.
func (p *Provider) Verify(clientSecret string, amount int64, currency string) bool {
	id, sig, ok := strings.Cut(clientSecret, "_secret_")
	if !ok {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(p.sign(id, amount, currency)))
}

func (p *Provider) sign(id string, amount int64, currency string) string {
	mac := hmac.New(sha256.New, p.secret)
	fmt.Fprintf(mac, "%s:%d:%s", id, amount, strings.ToLower(currency))
	return hex.EncodeToString(mac.Sum(nil))
}
