package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"contesthub/internal/access"
	apperrors "contesthub/internal/errors"
	"contesthub/internal/payments"
)

var minorUnits = decimal.NewFromInt(100)

// PaymentIntent is what the client needs to confirm a charge.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentService delegates charges to the external payment processor.
type PaymentService interface {
	CreateIntent(ctx context.Context, caller access.Caller, price decimal.Decimal) (*PaymentIntent, error)
}

type paymentService struct {
	provider payments.Provider
	currency string
	log      *logrus.Entry
}

// NewPaymentService builds the payment service. A nil provider makes every request
// fail with Unavailable.
func NewPaymentService(provider payments.Provider, currency string, log *logrus.Entry) PaymentService {
	return &paymentService{provider: provider, currency: strings.ToLower(currency), log: log}
}

func (s *paymentService) CreateIntent(ctx context.Context, caller access.Caller, price decimal.Decimal) (*PaymentIntent, error) {
	if err := access.Permit(access.OpCreatePaymentIntent, caller); err != nil {
		return nil, err
	}
	amount := price.Mul(minorUnits).Round(0).IntPart()
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if s.provider == nil {
		return nil, apperrors.ErrPaymentUnavailable
	}

	id, secret, err := s.provider.CreateIntent(ctx, amount, s.currency, map[string]string{"email": caller.Email})
	if err != nil {
		s.log.WithError(err).WithField("provider", s.provider.Name()).Error("create payment intent failed")
		return nil, apperrors.Wrap(apperrors.KindUnavailable, apperrors.ErrPaymentUnavailable.Message, err)
	}
	return &PaymentIntent{ID: id, ClientSecret: secret, Amount: amount, Currency: s.currency}, nil
}
