package services

import (
	"context"
	"net/http"

	"github.com/Diwwy20/pp-food-client/internal/authclient"
)

type PaymentService struct {
	client *authclient.Client
}

func NewPaymentService(client *authclient.Client) *PaymentService {
	return &PaymentService{client: client}
}

// PaymentQR is the generated PromptPay-style payload the UI renders as a
// QR image.
type PaymentQR struct {
	QRCode string  `json:"qrCode"`
	Amount float64 `json:"amount"`
}

func (s *PaymentService) GenerateQR(ctx context.Context, amount float64) (*PaymentQR, error) {
	env, err := s.client.Do(ctx, http.MethodPost, "/payments/qr", map[string]float64{
		"amount": amount,
	})
	if err != nil {
		return nil, err
	}
	var qr PaymentQR
	if err := env.Decode(&qr); err != nil {
		return nil, err
	}
	return &qr, nil
}
