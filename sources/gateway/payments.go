package gateway

import (
	"context"
	"fmt"
	"net/http"
)

type CreatePaymentRequest struct {
	TelegramID     int64  `json:"tg_id"`
	SubscriptionID int64  `json:"subscription_id"`
	Provider       string `json:"provider"`
	PlanCode       string `json:"plan_code"`
}

func (g *Gateway) GetPaymentOptions(ctx context.Context, tgID, subscriptionID int64) (*PaymentOptions, error) {
	var result PaymentOptions
	err := g.do(ctx, requestSpec{
		op:     "payments.options",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/users/%d/subscriptions/%d/payment-options", tgID, subscriptionID),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePayment is idempotent on the backend: the same key replays the
// original result instead of charging twice.
func (g *Gateway) CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotencyKey string) (*Payment, error) {
	var result Payment
	err := g.do(ctx, requestSpec{
		op:             "payments.create",
		method:         http.MethodPost,
		path:           "/api/v1/payments",
		body:           req,
		idempotencyKey: idempotencyKey,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var result Payment
	err := g.do(ctx, requestSpec{
		op:     "payments.get",
		method: http.MethodGet,
		path:   "/api/v1/payments/" + paymentID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) GetPayments(ctx context.Context, tgID int64, page, perPage int) (*PaymentPage, error) {
	var result PaymentPage
	err := g.do(ctx, requestSpec{
		op:     "payments.list",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/users/%d/payments?page=%d&per_page=%d", tgID, page, perPage),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) CancelPayment(ctx context.Context, paymentID string) error {
	return g.do(ctx, requestSpec{
		op:     "payments.cancel",
		method: http.MethodPost,
		path:   "/api/v1/payments/" + paymentID + "/cancel",
	}, nil)
}
