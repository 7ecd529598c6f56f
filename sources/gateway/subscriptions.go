package gateway

import (
	"context"
	"fmt"
	"net/http"
)

func (g *Gateway) GetSubscriptions(ctx context.Context, tgID int64, page, perPage int) (*SubscriptionPage, error) {
	var result SubscriptionPage
	err := g.do(ctx, requestSpec{
		op:     "subscriptions.list",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/users/%d/subscriptions?page=%d&per_page=%d", tgID, page, perPage),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) GetSubscription(ctx context.Context, tgID, subscriptionID int64) (*Subscription, error) {
	var result Subscription
	err := g.do(ctx, requestSpec{
		op:     "subscriptions.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/users/%d/subscriptions/%d", tgID, subscriptionID),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) GetService(ctx context.Context, serviceID int64) (*Service, error) {
	var result Service
	err := g.do(ctx, requestSpec{
		op:     "services.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/services/%d", serviceID),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) GetServices(ctx context.Context) ([]Service, error) {
	var result []Service
	err := g.do(ctx, requestSpec{
		op:     "services.list",
		method: http.MethodGet,
		path:   "/api/v1/services",
	}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}
