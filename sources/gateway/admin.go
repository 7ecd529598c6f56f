package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type ExtendSubscriptionRequest struct {
	TelegramID     int64 `json:"tg_id"`
	SubscriptionID int64 `json:"subscription_id"`
	Days           int   `json:"days"`
}

type CreateSubscriptionRequest struct {
	TelegramID int64 `json:"tg_id"`
	ServiceID  int64 `json:"service_id"`
	Days       int   `json:"days"`
}

// SearchUser accepts either a numeric Telegram id or a username,
// the backend disambiguates.
func (g *Gateway) SearchUser(ctx context.Context, query string) (*AdminUser, error) {
	var result AdminUser
	err := g.do(ctx, requestSpec{
		op:     "admin.users.search",
		method: http.MethodGet,
		path:   "/api/v1/admin/users/search?query=" + url.QueryEscape(query),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) ExtendSubscription(ctx context.Context, req ExtendSubscriptionRequest) (*Subscription, error) {
	var result Subscription
	err := g.do(ctx, requestSpec{
		op:     "admin.subscriptions.extend",
		method: http.MethodPost,
		path:   "/api/v1/admin/subscriptions/extend",
		body:   req,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	var result Subscription
	err := g.do(ctx, requestSpec{
		op:     "admin.subscriptions.create",
		method: http.MethodPost,
		path:   "/api/v1/admin/subscriptions",
		body:   req,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetServiceState moves a service between running, paused and resumed.
// Action must be one of start, pause, resume.
func (g *Gateway) SetServiceState(ctx context.Context, serviceID int64, action string) error {
	return g.do(ctx, requestSpec{
		op:     "admin.services." + action,
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/v1/admin/services/%d/%s", serviceID, action),
	}, nil)
}

// GetBroadcastRecipients pages through recipient ids with an opaque
// cursor; an empty NextCursor means the last page.
func (g *Gateway) GetBroadcastRecipients(ctx context.Context, segment string, cursor string, limit int) (*RecipientsPage, error) {
	path := fmt.Sprintf("/api/v1/admin/broadcast/recipients?segment=%s&limit=%d", url.QueryEscape(segment), limit)
	if cursor != "" {
		path += "&cursor=" + url.QueryEscape(cursor)
	}

	var result RecipientsPage
	err := g.do(ctx, requestSpec{
		op:     "admin.broadcast.recipients",
		method: http.MethodGet,
		path:   path,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *Gateway) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	var result AdminStats
	err := g.do(ctx, requestSpec{
		op:     "admin.stats",
		method: http.MethodGet,
		path:   "/api/v1/admin/stats",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
