package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/redis/go-redis/v9"
)

// Conversation states. The zero value is Idle on purpose: a missing or
// expired session behaves as a fresh one.
const (
	StateIdle = iota
	StateSubscriptionsList
	StateSubscriptionDetail
	StatePaymentMethodSelect
	StatePaymentPending
	StatePaymentsHistory
	StatePaymentDetail
	StateLanguageSelect
	StateFAQ
	StateAdminMain
	StateAdminBroadcastText
	StateAdminBroadcastSegment
	StateAdminBroadcastPreview
	StateAdminUserSearch
)

func StateName(state int) string {
	switch state {
	case StateIdle:
		return "idle"
	case StateSubscriptionsList:
		return "subscriptions_list"
	case StateSubscriptionDetail:
		return "subscription_detail"
	case StatePaymentMethodSelect:
		return "payment_method_select"
	case StatePaymentPending:
		return "payment_pending"
	case StatePaymentsHistory:
		return "payments_history"
	case StatePaymentDetail:
		return "payment_detail"
	case StateLanguageSelect:
		return "language_select"
	case StateFAQ:
		return "faq"
	case StateAdminMain:
		return "admin_main"
	case StateAdminBroadcastText:
		return "admin_broadcast_text"
	case StateAdminBroadcastSegment:
		return "admin_broadcast_segment"
	case StateAdminBroadcastPreview:
		return "admin_broadcast_preview"
	case StateAdminUserSearch:
		return "admin_user_search"
	default:
		return "unknown"
	}
}

const sessionTTL = 24 * time.Hour

// SessionData is everything the conversation needs to survive a
// restart: the state plus the identifiers the state refers to.
type SessionData struct {
	State          int       `json:"state"`
	SubscriptionID int64     `json:"subscription_id,omitempty"`
	PaymentID      string    `json:"payment_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SessionsRepository struct {
	rdb    *redis.Client
	log    *tracing.Logger
	prefix string
}

func NewSessionsRepository(rdb *redis.Client, config *configuration.Config, log *tracing.Logger) *SessionsRepository {
	return &SessionsRepository{rdb: rdb, log: log, prefix: config.Redis.KeyPrefix}
}

func (r *SessionsRepository) key(tgID int64) string {
	return fmt.Sprintf("%ssess:%d", r.prefix, tgID)
}

// Get returns the stored session, or a fresh Idle one when nothing is
// stored. Redis failures degrade to Idle as well so a cache outage
// never blocks the conversation.
func (r *SessionsRepository) Get(ctx context.Context, tgID int64) SessionData {
	raw, err := r.rdb.Get(ctx, r.key(tgID)).Result()
	if errors.Is(err, redis.Nil) {
		return SessionData{State: StateIdle}
	}
	if err != nil {
		r.log.W("Failed to load session, assuming idle", tracing.UserId, tgID, tracing.InnerError, err)
		return SessionData{State: StateIdle}
	}

	var data SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		r.log.W("Failed to decode session, assuming idle", tracing.UserId, tgID, tracing.InnerError, err)
		return SessionData{State: StateIdle}
	}
	return data
}

func (r *SessionsRepository) Set(ctx context.Context, tgID int64, data SessionData) error {
	data.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := r.rdb.Set(ctx, r.key(tgID), raw, sessionTTL).Err(); err != nil {
		r.log.E("Failed to store session",
			tracing.UserId, tgID,
			tracing.SessionState, StateName(data.State),
			tracing.InnerError, err,
		)
		return err
	}
	return nil
}

func (r *SessionsRepository) Clear(ctx context.Context, tgID int64) error {
	return r.rdb.Del(ctx, r.key(tgID)).Err()
}
