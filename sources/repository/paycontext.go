package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/redis/go-redis/v9"
)

const paymentContextTTL = 24 * time.Hour

// PaymentContext links a pending payment back to the chat message that
// shows its status, so a webhook arriving hours later can still edit
// the right message.
type PaymentContext struct {
	TelegramID     int64 `json:"tg_id"`
	SubscriptionID int64 `json:"subscription_id"`
	MessageID      int   `json:"message_id"`
}

type PaymentContextRepository struct {
	rdb    *redis.Client
	log    *tracing.Logger
	prefix string
}

func NewPaymentContextRepository(rdb *redis.Client, config *configuration.Config, log *tracing.Logger) *PaymentContextRepository {
	return &PaymentContextRepository{rdb: rdb, log: log, prefix: config.Redis.KeyPrefix}
}

func (r *PaymentContextRepository) key(paymentID string) string {
	return r.prefix + "payctx:" + paymentID
}

func (r *PaymentContextRepository) Set(ctx context.Context, paymentID string, data PaymentContext) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := r.rdb.Set(ctx, r.key(paymentID), raw, paymentContextTTL).Err(); err != nil {
		r.log.E("Failed to store payment context", tracing.PaymentId, paymentID, tracing.InnerError, err)
		return err
	}
	return nil
}

// Get returns (nil, nil) when no context is stored for the payment.
func (r *PaymentContextRepository) Get(ctx context.Context, paymentID string) (*PaymentContext, error) {
	raw, err := r.rdb.Get(ctx, r.key(paymentID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data PaymentContext
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// UpdateMessageID rewrites the stored context with a new message id,
// keeping the full TTL. Used when an edit fails and the status had to
// be re-sent as a fresh message.
func (r *PaymentContextRepository) UpdateMessageID(ctx context.Context, paymentID string, messageID int) error {
	data, err := r.Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	data.MessageID = messageID
	return r.Set(ctx, paymentID, *data)
}

func (r *PaymentContextRepository) Clear(ctx context.Context, paymentID string) error {
	return r.rdb.Del(ctx, r.key(paymentID)).Err()
}
