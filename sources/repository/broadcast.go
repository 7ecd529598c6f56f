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

const broadcastDraftTTL = time.Hour

// BroadcastDraft is an admin's in-progress broadcast. Short TTL: a
// draft abandoned for an hour is gone.
type BroadcastDraft struct {
	Text    string `json:"text"`
	Segment string `json:"segment"`
}

type BroadcastRepository struct {
	rdb    *redis.Client
	log    *tracing.Logger
	prefix string
}

func NewBroadcastRepository(rdb *redis.Client, config *configuration.Config, log *tracing.Logger) *BroadcastRepository {
	return &BroadcastRepository{rdb: rdb, log: log, prefix: config.Redis.KeyPrefix}
}

func (r *BroadcastRepository) key(adminID int64) string {
	return fmt.Sprintf("%sbcast:%d:draft", r.prefix, adminID)
}

func (r *BroadcastRepository) SetDraft(ctx context.Context, adminID int64, draft BroadcastDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	if err := r.rdb.Set(ctx, r.key(adminID), raw, broadcastDraftTTL).Err(); err != nil {
		r.log.E("Failed to store broadcast draft", tracing.UserId, adminID, tracing.InnerError, err)
		return err
	}
	return nil
}

// GetDraft returns (nil, nil) when the admin has no draft.
func (r *BroadcastRepository) GetDraft(ctx context.Context, adminID int64) (*BroadcastDraft, error) {
	raw, err := r.rdb.Get(ctx, r.key(adminID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var draft BroadcastDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *BroadcastRepository) ClearDraft(ctx context.Context, adminID int64) error {
	return r.rdb.Del(ctx, r.key(adminID)).Err()
}
