package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/redis/go-redis/v9"
)

const languageTTL = 24 * time.Hour

// LanguageRepository caches the user's chosen language so every inbound
// update does not cost a backend round trip. The backend stays the
// source of truth.
type LanguageRepository struct {
	rdb    *redis.Client
	log    *tracing.Logger
	prefix string
}

func NewLanguageRepository(rdb *redis.Client, config *configuration.Config, log *tracing.Logger) *LanguageRepository {
	return &LanguageRepository{rdb: rdb, log: log, prefix: config.Redis.KeyPrefix}
}

func (r *LanguageRepository) key(tgID int64) string {
	return fmt.Sprintf("%slang:%d", r.prefix, tgID)
}

// Get returns "" when no language is cached.
func (r *LanguageRepository) Get(ctx context.Context, tgID int64) string {
	lang, err := r.rdb.Get(ctx, r.key(tgID)).Result()
	if errors.Is(err, redis.Nil) {
		return ""
	}
	if err != nil {
		r.log.W("Failed to read cached language", tracing.UserId, tgID, tracing.InnerError, err)
		return ""
	}
	return lang
}

func (r *LanguageRepository) Set(ctx context.Context, tgID int64, language string) error {
	if err := r.rdb.Set(ctx, r.key(tgID), language, languageTTL).Err(); err != nil {
		r.log.W("Failed to cache language", tracing.UserId, tgID, tracing.InnerError, err)
		return err
	}
	return nil
}
