package documents

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"doctranslate-backend/internal/shared/cache"
	"doctranslate-backend/internal/shared/telemetry"
)

const defaultCacheTTL = 24 * time.Hour

// CachedRepo fronts a Repo with a read-through cache for translations and
// summaries. Documents are not cached because the processed flag mutates.
type CachedRepo struct {
	Repo
	Cache cache.Client
	TTL   time.Duration
}

// NewCachedRepo wraps repo. A nil client returns repo unchanged.
func NewCachedRepo(repo Repo, client cache.Client, ttl time.Duration) Repo {
	if client == nil {
		return repo
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedRepo{Repo: repo, Cache: client, TTL: ttl}
}

func translationKey(documentID int64, language string) string {
	return cache.Key("translation", strconv.FormatInt(documentID, 10), language)
}

func summaryKey(documentID int64, scope string) string {
	return cache.Key("summary", strconv.FormatInt(documentID, 10), scope)
}

// GetTranslation checks the cache before the underlying repo.
func (r *CachedRepo) GetTranslation(ctx context.Context, documentID int64, language string) (Translation, error) {
	key := translationKey(documentID, language)
	var t Translation
	if r.load(ctx, key, &t) {
		return t, nil
	}
	t, err := r.Repo.GetTranslation(ctx, documentID, language)
	if err != nil {
		return Translation{}, err
	}
	r.store(ctx, key, t)
	return t, nil
}

// CreateTranslationIfAbsent writes through to the cache.
func (r *CachedRepo) CreateTranslationIfAbsent(ctx context.Context, t Translation) (Translation, bool, error) {
	stored, created, err := r.Repo.CreateTranslationIfAbsent(ctx, t)
	if err != nil {
		return Translation{}, false, err
	}
	r.store(ctx, translationKey(stored.DocumentID, stored.Language), stored)
	return stored, created, nil
}

// GetSummary checks the cache before the underlying repo.
func (r *CachedRepo) GetSummary(ctx context.Context, documentID int64, scope string) (Summary, error) {
	key := summaryKey(documentID, scope)
	var s Summary
	if r.load(ctx, key, &s) {
		return s, nil
	}
	s, err := r.Repo.GetSummary(ctx, documentID, scope)
	if err != nil {
		return Summary{}, err
	}
	r.store(ctx, key, s)
	return s, nil
}

// CreateSummaryIfAbsent writes through to the cache.
func (r *CachedRepo) CreateSummaryIfAbsent(ctx context.Context, s Summary) (Summary, bool, error) {
	stored, created, err := r.Repo.CreateSummaryIfAbsent(ctx, s)
	if err != nil {
		return Summary{}, false, err
	}
	r.store(ctx, summaryKey(stored.DocumentID, stored.Language), stored)
	return stored, created, nil
}

// load reports whether key was found and decoded into dst. Cache failures
// are logged and treated as misses.
func (r *CachedRepo) load(ctx context.Context, key string, dst any) bool {
	raw, err := r.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			telemetry.Warn("cache.get_failed", map[string]any{"key": key, "error": err.Error()})
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		telemetry.Warn("cache.decode_failed", map[string]any{"key": key, "error": err.Error()})
		return false
	}
	return true
}

func (r *CachedRepo) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, raw, r.TTL); err != nil {
		telemetry.Warn("cache.set_failed", map[string]any{"key": key, "error": err.Error()})
	}
}
