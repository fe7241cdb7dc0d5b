package repository

import (
	"context"
	"encoding/json"

	"github.com/opensettle/marketgate/internal/event"
	"github.com/opensettle/marketgate/internal/pkg/logger"
)

// RedisEventSink keeps a capped list of the most recent settlement events for
// cheap "what just happened" queries without hitting Postgres.
type RedisEventSink struct {
	client  *RedisClient
	listKey string
	listMax int
}

func NewRedisEventSink(client *RedisClient, listKey string, listMax int) *RedisEventSink {
	if listKey == "" {
		listKey = "settlement_events"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisEventSink{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (r *RedisEventSink) Emit(ctx context.Context, e *event.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	pipe := r.client.Client.Pipeline()
	pipe.LPush(ctx, r.listKey, string(payload))
	pipe.LTrim(ctx, r.listKey, 0, int64(r.listMax-1))
	if _, err := pipe.Exec(ctx); err != nil {
		logger.LogError(ctx, err, "failed to push settlement event to redis", "event_id", e.ID)
	}
}

// Recent returns up to limit most recent events, newest first.
func (r *RedisEventSink) Recent(ctx context.Context, limit int) ([]*event.Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	items, err := r.client.Client.LRange(ctx, r.listKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	results := make([]*event.Event, 0, len(items))
	for _, raw := range items {
		var e event.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		results = append(results, &e)
	}
	return results, nil
}
