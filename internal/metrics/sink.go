// Package metrics is the best-effort sink for per-session usage data:
// TTL'd JSON session records and hourly per-presentation counters, both
// in redis. Writes here must never fail a live session.
package metrics

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sunum-ai/copilot-backend/internal/shared"
)

const (
	recordTTL = 24 * time.Hour
	hourlyTTL = 7 * 24 * time.Hour
)

type Sink struct {
	redis *redis.Client
}

func NewSink(redisClient *redis.Client) *Sink {
	return &Sink{redis: redisClient}
}

// Persist writes a finished session's record. TotalText is truncated
// to the cap before storage.
func (s *Sink) Persist(ctx context.Context, record *SessionRecord) error {
	record.TotalText = capTotalText(record.TotalText)

	data, err := json.Marshal(record)
	if err != nil {
		return &shared.PersistenceError{Message: "failed to encode session record", Cause: err}
	}
	if err := s.redis.Set(ctx, record.RedisKey(), data, recordTTL).Err(); err != nil {
		return &shared.PersistenceError{Message: "failed to store session record", Cause: err}
	}
	return nil
}

func capTotalText(text string) string {
	runes := []rune(text)
	if len(runes) <= TotalTextCap {
		return text
	}
	return string(runes[:TotalTextCap])
}

func (s *Sink) GetRecord(ctx context.Context, sessionID string) (*SessionRecord, error) {
	data, err := s.redis.Get(ctx, "copilot:session:"+sessionID).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Sink) increment(ctx context.Context, presentationID, field string, value int64) error {
	now := time.Now().UTC()
	key := HourlyRedisKey(presentationID, now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, hourlyTTL)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return &shared.PersistenceError{Message: "failed to increment " + field, Cause: err}
	}
	return nil
}

func (s *Sink) IncrementSessions(ctx context.Context, presentationID string) error {
	return s.increment(ctx, presentationID, "sessions", 1)
}

func (s *Sink) AddTranscripts(ctx context.Context, presentationID string, count int64) error {
	return s.increment(ctx, presentationID, "transcripts", count)
}

func (s *Sink) AddSlideChanges(ctx context.Context, presentationID string, count int64) error {
	return s.increment(ctx, presentationID, "slide_changes", count)
}

func (s *Sink) IncrementErrors(ctx context.Context, presentationID string) error {
	return s.increment(ctx, presentationID, "error_count", 1)
}

// GetHourlyMetrics returns per-hour counters for the trailing window,
// newest first. Hours with no activity are skipped.
func (s *Sink) GetHourlyMetrics(ctx context.Context, presentationID string, hours int) ([]*HourlyMetrics, error) {
	now := time.Now().UTC()
	var out []*HourlyMetrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := HourlyRedisKey(presentationID, t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil || len(data) == 0 {
			continue
		}

		m := &HourlyMetrics{
			PresentationID: presentationID,
			Date:           t.Format("2006-01-02"),
			Hour:           t.Hour(),
		}
		if v, ok := data["sessions"]; ok {
			m.Sessions, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["transcripts"]; ok {
			m.Transcripts, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["slide_changes"]; ok {
			m.SlideChanges, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := data["error_count"]; ok {
			m.ErrorCount, _ = strconv.ParseInt(v, 10, 64)
		}
		out = append(out, m)
	}
	return out, nil
}
