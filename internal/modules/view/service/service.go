package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/elearning/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pendingKey = "pending:course_views"

func viewKey(courseID uuid.UUID) string {
	return fmt.Sprintf("course:views:%s", courseID)
}

// CounterStore persists view deltas.
type CounterStore interface {
	IncrementView(ctx context.Context, id uuid.UUID, delta int64) error
}

type ViewService interface {
	IncrementView(ctx context.Context, courseID uuid.UUID) error
	StartViewSyncWorker(ctx context.Context, interval time.Duration)
}

type viewService struct {
	redisClient *redis.Client
	store       CounterStore
	log         *logger.Logger
}

// NewViewService buffers views in redis and flushes them periodically. With a
// nil client every view is written straight to the store.
func NewViewService(redisClient *redis.Client, store CounterStore, log *logger.Logger) ViewService {
	if log == nil {
		log = logger.NewNop()
	}
	return &viewService{
		redisClient: redisClient,
		store:       store,
		log:         log.With("component", "view_sync"),
	}
}

func (s *viewService) IncrementView(ctx context.Context, courseID uuid.UUID) error {
	if s.redisClient == nil {
		return s.store.IncrementView(ctx, courseID, 1)
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, viewKey(courseID))
	pipe.SAdd(ctx, pendingKey, courseID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to buffer view: %w", err)
	}
	return nil
}

func (s *viewService) syncViewsToDB(ctx context.Context) {
	courseIDs, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		s.log.Error("failed to read pending course views", "error", err)
		return
	}

	if len(courseIDs) == 0 {
		return
	}

	synced := 0
	for _, raw := range courseIDs {
		courseID, err := uuid.Parse(raw)
		if err != nil {
			s.log.Warn("dropping invalid course id from pending views", "course_id", raw)
			s.redisClient.SRem(ctx, pendingKey, raw)
			continue
		}

		// Remove from the pending set before draining so a concurrent view re-adds it.
		if err := s.redisClient.SRem(ctx, pendingKey, raw).Err(); err != nil {
			s.log.Error("failed to claim pending views", "course_id", courseID, "error", err)
			continue
		}

		countStr, err := s.redisClient.GetDel(ctx, viewKey(courseID)).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				s.log.Error("failed to drain view counter", "course_id", courseID, "error", err)
				s.redisClient.SAdd(ctx, pendingKey, raw)
			}
			continue
		}

		delta, err := strconv.ParseInt(countStr, 10, 64)
		if err != nil || delta <= 0 {
			continue
		}

		if err := s.store.IncrementView(ctx, courseID, delta); err != nil {
			s.log.Warn("failed to persist course views", "course_id", courseID, "views", delta, "error", err)
			// Put the views back for the next tick.
			pipe := s.redisClient.TxPipeline()
			pipe.IncrBy(ctx, viewKey(courseID), delta)
			pipe.SAdd(ctx, pendingKey, raw)
			if _, err := pipe.Exec(ctx); err != nil {
				s.log.Error("lost buffered course views", "course_id", courseID, "views", delta, "error", err)
			}
			continue
		}
		synced++
	}

	s.log.Debug("synced course views", "courses", synced)
}

func (s *viewService) StartViewSyncWorker(ctx context.Context, interval time.Duration) {
	if s.redisClient == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		case <-ctx.Done():
			// flush what is buffered before shutting down
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.syncViewsToDB(flushCtx)
			cancel()
			return
		}
	}
}
