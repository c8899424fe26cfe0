package service

import (
	"context"
	"strconv"

	"polyglot/internal/cache"
	"polyglot/internal/middleware"
	"polyglot/internal/models"
	"polyglot/internal/notifications"
	"polyglot/internal/observability"
	"polyglot/internal/repository"

	"github.com/redis/go-redis/v9"
)

// TrendingLimit caps the trending list.
const TrendingLimit = 10

var activityWeights = map[notifications.EventType]float64{
	notifications.PostCreated:  1,
	notifications.ReplyCreated: 2,
	notifications.VotesUpdated: 1,
}

// TrendingService ranks posts by activity. Scores are fed from the event
// channel, so every instance publishing to the same Redis shares one ranking.
type TrendingService struct {
	rdb      *redis.Client
	posts    repository.PostRepository
	notifier *notifications.Notifier
}

func NewTrendingService(rdb *redis.Client, posts repository.PostRepository, notifier *notifications.Notifier) *TrendingService {
	return &TrendingService{rdb: rdb, posts: posts, notifier: notifier}
}

// Start consumes forum events until ctx is cancelled. Without Redis it does nothing.
func (s *TrendingService) Start(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.notifier.Subscribe(ctx, func(ev notifications.Event) {
		s.Record(ctx, ev)
	})
}

// Record adds ev's weight to the score of the post it concerns. Votes on
// replies carry no post id and are ignored.
func (s *TrendingService) Record(ctx context.Context, ev notifications.Event) {
	weight, ok := activityWeights[ev.Type]
	if !ok || s.rdb == nil {
		return
	}
	postID := ev.PostID
	if ev.Type == notifications.VotesUpdated {
		if ev.Target == nil || ev.Target.Kind() != models.TargetPost {
			return
		}
		postID = ev.Target.ID()
	}
	if postID == 0 {
		return
	}

	member := strconv.FormatUint(uint64(postID), 10)
	if err := s.rdb.ZIncrBy(ctx, cache.TrendingKey, weight, member).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("zincrby").Inc()
		middleware.Logger.WarnContext(ctx, "trending score update failed", "post_id", postID, "error", err)
	}
}

// Top returns up to limit posts, highest activity first. Posts deleted since
// they were scored are skipped.
func (s *TrendingService) Top(ctx context.Context, limit int) ([]models.PostSummary, error) {
	out := []models.PostSummary{}
	if s.rdb == nil {
		return out, nil
	}
	if limit <= 0 || limit > TrendingLimit {
		limit = TrendingLimit
	}

	members, err := s.rdb.ZRevRange(ctx, cache.TrendingKey, 0, int64(limit-1)).Result()
	if err != nil {
		observability.RedisErrors.WithLabelValues("zrevrange").Inc()
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	rows, err := s.posts.ListSummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.PostSummary, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}
