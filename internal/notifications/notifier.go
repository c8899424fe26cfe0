// Package notifications fans forum events out over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"time"

	"polyglot/internal/middleware"
	"polyglot/internal/models"
	"polyglot/internal/observability"

	"github.com/redis/go-redis/v9"
)

const Channel = "polyglot:events"

type EventType string

const (
	PostCreated  EventType = "post_created"
	ReplyCreated EventType = "reply_created"
	VotesUpdated EventType = "votes_updated"
)

// Event is the JSON payload published on Channel.
type Event struct {
	Type       EventType         `json:"type"`
	PostID     uint              `json:"postId,omitempty"`
	ReplyID    uint              `json:"replyId,omitempty"`
	UserID     uint              `json:"userId,omitempty"`
	Language   string            `json:"language,omitempty"`
	Target     *models.TargetRef `json:"target,omitempty"`
	Votes      *int64            `json:"votes,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a notifier; a nil client makes every call a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends ev on Channel. Failures are logged and counted, never
// returned, so a broken broker does not fail the write that triggered it.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	if n == nil || n.rdb == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err == nil {
		err = n.rdb.Publish(ctx, Channel, payload).Err()
	}
	if err != nil {
		observability.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		middleware.Logger.WarnContext(ctx, "event publish failed", "type", ev.Type, "error", err)
		return
	}
	observability.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
}

func (n *Notifier) PostCreated(ctx context.Context, post *models.Post, language string) {
	n.Publish(ctx, Event{Type: PostCreated, PostID: post.ID, UserID: post.UserID, Language: language})
}

func (n *Notifier) ReplyCreated(ctx context.Context, reply *models.Reply) {
	n.Publish(ctx, Event{Type: ReplyCreated, PostID: reply.PostID, ReplyID: reply.ID, UserID: reply.UserID})
}

func (n *Notifier) VotesUpdated(ctx context.Context, userID uint, result *models.VoteResult) {
	target := result.Target
	votes := result.Votes
	n.Publish(ctx, Event{Type: VotesUpdated, UserID: userID, Target: &target, Votes: &votes})
}

// Subscribe delivers decoded events to fn until ctx is cancelled. It returns
// once the subscription is confirmed; delivery runs on its own goroutine.
func (n *Notifier) Subscribe(ctx context.Context, fn func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}

	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed event", "error", err)
					continue
				}
				fn(ev)
			}
		}
	}()
	return nil
}
