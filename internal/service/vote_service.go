// Package service holds the forum's business rules on top of the repositories.
package service

import (
	"context"
	"errors"

	"polyglot/internal/middleware"
	"polyglot/internal/models"
	"polyglot/internal/notifications"
	"polyglot/internal/observability"
	"polyglot/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// VoteService applies like/dislike reactions through the vote ledger.
type VoteService struct {
	reactions repository.ReactionRepository
	replies   repository.ReplyRepository
	notifier  *notifications.Notifier
}

func NewVoteService(
	reactions repository.ReactionRepository,
	replies repository.ReplyRepository,
	notifier *notifications.Notifier,
) *VoteService {
	return &VoteService{reactions: reactions, replies: replies, notifier: notifier}
}

// ApplyReaction toggles userID's reaction on target towards polarity and
// returns the resulting state with the target's new net vote count.
func (s *VoteService) ApplyReaction(ctx context.Context, userID uint, target models.TargetRef, polarity bool) (*models.VoteResult, error) {
	span, ctx := observability.StartSpan(ctx, "vote.apply",
		attribute.String("vote.target", target.String()),
		attribute.Bool("vote.polarity", polarity),
	)
	defer span.End()

	if userID == 0 {
		err := models.NewUnauthenticatedError("Authentication required")
		s.recordFailure(span, err)
		return nil, err
	}

	result, err := s.reactions.Apply(ctx, userID, target, polarity)
	if err != nil {
		s.recordFailure(span, err)
		return nil, err
	}

	observability.ReactionTransitions.WithLabelValues(string(target.Kind()), string(result.Transition)).Inc()
	span.AddAttributes(
		attribute.String("vote.transition", string(result.Transition)),
		attribute.Int64("vote.net", result.Votes),
	)
	middleware.Logger.InfoContext(ctx, "reaction applied",
		"target", target.String(),
		"transition", result.Transition,
		"state", result.State.String(),
		"votes", result.Votes,
	)

	s.notifier.VotesUpdated(ctx, userID, result)
	return result, nil
}

func (s *VoteService) recordFailure(span *observability.Span, err error) {
	code := models.CodeInternal
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	observability.ReactionFailures.WithLabelValues(code).Inc()
	span.SetError(err)
}

// LikeStatus returns true for an upvote, false for a downvote and nil when
// userID has no reaction on the post.
func (s *VoteService) LikeStatus(ctx context.Context, userID, postID uint) (*bool, error) {
	r, err := s.reactions.Get(ctx, userID, models.PostTarget(postID))
	if err != nil {
		return nil, err
	}
	return models.StateOf(r).Polarity(), nil
}

// LikedReplyIDs lists the replies userID currently upvotes.
func (s *VoteService) LikedReplyIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := s.replies.LikedReplyIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}
