package repository

import (
	"context"
	"errors"
	"log/slog"

	"polyglot/internal/middleware"
	"polyglot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxApplyAttempts bounds how often a ledger transaction is re-run after losing
// a race on the one-reaction-per-target unique index.
const maxApplyAttempts = 3

// ReactionRepository is the vote ledger store.
type ReactionRepository interface {
	Apply(ctx context.Context, userID uint, target models.TargetRef, polarity bool) (*models.VoteResult, error)
	Get(ctx context.Context, userID uint, target models.TargetRef) (*models.Reaction, error)
	NetVotes(ctx context.Context, target models.TargetRef) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Apply runs the toggle state machine for (user, target) in one transaction and
// returns the target's net votes as seen by that transaction. Concurrent first
// votes from the same user collide on the partial unique index; the loser is
// rolled back and re-run so the final state matches some serial order.
func (r *reactionRepository) Apply(ctx context.Context, userID uint, target models.TargetRef, polarity bool) (*models.VoteResult, error) {
	if !target.Valid() {
		return nil, models.NewInvalidTargetError(target)
	}

	var (
		result *models.VoteResult
		err    error
	)
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		result, err = r.applyOnce(ctx, userID, target, polarity)
		if err == nil || !IsUniqueViolation(err) {
			break
		}
		middleware.Logger.WarnContext(ctx, "reaction ledger conflict, retrying",
			slog.String("target", target.String()),
			slog.Int("attempt", attempt),
		)
	}
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logDataError(ctx, "likes", "apply", err)
		return nil, r.integrityError(ctx, err, userID, target)
	}
	return result, nil
}

// integrityError maps constraint failures from a ledger write onto the caller's
// inputs. A foreign key failure means the target or the user disappeared after
// the existence check.
func (r *reactionRepository) integrityError(ctx context.Context, err error, userID uint, target models.TargetRef) error {
	switch {
	case IsCheckViolation(err):
		return models.NewInvalidTargetError(target)
	case IsForeignKeyViolation(err):
		exists, lookupErr := targetExists(r.db.WithContext(ctx), target)
		if lookupErr != nil {
			return err
		}
		if !exists {
			return models.NewInvalidTargetError(target)
		}
		return models.NewNotFoundError("User", userID)
	default:
		return err
	}
}

func (r *reactionRepository) applyOnce(ctx context.Context, userID uint, target models.TargetRef, polarity bool) (*models.VoteResult, error) {
	var result models.VoteResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := targetExists(tx, target)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewInvalidTargetError(target)
		}

		current, err := findReaction(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, target)
		if err != nil {
			return err
		}

		previous := models.StateOf(current)
		next, transition := models.Transition(previous, polarity)

		switch transition {
		case models.TransitionInserted:
			postID, replyID := target.Columns()
			row := models.Reaction{UserID: userID, PostID: postID, ReplyID: replyID, LikeType: polarity}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case models.TransitionRemoved:
			if err := tx.Delete(&models.Reaction{}, current.ID).Error; err != nil {
				return err
			}
		case models.TransitionSwitched:
			if err := tx.Model(current).Update("like_type", polarity).Error; err != nil {
				return err
			}
		}

		votes, err := netVotes(tx, target)
		if err != nil {
			return err
		}

		result = models.VoteResult{
			Target:     target,
			Previous:   previous,
			State:      next,
			Transition: transition,
			Votes:      votes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns the user's reaction on target, or nil when there is none.
func (r *reactionRepository) Get(ctx context.Context, userID uint, target models.TargetRef) (*models.Reaction, error) {
	if !target.Valid() {
		return nil, models.NewInvalidTargetError(target)
	}
	reaction, err := findReaction(r.db.WithContext(ctx), userID, target)
	logDataError(ctx, "likes", "get", err)
	return reaction, err
}

func (r *reactionRepository) NetVotes(ctx context.Context, target models.TargetRef) (int64, error) {
	if !target.Valid() {
		return 0, models.NewInvalidTargetError(target)
	}
	votes, err := netVotes(r.db.WithContext(ctx), target)
	logDataError(ctx, "likes", "net_votes", err)
	return votes, err
}

func targetExists(db *gorm.DB, target models.TargetRef) (bool, error) {
	table := "posts"
	if target.Kind() == models.TargetReply {
		table = "replies"
	}
	var count int64
	err := db.Table(table).Where("id = ?", target.ID()).Count(&count).Error
	return count > 0, err
}

func findReaction(db *gorm.DB, userID uint, target models.TargetRef) (*models.Reaction, error) {
	var reaction models.Reaction
	err := db.
		Where("user_id = ?", userID).
		Where(target.Column()+" = ?", target.ID()).
		Where(target.OtherColumn() + " IS NULL").
		Take(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// netVotes is likes minus dislikes for target.
func netVotes(db *gorm.DB, target models.TargetRef) (int64, error) {
	var votes int64
	err := db.Model(&models.Reaction{}).
		Select("COALESCE(SUM(CASE WHEN like_type THEN 1 ELSE -1 END), 0)").
		Where(target.Column()+" = ?", target.ID()).
		Where(target.OtherColumn() + " IS NULL").
		Scan(&votes).Error
	return votes, err
}
