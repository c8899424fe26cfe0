package repository

import (
	"context"

	"polyglot/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	Exists(ctx context.Context, id uint) (bool, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Reply, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	LikedReplyIDs(ctx context.Context, userID uint) ([]uint, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

const commentSelect = "replies.id AS id, replies.post_id AS post_id, replies.content AS content, " +
	"users.username AS author, " +
	"COALESCE((SELECT SUM(CASE WHEN likes.like_type THEN 1 ELSE -1 END) FROM likes " +
	"WHERE likes.reply_id = replies.id AND likes.post_id IS NULL), 0) AS votes, " +
	"replies.created_at AS created_at"

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	err := r.db.WithContext(ctx).Create(reply).Error
	logDataError(ctx, "replies", "create", err)
	return err
}

func (r *replyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reply{}).Where("id = ?", id).Count(&count).Error
	logDataError(ctx, "replies", "exists", err)
	return count > 0, err
}

// ListByPost returns raw reply rows in thread order.
func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]models.Reply, error) {
	replies := []models.Reply{}
	err := readDB(r.db).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	logDataError(ctx, "replies", "list_by_post", err)
	return replies, err
}

// ListComments returns replies joined with author and net votes, in thread order.
func (r *replyRepository) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := readDB(r.db).WithContext(ctx).
		Table("replies").
		Select(commentSelect).
		Joins("JOIN users ON users.id = replies.user_id").
		Where("replies.post_id = ?", postID).
		Order("replies.created_at ASC, replies.id ASC").
		Scan(&comments).Error
	logDataError(ctx, "replies", "list_comments", err)
	return comments, err
}

// LikedReplyIDs returns the replies a user currently upvotes.
func (r *replyRepository) LikedReplyIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("user_id = ? AND like_type = ? AND reply_id IS NOT NULL AND post_id IS NULL", userID, true).
		Order("reply_id ASC").
		Pluck("reply_id", &ids).Error
	logDataError(ctx, "likes", "liked_reply_ids", err)
	return ids, err
}
