package repository

import (
	"context"
	"errors"

	"polyglot/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListByLanguageID(ctx context.Context, languageID uint) ([]models.Post, error)
	ListSummaries(ctx context.Context, languageFilter string) ([]models.PostSummary, error)
	SearchByTitle(ctx context.Context, query string, limit int) ([]models.PostSummary, error)
	GetDetail(ctx context.Context, id uint) (*models.PostDetail, error)
	ListLikedByUser(ctx context.Context, userID uint) ([]models.PostSummary, error)
	ListSummariesByIDs(ctx context.Context, ids []uint) ([]models.PostSummary, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const (
	postVotesExpr = "COALESCE((SELECT SUM(CASE WHEN likes.like_type THEN 1 ELSE -1 END) FROM likes " +
		"WHERE likes.post_id = posts.id AND likes.reply_id IS NULL), 0)"
	postCommentsExpr = "(SELECT COUNT(*) FROM replies WHERE replies.post_id = posts.id)"

	postSummarySelect = "posts.id AS id, posts.title AS title, languages.name AS language, " +
		postVotesExpr + " AS votes, " +
		postCommentsExpr + " AS comments, " +
		"users.username AS author, posts.created_at AS created_at"

	postDetailSelect = postSummarySelect + ", posts.content AS content, " +
		"posts.language_id AS language_id, posts.user_id AS author_id"

	newestFirst = "posts.created_at DESC, posts.id DESC"
)

// summaries starts a denormalized post query joined with author and language.
func (r *postRepository) summaries(ctx context.Context, selectExpr string) *gorm.DB {
	return readDB(r.db).WithContext(ctx).
		Table("posts").
		Select(selectExpr).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("JOIN languages ON languages.id = posts.language_id")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	logDataError(ctx, "posts", "create", err)
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Take(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		logDataError(ctx, "posts", "get_by_id", err)
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	logDataError(ctx, "posts", "exists", err)
	return count > 0, err
}

// ListByLanguageID returns raw post rows for one language, newest first.
func (r *postRepository) ListByLanguageID(ctx context.Context, languageID uint) ([]models.Post, error) {
	posts := []models.Post{}
	err := readDB(r.db).WithContext(ctx).
		Where("language_id = ?", languageID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	logDataError(ctx, "posts", "list_by_language_id", err)
	return posts, err
}

// ListSummaries lists every post newest first, optionally restricted to a
// language name matched case-insensitively.
func (r *postRepository) ListSummaries(ctx context.Context, languageFilter string) ([]models.PostSummary, error) {
	rows := []models.PostSummary{}
	q := r.summaries(ctx, postSummarySelect)
	if languageFilter != "" {
		q = q.Where("LOWER(languages.name) = LOWER(?)", languageFilter)
	}
	err := q.Order(newestFirst).Scan(&rows).Error
	logDataError(ctx, "posts", "list_summaries", err)
	return rows, err
}

// SearchByTitle does a case-insensitive substring match on titles, newest first.
func (r *postRepository) SearchByTitle(ctx context.Context, query string, limit int) ([]models.PostSummary, error) {
	rows := []models.PostSummary{}
	err := r.summaries(ctx, postSummarySelect).
		Where(`LOWER(posts.title) LIKE ? ESCAPE '\'`, containsPattern(query)).
		Order(newestFirst).
		Limit(limit).
		Scan(&rows).Error
	logDataError(ctx, "posts", "search_by_title", err)
	return rows, err
}

func (r *postRepository) GetDetail(ctx context.Context, id uint) (*models.PostDetail, error) {
	var detail models.PostDetail
	res := r.summaries(ctx, postDetailSelect).
		Where("posts.id = ?", id).
		Limit(1).
		Scan(&detail)
	if res.Error != nil {
		logDataError(ctx, "posts", "get_detail", res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &detail, nil
}

// ListLikedByUser returns the posts a user currently upvotes, most recently liked first.
func (r *postRepository) ListLikedByUser(ctx context.Context, userID uint) ([]models.PostSummary, error) {
	rows := []models.PostSummary{}
	err := r.summaries(ctx, postSummarySelect).
		Joins("JOIN likes AS mine ON mine.post_id = posts.id AND mine.reply_id IS NULL").
		Where("mine.user_id = ? AND mine.like_type = ?", userID, true).
		Order("mine.updated_at DESC, " + newestFirst).
		Scan(&rows).Error
	logDataError(ctx, "likes", "list_liked_posts", err)
	return rows, err
}

// ListSummariesByIDs returns the summaries of the given posts in no particular
// order. Unknown ids are skipped.
func (r *postRepository) ListSummariesByIDs(ctx context.Context, ids []uint) ([]models.PostSummary, error) {
	rows := []models.PostSummary{}
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.summaries(ctx, postSummarySelect).
		Where("posts.id IN ?", ids).
		Scan(&rows).Error
	logDataError(ctx, "posts", "list_summaries_by_ids", err)
	return rows, err
}
