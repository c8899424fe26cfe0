package service

import (
	"context"
	"strings"

	"polyglot/internal/cache"
	"polyglot/internal/models"
	"polyglot/internal/notifications"
	"polyglot/internal/observability"
	"polyglot/internal/repository"
	"polyglot/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SearchLimit caps title search results.
const SearchLimit = 5

// AllLanguages is the selector value meaning "no language filter".
const AllLanguages = "all"

// LanguageLabel renders a stored language name for display ("brazilian portuguese" -> "Brazilian Portuguese").
func LanguageLabel(name string) string {
	return cases.Title(language.Und).String(name)
}

type PostService struct {
	posts     repository.PostRepository
	replies   repository.ReplyRepository
	languages repository.LanguageRepository
	rdb       *redis.Client
	notifier  *notifications.Notifier
}

type CreatePostInput struct {
	UserID       uint
	Title        string
	Content      string
	LanguageName string
}

type CreateReplyInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewPostService(
	posts repository.PostRepository,
	replies repository.ReplyRepository,
	languages repository.LanguageRepository,
	rdb *redis.Client,
	notifier *notifications.Notifier,
) *PostService {
	return &PostService{
		posts:     posts,
		replies:   replies,
		languages: languages,
		rdb:       rdb,
		notifier:  notifier,
	}
}

// ListLanguages returns every language as a selector option, ordered by name.
func (s *PostService) ListLanguages(ctx context.Context) ([]models.LanguageOption, error) {
	var options []models.LanguageOption
	err := cache.Aside(ctx, s.rdb, "languages", cache.LanguagesKey, &options, cache.LanguagesTTL, func() error {
		langs, err := s.languages.List(ctx)
		if err != nil {
			return err
		}
		options = make([]models.LanguageOption, 0, len(langs))
		for _, l := range langs {
			options = append(options, models.LanguageOption{Value: l.Name, Label: LanguageLabel(l.Name)})
		}
		return nil
	})
	return options, err
}

// GetPosts lists posts newest first, optionally restricted to one language
// (matched case-insensitively).
func (s *PostService) GetPosts(ctx context.Context, languageFilter string) ([]models.PostSummary, error) {
	languageFilter = strings.TrimSpace(languageFilter)
	if strings.EqualFold(languageFilter, AllLanguages) {
		languageFilter = ""
	}
	defer observability.TrackQuery("list_posts")()
	return s.posts.ListSummaries(ctx, languageFilter)
}

func (s *PostService) GetPostByID(ctx context.Context, id uint) (*models.PostDetail, error) {
	return s.posts.GetDetail(ctx, id)
}

func (s *PostService) GetPostComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.replies.ListComments(ctx, postID)
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title, err := validation.RequireText("Title", in.Title, validation.MaxTitleLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	content, err := validation.RequireText("Content", in.Content, validation.MaxPostLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.LanguageName) == "" {
		return nil, models.NewValidationError("Language is required")
	}

	lang, err := s.languages.GetByName(ctx, strings.TrimSpace(in.LanguageName))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewValidationError("Invalid language")
		}
		return nil, err
	}

	post := &models.Post{UserID: in.UserID, LanguageID: lang.ID, Title: title, Content: content}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, missingAuthor(err, in.UserID)
	}

	cache.Invalidate(ctx, s.rdb, cache.ProfileKey(in.UserID))
	s.notifier.PostCreated(ctx, post, lang.Name)
	return post, nil
}

func (s *PostService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	content, err := validation.RequireText("Content", in.Content, validation.MaxCommentLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requirePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	reply := &models.Reply{UserID: in.UserID, PostID: in.PostID, Content: content}
	if err := s.replies.Create(ctx, reply); err != nil {
		if repository.IsForeignKeyViolation(err) {
			// The post may have been deleted since requirePost.
			if postErr := s.requirePost(ctx, in.PostID); postErr != nil {
				return nil, postErr
			}
		}
		return nil, missingAuthor(err, in.UserID)
	}

	s.notifier.ReplyCreated(ctx, reply)
	return reply, nil
}

// SearchPostsByTitle returns at most SearchLimit posts whose title contains
// query, newest first. A blank query yields no results.
func (s *PostService) SearchPostsByTitle(ctx context.Context, query string) ([]models.PostSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.PostSummary{}, nil
	}
	defer observability.TrackQuery("search_posts")()
	return s.posts.SearchByTitle(ctx, query, SearchLimit)
}

// CreatePostLegacy backs the standalone REST API, which addresses languages by id.
func (s *PostService) CreatePostLegacy(ctx context.Context, userID, languageID uint, title, content string) (*models.Post, error) {
	title, err := validation.RequireText("Title", title, validation.MaxTitleLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	content, err = validation.RequireText("Content", content, validation.MaxPostLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	lang, err := s.languages.GetByID(ctx, languageID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewValidationError("Invalid language")
		}
		return nil, err
	}

	post := &models.Post{UserID: userID, LanguageID: lang.ID, Title: title, Content: content}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, missingAuthor(err, userID)
	}
	cache.Invalidate(ctx, s.rdb, cache.ProfileKey(userID))
	s.notifier.PostCreated(ctx, post, lang.Name)
	return post, nil
}

func (s *PostService) ListPostsByLanguageID(ctx context.Context, languageID uint) ([]models.Post, error) {
	return s.posts.ListByLanguageID(ctx, languageID)
}

func (s *PostService) ListReplies(ctx context.Context, postID uint) ([]models.Reply, error) {
	return s.replies.ListByPost(ctx, postID)
}

func (s *PostService) requirePost(ctx context.Context, postID uint) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

// missingAuthor reports a foreign key failure on insert as the author row
// being gone, which happens when a still-valid token outlives its user.
func missingAuthor(err error, userID uint) error {
	if repository.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("User", userID)
	}
	return err
}
