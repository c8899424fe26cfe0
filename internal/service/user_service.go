package service

import (
	"context"
	"strings"

	"polyglot/internal/cache"
	"polyglot/internal/middleware"
	"polyglot/internal/models"
	"polyglot/internal/repository"
	"polyglot/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken     = "Username already taken"
	msgEmailRegistered   = "Email already registered"
	msgInvalidCredential = "Invalid credentials"
)

type UserService struct {
	users     repository.UserRepository
	languages repository.LanguageRepository
	posts     repository.PostRepository
	rdb       *redis.Client
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ReconcileInput struct {
	ExternalRef string
	Username    string
	Email       string
}

func NewUserService(
	users repository.UserRepository,
	languages repository.LanguageRepository,
	posts repository.PostRepository,
	rdb *redis.Client,
) *UserService {
	return &UserService{users: users, languages: languages, posts: posts, rdb: rdb}
}

// Signup registers a legacy REST account with a bcrypt password hash.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Email: &email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.createConflict(ctx, err, username, email)
	}

	middleware.Logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// fail identically.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.NewUnauthenticatedError(msgInvalidCredential)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthenticatedError(msgInvalidCredential)
		}
		return nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthenticatedError(msgInvalidCredential)
	}
	return user, nil
}

// Reconcile links an external identity to an internal user, creating the
// user on first sign-in. It is idempotent per external reference. The bool
// reports whether a row was created.
func (s *UserService) Reconcile(ctx context.Context, in ReconcileInput) (*models.User, bool, error) {
	ref := strings.TrimSpace(in.ExternalRef)
	if ref == "" {
		return nil, false, models.NewUnauthenticatedError("Authentication required")
	}

	existing, err := s.users.GetByExternalRef(ctx, ref)
	if err == nil {
		return existing, false, nil
	}
	if !models.IsCode(err, models.CodeNotFound) {
		return nil, false, err
	}

	username := strings.TrimSpace(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}
	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, false, err
	}

	user := &models.User{ExternalRef: &ref, Username: username}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, false, models.NewValidationError(err.Error())
		}
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, false, err
		}
		user.Email = &email
	}

	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			// Lost a race with a concurrent first sign-in for the same identity.
			if winner, getErr := s.users.GetByExternalRef(ctx, ref); getErr == nil {
				return winner, false, nil
			}
		}
		return nil, false, s.createConflict(ctx, err, username, email)
	}

	middleware.Logger.InfoContext(ctx, "external user reconciled", "user_id", user.ID)
	return user, true, nil
}

// ResolveExternal maps an external identity reference to the internal user.
func (s *UserService) ResolveExternal(ctx context.Context, ref string) (*models.User, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	return s.users.GetByExternalRef(ctx, ref)
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := cache.Aside(ctx, s.rdb, "profile", cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		count, err := s.users.CountPosts(ctx, userID)
		if err != nil {
			return err
		}
		profile = models.UserProfile{ID: user.ID, Username: user.Username, PostCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// LikedPosts returns the posts userID currently upvotes.
func (s *UserService) LikedPosts(ctx context.Context, userID uint) ([]models.PostSummary, error) {
	return s.posts.ListLikedByUser(ctx, userID)
}

func (s *UserService) FollowedLanguages(ctx context.Context, userID uint) ([]models.FollowedLanguage, error) {
	return s.languages.ListFollowed(ctx, userID)
}

func (s *UserService) Follow(ctx context.Context, userID uint, languageName string) error {
	lang, err := s.languages.GetByName(ctx, languageName)
	if err != nil {
		return err
	}
	return s.languages.Follow(ctx, userID, lang.ID)
}

func (s *UserService) Unfollow(ctx context.Context, userID uint, languageName string) error {
	lang, err := s.languages.GetByName(ctx, languageName)
	if err != nil {
		return err
	}
	return s.languages.Unfollow(ctx, userID, lang.ID)
}

func (s *UserService) IsFollowing(ctx context.Context, userID uint, languageName string) (bool, error) {
	lang, err := s.languages.GetByName(ctx, languageName)
	if err != nil {
		return false, err
	}
	return s.languages.IsFollowing(ctx, userID, lang.ID)
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return models.NewConflictError(msgUsernameTaken)
	case models.IsCode(err, models.CodeNotFound):
		return nil
	default:
		return err
	}
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return models.NewConflictError(msgEmailRegistered)
	case models.IsCode(err, models.CodeNotFound):
		return nil
	default:
		return err
	}
}

// createConflict turns a unique violation from a racing insert into the
// matching Conflict error by looking up which value is now taken.
func (s *UserService) createConflict(ctx context.Context, err error, username, email string) error {
	if !repository.IsUniqueViolation(err) {
		return err
	}
	if email != "" {
		if conflict := s.ensureEmailFree(ctx, email); models.IsCode(conflict, models.CodeConflict) {
			return conflict
		}
	}
	if conflict := s.ensureUsernameFree(ctx, username); models.IsCode(conflict, models.CodeConflict) {
		return conflict
	}
	return models.NewConflictError(msgUsernameTaken)
}
