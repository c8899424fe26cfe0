package repository

import (
	"context"
	"errors"

	"polyglot/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByExternalRef(ctx context.Context, ref string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CountPosts(ctx context.Context, userID uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) first(ctx context.Context, op string, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("User not found")
		}
		logDataError(ctx, "users", op, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "get_by_id", "id = ?", id)
}

func (r *userRepository) GetByExternalRef(ctx context.Context, ref string) (*models.User, error) {
	return r.first(ctx, "get_by_external_ref", "external_ref = ?", ref)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "get_by_username", "username = ?", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "get_by_email", "email = ?", email)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	logDataError(ctx, "users", "create", err)
	return err
}

func (r *userRepository) CountPosts(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	logDataError(ctx, "posts", "count_by_user", err)
	return count, err
}
