package repository

import (
	"context"
	"errors"

	"polyglot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LanguageRepository covers the language catalogue and the follow relation.
type LanguageRepository interface {
	List(ctx context.Context) ([]models.Language, error)
	GetByName(ctx context.Context, name string) (*models.Language, error)
	GetByID(ctx context.Context, id uint) (*models.Language, error)
	Create(ctx context.Context, language *models.Language) error
	Follow(ctx context.Context, userID, languageID uint) error
	Unfollow(ctx context.Context, userID, languageID uint) error
	IsFollowing(ctx context.Context, userID, languageID uint) (bool, error)
	ListFollowed(ctx context.Context, userID uint) ([]models.FollowedLanguage, error)
}

type languageRepository struct {
	db *gorm.DB
}

func NewLanguageRepository(db *gorm.DB) LanguageRepository {
	return &languageRepository{db: db}
}

func (r *languageRepository) List(ctx context.Context) ([]models.Language, error) {
	var languages []models.Language
	err := readDB(r.db).WithContext(ctx).Order("name ASC").Find(&languages).Error
	logDataError(ctx, "languages", "list", err)
	return languages, err
}

// GetByName matches the language name case-insensitively.
func (r *languageRepository) GetByName(ctx context.Context, name string) (*models.Language, error) {
	var language models.Language
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).Take(&language).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Language not found")
		}
		logDataError(ctx, "languages", "get_by_name", err)
		return nil, err
	}
	return &language, nil
}

func (r *languageRepository) GetByID(ctx context.Context, id uint) (*models.Language, error) {
	var language models.Language
	err := r.db.WithContext(ctx).Take(&language, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Language", id)
		}
		logDataError(ctx, "languages", "get_by_id", err)
		return nil, err
	}
	return &language, nil
}

func (r *languageRepository) Create(ctx context.Context, language *models.Language) error {
	err := r.db.WithContext(ctx).Create(language).Error
	logDataError(ctx, "languages", "create", err)
	return err
}

// Follow is idempotent: following an already followed language is a no-op.
func (r *languageRepository) Follow(ctx context.Context, userID, languageID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserLanguage{UserID: userID, LanguageID: languageID}).Error
	logDataError(ctx, "user_languages", "follow", err)
	return err
}

func (r *languageRepository) Unfollow(ctx context.Context, userID, languageID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND language_id = ?", userID, languageID).
		Delete(&models.UserLanguage{}).Error
	logDataError(ctx, "user_languages", "unfollow", err)
	return err
}

func (r *languageRepository) IsFollowing(ctx context.Context, userID, languageID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserLanguage{}).
		Where("user_id = ? AND language_id = ?", userID, languageID).
		Count(&count).Error
	logDataError(ctx, "user_languages", "is_following", err)
	return count > 0, err
}

func (r *languageRepository) ListFollowed(ctx context.Context, userID uint) ([]models.FollowedLanguage, error) {
	var followed []models.FollowedLanguage
	err := readDB(r.db).WithContext(ctx).
		Table("user_languages").
		Select("languages.id AS value, languages.name AS label").
		Joins("JOIN languages ON languages.id = user_languages.language_id").
		Where("user_languages.user_id = ?", userID).
		Order("languages.name ASC").
		Scan(&followed).Error
	logDataError(ctx, "user_languages", "list_followed", err)
	return followed, err
}
