package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/blog-posts-service/internal/domain"
	"github.com/UkralStul/blog-posts-service/internal/storage"
	"github.com/google/uuid"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage поверх PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New подключается к базе и при необходимости создает таблицу постов.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Post{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// validID сообщает, может ли id быть ключом строки. Колонка имеет тип uuid,
// и на любое другое значение postgres ответит ошибкой типа, а не пустым результатом.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(id string) error {
	return fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	stored := *post
	stored.ID = ""
	// ID и CreatedAt GORM заполнит после вставки.
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	if !validID(id) {
		return nil, notFound(id)
	}
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, error) {
	posts := []*domain.Post{}
	query := s.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(max(filter.Offset, 0)). // отрицательное смещение - с начала
		Limit(filter.Limit)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	err := query.Find(&posts).Error
	return posts, err
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	if !validID(id) {
		return nil, notFound(id)
	}
	var post domain.Post
	// Чтение и запись в одной транзакции, чтобы вернуть именно записанную строку.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		patch.Apply(&post)
		return tx.Model(&post).Select("title", "content").Updates(&post).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return &post, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound(id)
	}
	res := s.db.WithContext(ctx).Delete(&domain.Post{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
