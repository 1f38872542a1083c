package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/blog-posts-service/internal/domain"
)

// ErrNotFound is returned when no post exists with the requested id.
// Malformed ids are reported the same way.
var ErrNotFound = errors.New("post not found")

// Storage defines the contract for post backends. Every method is a
// single backend operation; callers coordinate anything larger.
type Storage interface {
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	// ListPosts returns posts ordered by creation time, oldest first.
	ListPosts(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, error)
	UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
