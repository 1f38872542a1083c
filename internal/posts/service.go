// Package posts implements the blog post operations: input validation,
// slug derivation and the rule that only a post's author may change it.
package posts

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/auth"
	"github.com/UkralStul/blog-posts-service/internal/domain"
	"github.com/UkralStul/blog-posts-service/internal/storage"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// CreateInput is the caller-supplied part of a new post. The author
// always comes from the authenticated identity.
type CreateInput struct {
	Title    string
	Content  string
	Category string
}

// ListQuery selects a page of posts. Page is 1-based.
type ListQuery struct {
	Category string
	Page     int
	Limit    int
}

// Service runs post operations against a storage backend.
type Service struct {
	store storage.Storage
	now   func() time.Time
}

// NewService returns a Service backed by store.
func NewService(store storage.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// Create stores a new post authored by identity.
func (s *Service) Create(ctx context.Context, identity auth.Identity, in CreateInput) (*domain.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, invalid("Title and category are required")
	}

	post, err := s.store.CreatePost(ctx, &domain.Post{
		Title:    in.Title,
		Content:  in.Content,
		Author:   identity.ID,
		Category: in.Category,
		Slug:     Slugify(in.Title, s.now()),
	})
	if err != nil {
		return nil, &StorageError{Op: "create", Err: err}
	}
	return post, nil
}

// ParseListQuery builds a ListQuery from raw query-string values. Empty
// page and limit take their defaults; anything else must be a positive
// integer. Limits above MaxLimit are clamped.
func ParseListQuery(category, page, limit string) (ListQuery, error) {
	q := ListQuery{Category: category, Page: DefaultPage, Limit: DefaultLimit}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return ListQuery{}, invalid("page must be a positive integer")
		}
		q.Page = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return ListQuery{}, invalid("limit must be a positive integer")
		}
		q.Limit = min(n, MaxLimit)
	}
	if _, err := pageOffset(q.Page, q.Limit); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

// pageOffset returns the number of posts before page. Pages whose offset
// does not fit in an int are rejected.
func pageOffset(page, limit int) (int, error) {
	if page-1 > math.MaxInt/limit {
		return 0, invalid("page is too large")
	}
	return (page - 1) * limit, nil
}

// List returns one page of posts, oldest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*domain.Post, error) {
	if q.Page < 1 {
		return nil, invalid("page must be a positive integer")
	}
	if q.Limit < 1 {
		return nil, invalid("limit must be a positive integer")
	}
	limit := min(q.Limit, MaxLimit)
	offset, err := pageOffset(q.Page, limit)
	if err != nil {
		return nil, err
	}

	posts, err := s.store.ListPosts(ctx, domain.ListFilter{
		Category: q.Category,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// Get returns the post with the given id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, storageErr("get", err)
	}
	return post, nil
}

// Update applies the non-empty fields of patch to a post owned by
// identity. Slug and author never change.
func (s *Service) Update(ctx context.Context, identity auth.Identity, id string, patch domain.PostPatch) (*domain.Post, error) {
	if _, err := s.authorize(ctx, identity, id); err != nil {
		return nil, err
	}
	// TODO: compare-and-set on a version field; a concurrent update
	// between the ownership check and this write wins silently.
	post, err := s.store.UpdatePost(ctx, id, patch)
	if err != nil {
		return nil, storageErr("update", err)
	}
	return post, nil
}

// Delete removes a post owned by identity.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if _, err := s.authorize(ctx, identity, id); err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return storageErr("delete", err)
	}
	return nil
}

// authorize loads the post and checks that identity wrote it.
func (s *Service) authorize(ctx context.Context, identity auth.Identity, id string) (*domain.Post, error) {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, storageErr("get", err)
	}
	if identity.ID == "" || post.Author != identity.ID {
		return nil, ErrForbidden
	}
	return post, nil
}

func storageErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
