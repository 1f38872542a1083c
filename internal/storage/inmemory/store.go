package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/domain"
	"github.com/UkralStul/blog-posts-service/internal/storage"
	"github.com/google/uuid"
)

// Store реализует интерфейс Storage в памяти. Наружу отдаются копии постов,
// поэтому вызывающий код не может изменить хранимое состояние.
type Store struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
	order []string // id постов в порядке добавления
	now   func() time.Time
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		posts: make(map[string]*domain.Post),
		now:   time.Now,
	}
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *post
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC()
	s.posts[stored.ID] = &stored
	s.order = append(s.order, stored.ID)

	out := stored
	return &out, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
	}
	out := *post
	return &out, nil
}

func (s *Store) ListPosts(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0, len(s.order))
	for _, id := range s.order {
		p := s.posts[id]
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matched = append(matched, p)
	}

	// Отрицательное смещение читается с начала, Limit не может выйти за срез.
	start := max(filter.Offset, 0)
	if start >= len(matched) || filter.Limit <= 0 {
		return []*domain.Post{}, nil
	}
	end := len(matched)
	if filter.Limit < end-start {
		end = start + filter.Limit
	}

	page := make([]*domain.Post, 0, end-start)
	for _, p := range matched[start:end] {
		out := *p
		page = append(page, &out)
	}
	return page, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
	}
	patch.Apply(post)
	out := *post
	return &out, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
	}
	delete(s.posts, id)
	// Убираем id из порядка, чтобы пагинация не видела удаленный пост
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error { return nil }
