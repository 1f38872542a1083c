package posts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/auth"
	"github.com/UkralStul/blog-posts-service/internal/domain"
	"github.com/UkralStul/blog-posts-service/internal/storage"
	"github.com/UkralStul/blog-posts-service/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = auth.Identity{ID: "u1", Username: "alice"}
	bob   = auth.Identity{ID: "u2", Username: "bob"}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(inmemory.New())
	svc.now = func() time.Time { return time.UnixMilli(1714557600000) }
	return svc
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, alice, CreateInput{Title: "Hello World", Category: "c1"})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "u1", post.Author)
	assert.Equal(t, "c1", post.Category)
	assert.Equal(t, "hello-world-1714557600000", post.Slug)
	assert.Empty(t, post.Content)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing title", CreateInput{Category: "c1", Content: "x"}},
		{"blank title", CreateInput{Title: "   ", Category: "c1"}},
		{"missing category", CreateInput{Title: "Hi"}},
		{"missing both", CreateInput{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, tt.in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "Title and category are required", err.Error())
		})
	}

	posts, err := svc.List(ctx, ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestService_GetMissing(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Update(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, alice, CreateInput{Title: "Hi", Content: "old", Category: "c1"})
	require.NoError(t, err)

	t.Run("non-author is forbidden", func(t *testing.T) {
		_, err := svc.Update(ctx, bob, post.ID, domain.PostPatch{Title: strPtr("hijacked")})
		assert.ErrorIs(t, err, ErrForbidden)

		got, err := svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, got)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.Update(ctx, alice, "nope", domain.PostPatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("author changes title only", func(t *testing.T) {
		updated, err := svc.Update(ctx, alice, post.ID, domain.PostPatch{Title: strPtr("Renamed Post")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Post", updated.Title)
		assert.Equal(t, "old", updated.Content)
		assert.Equal(t, post.Slug, updated.Slug, "slug is fixed at creation")
		assert.Equal(t, "u1", updated.Author)
	})

	t.Run("blank title is ignored", func(t *testing.T) {
		updated, err := svc.Update(ctx, alice, post.ID, domain.PostPatch{Title: strPtr("   "), Content: strPtr("new")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Post", updated.Title)
		assert.Equal(t, "new", updated.Content)
	})
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, alice, CreateInput{Title: "Hi", Category: "c1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob, post.ID), ErrForbidden)
	_, err = svc.Get(ctx, post.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, auth.Identity{}, post.ID), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, alice, post.ID))
	_, err = svc.Get(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, alice, post.ID), ErrNotFound)
}

func TestService_List(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var xs []string
	for i := 0; i < 12; i++ {
		category := "X"
		if i%4 == 0 {
			category = "Y"
		}
		p, err := svc.Create(ctx, alice, CreateInput{Title: fmt.Sprintf("post %d", i), Category: category})
		require.NoError(t, err)
		if category == "X" {
			xs = append(xs, p.ID)
		}
	}
	require.Len(t, xs, 9)

	page, err := svc.List(ctx, ListQuery{Category: "X", Page: 2, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page, 4)
	for i, p := range page {
		assert.Equal(t, xs[5+i], p.ID)
	}

	all, err := svc.List(ctx, ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 10)

	_, err = svc.List(ctx, ListQuery{Page: 0, Limit: 10})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.List(ctx, ListQuery{Page: 1, Limit: 0})
	assert.ErrorIs(t, err, ErrValidation)

	// (page-1)*limit must not wrap around to a negative offset.
	_, err = svc.List(ctx, ListQuery{Page: math.MaxInt, Limit: 10})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.List(ctx, ListQuery{Page: math.MaxInt/2 + 2, Limit: 2})
	assert.ErrorIs(t, err, ErrValidation)

	// A far but representable page is simply empty.
	far, err := svc.List(ctx, ListQuery{Page: math.MaxInt / MaxLimit, Limit: MaxLimit})
	require.NoError(t, err)
	assert.Empty(t, far)
}

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery("", "", "")
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Page: DefaultPage, Limit: DefaultLimit}, q)

	q, err = ParseListQuery("X", "2", "5")
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Category: "X", Page: 2, Limit: 5}, q)

	q, err = ParseListQuery("", "1", "1000")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, q.Limit)

	huge := strconv.Itoa(math.MaxInt)
	for _, bad := range [][2]string{
		{"0", ""}, {"-1", ""}, {"abc", ""}, {"", "0"}, {"", "-5"}, {"", "ten"}, {"1.5", ""},
		{"1000000000000000000", "10"}, {huge, ""}, {huge, "1000"}, {"99999999999999999999", ""},
	} {
		_, err := ParseListQuery("", bad[0], bad[1])
		assert.ErrorIs(t, err, ErrValidation, "page=%q limit=%q", bad[0], bad[1])
	}
}

// failingStore fails every operation with err.
type failingStore struct {
	storage.Storage
	err error
}

func (f failingStore) CreatePost(context.Context, *domain.Post) (*domain.Post, error) {
	return nil, f.err
}

func (f failingStore) GetPostByID(context.Context, string) (*domain.Post, error) {
	return nil, f.err
}

func (f failingStore) ListPosts(context.Context, domain.ListFilter) ([]*domain.Post, error) {
	return nil, f.err
}

func TestService_StorageErrors(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(failingStore{err: cause})
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, CreateInput{Title: "Hi", Category: "c1"})
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "create", serr.Op)
	assert.ErrorIs(t, err, cause)

	_, err = svc.List(ctx, ListQuery{Page: 1, Limit: 10})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "list", serr.Op)

	_, err = svc.Get(ctx, "id")
	require.ErrorAs(t, err, &serr)

	_, err = svc.Update(ctx, alice, "id", domain.PostPatch{})
	require.ErrorAs(t, err, &serr)
	assert.NotErrorIs(t, err, ErrNotFound)
}
