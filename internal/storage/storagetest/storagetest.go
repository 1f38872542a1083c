// Package storagetest holds the behavioural tests every storage.Storage
// backend must pass. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/UkralStul/blog-posts-service/internal/domain"
	"github.com/UkralStul/blog-posts-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend. newStore must return an empty store; it is
// called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("CreateAssignsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		post, err := s.CreatePost(ctx, &domain.Post{Title: "Hi", Author: "u1", Category: "c1", Slug: "hi-1"})
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.False(t, post.CreatedAt.IsZero())

		got, err := s.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hi", got.Title)
		assert.Equal(t, "u1", got.Author)
		assert.Equal(t, "c1", got.Category)
		assert.Equal(t, "hi-1", got.Slug)
		assert.Empty(t, got.Content)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetPostByID(context.Background(), "not-an-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateAppliesNonEmptyFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		post, err := s.CreatePost(ctx, &domain.Post{Title: "Hi", Content: "old", Author: "u1", Category: "c1", Slug: "hi-1"})
		require.NoError(t, err)

		content := "new"
		empty := ""
		updated, err := s.UpdatePost(ctx, post.ID, domain.PostPatch{Title: &empty, Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "Hi", updated.Title)
		assert.Equal(t, "new", updated.Content)
		assert.Equal(t, "hi-1", updated.Slug)
		assert.Equal(t, "u1", updated.Author)

		got, err := s.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Content)

		blank := "   "
		updated, err = s.UpdatePost(ctx, post.ID, domain.PostPatch{Title: &blank, Content: &blank})
		require.NoError(t, err)
		assert.Equal(t, "Hi", updated.Title)
		assert.Equal(t, "new", updated.Content)

		_, err = s.UpdatePost(ctx, "not-an-id", domain.PostPatch{Content: &content})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		post, err := s.CreatePost(ctx, &domain.Post{Title: "Hi", Author: "u1", Category: "c1", Slug: "hi-1"})
		require.NoError(t, err)

		require.NoError(t, s.DeletePost(ctx, post.ID))
		_, err = s.GetPostByID(ctx, post.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeletePost(ctx, post.ID), storage.ErrNotFound)
	})

	t.Run("ListOrderedAndPaged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var ids []string
		for i := 0; i < 7; i++ {
			p, err := s.CreatePost(ctx, &domain.Post{
				Title:    fmt.Sprintf("post %d", i),
				Author:   "u1",
				Category: "c1",
				Slug:     fmt.Sprintf("post-%d", i),
			})
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}
		_, err := s.CreatePost(ctx, &domain.Post{Title: "other", Author: "u1", Category: "c2", Slug: "other"})
		require.NoError(t, err)

		page, err := s.ListPosts(ctx, domain.ListFilter{Category: "c1", Offset: 5, Limit: 5})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[5], page[0].ID)
		assert.Equal(t, ids[6], page[1].ID)

		all, err := s.ListPosts(ctx, domain.ListFilter{Limit: 100})
		require.NoError(t, err)
		assert.Len(t, all, 8)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
