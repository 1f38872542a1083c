package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/storage"
	"github.com/UkralStul/blog-posts-service/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TEST_MONGO_URI points at a disposable server; the test uses its own
// database and drops it afterwards.
func TestStore_Contract(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := New(ctx, uri, "blog_posts_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.posts.Database().Drop(context.Background())
		_ = store.Close(context.Background())
	})

	storagetest.Run(t, func(t *testing.T) storage.Storage {
		_, err := store.posts.DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err)
		return store
	})
}

func TestPostDocument_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := postDocument{
		ID:        oid,
		Title:     "Hello World",
		Author:    "u1",
		Category:  "c1",
		Slug:      "hello-world-1",
		CreatedAt: created,
	}

	post := doc.toDomain()
	assert.Equal(t, oid.Hex(), post.ID)
	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "u1", post.Author)
	assert.Equal(t, "c1", post.Category)
	assert.Equal(t, created, post.CreatedAt)
}
