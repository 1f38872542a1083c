package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/domain"
	"github.com/UkralStul/blog-posts-service/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionName = "posts"

// postDocument is the stored shape of a post. Author and category are kept
// as the caller's identifiers; nothing here resolves them.
type postDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Author    string             `bson:"author"`
	Category  string             `bson:"category"`
	Slug      string             `bson:"slug"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *postDocument) toDomain() *domain.Post {
	return &domain.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Author:    d.Author,
		Category:  d.Category,
		Slug:      d.Slug,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// Store implements storage.Storage on a MongoDB collection.
type Store struct {
	client *mongo.Client
	posts  *mongo.Collection
}

// New connects to uri and uses the posts collection of database.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	posts := client.Database(database).Collection(collectionName)
	_, err = posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create posts index: %w", err)
	}

	return &Store{client: client, posts: posts}, nil
}

func notFound(id string) error {
	return fmt.Errorf("post %s: %w", id, storage.ErrNotFound)
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	doc := postDocument{
		ID:       primitive.NewObjectID(),
		Title:    post.Title,
		Content:  post.Content,
		Author:   post.Author,
		Category: post.Category,
		Slug:     post.Slug,
		// BSON dates carry milliseconds; truncate so the returned post
		// matches what a later read decodes.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(id)
	}
	var doc postDocument
	if err := s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) ListPosts(ctx context.Context, filter domain.ListFilter) ([]*domain.Post, error) {
	posts := []*domain.Post{}
	// A zero limit means "no limit" to the server.
	if filter.Limit <= 0 {
		return posts, nil
	}

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(max(filter.Offset, 0))).
		SetLimit(int64(filter.Limit))

	cur, err := s.posts.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc postDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		posts = append(posts, doc.toDomain())
	}
	return posts, cur.Err()
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(id)
	}

	// $set with no fields is rejected by the server.
	if patch.Empty() {
		return s.GetPostByID(ctx, id)
	}
	set := bson.M{}
	for field, value := range patch.Fields() {
		set[field] = value
	}

	var doc postDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound(id)
	}
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
