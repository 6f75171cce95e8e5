package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devconnect/models"
)

type PostStore struct {
	coll *mongo.Collection
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{coll: db.Collection("posts")}
}

func (s *PostStore) Insert(ctx context.Context, post *models.Post) error {
	_, err := s.coll.InsertOne(ctx, post)
	return mapErr(err)
}

// FindAll returns every post, newest first.
func (s *PostStore) FindAll(ctx context.Context) ([]models.Post, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, mapErr(err)
	}
	return posts, nil
}

func (s *PostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mapErr(err)
	}
	return &post, nil
}

// Replace writes back a post after an in-memory mutation of its likes or
// comments. Last write wins on concurrent mutations of the same post.
func (s *PostStore) Replace(ctx context.Context, post *models.Post) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes every post authored by the user. Used only when the
// post-cascade config flag is on.
func (s *PostStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"user": userID})
	return mapErr(err)
}
