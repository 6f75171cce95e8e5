package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devconnect/models"
)

type ProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{coll: db.Collection("profiles")}
}

func (s *ProfileStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile); err != nil {
		return nil, mapErr(err)
	}
	return &profile, nil
}

func (s *ProfileStore) FindAll(ctx context.Context) ([]models.Profile, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, mapErr(err)
	}
	return profiles, nil
}

// Save writes the whole profile document keyed by its user reference,
// inserting when absent. The single replace is the atomicity boundary for
// read-modify-write sequences on embedded lists.
func (s *ProfileStore) Save(ctx context.Context, profile *models.Profile) error {
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"user": profile.User}, profile,
		options.Replace().SetUpsert(true))
	return mapErr(err)
}

func (s *ProfileStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user": userID})
	return mapErr(err)
}
