// Package store holds the MongoDB persistence for users, profiles and posts.
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Stores bundles the three collections over one database handle.
type Stores struct {
	Users    *UserStore
	Profiles *ProfileStore
	Posts    *PostStore
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Users:    NewUserStore(db),
		Profiles: NewProfileStore(db),
		Posts:    NewPostStore(db),
	}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
